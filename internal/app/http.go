package app

import (
	"context"

	authhandler "secrets-service/internal/auth/handler"

	"secrets-service/internal/auth/credentials"
	"secrets-service/internal/auth/provider"
	"secrets-service/internal/auth/provider/facebook"
	"secrets-service/internal/auth/provider/google"
	"secrets-service/internal/auth/resolver"
	"secrets-service/internal/config"
	"secrets-service/internal/middleware"
	"secrets-service/internal/secrets"
	secretshandler "secrets-service/internal/secrets/handler"
	"secrets-service/internal/session"
	"secrets-service/internal/store"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	accountStore := store.NewPostgresStore(infra.DB)
	sessionStore := session.NewRedisStore(infra.Redis.Client)
	sessionManager := session.NewManager(sessionStore, accountStore, cfg.SessionTTL)

	credentialService := credentials.NewService(accountStore)
	identityResolver := resolver.NewStoreResolver(accountStore)

	googleProvider, err := google.New(
		ctx,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	facebookProvider, err := facebook.New(
		cfg.FacebookAppID,
		cfg.FacebookAppSecret,
		cfg.FacebookRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	registry := provider.NewRegistry(
		googleProvider,
		facebookProvider,
	)

	cipher, err := secrets.NewCipher(cfg.EncryptionKey)
	if err != nil {
		return nil, nil, err
	}
	secretService := secrets.NewService(accountStore, cipher)

	authHandler := authhandler.NewHandler(
		registry,
		sessionManager,
		identityResolver,
		credentialService,
	)
	secretHandler := secretshandler.NewHandler(secretService)

	authMiddleware := middleware.NewAuthMiddleware(sessionManager)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	authHandler.RegisterRoutes(router)
	secretHandler.RegisterRoutes(router, authMiddleware)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	protected := router.Group("/")
	protected.Use(middleware.GinRequireAuth(authMiddleware))

	protected.GET("/me", func(c *gin.Context) {
		account, _ := middleware.AccountFromContext(c.Request.Context())
		c.JSON(200, gin.H{
			"account_id": account.ID,
			"username":   account.Username,
		})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.DB.Close()
	}, nil
}
