package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"secrets-service/internal/auth"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

const (
	providerName = "facebook"
	profileURL   = "https://graph.facebook.com/me?fields=id"
)

// Provider authenticates against Facebook. Facebook is not a
// conforming OIDC issuer, so the stable subject identifier comes from
// a Graph API profile fetch instead of an ID token.
type Provider struct {
	oauthConfig *oauth2.Config
}

func New(
	appID string,
	appSecret string,
	redirectURL string,
) (*Provider, error) {

	if appID == "" || appSecret == "" || redirectURL == "" {
		return nil, errors.New("facebook oauth config missing required fields")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     appID,
		ClientSecret: appSecret,
		RedirectURL:  redirectURL,
		Endpoint:     facebook.Endpoint,
		Scopes:       []string{"public_profile"},
	}

	return &Provider{oauthConfig: oauthCfg}, nil
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// AuthCodeURL builds the OAuth authorization URL with PKCE parameters.
func (p *Provider) AuthCodeURL(state string, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// ExchangeCode exchanges the authorization code and fetches the
// profile id from the Graph API.
func (p *Provider) ExchangeCode(
	ctx context.Context,
	code string,
	codeVerifier string,
) (*auth.Identity, error) {

	token, err := p.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: facebook token exchange: %v", auth.ErrProviderExchange, err)
	}

	client := p.oauthConfig.Client(ctx, token)
	resp, err := client.Get(profileURL)
	if err != nil {
		return nil, fmt.Errorf("%w: facebook profile fetch: %v", auth.ErrProviderExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: facebook profile fetch: status %d", auth.ErrProviderExchange, resp.StatusCode)
	}

	var profile struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: facebook profile parse: %v", auth.ErrProviderExchange, err)
	}

	if profile.ID == "" {
		return nil, fmt.Errorf("%w: facebook profile missing id", auth.ErrProviderExchange)
	}

	return &auth.Identity{
		Provider:  providerName,
		SubjectID: profile.ID,
	}, nil
}
