package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"secrets-service/internal/db"
)

// PostgresStore is the canonical AccountStore. Uniqueness is enforced
// by the accounts_username_unique and identities_provider_subject_unique
// constraints; races on first-time external logins are resolved by
// insert-if-absent inside a transaction.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var _ AccountStore = (*PostgresStore)(nil)

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Account, error) {
	account := &Account{}
	var username, passwordHash sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at
		FROM accounts
		WHERE id = $1
	`, id).Scan(&account.ID, &username, &passwordHash, &account.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: find account by id: %w", err)
	}

	account.Username = username.String
	account.PasswordHash = passwordHash.String

	if err := s.loadIdentities(ctx, account); err != nil {
		return nil, err
	}
	if err := s.loadSecrets(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*Account, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM accounts WHERE username = $1
	`, username).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: find account by username: %w", err)
	}
	return s.FindByID(ctx, id)
}

func (s *PostgresStore) FindOrCreateByIdentity(ctx context.Context, provider, subjectID string) (*Account, error) {
	// Fast path: identity already linked.
	var accountID string
	err := s.db.QueryRowContext(ctx, `
		SELECT account_id FROM identities
		WHERE provider = $1 AND subject_id = $2
	`, provider, subjectID).Scan(&accountID)

	if err == nil {
		return s.FindByID(ctx, accountID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: lookup identity: %w", err)
	}

	// Create path. The identity insert carries the uniqueness
	// constraint; on conflict the whole transaction rolls back so no
	// orphan account row survives, and we re-read the winner's link.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO accounts DEFAULT VALUES RETURNING id
	`).Scan(&accountID)
	if err != nil {
		return nil, fmt.Errorf("store: create account: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO identities (account_id, provider, subject_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider, subject_id) DO NOTHING
	`, accountID, provider, subjectID)
	if err != nil {
		return nil, fmt.Errorf("store: link identity: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("store: link identity: %w", err)
	}

	if inserted == 0 {
		// Lost the race: a concurrent request linked this identity
		// first. Discard our account and return theirs.
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			return nil, fmt.Errorf("store: rollback: %w", err)
		}
		err = s.db.QueryRowContext(ctx, `
			SELECT account_id FROM identities
			WHERE provider = $1 AND subject_id = $2
		`, provider, subjectID).Scan(&accountID)
		if err != nil {
			return nil, fmt.Errorf("store: re-read identity: %w", err)
		}
		return s.FindByID(ctx, accountID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}
	return s.FindByID(ctx, accountID)
}

func (s *PostgresStore) CreateLocal(ctx context.Context, username, passwordHash string) (*Account, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO accounts (username, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (username) WHERE username IS NOT NULL DO NOTHING
		RETURNING id
	`, username, passwordHash).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDuplicateUsername
	}
	if err != nil {
		return nil, fmt.Errorf("store: create local account: %w", err)
	}
	return s.FindByID(ctx, id)
}

func (s *PostgresStore) AppendSecret(ctx context.Context, accountID, ciphertext string) (Secret, error) {
	secret := Secret{Ciphertext: ciphertext}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO secrets (account_id, ciphertext)
		SELECT id, $2 FROM accounts WHERE id = $1
		RETURNING id, created_at
	`, accountID, ciphertext).Scan(&secret.ID, &secret.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return Secret{}, ErrNotFound
	}
	if err != nil {
		return Secret{}, fmt.Errorf("store: append secret: %w", err)
	}
	return secret, nil
}

func (s *PostgresStore) ListWithSecrets(ctx context.Context) ([]*Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.username, a.created_at,
		       s.id, s.ciphertext, s.created_at
		FROM accounts a
		JOIN secrets s ON s.account_id = a.id
		ORDER BY a.created_at, s.created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list accounts with secrets: %w", err)
	}
	defer rows.Close()

	var (
		accounts []*Account
		byID     = map[string]*Account{}
	)
	for rows.Next() {
		var (
			accountID string
			username  sql.NullString
			createdAt sql.NullTime
			secret    Secret
		)
		if err := rows.Scan(&accountID, &username, &createdAt,
			&secret.ID, &secret.Ciphertext, &secret.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan secret row: %w", err)
		}

		account, ok := byID[accountID]
		if !ok {
			account = &Account{
				ID:        accountID,
				Username:  username.String,
				CreatedAt: createdAt.Time,
			}
			byID[accountID] = account
			accounts = append(accounts, account)
		}
		account.Secrets = append(account.Secrets, secret)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list accounts with secrets: %w", err)
	}
	return accounts, nil
}

func (s *PostgresStore) loadIdentities(ctx context.Context, account *Account) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT provider, subject_id FROM identities
		WHERE account_id = $1
	`, account.ID)
	if err != nil {
		return fmt.Errorf("store: load identities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var provider, subjectID string
		if err := rows.Scan(&provider, &subjectID); err != nil {
			return fmt.Errorf("store: scan identity: %w", err)
		}
		if account.Identities == nil {
			account.Identities = map[string]string{}
		}
		account.Identities[provider] = subjectID
	}
	return rows.Err()
}

func (s *PostgresStore) loadSecrets(ctx context.Context, account *Account) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ciphertext, created_at FROM secrets
		WHERE account_id = $1
		ORDER BY created_at
	`, account.ID)
	if err != nil {
		return fmt.Errorf("store: load secrets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var secret Secret
		if err := rows.Scan(&secret.ID, &secret.Ciphertext, &secret.CreatedAt); err != nil {
			return fmt.Errorf("store: scan secret: %w", err)
		}
		account.Secrets = append(account.Secrets, secret)
	}
	return rows.Err()
}
