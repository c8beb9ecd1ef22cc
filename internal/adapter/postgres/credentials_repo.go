package postgres

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/aidengindin/ownhealth/internal/domain"
)

// CredentialRepo stores provider credentials sealed with a symmetric
// key. Secrets are encrypted before they touch the database and never
// leave the process in plaintext.
type CredentialRepo struct {
	db  *DB
	key [32]byte
}

// NewCredentialRepo creates a credential repository sealing with key.
func NewCredentialRepo(db *DB, key [32]byte) *CredentialRepo {
	return &CredentialRepo{db: db, key: key}
}

// Put seals and upserts the secret for (providerID, userID).
func (r *CredentialRepo) Put(ctx context.Context, providerID string, userID domain.UserID, secret []byte) error {
	sealed, err := r.seal(secret)
	if err != nil {
		return err
	}
	_, err = r.db.sql.ExecContext(ctx,
		`INSERT INTO provider_credentials(provider_id, user_id, secret, updated_at)
		 VALUES($1, $2, $3, $4)
		 ON CONFLICT (provider_id, user_id) DO UPDATE SET secret = $3, updated_at = $4;`,
		providerID, userID.String(), sealed, time.Now().UTC(),
	)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// Get returns the opened secret for (providerID, userID), or
// domain.ErrCredentialsNotFound when no record exists.
func (r *CredentialRepo) Get(ctx context.Context, providerID string, userID domain.UserID) ([]byte, error) {
	var sealed []byte
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT secret FROM provider_credentials WHERE provider_id = $1 AND user_id = $2;",
		providerID, userID.String(),
	).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCredentialsNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return r.open(sealed)
}

// Delete removes the credentials for (providerID, userID).
func (r *CredentialRepo) Delete(ctx context.Context, providerID string, userID domain.UserID) error {
	_, err := r.db.sql.ExecContext(ctx,
		"DELETE FROM provider_credentials WHERE provider_id = $1 AND user_id = $2;",
		providerID, userID.String(),
	)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *CredentialRepo) seal(secret []byte) ([]byte, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], secret, &nonce, &r.key), nil
}

func (r *CredentialRepo) open(sealed []byte) ([]byte, error) {
	if len(sealed) < 24 {
		return nil, fmt.Errorf("sealed credential too short")
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	secret, ok := secretbox.Open(nil, sealed[24:], &nonce, &r.key)
	if !ok {
		return nil, fmt.Errorf("credential seal does not open with the configured key")
	}
	return secret, nil
}

var _ domain.CredentialRepository = (*CredentialRepo)(nil)
