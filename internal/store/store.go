package store

import (
	"context"
	"errors"

	"job-portal/internal/domain"
)

// CredentialStore persiste el token, el usuario cacheado y el nombre de empresa auxiliar.
// No valida nada: las reglas viven en el SessionManager.
type CredentialStore interface {
	Load(ctx context.Context) (domain.Credentials, bool, error)
	Save(ctx context.Context, token string, user domain.User) error
	Clear(ctx context.Context) error
	CacheCompanyName(ctx context.Context, userID, name string) error
	CachedCompanyName(ctx context.Context, userID string) (string, bool, error)
}

var ErrEmptyToken = errors.New("store: empty token")
