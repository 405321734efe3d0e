// Package auth turns bearer tokens into user ids.
package auth

import (
	"context"
	"fmt"

	"github.com/tieubaoca/pdfqa-be/config"
)

// Verifier resolves a raw bearer token to the uid it was issued for.
// Every failure wraps types.ErrUnauthorized.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (string, error)
}

func NewVerifier(ctx context.Context, cfg config.AuthConfig) (Verifier, error) {
	switch cfg.Provider {
	case config.AuthJWT:
		return NewJWTVerifier(cfg.JWTSecret), nil
	case config.AuthFirebase:
		app, err := NewFirebaseApp(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewFirebaseVerifier(ctx, app)
	}
	return nil, fmt.Errorf("unsupported auth provider: %s", cfg.Provider)
}
