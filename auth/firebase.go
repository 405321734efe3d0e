package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/tieubaoca/pdfqa-be/config"
	"github.com/tieubaoca/pdfqa-be/types"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// NewFirebaseApp initialises the Admin SDK. The same app backs token
// verification and the realtime database history.
func NewFirebaseApp(ctx context.Context, cfg config.AuthConfig) (*firebase.App, error) {
	fbCfg := &firebase.Config{
		ProjectID:   cfg.FirebaseProjectID,
		DatabaseURL: cfg.FirebaseDatabaseURL,
	}
	var opts []option.ClientOption
	if cfg.FirebaseCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	}
	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise firebase: %w", err)
	}
	return app, nil
}

type FirebaseVerifier struct {
	client *fbauth.Client
}

func NewFirebaseVerifier(ctx context.Context, app *firebase.App) (*FirebaseVerifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, rawToken string) (string, error) {
	token, err := v.client.VerifyIDToken(ctx, rawToken)
	if err != nil {
		zap.L().Debug("firebase token rejected", zap.Error(err))
		return "", fmt.Errorf("%w: %v", types.ErrUnauthorized, err)
	}
	return token.UID, nil
}
