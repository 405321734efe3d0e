/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/pdfqa-be/auth"
	"github.com/tieubaoca/pdfqa-be/config"
	"github.com/tieubaoca/pdfqa-be/handler"
	"github.com/tieubaoca/pdfqa-be/logger"
	"github.com/tieubaoca/pdfqa-be/service"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the HTTP API server",
	Long: `Serves the upload, question answering and user data routes.
Changes to the "debug" setting in the config file apply without a restart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withApp(ctx, func(a *app) error {
			cfg := a.cfg
			verifier, err := auth.NewVerifier(ctx, cfg.Auth)
			if err != nil {
				return fmt.Errorf("failed to initialise auth: %w", err)
			}

			if cfgFile != "" {
				config.WatchConfig(cfgFile, func(next *config.Config) {
					logger.SetDebug(next.Debug)
					zap.L().Info("config reloaded", zap.Stringer("level", logger.Level()))
				}, func(err error) {
					zap.L().Warn("ignoring invalid config change", zap.Error(err))
				})
			}

			if !cfg.Debug {
				gin.SetMode(gin.ReleaseMode)
			}
			router := handler.NewRouter(handler.Handlers{
				AppName: cfg.AppName,
				Cors:    handler.NewCorsHandler(cfg.Cors.AllowedOrigins),
				PDF:     handler.NewPDFHandler(a.documents),
				QA:      handler.NewQAHandler(a.qa, service.NewWebSocketService(a.qa, cfg.Cors.AllowedOrigins)),
				User:    handler.NewUserHandler(a.users),
			}, verifier)

			srv := &http.Server{
				Addr:    ":" + cfg.Port,
				Handler: router,
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					zap.L().Error("Server shutdown error", zap.Error(err))
				}
			}()

			zap.L().Info("Starting server", zap.String("port", cfg.Port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			zap.L().Info("Server stopped")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
