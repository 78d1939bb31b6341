package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclelog/internal/api"
	"github.com/terraincognita07/cyclelog/internal/config"
	"github.com/terraincognita07/cyclelog/internal/google"
	"github.com/terraincognita07/cyclelog/internal/services"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(config.ScopeServe)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, rt)
		},
	}
}

func serve(ctx context.Context, rt *runtime) error {
	app, err := newServer(rt)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := contextWithShutdownTimeout()
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			rt.logger.WithError(err).Error("server shutdown failed")
		}
	}()

	rt.logger.WithFields(logrus.Fields{
		"port": rt.cfg.Port,
		"db":   rt.cfg.DBPath,
		"tz":   rt.location.String(),
	}).Info("cyclelog listening")
	if err := app.Listen(":" + rt.cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

// newServer wires services, the optional Google integration and the routes.
func newServer(rt *runtime) (*fiber.App, error) {
	cycles := services.NewCycleService(rt.repos.CycleEntries, rt.location)

	var (
		calendar  services.CalendarEventCreator
		connector *google.OAuthService
	)
	if rt.cfg.GoogleEnabled() {
		oauth, err := google.NewOAuthService(google.OAuthSettings{
			ClientID:     rt.cfg.GoogleClientID,
			ClientSecret: rt.cfg.GoogleClientSecret,
			RedirectURL:  rt.cfg.GoogleRedirectURL,
			AuthURL:      rt.cfg.GoogleAuthURL,
			TokenURL:     rt.cfg.GoogleTokenURL,
		}, rt.repos.GoogleTokens, rt.logger)
		if err != nil {
			return nil, fmt.Errorf("google oauth init failed: %w", err)
		}
		connector = oauth
		calendar = google.NewEventClient(oauth, rt.logger).
			WithBaseURL(rt.cfg.GoogleCalendarBaseURL).
			WithCalendarID(rt.cfg.GoogleCalendarID)
	} else {
		rt.logger.Info("google calendar sync disabled")
	}

	options := api.Options{
		Auth:         services.NewAuthService(rt.repos.Users),
		Cycles:       cycles,
		Periods:      services.NewPeriodLogService(cycles, calendar, rt.cfg.CalendarSyncTimeout, rt.logger),
		SecretKey:    rt.cfg.SecretKey,
		CookieSecure: rt.cfg.CookieSecure,
		Logger:       rt.logger,
	}
	if connector != nil {
		options.Calendar = connector
	}
	handler, err := api.NewHandler(options)
	if err != nil {
		return nil, fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "cyclelog",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{Output: rt.logger.Writer()}))
	app.Use(compress.New())
	api.RegisterRoutes(app, handler)
	return app, nil
}

func contextWithShutdownTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), shutdownTimeout)
}
