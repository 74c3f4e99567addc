package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"epitrello-backend/internal/api"
	"epitrello-backend/internal/api/routes"
	v1 "epitrello-backend/internal/api/routes/v1"
	"epitrello-backend/internal/audit"
	"epitrello-backend/internal/auth"
	"epitrello-backend/internal/config"
	"epitrello-backend/internal/libraries"
	"epitrello-backend/internal/repo"

	"github.com/spf13/cobra"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	Port    string
	Migrate bool
}

func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and websocket server",
		Long: `Start the API server.

Configuration comes from the environment and an optional .env file
(DB_URL, JWT_SECRET, PORT, ATTACHMENT_BUCKET, ...).

Example:
  epitrello serve --migrate
  epitrello serve --port 8080`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Port, "port", "", "listen port (overrides PORT)")
	cmd.Flags().BoolVar(&opts.Migrate, "migrate", false, "run database migrations before serving")

	return cmd
}

// newObjectStore picks GCS when a bucket is configured and the local disk otherwise.
func newObjectStore(ctx context.Context, cfg *config.Config) (libraries.ObjectStore, error) {
	if cfg.AttachmentBucket != "" {
		return libraries.NewGCSStore(ctx, cfg.AttachmentBucket, cfg.GCPCredentials)
	}
	return libraries.NewLocalStore(cfg.AttachmentDir)
}

func runServer(cmd *cobra.Command, opts *ServeOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.Port != "" {
		cfg.Port = opts.Port
	}

	// Connect to database
	if err := config.ConnectDB(cfg); err != nil {
		return err
	}
	defer func() {
		if err := config.CloseDB(); err != nil {
			log.Println(err, "Error closing database")
		}
	}()

	// Run migrations
	if err := config.MigrateAllModels(opts.Migrate); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	blobs, err := newObjectStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to init attachment store: %w", err)
	}
	defer blobs.Close()

	hub := libraries.NewHub()
	go hub.Run()
	defer hub.Stop()

	recorder := audit.NewRecorder(repo.NewAuditLogRepository(config.DB), cfg.AuditBuffer)
	defer recorder.Close()

	// Create and configure Fiber app
	app := api.NewServer(cfg)
	routes.Register(app, v1.Deps{
		DB:      config.DB,
		Tokens:  auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL),
		Hub:     hub,
		Blobs:   blobs,
		Auditor: recorder,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Printf("received %s, shutting down", sig)
			if err := app.Shutdown(); err != nil {
				log.Println(err, "Error shutting down server")
			}
		case <-ctx.Done():
			_ = app.Shutdown()
		}
	}()

	// Start server
	return api.StartServer(app, cfg.Port)
}
