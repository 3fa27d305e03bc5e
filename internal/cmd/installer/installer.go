// Package installer parses installer command flags and runs the setup wizard.
package installer

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/louisbranch/lodestar/internal/installer"
	"github.com/louisbranch/lodestar/internal/platform/config"
	"github.com/louisbranch/lodestar/internal/platform/otel"
)

// Config holds installer command configuration.
type Config struct {
	HTTPAddr      string        `env:"LODESTAR_INSTALLER_HTTP_ADDR" envDefault:"localhost:8080"`
	StoragePath   string        `env:"LODESTAR_INSTALLER_STORAGE_PATH"`
	SessionSecret string        `env:"LODESTAR_INSTALLER_SESSION_SECRET"`
	SessionTTL    time.Duration `env:"LODESTAR_INSTALLER_SESSION_TTL" envDefault:"2h"`
	DataDir       string        `env:"LODESTAR_INSTALLER_DATA_DIR" envDefault:"data"`
	Skin          string        `env:"LODESTAR_INSTALLER_SKIN" envDefault:"lodestar"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.StoragePath, "storage-path", cfg.StoragePath, "SQLite file for wizard progress (empty for in-memory)")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "wizard session lifetime")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory probed and populated by the installation")
	fs.StringVar(&cfg.Skin, "skin", cfg.Skin, "stylesheet directory name")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the setup wizard server.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "installer")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		// The wizard session only needs to outlive one installer run, so a
		// per-process secret is enough when none is configured.
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("generate session secret: %w", err)
		}
	}

	server, err := installer.NewServer(ctx, installer.Config{
		HTTPAddr:      cfg.HTTPAddr,
		StoragePath:   cfg.StoragePath,
		SessionSecret: secret,
		SessionTTL:    cfg.SessionTTL,
		DataDir:       cfg.DataDir,
		Skin:          cfg.Skin,
	})
	if err != nil {
		return fmt.Errorf("init installer server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve installer: %w", err)
	}
	return nil
}
