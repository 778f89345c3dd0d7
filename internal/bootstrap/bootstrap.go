// Package bootstrap wires the query server's dependencies.
package bootstrap

import (
	"context"

	"go.uber.org/dig"

	"github.com/joshuapare/hiverecon/internal/config"
	"github.com/joshuapare/hiverecon/internal/logger"
	"github.com/joshuapare/hiverecon/internal/server"
	"github.com/joshuapare/hiverecon/pkg/hive"
)

// Params carries command-line overrides into the container.
type Params struct {
	ConfigFile string
	Listen     string // overrides the configured address when set
	HivePath   string // loaded before serving when set
}

// Container registers every constructor the server needs.
func Container(p Params) (*dig.Container, error) {
	container := dig.New()
	constructors := []interface{}{
		func() (*config.Config, error) {
			cfg, err := config.Load(p.ConfigFile)
			if err != nil {
				return nil, err
			}
			if p.Listen != "" {
				cfg.Listen = p.Listen
			}
			return cfg, nil
		},
		hive.NewSession,
		server.NewServer,
	}
	for _, c := range constructors {
		if err := container.Provide(c); err != nil {
			return nil, err
		}
	}
	return container, nil
}

// Serve builds the container, initialises logging, optionally preloads a
// hive and runs the server until ctx is cancelled.
func Serve(ctx context.Context, p Params) error {
	container, err := Container(p)
	if err != nil {
		return err
	}
	if err := container.Invoke(func(cfg *config.Config) error {
		return logger.Init(cfg.LoggerOptions())
	}); err != nil {
		return err
	}
	return container.Invoke(func(cfg *config.Config, session *hive.Session, s *server.Server) error {
		if p.HivePath != "" {
			opts := cfg.LoadOptions()
			opts.Logger = logger.L
			if _, err := session.Load(ctx, p.HivePath, opts); err != nil {
				return err
			}
			logger.Info("hive preloaded", "path", p.HivePath)
		}
		return s.Run(ctx)
	})
}
