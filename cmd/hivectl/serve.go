package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joshuapare/hiverecon/internal/bootstrap"
)

var (
	serveListen string
	serveHive   string
)

func init() {
	cmd := newServeCmd()
	cmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (default from config, 127.0.0.1:8470)")
	cmd.Flags().StringVar(&serveHive, "hive", "", "Hive to load before serving")
	rootCmd.AddCommand(cmd)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a read-only JSON query API",
		Long: `The serve command starts an HTTP server answering queries against one
loaded hive. Load a hive with --hive or POST /hive {"path": "..."}.

Example:
  hivectl serve --hive SOFTWARE
  hivectl serve --listen :9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	return cmd
}

func runServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return bootstrap.Serve(ctx, bootstrap.Params{
		ConfigFile: configFile,
		Listen:     serveListen,
		HivePath:   serveHive,
	})
}
