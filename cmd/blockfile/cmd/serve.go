/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/blockfile/pkg/api"
)

func newServeCmd(c *cli) *cobra.Command {
	var (
		port   int
		bind   string
		apiKey string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the blockfile REST API server.

Endpoints:
  GET  /api/v1/health
  POST /api/v1/pack
  GET  /api/v1/runs
  GET  /api/v1/runs/{id}
  GET  /metrics

Examples:
  blockfile serve --port 8080
  blockfile serve --bind 0.0.0.0 --api-key mysecretkey`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("port") {
				c.cfg.Server.Port = port
			}
			if flags.Changed("bind") {
				c.cfg.Server.Bind = bind
			}
			if flags.Changed("api-key") {
				c.cfg.Server.APIKey = apiKey
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}

			if deps == nil {
				return fmt.Errorf("dependency container not initialized")
			}

			cat, closeCatalog, err := c.openCatalog()
			if err != nil {
				return err
			}
			defer closeCatalog()

			// A nil *Catalog must not become a non-nil RunStore
			var runs api.RunStore
			if cat != nil {
				runs = cat
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			starter := deps.GetServerFactory().CreateServerStarter()
			return starter.StartServer(ctx, api.ServerConfig{
				Port:       c.cfg.Server.Port,
				Bind:       c.cfg.Server.Bind,
				APIKey:     c.cfg.Server.APIKey,
				BlockSize:  c.cfg.Storage.BlockSize,
				Layout:     c.cfg.Storage.Layout,
				MaxRecords: c.cfg.Server.MaxRecords,
			}, runs, c.logger)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	cmd.Flags().StringVar(&bind, "bind", "127.0.0.1", "Address to bind server to")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Require this X-API-Key on /api/v1 routes")
	return cmd
}
