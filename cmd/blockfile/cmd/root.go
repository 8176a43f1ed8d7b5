/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/blockfile/pkg/catalog"
	"github.com/ssargent/blockfile/pkg/config"
	"github.com/ssargent/blockfile/pkg/di"
	"github.com/ssargent/blockfile/pkg/logging"
)

var deps *di.Container

// SetContainer injects the dependency container used by every command
func SetContainer(c *di.Container) {
	deps = c
}

// cli carries the state shared by a command tree: flags resolved into a
// configuration and the logger built from it.
type cli struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "blockfile",
		Short: "blockfile - block packing for student records",
		Long: `blockfile encodes student records as fixed or variable length payloads,
packs them into fixed-capacity blocks and writes the blocks to a container
file, reporting how well the blocks are used.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to config file (default: OS-specific location)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "", "Log format: text or json")

	root.AddCommand(
		newPackCmd(c),
		newInteractiveCmd(c),
		newInspectCmd(c),
		newHistoryCmd(c),
		newServeCmd(c),
		newInitCmd(c),
	)

	return root
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// load reads the configuration file, applies the logging flags and builds
// the logger. A missing file at the default location falls back to defaults;
// a missing file named by --config is an error.
func (c *cli) load(cmd *cobra.Command) error {
	path := c.configPath
	explicit := path != ""
	if !explicit {
		path = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	if explicit || config.ConfigExists(path) {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if c.logFormat != "" {
		cfg.Logging.Format = c.logFormat
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Logging)
	if err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}

	c.cfg = cfg
	c.logger = logger
	c.logger.Debug("configuration loaded", "path", path, "from_file", explicit || config.ConfigExists(path))
	return nil
}

// openCatalog opens the run catalog when it is enabled. The returned closer
// is always safe to call.
func (c *cli) openCatalog() (*catalog.Catalog, func(), error) {
	if !c.cfg.Catalog.Enabled {
		return nil, func() {}, nil
	}
	if deps == nil {
		return nil, nil, fmt.Errorf("dependency container not initialized")
	}

	if err := os.MkdirAll(c.cfg.Catalog.Dir, 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create catalog dir: %w", err)
	}
	cat, err := deps.OpenCatalog(c.cfg.Catalog.Dir, c.logger)
	if err != nil {
		return nil, nil, err
	}
	return cat, func() {
		if err := cat.Close(); err != nil {
			c.logger.Warn("failed to close catalog", "error", err)
		}
	}, nil
}
