// Package cli implements the tds-gaia CLI commands.
package cli

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//go:embed manifest.yaml
var manifestYAML []byte

var (
	cfgPath string
	verbose bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "tds-gaia",
	Short: "Conversational AI assistant for TOTVS development",
	Long:  "Chat-style command layer for the Gaia assistant: talk to the service, explain and typify source code, and keep an eye on its availability.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Configuration file (default: $TDS_GAIA_CONFIG or ~/.tds-gaia/config.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func configPath() string {
	if cfgPath != "" {
		return cfgPath
	}
	if env := os.Getenv("TDS_GAIA_CONFIG"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".tds-gaia", "config.yaml")
}

func newLogger() *zap.Logger {
	c := zap.NewProductionConfig()
	if verbose {
		c = zap.NewDevelopmentConfig()
		c.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := c.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
