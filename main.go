package main

import (
	"errors"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pkgvet/pkgvet/pkg/audit"
	"github.com/pkgvet/pkgvet/pkg/types"
)

// Globals for Debug logging flag and version reporting.
var (
	debug   bool
	version string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pkgvet",
		Short: "pkgvet",
		Long:  "pkgvet: npm dependency tree auditor",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				log.SetLevel(log.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
		SilenceUsage: true,
		Version:      version,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&debug, "debug", false, "enable debug level logging")

	rootCmd.AddCommand(audit.NewAuditCmd())
	return rootCmd
}

func initConfig() {
	viper.SetEnvPrefix("pkgvet")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func main() {
	cobra.OnInitialize(initConfig)
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		var findings *types.FindingsError
		if errors.As(err, &findings) {
			os.Exit(findings.ExitCode())
		}
		log.Errorf("Error: %v", err)
		os.Exit(1)
	}
}
