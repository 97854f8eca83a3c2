package audit

import (
	"context"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pkgvet/pkgvet/pkg/types"
)

type auditArgs struct {
	dir        string
	depth      int
	parallel   int
	timeout    time.Duration
	warnings   bool
	testOutput bool
	noTests    bool
	registry   string
	dump       string
	configFile string
}

func NewAuditCmd() *cobra.Command {
	ua := auditArgs{}
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit the dependency tree of an npm project",
		Example: `  pkgvet audit -d ./my-app
  pkgvet audit -d ./my-app --warnings --parallel 10
  pkgvet audit --config pkgvet.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := &types.Options{
				Dir:         ua.dir,
				Depth:       ua.depth,
				Parallel:    ua.parallel,
				Timeout:     ua.timeout,
				Warnings:    ua.warnings,
				RunTests:    !ua.noTests,
				TestOutput:  ua.testOutput,
				RegistryURL: ua.registry,
				DumpFile:    ua.dump,
				ConfigFile:  ua.configFile,
			}

			if ua.configFile != "" {
				cfg, err := LoadConfig(ua.configFile)
				if err != nil {
					return err
				}
				applyConfig(cmd, opts, cfg)
			}

			// Forward child process output only when asked for and the
			// terminal can actually show it interleaved.
			opts.TestOutput = opts.TestOutput && term.IsTerminal(int(os.Stdout.Fd()))

			rep, _, err := Audit(context.Background(), opts)
			if err != nil {
				return err
			}
			printSummary(rep, opts.Warnings)

			errs, warns := rep.Counts()
			if errs == 0 && (!opts.Warnings || warns == 0) {
				return nil
			}
			return &types.FindingsError{Errors: errs, Warnings: warns, IncludeWarnings: opts.Warnings}
		},
	}

	flags := auditCmd.Flags()
	flags.StringVarP(&ua.dir, "dir", "d", ".", "Project directory containing the root package.json")
	flags.IntVar(&ua.depth, "depth", types.DefaultDepth, "Maximum dependency tree depth to discover")
	flags.IntVarP(&ua.parallel, "parallel", "p", types.DefaultParallel, "Maximum concurrent registry lookups and test runs")
	flags.DurationVar(&ua.timeout, "timeout", 5*time.Minute, "Timeout per external install/test invocation")
	flags.BoolVarP(&ua.warnings, "warnings", "w", false, "Show warnings and count them toward the exit code")
	flags.BoolVar(&ua.testOutput, "test-output", false, "Forward install/test process output to the terminal")
	flags.BoolVar(&ua.noTests, "no-tests", false, "Inspect manifests only, skip install/test execution")
	flags.StringVar(&ua.registry, "registry", "", "Registry base URL (defaults to the public npm registry)")
	flags.StringVar(&ua.dump, "dump", "", "Write the raw report as JSON to this file (debug aid)")
	flags.StringVar(&ua.configFile, "config", "", "Path to a YAML config file mirroring the flags")

	return auditCmd
}

// applyConfig fills opts from cfg for every flag the user did not set
// explicitly. Flag > config > default.
func applyConfig(cmd *cobra.Command, opts *types.Options, cfg *Config) {
	flags := cmd.Flags()
	if !flags.Changed("dir") && cfg.Dir != "" {
		opts.Dir = cfg.Dir
	}
	if !flags.Changed("depth") && cfg.Depth > 0 {
		opts.Depth = cfg.Depth
	}
	if !flags.Changed("parallel") && cfg.Parallel > 0 {
		opts.Parallel = cfg.Parallel
	}
	if !flags.Changed("timeout") && cfg.Duration() > 0 {
		opts.Timeout = cfg.Duration()
	}
	if !flags.Changed("warnings") && cfg.Warnings {
		opts.Warnings = true
	}
	if !flags.Changed("no-tests") && cfg.RunTests != nil {
		opts.RunTests = *cfg.RunTests
	}
	if !flags.Changed("test-output") && cfg.TestOutput {
		opts.TestOutput = true
	}
	if !flags.Changed("registry") && cfg.Registry != "" {
		opts.RegistryURL = cfg.Registry
	}
	if !flags.Changed("dump") && cfg.Dump != "" {
		opts.DumpFile = cfg.Dump
	}
	log.Debugf("merged config from %s", opts.ConfigFile)
}
