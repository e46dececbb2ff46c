package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	qbasher "github.com/qbasher/qbasherq"
)

// substitutionRules is loaded at most once per process, from whatever
// options the first query resolves (spec.md §5: substitution rules are
// read-only and shared for the lifetime of the process).
var substitutionRules qbasher.SubstitutionRules

func loadSubstitutionRules(opts *qbasher.Options, log *slog.Logger) qbasher.SubstitutionRules {
	if substitutionRules != nil || opts.FileSubstitutionRules == "" {
		return substitutionRules
	}
	data, err := os.ReadFile(opts.FileSubstitutionRules)
	if err != nil {
		log.Warn("could not read substitution rules file", "path", opts.FileSubstitutionRules, "error", err)
		substitutionRules = qbasher.SubstitutionRules{}
		return substitutionRules
	}
	substitutionRules = qbasher.CompileSubstitutionRules(string(data), func(err error) {
		log.Warn("substitution rule dropped", "error", err)
	})
	return substitutionRules
}

var (
	configPath string
	indexDir   string
	debugLog   bool
)

// NewRootCmd builds the qbasherq root command and its subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qbasherq",
		Short: "Query a memory-mapped QBASHER-format autosuggest/classification index",
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML options file")
	cmd.PersistentFlags().StringVar(&indexDir, "index-dir", "", "index directory (overrides config's index_dir)")
	cmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "enable debug-level logging")

	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if debugLog {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	return log
}

func loadOptions() (*qbasher.Options, error) {
	var opts *qbasher.Options
	var err error
	if configPath != "" {
		opts, err = qbasher.LoadOptionsFile(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		opts = qbasher.DefaultOptions()
	}
	if indexDir != "" {
		opts.IndexDir = indexDir
	}
	return opts, nil
}

func openIndex(log *slog.Logger) (*qbasher.Index, *qbasher.Options, error) {
	opts, err := loadOptions()
	if err != nil {
		return nil, nil, err
	}
	idx, err := qbasher.OpenIndex(opts, log)
	if err != nil {
		return nil, nil, err
	}
	return idx, opts, nil
}
