// Package main provides the CLI entry point for bencher, a micro-benchmark
// harness that runs one predefined workload per invocation and reports its
// wall-clock time.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/weiihann/bencher/harness"
	"github.com/weiihann/bencher/report"
	"github.com/weiihann/bencher/rng"
	"github.com/weiihann/bencher/script"
	"github.com/weiihann/bencher/workload"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	root := newRootCmd(logger, level)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// globalConfig holds the persistent flags shared by every workload command.
type globalConfig struct {
	seed       uint64
	outputJSON bool
	detail     bool
	configPath string
	gcPercent  int
	logLevel   string
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	cfg := &globalConfig{}

	root := &cobra.Command{
		Use:   "bencher",
		Short: "Micro-benchmark harness for data structure and runtime workloads",
		Long: `Bencher runs one predefined workload with tunable size parameters and
prints the elapsed wall-clock time. Random inputs are generated from a fixed
seed so runs are reproducible.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError(cmd, fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath()))
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return usageError(cmd, errors.New("a workload subcommand is required"))
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cfg.setup(cmd, logger, level)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetFlagErrorFunc(usageError)

	flags := root.PersistentFlags()
	flags.Uint64Var(&cfg.seed, "seed", rng.DefaultSeed,
		"Base seed for every random stream")
	flags.BoolVar(&cfg.outputJSON, "json", false,
		"Output the result as JSON instead of a text line")
	flags.BoolVar(&cfg.detail, "detail", false,
		"Append allocation counters to the text report")
	flags.StringVar(&cfg.configPath, "config", "",
		"Benchmark profile (.toml) supplying flag values; seeds above "+
			"2^63-1 must be quoted, e.g. seed = \"0xffff114514abcdef\"")
	flags.IntVar(&cfg.gcPercent, "gc-percent", 100,
		"Garbage collector target percentage (applied only when set)")
	flags.StringVar(&cfg.logLevel, "log-level", "info",
		"Log level: debug, info, warn, error")

	root.AddCommand(
		newParallelMapCmd(logger, cfg),
		newOrderedSetCmd(logger, cfg),
		newJSONParseCmd(logger, cfg),
		newHashSetCmd(logger, cfg),
		newSkipListCmd(logger, cfg),
		newActorCmd(logger, cfg),
		newScriptCmd(logger, cfg),
	)

	return root
}

func newParallelMapCmd(logger *slog.Logger, cfg *globalConfig) *cobra.Command {
	var baseSize, expandSize uint

	cmd := &cobra.Command{
		Use:     string(workload.KindParallelMap),
		Aliases: []string{"rayon"},
		Short:   "Benchmark parallel map, expand and filter",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkload(cmd, logger, cfg, workload.ParallelMapParams{
				BaseSize:   int(baseSize),
				ExpandSize: int(expandSize),
			})
		},
	}

	def := workload.DefaultParallelMap()

	flags := cmd.Flags()
	flags.UintVarP(&baseSize, "base-size", "b", uint(def.BaseSize),
		"Initial vector size")
	flags.UintVarP(&expandSize, "expand-size", "e", uint(def.ExpandSize),
		"Copies allocated per element in each subtask")

	return cmd
}

func newOrderedSetCmd(logger *slog.Logger, cfg *globalConfig) *cobra.Command {
	var p setFlags

	cmd := &cobra.Command{
		Use:     string(workload.KindOrderedSet),
		Aliases: []string{"btree"},
		Short:   "Benchmark ordered set insertion and deletion",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkload(cmd, logger, cfg, workload.OrderedSetParams{SetParams: p.params()})
		},
	}

	p.bind(cmd, workload.DefaultOrderedSet().SetParams)

	return cmd
}

func newJSONParseCmd(logger *slog.Logger, cfg *globalConfig) *cobra.Command {
	var iteration uint

	cmd := &cobra.Command{
		Use:     string(workload.KindJSONParse),
		Aliases: []string{"simdjson"},
		Short:   "Benchmark parsing the embedded JSON document",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkload(cmd, logger, cfg, workload.JSONParseParams{
				Iteration: int(iteration),
			})
		},
	}

	cmd.Flags().UintVarP(&iteration, "iteration", "t", uint(workload.DefaultJSONParse().Iteration),
		"Number of parses")

	return cmd
}

func newHashSetCmd(logger *slog.Logger, cfg *globalConfig) *cobra.Command {
	var p setFlags

	cmd := &cobra.Command{
		Use:     string(workload.KindHashSet),
		Aliases: []string{"hashbrown"},
		Short:   "Benchmark hash set insertion and deletion",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkload(cmd, logger, cfg, workload.HashSetParams{SetParams: p.params()})
		},
	}

	p.bind(cmd, workload.DefaultHashSet().SetParams)

	return cmd
}

func newSkipListCmd(logger *slog.Logger, cfg *globalConfig) *cobra.Command {
	var thread, insertion, deletion uint

	cmd := &cobra.Command{
		Use:   string(workload.KindSkipList),
		Short: "Benchmark a concurrent skip list shared by several goroutines",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkload(cmd, logger, cfg, workload.SkipListParams{
				Thread:    int(thread),
				Insertion: int(insertion),
				Deletion:  int(deletion),
			})
		},
	}

	def := workload.DefaultSkipList()

	flags := cmd.Flags()
	flags.UintVarP(&thread, "thread", "t", uint(def.Thread),
		"Number of worker goroutines")
	flags.UintVarP(&insertion, "insertion", "i", uint(def.Insertion),
		"Random insertions per phase and worker")
	flags.UintVarP(&deletion, "deletion", "d", uint(def.Deletion),
		"Random deletions per worker")

	return cmd
}

func newActorCmd(logger *slog.Logger, cfg *globalConfig) *cobra.Command {
	var iteration uint

	cmd := &cobra.Command{
		Use:     string(workload.KindActor),
		Aliases: []string{"xactor"},
		Short:   "Benchmark actor start and message round trips",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkload(cmd, logger, cfg, workload.ActorParams{
				Iteration: int(iteration),
			})
		},
	}

	cmd.Flags().UintVarP(&iteration, "iteration", "t", uint(workload.DefaultActor().Iteration),
		"Number of actors started, one message each")

	return cmd
}

func newScriptCmd(logger *slog.Logger, cfg *globalConfig) *cobra.Command {
	var opts script.Options

	cmd := &cobra.Command{
		Use:     string(workload.KindScript),
		Aliases: []string{"tremor"},
		Short:   "Benchmark the embedded Tcl script engine",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := script.Prepare(logger, opts)
			if err != nil {
				return fmt.Errorf("prepare script: %w", err)
			}

			return runBody(cmd, logger, cfg, workload.KindScript, opts, body)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.LibDir, "lib-dir", script.DefaultLibDir,
		"Directory of .tcl library files loaded before the bench script")
	flags.StringVar(&opts.File, "file", "",
		"Bench script to run instead of the embedded one")

	return cmd
}

// setFlags binds the flags shared by the ordered-set and hash-set commands.
type setFlags struct {
	iteration, insertion, deletion uint
}

func (s *setFlags) bind(cmd *cobra.Command, def workload.SetParams) {
	flags := cmd.Flags()
	flags.UintVarP(&s.iteration, "iteration", "t", uint(def.Iteration),
		"Number of insert/delete rounds")
	flags.UintVarP(&s.insertion, "insertion", "i", uint(def.Insertion),
		"Random insertions per round")
	flags.UintVarP(&s.deletion, "deletion", "d", uint(def.Deletion),
		"Random deletions per round")
}

func (s *setFlags) params() workload.SetParams {
	return workload.SetParams{
		Iteration: int(s.iteration),
		Insertion: int(s.insertion),
		Deletion:  int(s.deletion),
	}
}

func (c *globalConfig) setup(cmd *cobra.Command, logger *slog.Logger, level *slog.LevelVar) error {
	if c.configPath != "" {
		prof, err := loadProfile(c.configPath)
		if err != nil {
			return err
		}

		if err := prof.apply(cmd); err != nil {
			return err
		}
	}

	if err := level.UnmarshalText([]byte(c.logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.logLevel, err)
	}

	if cmd.Flags().Changed("gc-percent") {
		prev := debug.SetGCPercent(c.gcPercent)
		logger.Debug("gc percent set",
			slog.Int("gc_percent", c.gcPercent),
			slog.Int("previous", prev),
		)
	}

	return nil
}

func runWorkload(cmd *cobra.Command, logger *slog.Logger, cfg *globalConfig, params workload.Params) error {
	body, err := workload.Prepare(cfg.seed, params)
	if err != nil {
		return fmt.Errorf("prepare %s: %w", params.Kind(), err)
	}

	return runBody(cmd, logger, cfg, params.Kind(), params, body)
}

func runBody(
	cmd *cobra.Command,
	logger *slog.Logger,
	cfg *globalConfig,
	kind workload.Kind,
	params any,
	body workload.Body,
) error {
	runner := harness.NewRunner(string(kind), cfg.seed, params, logger)

	res, err := runner.Run(cmd.Context(), body)
	if err != nil {
		return err
	}

	return cfg.report(cmd.OutOrStdout(), *res)
}

func (c *globalConfig) report(w io.Writer, res harness.Result) error {
	var err error

	switch {
	case c.outputJSON:
		err = report.GenerateJSON(w, res)
	case c.detail:
		err = report.GenerateDetail(w, res)
	default:
		err = report.Generate(w, res)
	}

	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return usageError(cmd, err)
	}

	return nil
}

// usageError prints the command usage to stderr and returns err unchanged.
func usageError(cmd *cobra.Command, err error) error {
	cmd.PrintErr(cmd.UsageString())

	return err
}
