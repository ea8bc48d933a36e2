// Package cli implements the dispatch command line tool: a workbench for
// the constraint mini-language and a demo of predicative dispatch.
package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/predicated/dispatch/internal/config"
	"github.com/predicated/dispatch/internal/constraint"
	"github.com/predicated/dispatch/internal/evaluator"
	"github.com/predicated/dispatch/internal/parser"
	"github.com/predicated/dispatch/internal/typesystem"
	"github.com/predicated/dispatch/pkg/dispatch"
)

type options struct {
	configPath string
	logLevel   string
}

// Execute runs the root command; it is the entry point used by
// cmd/dispatch.
func Execute() int {
	opts := &options{}

	root := &cobra.Command{
		Use:           "dispatch",
		Short:         "Predicated multiple-dispatch workbench",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to YAML config")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error, disabled)")

	root.AddCommand(newParseCmd(opts))
	root.AddCommand(newEvalCmd(opts))
	root.AddCommand(newDemoCmd(opts))
	root.AddCommand(newDescribeCmd(opts))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

// setup loads config (if given), builds the type registry and the logger.
func setup(opts *options) (*config.Config, *typesystem.Registry, zerolog.Logger, error) {
	cfg := &config.Config{}
	cfg.SetDefaults()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, nil, zerolog.Nop(), err
		}
		cfg = loaded
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	types, err := cfg.BuildTypes()
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}
	var log zerolog.Logger
	if cfg.Logging.Pretty || isatty.IsTerminal(os.Stderr.Fd()) {
		writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		log = zerolog.New(writer).Level(level).With().Timestamp().Logger()
	} else {
		log = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}
	return cfg, types, log, nil
}

func newParseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <annotation>...",
		Short: "Parse annotation strings into (type, predicate) pairs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, types, _, err := setup(opts)
			if err != nil {
				return err
			}
			for _, raw := range args {
				p := constraint.Parse(raw, types)
				fmt.Fprintf(cmd.OutOrStdout(), "%-30q type=%-20s predicate=%q\n",
					raw, p.Types.String(), p.Pred.Source)
			}
			return nil
		},
	}
}

func newEvalCmd(opts *options) *cobra.Command {
	var binds []string
	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate a predicate expression against --bind name=value pairs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, _, err := setup(opts); err != nil {
				return err
			}
			expr, err := parser.Parse(args[0])
			if err != nil {
				return err
			}
			env := evaluator.NewEnvironment()
			for _, b := range binds {
				name, val, err := parseBinding(b)
				if err != nil {
					return err
				}
				env.Set(name, val)
			}
			result := evaluator.Eval(expr, env)
			if e, ok := result.(*evaluator.Error); ok {
				return fmt.Errorf("%s", e.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Inspect())
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&binds, "bind", "b", nil, "binding name=value (int, float, bool or string)")
	return cmd
}

// parseBinding reads name=value, guessing the value's type the way a shell
// user expects: int, then float, then bool, else string.
func parseBinding(s string) (string, evaluator.Object, error) {
	idx := strings.Index(s, "=")
	if idx <= 0 {
		return "", nil, fmt.Errorf("invalid binding %q, want name=value", s)
	}
	name, raw := s[:idx], s[idx+1:]
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return name, &evaluator.Integer{Value: v}, nil
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return name, &evaluator.Float{Value: v}, nil
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		return name, evaluator.FromGo(v), nil
	}
	return name, &evaluator.String{Value: raw}, nil
}

func newDescribeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Dump the demo dispatcher's registry as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, types, log, err := setup(opts)
			if err != nil {
				return err
			}
			d, err := NewDemoDispatcher(types, log)
			if err != nil {
				return err
			}
			out, err := dispatch.NewReport(d).Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newDemoCmd(opts *options) *cobra.Command {
	var limit int64
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the primality classification demo",
		Long: "Registers small-range and large-range primality checks under one\n" +
			"dispatch name and classifies a sample of integers through it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, types, log, err := setup(opts)
			if err != nil {
				return err
			}
			d, err := NewDemoDispatcher(types, log)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), dispatch.Describe(d))
			fmt.Fprintln(cmd.OutOrStdout(), dispatch.Summary(d))

			samples := []int64{2, 3, 4, 17, 561, 7919, 65537, 100003, 2147483647}
			sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
			for _, n := range samples {
				if n > limit {
					break
				}
				verdict, err := d.Call("isPrime", n)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "isPrime(%d) = %v\n", n, verdict)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&limit, "limit", 1<<62, "skip samples above this value")
	return cmd
}
