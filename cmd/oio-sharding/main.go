package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/open-io/oio-sharding/pkg/config"
	"github.com/open-io/oio-sharding/pkg/models/shards"
	"github.com/open-io/oio-sharding/pkg/oiolog"
	"github.com/open-io/oio-sharding/pkg/sharding"
)

var (
	cfgPath string

	proxyURL    string
	namespace   string
	logLevel    string
	prettyLog   bool
	concurrency int
	drainQueue  bool

	shardsArg    string
	enableShards bool
)

var rootCmd = &cobra.Command{
	Use:   "oio-sharding --config `path-to-config`",
	Short: "oio-sharding",
	Long:  "Shard OpenIO containers through the oio-proxy",
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

// loadConfig reads the config file, if any, then applies the flags set on
// the command line over it.
func loadConfig(cmd *cobra.Command) error {
	if cfgPath != "" {
		cfgStr, err := config.LoadShardingCfg(cfgPath)
		if err != nil {
			return errors.Wrapf(err, "failed to load config %s", cfgPath)
		}
		oiolog.Zero.Debug().Str("config", cfgStr).Msg("config loaded")
	}
	cfg := config.ShardingConfig()

	flags := cmd.Flags()
	if flags.Changed("proxy") {
		cfg.ProxyURL = proxyURL
	}
	if flags.Changed("namespace") {
		cfg.Namespace = namespace
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("pretty") {
		cfg.PrettyLog = prettyLog
	}
	if flags.Changed("concurrency") {
		cfg.CreateConcurrency = concurrency
	}
	if flags.Changed("drain") {
		drain := drainQueue
		cfg.DrainQueue = &drain
	}
	cfg.Defaults()

	if cfg.ProxyURL == "" {
		return fmt.Errorf("no proxy URL configured")
	}
	if cfg.Namespace == "" {
		return fmt.Errorf("no namespace configured")
	}

	oiolog.ReloadLogger(cfg.LogFile, cfg.LogLevel, cfg.PrettyLog)
	return nil
}

var showCmd = &cobra.Command{
	Use:   "show ACCOUNT CONTAINER",
	Short: "list the shards of a container",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cs, err := sharding.NewFromConfig(config.ShardingConfig())
		if err != nil {
			return err
		}
		ranges, err := cs.ShowShards(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if ranges == nil {
			ranges = []shards.ShardRange{}
		}
		return printJSON(cmd.OutOrStdout(), ranges)
	},
}

var findCmd = &cobra.Command{
	Use:   "find ACCOUNT CONTAINER PATH",
	Short: "tell which shard holds an object",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cs, err := sharding.NewFromConfig(config.ShardingConfig())
		if err != nil {
			return err
		}
		ranges, err := cs.ShowShards(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		sr, ok := shards.FindShard(ranges, args[2])
		if !ok {
			return fmt.Errorf("no shard holds %q in %s/%s", args[2], args[0], args[1])
		}
		return printJSON(cmd.OutOrStdout(), sr)
	},
}

type replaceResult struct {
	State     string              `json:"state"`
	Timestamp int64               `json:"timestamp"`
	QueueURL  string              `json:"queue_url"`
	Events    int                 `json:"events"`
	Shards    []shards.ShardRange `json:"shards"`
}

var replaceCmd = &cobra.Command{
	Use:   "replace ACCOUNT CONTAINER --shards `file|json`",
	Short: "split a container into the given shards",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readShards(cmd.InOrStdin(), shardsArg)
		if err != nil {
			return err
		}
		candidates, err := shards.ParseCandidates(data)
		if err != nil {
			return err
		}

		cs, err := sharding.NewFromConfig(config.ShardingConfig())
		if err != nil {
			return err
		}
		op, err := cs.ReplaceShards(cmd.Context(), args[0], args[1], candidates, enableShards)
		if err != nil {
			oiolog.Zero.Error().
				Err(err).
				Str("state", op.State().String()).
				Msg("sharding failed")
			return err
		}
		return printJSON(cmd.OutOrStdout(), replaceResult{
			State:     op.State().String(),
			Timestamp: op.Timestamp,
			QueueURL:  op.QueueURL,
			Events:    op.Events,
			Shards:    op.Shards,
		})
	},
}

// readShards returns the shard description given inline, from stdin ("-")
// or from a file.
func readShards(stdin io.Reader, arg string) ([]byte, error) {
	switch {
	case arg == "":
		return nil, fmt.Errorf("--shards is required")
	case arg == "-":
		return io.ReadAll(stdin)
	case strings.HasPrefix(strings.TrimSpace(arg), "["):
		return []byte(arg), nil
	default:
		return os.ReadFile(arg)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&proxyURL, "proxy", "", "oio-proxy address")
	rootCmd.PersistentFlags().StringVarP(&namespace, "namespace", "n", "", "OpenIO namespace")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level")
	rootCmd.PersistentFlags().BoolVar(&prettyLog, "pretty", false, "human readable logs")

	replaceCmd.Flags().StringVarP(&shardsArg, "shards", "s", "", "shard ranges, inline JSON, a file or - for stdin")
	replaceCmd.Flags().BoolVar(&enableShards, "enable", false, "enable sharding on a container that has no shard yet")
	replaceCmd.Flags().IntVar(&concurrency, "concurrency", config.DefaultCreateConcurrency, "number of shards created in parallel")
	replaceCmd.Flags().BoolVar(&drainQueue, "drain", config.DefaultDrainQueue, "consume the work queue while replacing")

	rootCmd.AddCommand(showCmd, findCmd, replaceCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		oiolog.Zero.Error().Err(err).Msg("")
		os.Exit(1)
	}
}
