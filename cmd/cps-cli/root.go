package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pior/cps"
	"github.com/pior/cps/internal/config"
	"github.com/pior/cps/internal/logger"
	"github.com/pior/cps/request"
)

// options holds the global flags shared by every subcommand.
type options struct {
	configPath string
	servers    []string
	storage    string
	logLevel   string
	dryRun     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "cps-cli",
		Short: "Send requests to a search engine cluster",
		Long: `cps-cli builds one request per invocation, sends it to the server owning
the storage and prints the raw XML response.

Queries, listing policies and JSON documents are given as JSON objects.
Anything else is taken literally: a plain word query or a raw XML document.

Examples:
  # Print the document for a search without sending it
  cps-cli --dry-run search '{"title":"dune"}' --docs 5

  # Insert a document
  cps-cli --server localhost:5550 --storage library insert '<document><id>1</id></document>'

  # Build a request from a JSON template
  cps-cli --config cps.yaml raw search '{"query":"dune","docs":5}'`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	flags.StringSliceVarP(&opts.servers, "server", "s", nil, "Server address host:port (repeatable, overrides config)")
	flags.StringVar(&opts.storage, "storage", "", "Storage name (overrides config)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Print the request document without sending it")

	addCommands(rootCmd, opts)
	return rootCmd
}

// loadConfig layers flags over the config file and environment.
func (o *options) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if len(o.servers) > 0 {
		cfg.Servers = o.servers
	}
	if o.storage != "" {
		cfg.Storage = o.storage
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg, cfg.Validate()
}

// send prints the request in dry-run mode, otherwise sends it and prints the
// response body.
func (o *options) send(cmd *cobra.Command, req *request.Request) error {
	out := cmd.OutOrStdout()

	if o.dryRun {
		if err := request.WriteRequest(out, req); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out)
		return err
	}

	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	clientConfig := cps.Config{
		Storage:         cfg.Storage,
		DialTimeout:     cfg.DialTimeout,
		MaxResponseSize: cfg.MaxResponseSize,
		Logger:          log,
	}
	if cfg.CircuitBreaker.Enabled {
		clientConfig.NewCircuitBreaker = cps.NewCircuitBreakerConfig(
			cfg.CircuitBreaker.MaxRequests,
			cfg.CircuitBreaker.Interval,
			cfg.CircuitBreaker.Timeout,
		)
	}

	client, err := cps.NewClient(cps.NewStaticServers(cfg.Servers...), clientConfig)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	defer cancel()

	resp, err := client.Do(ctx, req)
	if err != nil {
		return err
	}
	log.Info("response received",
		zap.String("command", req.Command.String()),
		zap.String("server", resp.Server),
		zap.Duration("duration", resp.Duration),
	)

	if _, err := out.Write(resp.Body); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out)
	return err
}
