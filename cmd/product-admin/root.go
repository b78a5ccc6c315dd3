package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/product-admin/internal/config"
	"github.com/Sternrassler/product-admin/pkg/client"
	"github.com/Sternrassler/product-admin/pkg/logging"
)

// rootOptions holds the loaded configuration and the flag values that
// override it.
type rootOptions struct {
	cfg *config.Config

	apiURL      string
	redisURL    string
	userAgent   string
	logLevel    string
	logPretty   bool
	timeout     time.Duration
	maxAttempts int
	port        int
}

// newRootCmd creates the product-admin command tree.
func newRootCmd() *cobra.Command {
	return newRootCmdWithOptions(&rootOptions{})
}

// newRootCmdWithOptions creates the command tree around opts, which holds
// the resolved configuration once a subcommand runs.
func newRootCmdWithOptions(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "product-admin",
		Short:         "Admin product list",
		Long:          "product-admin lists the products of the products API in pages of ten, as a web page or in the terminal.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Parse()
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			opts.cfg = cfg

			logging.Setup(logging.Config{
				Level:  logging.LogLevel(cfg.LogLevel),
				Pretty: cfg.LogPretty,
				Output: cmd.ErrOrStderr(),
			})
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api-url", "", "products API base URL (env PRODUCTS_API_URL)")
	flags.StringVar(&opts.redisURL, "redis-url", "", "Redis address or URL for the shared quota gate (env REDIS_URL)")
	flags.StringVar(&opts.userAgent, "user-agent", "", "User-Agent sent to the products API (env USER_AGENT)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (env LOG_LEVEL)")
	flags.BoolVar(&opts.logPretty, "log-pretty", false, "human-readable console logs (env LOG_PRETTY)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "timeout per products API attempt (env REQUEST_TIMEOUT)")
	flags.IntVar(&opts.maxAttempts, "max-attempts", 0, "attempts per fetch including the first (env MAX_ATTEMPTS)")

	cmd.AddCommand(newServeCmd(opts), newBrowseCmd(opts))
	return cmd
}

// apply copies explicitly set flags over cfg.
func (o *rootOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = o.apiURL
	}
	if flags.Changed("redis-url") {
		cfg.RedisURL = o.redisURL
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent = o.userAgent
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-pretty") {
		cfg.LogPretty = o.logPretty
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout = o.timeout
	}
	if flags.Changed("max-attempts") {
		cfg.MaxAttempts = o.maxAttempts
	}
	if flags.Changed("port") {
		cfg.Port = o.port
	}
}

// newClient builds the products API client and, when configured, the
// Redis client backing its quota gate. The Redis client is nil otherwise.
func newClient(ctx context.Context, cfg *config.Config) (*client.Client, *redis.Client, error) {
	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisOpts, err := cfg.RedisOptions()
		if err != nil {
			return nil, nil, err
		}
		redisClient = redis.NewClient(redisOpts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			redisClient.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", redisOpts.Addr, err)
		}
	}

	clientCfg := client.DefaultConfig(cfg.APIURL, cfg.UserAgent)
	clientCfg.Redis = redisClient
	clientCfg.Timeout = cfg.RequestTimeout
	clientCfg.MaxAttempts = cfg.MaxAttempts

	c, err := client.New(clientCfg)
	if err != nil {
		if redisClient != nil {
			redisClient.Close()
		}
		return nil, nil, fmt.Errorf("create products client: %w", err)
	}
	return c, redisClient, nil
}
