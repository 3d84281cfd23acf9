package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmhtech/assetsync/pkg/config"
	"github.com/dmhtech/assetsync/pkg/logger"
	"github.com/dmhtech/assetsync/pkg/ratelimit"
	"github.com/dmhtech/assetsync/pkg/store"
	"github.com/dmhtech/assetsync/pkg/sync"
	"github.com/dmhtech/assetsync/pkg/sync/integrations/connectwise"
	"github.com/dmhtech/assetsync/pkg/sync/integrations/servicedesk"
)

var (
	cfgFile   string
	logOutput string
	debug     bool
)

var rootCmd = &cobra.Command{
	Use:   "assetsync",
	Short: "Reconcile monitoring-platform devices into the CMDB",
	Long: `assetsync pulls the device inventory from the monitoring platform,
matches it against the CMDB asset inventory, and creates or updates
assets so the CMDB reflects what is actually deployed.

Both inventories are cached in a local SQLite database, so planning
can be repeated without refetching and interrupted runs can resume.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "/etc/assetsync/sync.json",
		"path to the config file")
	rootCmd.PersistentFlags().StringVar(&logOutput, "log-output", "stderr",
		"log destination: stdout, stderr, or a file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runtime bundles everything a command needs once the config is loaded.
type runtime struct {
	cfg   sync.Config
	log   logger.Logger
	cache *store.Store
}

func (r *runtime) Close() {
	if err := r.cache.Close(); err != nil {
		r.log.Warn().Err(err).Msg("Failed to close cache database")
	}
}

// newRuntime loads and validates the config, sets up logging, and opens
// the cache database.
func newRuntime(ctx context.Context) (*runtime, error) {
	log, err := logger.New(logger.Config{Output: logOutput, Debug: debug})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	var cfg sync.Config
	if err := config.NewConfig(log).LoadAndValidate(ctx, cfgFile, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cache, err := store.New(cfg.CachePath, log)
	if err != nil {
		return nil, err
	}

	return &runtime{cfg: cfg, log: log, cache: cache}, nil
}

// newService wires the source and target clients behind circuit breakers
// and hands them to the sync service.
func (r *runtime) newService() *sync.Service {
	source := r.newSourceClient()
	target := r.newTargetClient()

	return sync.NewService(r.cfg, source, target, target, r.cache, r.log)
}

func (r *runtime) newSourceClient() *connectwise.Client {
	cfg := connectwise.Config{
		Endpoint:      r.cfg.Source.Endpoint,
		TokenEndpoint: r.cfg.Source.TokenEndpoint,
		ClientID:      r.cfg.Source.ClientID,
		ClientSecret:  r.cfg.Source.ClientSecret,
		PageSize:      r.cfg.Source.PageSize,
		MaxRetries:    r.cfg.Source.MaxRetries,
		Timeout:       time.Duration(r.cfg.Source.Timeout),
	}

	httpClient := r.wrapHTTPClient("connectwise", cfg.Timeout)
	auth := connectwise.NewOAuthAuthenticator(cfg, httpClient, r.log)

	return connectwise.NewClient(cfg, httpClient,
		connectwise.NewCachedTokenProvider(auth), ratelimit.New(r.cfg.RateLimit), r.log)
}

func (r *runtime) newTargetClient() *servicedesk.Client {
	cfg := servicedesk.Config{
		Endpoint:      r.cfg.Target.Endpoint,
		TokenEndpoint: r.cfg.Target.TokenEndpoint,
		ClientID:      r.cfg.Target.ClientID,
		ClientSecret:  r.cfg.Target.ClientSecret,
		RefreshToken:  r.cfg.Target.RefreshToken,
		PageSize:      r.cfg.Target.PageSize,
		MaxRetries:    r.cfg.Target.MaxRetries,
		DryRun:        r.cfg.DryRun,
		Timeout:       time.Duration(r.cfg.Target.Timeout),
	}

	httpClient := r.wrapHTTPClient("servicedesk", cfg.Timeout)
	auth := servicedesk.NewZohoAuthenticator(cfg, httpClient, r.log)

	return servicedesk.NewClient(cfg, httpClient,
		servicedesk.NewCachedTokenProvider(auth), ratelimit.New(r.cfg.RateLimit), r.log)
}

func (r *runtime) wrapHTTPClient(name string, timeout time.Duration) sync.HTTPClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return sync.NewCircuitBreakerHTTPClient(&http.Client{Timeout: timeout},
		name, r.cfg.CircuitBreaker, r.log)
}

// runService starts a run, prints progress to stderr as it arrives, and
// returns the final result.
func runService(ctx context.Context, svc *sync.Service, opts sync.RunOptions) sync.RunResult {
	progress, result := svc.Run(ctx, opts)

	for p := range progress {
		if p.Total > 0 && p.Done > 0 {
			fmt.Fprintf(os.Stderr, "[%s] %s (%d/%d)\n", p.Stage, p.Message, p.Done, p.Total)
		} else {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", p.Stage, p.Message)
		}
	}

	return <-result
}
