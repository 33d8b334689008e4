// Package main provides the live win probability analyzer entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cs2tools/live-winprob/internal/config"
	"github.com/cs2tools/live-winprob/internal/display"
	"github.com/cs2tools/live-winprob/internal/emitter"
	"github.com/cs2tools/live-winprob/internal/faceit"
	"github.com/cs2tools/live-winprob/internal/logger"
	"github.com/cs2tools/live-winprob/internal/metrics"
	"github.com/cs2tools/live-winprob/internal/probability"
	"github.com/cs2tools/live-winprob/internal/resolver"
	"github.com/cs2tools/live-winprob/internal/schedule"
	"github.com/cs2tools/live-winprob/internal/score"
	"github.com/cs2tools/live-winprob/internal/session"
	"github.com/cs2tools/live-winprob/internal/stats"
	"github.com/cs2tools/live-winprob/internal/transport"
	"github.com/cs2tools/live-winprob/internal/widget"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile  string
	matchID     string
	once        bool
	jsonMode    bool
	interval    int
	target      int
	lookback    int
	insecure    bool
	widgetAddr  string
	metricsAddr string
	verbose     bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
	rootCmd.Flags().StringVarP(&matchID, "match", "m", "", "Skip resolution and analyze this match id")
	rootCmd.Flags().BoolVar(&once, "once", false, "Poll a single time and exit")
	rootCmd.Flags().BoolVar(&jsonMode, "json", false, "Emit sentinel-prefixed JSON events")
	rootCmd.Flags().IntVar(&interval, "interval", 0, "Polling interval in seconds")
	rootCmd.Flags().IntVar(&target, "target", 0, "Rounds needed to win the match")
	rootCmd.Flags().IntVar(&lookback, "lookback", 0, "Recent matches per player to aggregate")
	rootCmd.Flags().BoolVar(&insecure, "insecure", false, "Skip TLS certificate verification")
	rootCmd.Flags().StringVar(&widgetAddr, "widget-addr", "", "Serve widget websocket events on this address")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

var rootCmd = &cobra.Command{
	Use:     "winprob NICKNAME",
	Short:   "Live FACEIT CS2 win probability analyzer",
	Long:    `Resolves a FACEIT player's running CS2 match, rates both rosters from recent form, and polls the live score to keep a win probability estimate current until the match ends.`,
	Args:    cobra.ExactArgs(1),
	Version: fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return run(cmd, args[0])
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// loadConfig layers defaults, the optional config file, flag overrides,
// and the AWS secrets overlay
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("match") {
		cfg.Resolver.ForcedMatchID = matchID
	}
	if flags.Changed("once") {
		cfg.Polling.Once = once
	}
	if flags.Changed("json") {
		cfg.Output.JSON = jsonMode
	}
	if flags.Changed("interval") {
		cfg.Polling.IntervalSeconds = interval
	}
	if flags.Changed("target") {
		cfg.Model.RoundTarget = target
	}
	if flags.Changed("lookback") {
		cfg.Stats.Lookback = lookback
	}
	if flags.Changed("insecure") {
		cfg.Faceit.InsecureSkipVerify = insecure
	}
	if flags.Changed("widget-addr") {
		cfg.Widget.Addr = widgetAddr
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Enabled = true
	}
	if verbose {
		cfg.App.LogLevel = "debug"
	}

	if cfg.AWS.SecretsName != "" {
		if err := config.LoadSecretsFromAWS(cfg, cfg.AWS.Region, cfg.AWS.SecretsName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// httpClient builds one rate-limited client from the upstream config
func httpClient(cfg *config.Config, appLog *logrus.Logger) *transport.RateLimitedHTTPClient {
	clientCfg := transport.DefaultHTTPClientConfig()
	clientCfg.Timeout = cfg.RequestTimeout()
	clientCfg.MaxRetries = cfg.Faceit.RetryMax
	clientCfg.RetryWait = cfg.RetryWait()
	clientCfg.RateLimit = cfg.Faceit.RequestsPerSecond
	clientCfg.Burst = cfg.Faceit.Burst
	clientCfg.InsecureSkipVerify = cfg.Faceit.InsecureSkipVerify

	return transport.NewRateLimitedHTTPClient(clientCfg, appLog)
}

func run(cmd *cobra.Command, nickname string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
		"nickname":    nickname,
	}).Info("Live win probability analyzer starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The data and web gateways get separate clients so neither can
	// starve the other's rate budget
	dataHTTP := httpClient(cfg, appLog)
	webHTTP := httpClient(cfg, appLog)
	defer dataHTTP.Close()
	defer webHTTP.Close()

	cache := faceit.NewResponseCache(cfg.CacheTTL(), cfg.CacheCleanup())
	dataClient, err := faceit.NewClient(&cfg.Faceit, dataHTTP, cache, appLog)
	if err != nil {
		return err
	}
	webClient := faceit.NewWebClient(&cfg.Faceit, webHTTP, appLog)

	emit := emitter.New(os.Stdout, cfg.Output.Sentinel, cfg.Output.JSON)
	renderOut := io.Writer(os.Stdout)
	if cfg.Output.JSON {
		renderOut = io.Discard
	}
	renderer := display.NewRenderer(renderOut, cfg.Output.BarWidth)

	var hub *widget.Hub
	if cfg.Widget.Addr != "" {
		hub = widget.NewHub(appLog)
		if err := hub.Start(cfg.Widget.Addr); err != nil {
			return err
		}
		emit.AddSink(hub)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := hub.Shutdown(shutdownCtx); err != nil {
				appLog.WithError(err).Error("Widget hub shutdown failed")
			}
		}()
	}

	if cfg.Metrics.Enabled {
		addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
		if metricsAddr != "" {
			addr = metricsAddr
		}
		srv := metrics.NewServer(metrics.ServerConfig{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Commit:      GitCommit,
			Addr:        addr,
			Path:        cfg.Metrics.Path,
			Logger:      appLog,
		})
		if err := srv.Start(ctx); err != nil {
			return err
		}
		srv.SetReady(true)
		defer func() {
			if err := srv.Shutdown(); err != nil {
				appLog.WithError(err).Error("Metrics server shutdown failed")
			}
		}()
	}

	sched, err := startJobs(cfg, hub, appLog)
	if err != nil {
		return err
	}
	if sched != nil {
		defer func() {
			if err := sched.Stop(); err != nil {
				appLog.WithError(err).Error("Scheduler shutdown failed")
			}
		}()
	}

	sess := session.New(
		cfg,
		resolver.NewResolver(dataClient, webClient, &cfg.Resolver, appLog),
		stats.NewEngine(dataClient, &cfg.Stats, appLog),
		probability.NewEngine(&cfg.Model),
		score.NewFetcher(dataClient, webClient, appLog),
		emit,
		renderer,
		appLog,
	)

	if err := sess.Run(ctx, nickname); err != nil {
		if errors.Is(err, context.Canceled) {
			appLog.Info("Session cancelled, shutting down")
			return nil
		}
		if cfg.Output.JSON {
			if emitErr := emit.EmitError(err); emitErr != nil {
				appLog.WithError(emitErr).Error("Failed to emit error event")
			}
		}
		renderer.Error(err)
		cmd.SilenceErrors = true
		appLog.WithError(err).Error("Session failed")
		return err
	}

	appLog.Info("Session complete")
	return nil
}

// startJobs schedules the background housekeeping: widget keepalives and
// the API usage gauge refresh. The returned scheduler is nil when there
// is nothing to run.
func startJobs(cfg *config.Config, hub *widget.Hub, appLog *logrus.Logger) (*schedule.Scheduler, error) {
	sched := schedule.NewScheduler(appLog)
	jobs := 0

	if hub != nil && cfg.WidgetPingInterval() > 0 {
		if err := sched.ScheduleEvery(cfg.WidgetPingInterval(), "widget-keepalive", hub.PingClients); err != nil {
			return nil, err
		}
		jobs++
	}

	if cfg.Metrics.Enabled {
		if err := sched.ScheduleEvery(time.Minute, "cache-hit-ratio", func() {
			m := faceit.GetMetrics()
			total := m.CacheHits + m.CacheMisses
			if total > 0 {
				metrics.UpdateCacheHitRatio(float64(m.CacheHits) / float64(total))
			}
		}); err != nil {
			return nil, err
		}
		jobs++
	}

	if jobs == 0 {
		return nil, nil
	}
	if err := sched.Start(); err != nil {
		return nil, err
	}
	return sched, nil
}
