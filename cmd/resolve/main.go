// Package main provides the stand-alone match resolver entry point. It
// runs the resolution tiers without metrics collection or polling and
// emits a single match id event.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cs2tools/live-winprob/internal/config"
	"github.com/cs2tools/live-winprob/internal/emitter"
	"github.com/cs2tools/live-winprob/internal/faceit"
	"github.com/cs2tools/live-winprob/internal/logger"
	"github.com/cs2tools/live-winprob/internal/resolver"
	"github.com/cs2tools/live-winprob/internal/transport"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	matchID    string
	jsonMode   bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
	rootCmd.Flags().StringVarP(&matchID, "match", "m", "", "Verify this match id instead of discovering one")
	rootCmd.Flags().BoolVar(&jsonMode, "json", false, "Emit a sentinel-prefixed JSON event")
}

var rootCmd = &cobra.Command{
	Use:     "resolve NICKNAME",
	Short:   "Resolve a FACEIT player's running CS2 match",
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

func run(cmd *cobra.Command, nickname string) error {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("match") {
		cfg.Resolver.ForcedMatchID = matchID
	}
	if cmd.Flags().Changed("json") {
		cfg.Output.JSON = jsonMode
	}
	if cfg.AWS.SecretsName != "" {
		if err := config.LoadSecretsFromAWS(cfg, cfg.AWS.Region, cfg.AWS.SecretsName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	emit := emitter.New(os.Stdout, cfg.Output.ResolveSentinel, cfg.Output.JSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clientCfg := transport.DefaultHTTPClientConfig()
	clientCfg.Timeout = cfg.RequestTimeout()
	clientCfg.MaxRetries = cfg.Faceit.RetryMax
	clientCfg.RetryWait = cfg.RetryWait()
	clientCfg.RateLimit = cfg.Faceit.RequestsPerSecond
	clientCfg.Burst = cfg.Faceit.Burst
	clientCfg.InsecureSkipVerify = cfg.Faceit.InsecureSkipVerify
	httpClient := transport.NewRateLimitedHTTPClient(clientCfg, appLog)
	defer httpClient.Close()

	cache := faceit.NewResponseCache(cfg.CacheTTL(), cfg.CacheCleanup())
	dataClient, err := faceit.NewClient(&cfg.Faceit, httpClient, cache, appLog)
	if err != nil {
		return err
	}
	webClient := faceit.NewWebClient(&cfg.Faceit, httpClient, appLog)

	res := resolver.NewResolver(dataClient, webClient, &cfg.Resolver, appLog)

	player, err := res.ResolvePlayer(ctx, nickname)
	if err != nil {
		return fail(emit, cfg.Output.JSON, err)
	}
	info, err := res.ResolveMatch(ctx, player)
	if err != nil {
		return fail(emit, cfg.Output.JSON, err)
	}

	event := emitter.MatchResolved{
		OK:       true,
		Nickname: player.Nickname,
		PlayerID: player.ID,
		SteamID:  player.SteamID(cfg.Faceit.Game),
		MatchID:  info.MatchID,
		Status:   info.Match.String("status"),
		Method:   info.Method,
		RoomURL:  fmt.Sprintf("https://www.faceit.com/en/%s/room/%s", cfg.Faceit.Game, info.MatchID),
	}
	if err := emit.Emit(event); err != nil {
		return err
	}

	if !cfg.Output.JSON {
		fmt.Printf("Match:  %s (%s)\n", event.MatchID, event.Method)
		if event.Status != "" {
			fmt.Printf("Status: %s\n", event.Status)
		}
		fmt.Printf("Room:   %s\n", event.RoomURL)
	}
	return nil
}

// fail emits the error shape in JSON mode before surfacing the error
func fail(emit *emitter.Emitter, jsonMode bool, err error) error {
	if jsonMode {
		if emitErr := emit.EmitError(err); emitErr != nil {
			return emitErr
		}
	}
	return err
}
