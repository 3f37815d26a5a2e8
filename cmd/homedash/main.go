package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/luki/homedash/internal/api"
	"github.com/luki/homedash/internal/chat"
	"github.com/luki/homedash/internal/config"
	"github.com/luki/homedash/internal/live"
	"github.com/luki/homedash/internal/logging"
	"github.com/luki/homedash/internal/monitor"
	"github.com/luki/homedash/internal/settings"
	"github.com/luki/homedash/internal/store"
)

var version = "dev"

type flags struct {
	apiBase string
	live    bool
	sim     bool
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	var f flags
	dash := &cobra.Command{
		Use:   "dash",
		Short: "Run the terminal dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDash(cmd, f)
		},
	}
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve readings, device control and the sensor stream over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, f)
		},
	}

	root := &cobra.Command{
		Use:   "homedash",
		Short: "Smart-home sensor dashboard",
		Long: `homedash shows light, humidity and temperature readings with
colour-coded status, lets you control the blinds and fan, and forwards
questions to the home assistant API.

Readings are simulated unless live mode is selected, in which case they
are streamed from {api}/api/v1/sensors/stream.`,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDash(cmd, f)
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&f.apiBase, "api", "", "API base URL (saved for later runs)")
	root.PersistentFlags().BoolVar(&f.live, "live", false, "use the live sensor stream (saved for later runs)")
	root.PersistentFlags().BoolVar(&f.sim, "sim", false, "use simulated readings (saved for later runs)")
	root.MarkFlagsMutuallyExclusive("live", "sim")
	root.AddCommand(dash, serve)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadSettings reads saved settings and applies and persists flag overrides.
func loadSettings(cfg config.Config, f flags) (*settings.File, settings.Settings, error) {
	file, err := settings.Open(cfg.SettingsFile)
	if err != nil {
		return nil, settings.Settings{}, err
	}
	s, err := file.Load()
	if err != nil {
		return nil, settings.Settings{}, err
	}

	changed := false
	if f.apiBase != "" {
		s.APIBase = f.apiBase
		changed = true
	}
	if f.live || f.sim {
		s.UseLive = f.live
		changed = true
	}
	if changed {
		if err := file.Save(s); err != nil {
			return nil, settings.Settings{}, fmt.Errorf("save settings: %w", err)
		}
	}
	return file, s, nil
}

func newStore(cfg config.Config, s settings.Settings, log *logging.Logger) *store.Store {
	client := live.NewClient(log.Logger)
	client.RetryDelay = cfg.RetryDelay
	return store.New(s,
		store.WithInterval(cfg.TickInterval),
		store.WithStreamer(client),
		store.WithLogger(log.Logger),
	)
}

func runDash(cmd *cobra.Command, f flags) error {
	cfg := config.FromEnv()

	log, err := logging.New(cfg.LogLevel, cfg.LogFile, false)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer log.Close()

	file, s, err := loadSettings(cfg, f)
	if err != nil {
		return err
	}
	log.Info("dashboard_starting", "api", s.APIBase, "live", s.UseLive, "settings", file.Path())

	st := newStore(cfg, s, log)
	defer st.Close()

	client := chat.NewClient(s.APIBase, log.Logger)
	return monitor.Run(monitor.Deps{
		Store:      st,
		Settings:   file,
		Chat:       chat.NewSession(client),
		ChatClient: client,
		Log:        log.Logger,
	})
}

func runServe(cmd *cobra.Command, f flags) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.FromEnv()

	log, err := logging.New(cfg.LogLevel, cfg.LogFile, true)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer log.Close()

	_, s, err := loadSettings(cfg, f)
	if err != nil {
		return err
	}

	st := newStore(cfg, s, log)
	defer st.Close()

	srv := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           api.Handler(&api.Server{Store: st, Log: log.Logger, Keepalive: cfg.KeepaliveEvery}, os.Stdout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("http_listening", "addr", cfg.BindAddr, "mode", st.Mode().String())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("http_shutdown")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		// open sensor streams never go idle
		log.Warn("http_shutdown_forced", "error", err)
		return srv.Close()
	}
	return nil
}
