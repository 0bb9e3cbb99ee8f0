package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"spendgate/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP authorization gateway",
		Long: `Start the HTTP server that intercepts proposed agent purchases and
renders ALLOW or BLOCK verdicts against the configured spending policy.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := slog.Default()
			started := time.Now()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			classifier, closeClassifier, err := newClassifier(logger)
			if err != nil {
				return err
			}
			if closeClassifier != nil {
				defer closeClassifier()
			}

			eng, ldg := newEngine(store, classifier, logger)

			cfg := server.DefaultConfig()
			if addr := viper.GetString("server.addr"); addr != "" {
				cfg.Addr = addr
			}
			if d := viper.GetDuration("server.read_timeout"); d > 0 {
				cfg.ReadTimeout = d
			}
			if d := viper.GetDuration("server.write_timeout"); d > 0 {
				cfg.WriteTimeout = d
			}
			if d := viper.GetDuration("server.shutdown_timeout"); d > 0 {
				cfg.ShutdownTimeout = d
			}

			srv := server.New(cfg, eng, store, ldg, logger)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Start(gctx)
			})

			logger.Info("spendgate gateway started",
				"addr", cfg.Addr,
				"classifier", viper.GetString("classifier.strategy"))

			err = g.Wait()
			logger.Info("spendgate gateway stopped", "uptime", time.Since(started))
			return err
		},
	}

	cmd.Flags().String("addr", "", "listen address (overrides config)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}
