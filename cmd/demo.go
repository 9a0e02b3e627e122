package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/lineguard/internal/agent"
	"github.com/sells-group/lineguard/internal/scenario"
	"github.com/sells-group/lineguard/pkg/anthropic"
)

var (
	demoCatalogPath string
	demoLoops       int
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the scenario catalog as a simulated production sequence",
	Long:  "Walks the scenario catalog one bag at a time at the configured line rate, inspecting each image and recording incidents for failed bags.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		catalogPath := demoCatalogPath
		if catalogPath == "" {
			catalogPath = cfg.Demo.CatalogPath
		}
		catalog, err := scenario.Load(catalogPath)
		if err != nil {
			return err
		}

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		ai := anthropic.NewClient(cfg.Anthropic.Key)
		a := agent.New(ai, store, cfg, logCallbacks())

		// One bag at a time, paced at the configured line rate.
		limiter := rate.NewLimiter(rate.Limit(cfg.Demo.BagsPerMin/60.0), 1)

		for loop := 0; loop < demoLoops; loop++ {
			for _, sc := range catalog.Scenarios {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}

				image, err := sc.ReadImage()
				if err != nil {
					zap.L().Error("demo: scenario image unavailable",
						zap.String("scenario", sc.Name),
						zap.Error(err),
					)
					continue
				}

				zap.L().Info("demo: inspecting bag",
					zap.String("scenario", sc.Name),
					zap.Int("bag_number", sc.BagNumber),
				)

				decision, err := a.Run(ctx, image, sc.Metadata())
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					zap.L().Error("demo: inspection failed",
						zap.String("scenario", sc.Name),
						zap.Error(err),
					)
					continue
				}

				persistIfFailed(ctx, store, decision, sc.BagNumber)

				zap.L().Info("demo: bag inspected",
					zap.String("scenario", sc.Name),
					zap.String("status", string(decision.Status)),
					zap.String("reason", decision.Reason),
				)
			}
		}

		return nil
	},
}

func init() {
	demoCmd.Flags().StringVar(&demoCatalogPath, "catalog", "", "scenario catalog YAML (default from config, built-ins when unset)")
	demoCmd.Flags().IntVar(&demoLoops, "loops", 1, "number of passes over the catalog")
	rootCmd.AddCommand(demoCmd)
}
