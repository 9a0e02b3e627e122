package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lineguard/internal/agent"
	"github.com/sells-group/lineguard/internal/model"
	"github.com/sells-group/lineguard/pkg/anthropic"
)

var (
	inspectBagNumber int
	inspectProduct   string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <image>",
	Short: "Run one bag image through the inspection pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		image, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "read image")
		}

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		ai := anthropic.NewClient(cfg.Anthropic.Key)
		a := agent.New(ai, store, cfg, logCallbacks())

		meta := model.CallerMetadata{
			BagNumber:       inspectBagNumber,
			ExpectedProduct: model.ProductType(inspectProduct),
		}
		decision, err := a.Run(ctx, image, meta)
		if err != nil {
			return err
		}

		persistIfFailed(ctx, store, decision, inspectBagNumber)

		out, err := json.MarshalIndent(decision, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal decision")
		}
		cmd.Println(string(out))
		return nil
	},
}

// logCallbacks reports step progress through the logger; used by the CLI
// commands where there is no stream to write to.
func logCallbacks() agent.Callbacks {
	return agent.Callbacks{
		OnStep: func(step model.Step) {
			zap.L().Info("step",
				zap.String("id", step.ID),
				zap.String("status", string(step.Status)),
				zap.Int64("duration_ms", step.Duration),
			)
		},
	}
}

func init() {
	inspectCmd.Flags().IntVar(&inspectBagNumber, "bag", 0, "bag number for logging and incident records")
	inspectCmd.Flags().StringVar(&inspectProduct, "product", "", "expected product type (enables marking checks)")
	rootCmd.AddCommand(inspectCmd)
}
