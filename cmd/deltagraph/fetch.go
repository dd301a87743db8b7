package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgnsrekt/deltagraph/internal/market"
	"github.com/dgnsrekt/deltagraph/internal/series"
)

func fetchCmd() *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "fetch IDENTIFIER",
		Short: "Print the chart payload for an option contract",
		Long: `Run the same pipeline as GET /get-option-data and print the JSON payload.

Examples:
  # Fetch from the configured provider
  deltagraph fetch AAPL250620C00150000

  # Replay a captured snapshot
  DELTAGRAPH_PROVIDER_KIND=file deltagraph fetch AAPL250620C00150000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			provider, err := market.New(cfg.Provider, logger)
			if err != nil {
				return err
			}

			svc := series.NewService(provider, cfg.Series.HistoryDays, logger)

			enc := json.NewEncoder(os.Stdout)
			if pretty {
				enc.SetIndent("", "  ")
			}

			result, err := svc.Build(cmd.Context(), args[0])
			if err != nil {
				logger.Debug("fetch failed", zap.Error(err))
				_ = enc.Encode(map[string]string{"error": series.Message(err)})
				return err
			}

			return enc.Encode(result)
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")

	return cmd
}
