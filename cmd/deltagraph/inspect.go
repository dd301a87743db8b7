package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/deltagraph/internal/contract"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect IDENTIFIER",
		Short: "Decode an option contract identifier",
		Long: `Decode an OCC-style identifier into root, expiry, type and strike, and show
the underlying symbol the chart endpoint would request.

Examples:
  deltagraph inspect AAPL250620C00150000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := contract.Parse(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Identifier:     %s\n", c.Identifier)
			fmt.Printf("Root:           %s\n", c.Root)
			fmt.Printf("Underlying:     %s\n", c.Symbol)
			fmt.Printf("Expiry:         %s\n", c.Expiry.Format("2006-01-02"))
			fmt.Printf("Type:           %s\n", c.Type)
			fmt.Printf("Strike:         %.3f\n", c.Strike)
			fmt.Printf("Trading days:   %d\n", c.TradingDaysToExpiry(time.Now()))

			if c.SymbolMismatch() {
				fmt.Printf("Warning: requests will use %q, not the contract root %q\n", c.Symbol, c.Root)
			}

			return nil
		},
	}
}
