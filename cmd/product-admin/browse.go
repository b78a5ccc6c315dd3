package main

import (
	"github.com/spf13/cobra"

	"github.com/Sternrassler/product-admin/internal/tui"
)

func newBrowseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the product list in the terminal",
		Long: `Browse the product list in the terminal.

Keys: ←/h previous page, →/l next page, 1-9 jump to page, r retry after a
failed load, q quit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			productsClient, redisClient, err := newClient(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer productsClient.Close()
			if redisClient != nil {
				defer redisClient.Close()
			}

			return tui.Run(cmd.Context(), productsClient)
		},
	}
}
