package main

import (
	"context"
	"fmt"

	"github.com/Nemutagk/thinodium/driver/mongodb"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create every configured collection and its indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Disconnect(context.Background())

			names := cfg.ModelNames()
			if err := initModels(cmd.Context(), db, cfg.Model, names); err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s ready\n", name)
			}
			return nil
		},
	}
}

// initModels inicializa los modelos en paralelo; el primer error cancela el resto.
func initModels(ctx context.Context, db *mongodb.Database, lookup modelLookup, names []string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			mc, err := lookup(name)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if _, err := db.Model(gctx, name, mc); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
