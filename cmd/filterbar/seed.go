package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"filterbar/internal/store"
)

func newSeedCmd() *cobra.Command {
	var (
		count   int
		seed    uint64
		replace bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with sample records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}
			sess, err := openSession(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer sess.Close()

			records := store.SampleRecords(count, seed, time.Now())
			if err := sess.store.Seed(cmd.Context(), records, replace); err != nil {
				return err
			}
			total, err := sess.store.Count(cmd.Context(), "", nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d records (%d total) into %s\n", count, total, sess.store.Path())
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", autoSeedCount, "number of records to generate")
	cmd.Flags().Uint64Var(&seed, "seed", autoSeedValue, "random seed")
	cmd.Flags().BoolVar(&replace, "replace", false, "delete existing records first")
	return cmd
}
