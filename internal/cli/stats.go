package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCommand(opts *RootOptions) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show forum statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.openEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			stats, err := env.store.ForumStats()
			if err != nil {
				return err
			}

			fmt.Println("Forum Statistics")
			fmt.Println("========================================")
			fmt.Printf("Users:      %d\n", stats.Users)
			fmt.Printf("Categories: %d\n", stats.Categories)
			fmt.Printf("Threads:    %d\n", stats.Threads)
			fmt.Printf("Posts:      %d\n", stats.Posts)
			fmt.Printf("Total:      %d\n", stats.TotalContent)

			if check {
				mismatches, err := env.store.CheckCounters()
				if err != nil {
					return err
				}
				if len(mismatches) == 0 {
					fmt.Println("\nCounters: consistent")
					return nil
				}
				fmt.Printf("\nCounters: %d mismatch(es)\n", len(mismatches))
				for _, m := range mismatches {
					fmt.Println("  " + m.String())
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "cross-check denormalized counters against live counts")
	return cmd
}
