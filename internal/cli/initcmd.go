package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"termforum/internal/store"
)

func newInitCommand(opts *RootOptions) *cobra.Command {
	var admin string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new forum database",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := opts.dbPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(dbPath); err == nil {
				if !force {
					return fmt.Errorf("database already exists at %s (use --force to recreate)", dbPath)
				}
				if err := os.Remove(dbPath); err != nil {
					return err
				}
			}

			env, err := opts.openEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			user, err := env.store.CreateUser(admin, store.UserOptions{IsAdmin: true})
			if err != nil {
				return err
			}

			stats, err := env.store.ForumStats()
			if err != nil {
				return err
			}

			fmt.Printf("Database initialized at %s\n", dbPath)
			fmt.Printf("Admin user created: %s\n", user.Username)
			fmt.Printf("Users: %d  Categories: %d  Threads: %d  Posts: %d\n",
				stats.Users, stats.Categories, stats.Threads, stats.Posts)
			return nil
		},
	}

	cmd.Flags().StringVar(&admin, "admin", "admin", "admin username")
	cmd.Flags().BoolVar(&force, "force", false, "recreate an existing database")
	return cmd
}
