package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"termforum/internal/models"
	"termforum/internal/store"
)

func newSeedCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create demo users, threads, and replies",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.openEnvironment()
			if err != nil {
				return err
			}
			defer env.close()
			return seedDemoData(env)
		},
	}
	return cmd
}

func seedDemoData(env *environment) error {
	names := []string{"alice", "bob", "charlie", "dave"}
	users := make([]models.User, 0, len(names))
	for _, name := range names {
		user, err := env.store.CreateUser(name, store.UserOptions{Avatar: "👨‍💻"})
		if err != nil {
			// Probably a rerun; reuse the existing account.
			existing, ok := env.store.GetUserByUsername(name)
			if !ok {
				return fmt.Errorf("seed user %q: %w", name, err)
			}
			user = existing
		}
		users = append(users, user)
		fmt.Printf("user: %s\n", user.DisplayName())
	}

	categories, err := env.store.ListCategories()
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		return fmt.Errorf("no categories to seed into")
	}
	fmt.Printf("categories: %d\n", len(categories))

	seeds := []struct {
		title, content string
		pinned         bool
	}{
		{"Welcome to TermForum!", "This is a terminal-based forum. Say hello below.", true},
		{"Tips for new members", "Read the category descriptions before posting.", false},
		{"What are you working on?", "Share your current project with the community.", false},
	}

	for i, seed := range seeds {
		author := users[i%len(users)]
		category := categories[i%len(categories)]
		thread, err := env.store.CreateThread(seed.title, seed.content, author.ID, category.ID, store.ThreadOptions{Pinned: seed.pinned})
		if err != nil {
			fmt.Printf("thread %q skipped: %v\n", seed.title, err)
			continue
		}
		fmt.Printf("thread: %s\n", thread.Title)

		// A short reply chain to exercise the reply tree.
		replier := users[(i+1)%len(users)]
		first, err := env.store.CreatePost(thread.ID, replier.ID, "Great to see this!", store.PostOptions{})
		if err != nil {
			return err
		}
		nested := users[(i+2)%len(users)]
		if _, err := env.store.CreatePost(thread.ID, nested.ID, "Agreed.", store.PostOptions{ParentPostID: &first.ID}); err != nil {
			return err
		}
	}

	stats, err := env.store.ForumStats()
	if err != nil {
		return err
	}
	fmt.Printf("done: %d users, %d threads, %d posts\n", stats.Users, stats.Threads, stats.Posts)
	return nil
}
