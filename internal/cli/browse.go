package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"termforum/internal/models"
	"termforum/internal/replytree"
	"termforum/internal/store"
)

func newCategoriesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.openEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			categories, err := env.store.ListCategories()
			if err != nil {
				return err
			}
			for _, c := range categories {
				name := c.Name
				if env.cfg.ShowIcons {
					name = c.DisplayName()
				}
				fmt.Printf("%3d  %-30s %3d threads %4d posts\n", c.ID, name, c.ThreadsCount, c.PostsCount)
			}
			return nil
		},
	}
}

func newThreadsCommand(opts *RootOptions) *cobra.Command {
	var categoryID, userID int64
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "threads",
		Short: "List threads, pinned first, then by recent activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.openEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			threads, err := env.store.ListThreads(store.ThreadFilter{
				CategoryID: categoryID,
				UserID:     userID,
				Limit:      limit,
				Offset:     offset,
			})
			if err != nil {
				return err
			}
			for _, th := range threads {
				marker := "  "
				if th.IsPinned {
					marker = "📌"
				}
				fmt.Printf("%s %3d  %-40s %s  %d replies, %d views\n",
					marker, th.ID, th.Title, th.CategoryName, th.ReplyCount(), th.ViewCount)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&categoryID, "category", 0, "filter by category id")
	cmd.Flags().Int64Var(&userID, "user", 0, "filter by author id")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	return cmd
}

func newShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <thread-id>",
		Short: "Show a thread with its reply tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid thread id %q", args[0])
			}

			env, err := opts.openEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			thread, ok := env.store.GetThread(id, true)
			if !ok {
				return fmt.Errorf("no thread %d", id)
			}

			fmt.Printf("%s\n", thread.Title)
			fmt.Printf("by %s in %s, %d views\n\n", thread.UserName, thread.CategoryName, thread.ViewCount)
			fmt.Println(thread.Content)

			posts, err := env.store.ListPosts(thread.ID, 0, 0)
			if err != nil {
				return err
			}
			entries, err := replytree.Flatten(posts)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				fmt.Println()
				fmt.Print(formatPost(entry, env.cfg.ShowAvatars))
			}
			return nil
		},
	}
}

func formatPost(entry replytree.Entry, showAvatars bool) string {
	indent := strings.Repeat("  ", entry.Depth)
	author := entry.Post.UserName
	if showAvatars {
		author = entry.Post.UserAvatar + " " + author
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s#%d %s", indent, entry.Post.ID, author)
	if entry.Post.IsEdited {
		b.WriteString(" (edited)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s%s\n", indent, entry.Post.Content)
	return b.String()
}

// currentUser resolves the persisted session to a live account row.
func currentUser(env *environment) (models.User, error) {
	sess, ok := env.sessions.Current()
	if !ok {
		return models.User{}, fmt.Errorf("not logged in")
	}
	user, ok := env.store.GetUser(sess.UserID)
	if !ok {
		return models.User{}, fmt.Errorf("session user %d no longer exists", sess.UserID)
	}
	if user.IsBanned {
		return models.User{}, fmt.Errorf("account %q is banned", user.Username)
	}
	return user, nil
}
