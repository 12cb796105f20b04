package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"termforum/internal/store"
)

func newThreadCommand(opts *RootOptions) *cobra.Command {
	var title, content string
	var pinned bool

	cmd := &cobra.Command{
		Use:   "thread <category-id>",
		Short: "Start a new thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid category id %q", args[0])
			}

			env, err := opts.openEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			user, err := currentUser(env)
			if err != nil {
				return err
			}
			if pinned && !user.IsAdmin {
				return fmt.Errorf("only admins can pin threads")
			}

			thread, err := env.store.CreateThread(title, content, user.ID, categoryID, store.ThreadOptions{Pinned: pinned})
			if err != nil {
				return err
			}
			fmt.Printf("thread %d created: %s\n", thread.ID, thread.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "thread title")
	cmd.Flags().StringVar(&content, "content", "", "opening content")
	cmd.Flags().BoolVar(&pinned, "pin", false, "pin the thread (admin only)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func newReplyCommand(opts *RootOptions) *cobra.Command {
	var content string
	var parentID int64

	cmd := &cobra.Command{
		Use:   "reply <thread-id>",
		Short: "Reply to a thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			threadID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid thread id %q", args[0])
			}

			env, err := opts.openEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			user, err := currentUser(env)
			if err != nil {
				return err
			}

			postOpts := store.PostOptions{}
			if parentID != 0 {
				postOpts.ParentPostID = &parentID
			}
			post, err := env.store.CreatePost(threadID, user.ID, content, postOpts)
			if err != nil {
				return err
			}
			fmt.Printf("post %d created\n", post.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "reply content")
	cmd.Flags().Int64Var(&parentID, "parent", 0, "post id to reply to")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func newEditCommand(opts *RootOptions) *cobra.Command {
	var content, reason string

	cmd := &cobra.Command{
		Use:   "edit <post-id>",
		Short: "Edit one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid post id %q", args[0])
			}

			env, err := opts.openEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			user, err := currentUser(env)
			if err != nil {
				return err
			}
			post, ok := env.store.GetPost(postID)
			if !ok {
				return fmt.Errorf("no post %d", postID)
			}
			if post.UserID != user.ID && !user.IsAdmin {
				return fmt.Errorf("post %d belongs to someone else", postID)
			}

			if err := env.store.EditPost(postID, content, reason); err != nil {
				return err
			}
			fmt.Printf("post %d edited\n", postID)
			return nil
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "replacement content")
	cmd.Flags().StringVar(&reason, "reason", "", "edit reason")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func newDeleteCommand(opts *RootOptions) *cobra.Command {
	var thread bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your posts, or a thread with --thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}

			env, err := opts.openEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			user, err := currentUser(env)
			if err != nil {
				return err
			}

			if thread {
				th, ok := env.store.GetThread(id, false)
				if !ok {
					return fmt.Errorf("no thread %d", id)
				}
				if th.UserID != user.ID && !user.IsAdmin {
					return fmt.Errorf("thread %d belongs to someone else", id)
				}
				if err := env.store.DeleteThread(id); err != nil {
					return err
				}
				fmt.Printf("thread %d deleted\n", id)
				return nil
			}

			post, ok := env.store.GetPost(id)
			if !ok {
				return fmt.Errorf("no post %d", id)
			}
			if post.UserID != user.ID && !user.IsAdmin {
				return fmt.Errorf("post %d belongs to someone else", id)
			}
			if err := env.store.DeletePost(id); err != nil {
				return err
			}
			fmt.Printf("post %d deleted\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&thread, "thread", false, "delete a thread instead of a post")
	return cmd
}
