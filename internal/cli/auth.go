package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"termforum/internal/polycrypt"
	"termforum/internal/session"
	"termforum/internal/store"
)

const (
	lockThreshold        = 5
	lockDuration         = 15 * time.Minute
	sessionDurationHours = 24
)

func newRegisterCommand(opts *RootOptions) *cobra.Command {
	var email, bio, password string

	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.openEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			user, err := env.store.CreateUser(args[0], store.UserOptions{Email: email, Bio: bio})
			if err != nil {
				return err
			}

			if password != "" {
				score, label := polycrypt.Strength(password)
				fmt.Printf("password strength: %d/100 (%s)\n", score, label)

				stored, err := polycrypt.Hash(password)
				if err != nil {
					return err
				}
				if err := env.store.SetUserCredential(user.ID, stored); err != nil {
					return err
				}
			}

			fmt.Printf("registered %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&bio, "bio", "", "profile bio")
	cmd.Flags().StringVar(&password, "password", "", "account password (omit for a passwordless account)")
	return cmd
}

func newLoginCommand(opts *RootOptions) *cobra.Command {
	var password string
	var remember bool

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and persist a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.openEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			user, ok := env.store.GetUserByUsername(args[0])
			if !ok {
				return fmt.Errorf("unknown user %q", args[0])
			}
			if user.IsBanned {
				return fmt.Errorf("account %q is banned", user.Username)
			}
			if user.IsLocked(time.Now()) {
				return fmt.Errorf("account %q is locked until %s", user.Username, user.LockedUntil.Format(time.RFC3339))
			}

			// Accounts without a stored credential predate password
			// auth and log in by username alone.
			if user.CredentialHash != "" && !polycrypt.Verify(password, user.CredentialHash) {
				if err := env.store.RecordLoginFailure(user.ID, lockThreshold, lockDuration); err != nil {
					env.logger.Warn("recording login failure", zap.Error(err))
				}
				return fmt.Errorf("invalid credentials")
			}

			if err := env.store.ResetLoginFailures(user.ID); err != nil {
				return err
			}
			if err := env.store.TouchLastSeen(user.ID); err != nil {
				return err
			}

			sess, err := env.sessions.Create(user.ID, user.Username, remember, sessionDurationHours)
			if err != nil {
				return err
			}

			fmt.Printf("logged in as %s (session expires %s)\n",
				user.Username, sess.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().BoolVar(&remember, "remember", false, "keep the session for 30 days")
	return cmd
}

func newLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.sessionPath()
			if err != nil {
				return err
			}
			if err := session.NewManager(path).Clear(); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

func newWhoamiCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.sessionPath()
			if err != nil {
				return err
			}
			sess, ok := session.NewManager(path).Current()
			if !ok {
				fmt.Println("not logged in")
				return nil
			}
			fmt.Printf("%s (user %d), session expires %s\n",
				sess.Username, sess.UserID, sess.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
}
