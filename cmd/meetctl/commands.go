package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Meet/internal/auth"
	"github.com/dkeye/Meet/internal/config"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/store"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "meetctl",
		Short:        "Administer the Meet signaling server",
		SilenceUsage: true,
	}
	root.PersistentFlags().AddFlagSet(config.Flags())

	root.AddCommand(newTokenCmd(), newUserCmd(), newMeetingCmd())
	return root
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(cmd.Root().PersistentFlags())
}

// withStore opens the configured store for the duration of fn.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, st *store.Store) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(cmd.Context(), st)
}

func newTokenCmd() *cobra.Command {
	var (
		user string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a session token for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			id, err := domain.NewIdentity(user, "", "")
			if err != nil {
				return err
			}
			token, err := auth.IssueToken([]byte(cfg.Auth.JWTSecret), id.ID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage users"}

	var name, email string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a user and print its id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, st *store.Store) error {
				u, err := st.CreateUser(ctx, name, email)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), u.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&name, "name", "", "display name")
	add.Flags().StringVar(&email, "email", "", "email address")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("email")

	cmd.AddCommand(add)
	return cmd
}

func newMeetingCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "meeting", Short: "Manage meetings"}
	cmd.AddCommand(newMeetingCreateCmd(), newAddParticipantCmd(), newHistoryCmd())
	return cmd
}

func newMeetingCreateCmd() *cobra.Command {
	var (
		title     string
		host      string
		recording bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a meeting hosted by an existing user and print its id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, st *store.Store) error {
				h, err := st.FindUser(ctx, domain.UserID(host))
				if err != nil {
					return fmt.Errorf("host %s: %w", host, err)
				}
				m, err := st.CreateMeeting(ctx, title, h, recording)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), m.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "meeting title")
	cmd.Flags().StringVar(&host, "host", "", "host user id")
	cmd.Flags().BoolVar(&recording, "recording", true, "allow recording")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("host")
	return cmd
}

func newAddParticipantCmd() *cobra.Command {
	var meeting, user, role string
	cmd := &cobra.Command{
		Use:   "add-participant",
		Short: "Allow a user to join a meeting",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := domain.Role(role)
			switch r {
			case domain.RoleParticipant, domain.RoleCoHost:
			default:
				return fmt.Errorf("role must be %s or %s", domain.RoleParticipant, domain.RoleCoHost)
			}
			return withStore(cmd, func(ctx context.Context, st *store.Store) error {
				u, err := st.FindUser(ctx, domain.UserID(user))
				if err != nil {
					return fmt.Errorf("user %s: %w", user, err)
				}
				err = st.AddParticipant(ctx, domain.MeetingID(meeting), u, r)
				if errors.Is(err, domain.ErrMeetingNotFound) {
					return fmt.Errorf("meeting %s: %w", meeting, err)
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&meeting, "meeting", "", "meeting id")
	cmd.Flags().StringVar(&user, "user", "", "user id")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleParticipant), "participant or co-host")
	_ = cmd.MarkFlagRequired("meeting")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var meeting string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the chat history of a meeting",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, st *store.Store) error {
				msgs, err := st.ChatHistory(ctx, domain.MeetingID(meeting))
				if err != nil {
					return err
				}
				for _, m := range msgs {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", m.Timestamp.Format(time.RFC3339), m.SenderName, m.Message)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&meeting, "meeting", "", "meeting id")
	_ = cmd.MarkFlagRequired("meeting")
	return cmd
}
