package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yungbote/pearls-backend/internal/app"
	"github.com/yungbote/pearls-backend/internal/pipeline/filter"
	"github.com/yungbote/pearls-backend/internal/pipeline/ordering"
	"github.com/yungbote/pearls-backend/internal/services"
)

var openApp = app.New

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pearlsctl",
		Short:         "Operator tools for the pearls archive",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newResolveCmd(), newOverlayCmd(), newGrantAdminCmd(), newIssueTokenCmd())
	return root
}

func newResolveCmd() *cobra.Command {
	var (
		search   string
		category string
		year     string
		pearls   bool
		sortMode string
	)
	cmd := &cobra.Command{
		Use:   "resolve [thread-id]",
		Short: "Print resolved threads as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if len(args) == 1 {
					t, err := a.Services.Content.Thread(ctx, args[0])
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), t)
				}
				res, err := a.Services.Content.Threads(ctx, services.ContentQuery{
					Filter: filter.State{
						SearchQuery: search,
						Category:    category,
						Year:        filter.ParseYear(year),
						PearlsOnly:  pearls,
					},
					Sort: ordering.ParseMode(sortMode),
				})
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive substring filter")
	cmd.Flags().StringVar(&category, "category", "", "category filter")
	cmd.Flags().StringVar(&year, "year", "", "year filter")
	cmd.Flags().BoolVar(&pearls, "pearls", false, "only pearl threads")
	cmd.Flags().StringVar(&sortMode, "sort", string(ordering.ModeCorpus), "corpus or newest")
	return cmd
}

func newOverlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overlay",
		Short: "Fetch and summarize the current overlay records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				snap, err := a.Services.Store.Refresh(ctx, "cli")
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "version %d fetched %s\n", snap.Version, snap.FetchedAt.Format("2006-01-02T15:04:05Z07:00"))
				fmt.Fprintf(out, "deletions %d\n", len(snap.Deletions))
				for _, d := range snap.Deletions {
					if d.TweetIndex != nil {
						fmt.Fprintf(out, "  %s %s[%d]\n", d.ItemType, d.ThreadID, *d.TweetIndex)
						continue
					}
					fmt.Fprintf(out, "  %s %s\n", d.ItemType, d.ThreadID)
				}
				fmt.Fprintf(out, "edits %d\n", len(snap.Edits))
				for _, e := range snap.Edits {
					fmt.Fprintf(out, "  %s[%d]\n", e.ThreadID, e.TweetIndex)
				}
				return nil
			})
		},
	}
}

func newGrantAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant-admin <open-id>",
		Short: "Promote an existing user to admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				ok, err := a.Services.Auth.GrantAdmin(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no user with open id %q", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "granted admin to %s\n", args[0])
				return nil
			})
		},
	}
}

func newIssueTokenCmd() *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "issue-token <open-id>",
		Short: "Sign in an identity and print its bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				user, tok, err := a.Services.Auth.SignIn(ctx, services.Identity{
					OpenID:      args[0],
					Name:        name,
					Email:       email,
					LoginMethod: "cli",
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "user %d role %s\n", user.ID, user.Role)
				fmt.Fprintln(cmd.OutOrStdout(), tok)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email")
	return cmd
}

func withApp(ctx context.Context, fn func(context.Context, *app.App) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp()
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()
	return fn(ctx, a)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
