package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seanrobertwright/Odin-OpenSpec/internal/app"
	"github.com/seanrobertwright/Odin-OpenSpec/internal/storage"
)

func newNavCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nav",
		Short: "Sidebar navigation state",
	}
	cmd.AddCommand(newNavShowCommand(deps), newNavSetCommand(deps))
	return cmd
}

func newNavShowCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show navigation state",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("nav show requires exactly one user id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withEnv(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				state, err := env.states.Navigation(ctx, userID)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, state)
				}
				if deps.globals.Quiet {
					return nil
				}
				_, err = fmt.Fprintf(deps.out, "expanded=%t module=%s\n", state.Expanded, state.LastModule)
				return err
			})
		},
	}
}

func newNavSetCommand(deps commandDeps) *cobra.Command {
	var (
		expanded bool
		module   string
	)
	cmd := &cobra.Command{
		Use:   "set <user-id>",
		Short: "Save navigation state",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("nav set requires exactly one user id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withEnv(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				state, err := env.states.SaveNavigation(ctx, app.SaveNavigationRequest{
					UserID:     userID,
					Expanded:   expanded,
					LastModule: module,
				})
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, state)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&expanded, "expanded", false, "Sidebar expanded")
	cmd.Flags().StringVar(&module, "module", "", "Last visited module identifier")
	return cmd
}

func newThemeCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Theme state",
	}
	cmd.AddCommand(newThemeShowCommand(deps), newThemeSetCommand(deps))
	return cmd
}

func newThemeShowCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show theme state",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("theme show requires exactly one user id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withEnv(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				state, err := env.states.Theme(ctx, userID)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, state)
				}
				if deps.globals.Quiet {
					return nil
				}
				_, err = fmt.Fprintf(deps.out, "theme=%s\n", state.ThemeName)
				return err
			})
		},
	}
}

func newThemeSetCommand(deps commandDeps) *cobra.Command {
	var (
		name     string
		settings string
	)
	cmd := &cobra.Command{
		Use:   "set <user-id>",
		Short: "Save theme state",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("theme set requires exactly one user id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				return usageErrorf("theme set requires --name (%s|%s|%s)",
					storage.ThemeLight, storage.ThemeDark, storage.ThemeSystem)
			}
			return withEnv(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				state, err := env.states.SaveTheme(ctx, app.SaveThemeRequest{
					UserID:         userID,
					ThemeName:      name,
					CustomSettings: settings,
				})
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, state)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Theme name (Light|Dark|System)")
	cmd.Flags().StringVar(&settings, "settings", "", "Opaque serialized per-theme options")
	return cmd
}
