package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seanrobertwright/Odin-OpenSpec/internal/app"
	"github.com/seanrobertwright/Odin-OpenSpec/internal/storage"
)

func newPrefCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pref",
		Short: "Per-profile preferences",
	}
	cmd.AddCommand(
		newPrefSetCommand(deps),
		newPrefGetCommand(deps),
		newPrefListCommand(deps),
	)
	return cmd
}

func newPrefSetCommand(deps commandDeps) *cobra.Command {
	var dataType string
	cmd := &cobra.Command{
		Use:   "set <user-id> <key> <value>",
		Short: "Set a preference (insert or update)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 3 {
				return usageErrorf("pref set requires <user-id> <key> <value>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withEnv(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				pref, err := env.profiles.SetPreference(ctx, app.SetPreferenceRequest{
					UserID:   userID,
					Key:      args[1],
					Value:    args[2],
					DataType: dataType,
				})
				if err != nil {
					return err
				}
				return printPreference(deps, pref)
			})
		},
	}
	cmd.Flags().StringVar(&dataType, "type", "", "Value type hint (string|int|bool|...)")
	return cmd
}

func newPrefGetCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "get <user-id> <key>",
		Short: "Read one preference",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return usageErrorf("pref get requires <user-id> <key>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withEnv(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				pref, err := env.profiles.GetPreference(ctx, userID, args[1])
				if err != nil {
					return err
				}
				return printPreference(deps, pref)
			})
		},
	}
}

func newPrefListCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "ls <user-id>",
		Short: "List all preferences for a profile",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("pref ls requires exactly one user id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withEnv(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				prefs, err := env.profiles.ListPreferences(ctx, userID)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, prefs)
				}
				if deps.globals.Quiet {
					return nil
				}
				for _, pref := range prefs {
					if _, err := fmt.Fprintf(deps.out, "%s\t%s\t(%s)\n", pref.Key, pref.Value, pref.DataType); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func printPreference(deps commandDeps, pref *storage.Preference) error {
	if deps.globals.JSON {
		return printJSON(deps.out, pref)
	}
	if deps.globals.Quiet {
		return nil
	}
	_, err := fmt.Fprintf(deps.out, "%s\t%s\t(%s)\n", pref.Key, pref.Value, pref.DataType)
	return err
}
