package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/seanrobertwright/Odin-OpenSpec/internal/app"
	"github.com/seanrobertwright/Odin-OpenSpec/internal/storage"
)

func newInitCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or upgrade the profile database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("init does not accept positional arguments")
			}
			return withEnv(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				if deps.globals.Quiet {
					return nil
				}
				_, err := fmt.Fprintf(deps.out, "database ready at %s\n", env.store.Path())
				return err
			})
		},
	}
}

func newUserCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Profile management",
	}
	cmd.AddCommand(
		newUserAddCommand(deps),
		newUserListCommand(deps),
		newUserShowCommand(deps),
		newUserSetCommand(deps),
		newUserRemoveCommand(deps),
	)
	return cmd
}

func newUserAddCommand(deps commandDeps) *cobra.Command {
	var (
		name  string
		photo string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("user add does not accept positional arguments")
			}
			if name == "" {
				return usageErrorf("user add requires --name")
			}

			return withEnv(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				user, err := env.profiles.CreateUser(ctx, app.CreateUserRequest{Name: name, PhotoPath: photo})
				if err != nil {
					return err
				}
				return printUser(deps, user)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Profile name")
	cmd.Flags().StringVar(&photo, "photo", "", "Path to the profile photo")
	return cmd
}

func newUserListCommand(deps commandDeps) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("user ls does not accept positional arguments")
			}

			return withEnv(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				users, err := env.profiles.ListUsers(ctx, all)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, users)
				}
				if deps.globals.Quiet {
					return nil
				}
				for _, user := range users {
					marker := ""
					if !user.Active {
						marker = " (inactive)"
					}
					if _, err := fmt.Fprintf(deps.out, "%d\t%s%s\n", user.ID, user.Name, marker); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include soft-deleted profiles")
	return cmd
}

func newUserShowCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one profile",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("user show requires exactly one profile id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withEnv(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				user, err := env.profiles.GetUser(ctx, id)
				if err != nil {
					return err
				}
				return printUser(deps, user)
			})
		},
	}
}

func newUserSetCommand(deps commandDeps) *cobra.Command {
	var (
		name  string
		photo string
	)
	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Overwrite a profile",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("user set requires exactly one profile id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				return usageErrorf("user set requires --name")
			}

			return withEnv(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				// Confirm existence first; Update itself does not
				// distinguish a no-op from a write.
				if _, err := env.profiles.GetUser(ctx, id); err != nil {
					return err
				}
				return env.profiles.UpdateUser(ctx, app.UpdateUserRequest{
					ID:        id,
					Name:      name,
					PhotoPath: photo,
					Active:    true,
				})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Profile name")
	cmd.Flags().StringVar(&photo, "photo", "", "Path to the profile photo")
	return cmd
}

func newUserRemoveCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Soft-delete a profile",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("user rm requires exactly one profile id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withEnv(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				count, err := env.profiles.DeleteUser(ctx, id)
				if err != nil {
					return err
				}
				if deps.globals.Quiet {
					return nil
				}
				if count == 0 {
					_, err = fmt.Fprintf(deps.out, "no active profile with id %d\n", id)
				} else {
					_, err = fmt.Fprintf(deps.out, "profile %d deactivated\n", id)
				}
				return err
			})
		},
	}
}

func parseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, usageErrorf("invalid profile id %q", raw)
	}
	return id, nil
}

func printUser(deps commandDeps, user *storage.User) error {
	if deps.globals.JSON {
		return printJSON(deps.out, user)
	}
	if deps.globals.Quiet {
		return nil
	}
	_, err := fmt.Fprintf(deps.out, "%d\t%s\tcreated=%s\n", user.ID, user.Name, user.CreatedAt.Format("2006-01-02"))
	return err
}
