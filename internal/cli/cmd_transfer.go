package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seanrobertwright/Odin-OpenSpec/internal/app"
)

func newExportCommand(deps commandDeps) *cobra.Command {
	var (
		output     string
		passphrase string
	)
	cmd := &cobra.Command{
		Use:   "export <user-id>",
		Short: "Export a profile to an encrypted file",
		Long: `Export a profile (user record, preferences, navigation and theme state)
to an encrypted file. By default the file is keyed to the current OS user and
cannot be imported under another account or machine; pass --passphrase to
produce a portable export instead.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("export requires exactly one user id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				return usageErrorf("export requires --output")
			}

			return withEnv(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				bundle, err := env.transfer.Export(ctx, app.ExportRequest{
					UserID:     userID,
					OutputPath: output,
					Passphrase: []byte(passphrase),
				})
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, bundle)
				}
				if deps.globals.Quiet {
					return nil
				}
				_, err = fmt.Fprintf(deps.out, "exported profile %d (%d preferences) to %s\n",
					userID, len(bundle.Preferences), output)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "Destination file path")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "Protect the export with a passphrase instead of the user-bound key")
	return cmd
}

func newImportCommand(deps commandDeps) *cobra.Command {
	var (
		input      string
		passphrase string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Restore a profile from an exported file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("import does not accept positional arguments")
			}
			if input == "" {
				return usageErrorf("import requires --input")
			}

			return withEnv(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				result, err := env.transfer.Import(ctx, app.ImportRequest{
					InputPath:  input,
					Passphrase: []byte(passphrase),
				})
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, result)
				}
				if deps.globals.Quiet {
					return nil
				}
				_, err = fmt.Fprintf(deps.out, "imported profile as user %d (%d preferences)\n",
					result.UserID, result.Preferences)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Source file path")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "Passphrase for portable exports")
	return cmd
}
