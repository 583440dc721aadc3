package cli

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCommand(&out, BuildInfo{Version: "test"})
	cmd.SetArgs(append([]string{"--data-dir", dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	return exitErr.ExitCode()
}

func TestInitCreatesDatabase(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out, err := runCLI(t, dir, "init")
	require.NoError(t, err)
	require.Contains(t, out, filepath.Join(dir, "odin.db"))
}

func TestUserAddListShowRemove(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	out, err := runCLI(t, dir, "user", "add", "--name", "Ada")
	require.NoError(t, err)
	require.Contains(t, out, "Ada")

	out, err = runCLI(t, dir, "user", "ls")
	require.NoError(t, err)
	require.Contains(t, out, "Ada")

	out, err = runCLI(t, dir, "user", "show", "1")
	require.NoError(t, err)
	require.Contains(t, out, "Ada")

	out, err = runCLI(t, dir, "user", "rm", "1")
	require.NoError(t, err)
	require.Contains(t, out, "deactivated")

	out, err = runCLI(t, dir, "user", "ls")
	require.NoError(t, err)
	require.NotContains(t, out, "Ada")

	out, err = runCLI(t, dir, "user", "ls", "--all")
	require.NoError(t, err)
	require.Contains(t, out, "(inactive)")
}

func TestPreferenceCommands(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := runCLI(t, dir, "user", "add", "--name", "Ada")
	require.NoError(t, err)

	_, err = runCLI(t, dir, "pref", "set", "1", "theme", "dark")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "pref", "get", "1", "theme")
	require.NoError(t, err)
	require.Contains(t, out, "dark")

	_, err = runCLI(t, dir, "pref", "set", "1", "theme", "light")
	require.NoError(t, err)

	out, err = runCLI(t, dir, "pref", "ls", "1")
	require.NoError(t, err)
	require.Contains(t, out, "light")
	require.NotContains(t, out, "dark")
}

func TestExportImportCommands(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	output := filepath.Join(dir, "ada.profile")

	_, err := runCLI(t, dir, "user", "add", "--name", "Ada")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "pref", "set", "1", "theme", "dark")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "export", "1", "--output", output)
	require.NoError(t, err)
	require.Contains(t, out, "exported profile 1")

	out, err = runCLI(t, dir, "import", "--input", output)
	require.NoError(t, err)
	require.Contains(t, out, "imported profile as user 2")
}

func TestMissingUserMapsToNotFoundExitCode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := runCLI(t, dir, "init")
	require.NoError(t, err)

	_, err = runCLI(t, dir, "user", "show", "99")
	require.Equal(t, ExitCodeNotFound, exitCode(t, err))
}

func TestUsageErrorsMapToUsageExitCode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := runCLI(t, dir, "user", "add")
	require.Equal(t, ExitCodeUsage, exitCode(t, err))

	_, err = runCLI(t, dir, "user", "show", "zero")
	require.Equal(t, ExitCodeUsage, exitCode(t, err))

	_, err = runCLI(t, dir, "export", "1")
	require.Equal(t, ExitCodeUsage, exitCode(t, err))
}

func TestImportMissingFileMapsToIOExitCode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := runCLI(t, dir, "init")
	require.NoError(t, err)

	_, err = runCLI(t, dir, "import", "--input", filepath.Join(dir, "missing.profile"))
	require.Equal(t, ExitCodeIO, exitCode(t, err))
}

func TestMapCommandErrorPassesThroughNil(t *testing.T) {
	t.Parallel()

	require.NoError(t, mapCommandError(nil))
	require.Error(t, mapCommandError(errors.New("boom")))
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cmd := NewRootCommand(&out, BuildInfo{Version: "1.2.3", Commit: "abc"})
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "version=1.2.3")
}
