//go:build small_tests || all_tests

package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

// SetupCommandForTesting redirects a command's output streams to builders
// and clears its args so tests control both.
func SetupCommandForTesting(
	command *cobra.Command,
) (cmd *cobra.Command, stdout, stderr *strings.Builder) {
	cmd = command
	stdout = &strings.Builder{}
	stderr = &strings.Builder{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{})
	return
}
