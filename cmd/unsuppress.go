package cmd

import (
	"context"

	"github.com/sesbouncy/sesbouncy/email"
	"github.com/spf13/cobra"
)

const unsuppressDescription = `` +
	`Removes an email address from the SES account-level suppression list.

The server adds addresses to the list when SUPPRESS_HARD_BOUNCES=true and a
hard bounce or complaint arrives. Use this command when an address was
suppressed in error, or after its mailbox problem is known to be fixed.`

func init() {
	rootCmd.AddCommand(newUnsuppressCmd(NewSesV2Client))
}

func newUnsuppressCmd(newSesV2 SesV2FactoryFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "unsuppress <email_address>",
		Short: "Remove an address from the SES suppression list",
		Long:  unsuppressDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suppressor := &email.SesSuppressor{Client: newSesV2()}
			return unsuppressAddress(cmd, suppressor, args[0])
		},
	}
}

func unsuppressAddress(
	cmd *cobra.Command, suppressor email.Suppressor, address string,
) (err error) {
	cmd.SilenceUsage = true

	if err = suppressor.Unsuppress(context.Background(), address); err != nil {
		return
	}
	cmd.Printf(
		"Removed %s from the SES account-level suppression list\n", address,
	)
	return
}
