package cmd

import (
	"context"
	"slices"
	"time"

	"github.com/sesbouncy/sesbouncy/db"
	"github.com/sesbouncy/sesbouncy/email"
	"github.com/sesbouncy/sesbouncy/events"
	"github.com/spf13/cobra"
)

const lookupDescription = `` +
	`Shows the feedback recorded for an email address, oldest mail first,
along with whether the address is on the SES account-level suppression
list.

The command takes two arguments: the name of the feedback table and the
email address to look up. Pass --naive-timestamps if the server ran with
NAIVE_TIMESTAMPS=true, or stored timestamps won't parse.`

func init() {
	rootCmd.AddCommand(newLookupCmd(NewDynamoDb, NewSesV2Client))
}

func newLookupCmd(
	newDynDb DynamoDbFactoryFunc, newSesV2 SesV2FactoryFunc,
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <table_name> <email_address>",
		Short: "Show recorded feedback and suppression status for an address",
		Long:  lookupDescription,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dyndb := newDynDb(args[0])
			dyndb.TimeLayout = events.TimeLayout(
				getBoolFlag(cmd, FlagNaiveTimestamps),
			)
			suppressor := &email.SesSuppressor{Client: newSesV2()}
			return lookupFeedback(cmd, dyndb, suppressor, args[1])
		},
	}
	registerNaiveTimestamps(cmd)
	return cmd
}

func lookupFeedback(
	cmd *cobra.Command,
	dyndb *db.DynamoDb,
	suppressor email.Suppressor,
	address string,
) (err error) {
	cmd.SilenceUsage = true
	ctx := context.Background()

	records, err := dyndb.GetFeedbackForAddress(ctx, address)
	if err != nil {
		return
	}

	suppressed, err := suppressor.IsSuppressed(ctx, address)
	if err != nil {
		return
	}

	// The address index query returns records in no particular order.
	slices.SortFunc(records, func(a, b *db.Feedback) int {
		return a.MailTimestamp.Compare(b.MailTimestamp)
	})

	for _, record := range records {
		cmd.Printf(
			"%s %s from message %s (record %s)\n",
			record.MailTimestamp.Format(time.RFC3339),
			record.Kind,
			record.MailId,
			record.Id,
		)
	}
	cmd.Printf(
		"%d feedback records for %s, suppressed: %t\n",
		len(records), address, suppressed,
	)
	return
}
