package cmd

import (
	"context"
	"time"

	"github.com/sesbouncy/sesbouncy/db"
	"github.com/spf13/cobra"
)

const createFeedbackTableDescription = `` +
	`Creates a new DynamoDB table for SES feedback records.

The new table stores one record per notification recipient, keyed by a
generated ID, with a secondary index for looking up all records for an email
address. The DynamoDB Time To Live feature is enabled on the "ttl"
attribute; no record carries that attribute by default, so records live
forever until a retention process backfills it.

The command takes one argument, which is the name of the table to create.
This name will become the value of the FEEDBACK_TABLE_NAME environment
variable used to configure the server.`

const maxTableWaitAttempts = 30

const tableWaitDuration = 2 * time.Second

func init() {
	rootCmd.AddCommand(newCreateFeedbackTableCmd(NewDynamoDb))
}

func newCreateFeedbackTableCmd(newDynDb DynamoDbFactoryFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "create-feedback-table",
		Short: "Create a DynamoDB table for SES feedback records",
		Long:  createFeedbackTableDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sleep := func() { time.Sleep(tableWaitDuration) }
			return createFeedbackTable(
				cmd, newDynDb(args[0]), maxTableWaitAttempts, sleep,
			)
		},
	}
}

func createFeedbackTable(
	cmd *cobra.Command, dyndb *db.DynamoDb, maxAttempts int, sleep func(),
) (err error) {
	cmd.SilenceUsage = true
	ctx := context.Background()

	if err = dyndb.CreateTable(ctx); err != nil {
		return
	} else if err = dyndb.WaitForTable(ctx, maxAttempts, sleep); err != nil {
		return
	} else if _, err = dyndb.UpdateTimeToLive(ctx); err != nil {
		return
	}
	cmd.Printf("Successfully created DynamoDB table: %s\n", dyndb.TableName)
	return
}
