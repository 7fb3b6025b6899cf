package cmd

import (
	"github.com/spf13/cobra"
)

const sesbouncyDesc = "Webhook receiver recording Amazon SES bounce, " +
	"complaint, and delivery notifications"
const sesbouncyDescLong = sesbouncyDesc + "\n\n" +
	`Amazon SNS pushes SES feedback notifications to the webhook over HTTP.
Each notification is authenticated against its SNS signing certificate, then
recorded as one DynamoDB record per affected recipient.

To create the feedback table:
  sesbouncy create-feedback-table <TABLE_NAME>

To run the webhook server, configured through environment variables:
  FEEDBACK_TABLE_NAME=<TABLE_NAME> sesbouncy serve

To review the feedback recorded for a recipient address:
  sesbouncy lookup <TABLE_NAME> <EMAIL_ADDRESS>

To remove an address from the SES account-level suppression list:
  sesbouncy unsuppress <EMAIL_ADDRESS>
`

var rootCmd = &cobra.Command{
	Use:     "sesbouncy",
	Version: "v0.1.0",
	Short:   sesbouncyDesc,
	Long:    sesbouncyDescLong,
}

func Execute() error {
	return rootCmd.Execute()
}
