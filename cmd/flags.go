package cmd

import "github.com/spf13/cobra"

const FlagPort = "port"

const FlagNaiveTimestamps = "naive-timestamps"

func registerNaiveTimestamps(cmd *cobra.Command) {
	cmd.Flags().Bool(
		FlagNaiveTimestamps, false,
		"parse stored timestamps without a UTC offset",
	)
}

func getIntFlag(cmd *cobra.Command, flagName string) (value int) {
	value, _ = cmd.Flags().GetInt(flagName)
	return
}

func getBoolFlag(cmd *cobra.Command, flagName string) (value bool) {
	value, _ = cmd.Flags().GetBool(flagName)
	return
}
