/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Prints the resolved client configuration.",
	Long: `Prints the configuration the client will use after merging flags,
environment variables (PUSHY_SERVER_ADDRESS, PUSHY_TIMEOUT) and the config file.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Server Address: %s\n", serverAddress)
		fmt.Fprintf(out, "Timeout: %s\n", timeout)
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintf(out, "Config File: %s\n", used)
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
