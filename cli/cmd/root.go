/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	serverAddress string
	timeout       time.Duration
)

const (
	serverAddressKey = "server_address"
	timeoutKey       = "timeout"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pushy-cli",
	Short: "Client for the pushy publish/subscribe broker",
	Long: `pushy-cli talks to a pushy broker over its line protocol.

Use "chat" for an interactive session, or "send" to run a few commands and
print the replies. Broker commands:

  /reg <channel_id> <name> <password>
  /id  <channel_id> <password>
  /sub <publisher_channel_id>
  /pub <message...>`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// one‑shot
	if len(os.Args) > 1 {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	// REPL
	fmt.Println("entering interactive mode, type 'exit' to quit")
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("❯❯❯ ")
		line, err := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if err != nil && line == "" {
			return
		}
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		args, err := shellwords.Parse(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error parsing line:", err)
			continue
		}
		rootCmd.SetArgs(args)
		if err := rootCmd.Execute(); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pushy-cli.yaml)")
	rootCmd.PersistentFlags().String("server", "localhost:5000", "Address of the pushy broker (e.g., localhost:5000)")
	rootCmd.PersistentFlags().Duration("timeout", 2*time.Second, "Connect and reply timeout")

	viper.BindPFlag(serverAddressKey, rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag(timeoutKey, rootCmd.PersistentFlags().Lookup("timeout"))
	viper.SetDefault(serverAddressKey, "localhost:5000")
	viper.SetDefault(timeoutKey, 2*time.Second)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pushy-cli")
	}

	viper.SetEnvPrefix("pushy")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}

	serverAddress = viper.GetString(serverAddressKey)
	timeout = viper.GetDuration(timeoutKey)
}
