package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ponyo877/pushy/server/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	hostKey           = "host"
	portKey           = "port"
	backlogKey        = "backlog"
	readBufferSizeKey = "read_buffer_size"
	writeTimeoutKey   = "write_timeout"
	databaseKey       = "database"
	logLevelKey       = "log_level"
)

var cfgFile string

func bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pushy.yaml)")
	flags.String("host", domain.DefaultHost, "Address to bind the listening socket to")
	flags.Int("port", domain.DefaultPort, "Port to listen on")
	flags.Int("backlog", domain.DefaultBacklog, "Accept backlog of the listening socket")
	flags.Int("read-buffer-size", domain.DefaultReadBufferSize, "Bytes read from a connection per readiness event")
	flags.Duration("write-timeout", domain.DefaultWriteTimeout, "Deadline for one write to a client")
	flags.String("database", domain.DefaultDatabasePath, "Path of the sqlite database")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")

	viper.BindPFlag(hostKey, flags.Lookup("host"))
	viper.BindPFlag(portKey, flags.Lookup("port"))
	viper.BindPFlag(backlogKey, flags.Lookup("backlog"))
	viper.BindPFlag(readBufferSizeKey, flags.Lookup("read-buffer-size"))
	viper.BindPFlag(writeTimeoutKey, flags.Lookup("write-timeout"))
	viper.BindPFlag(databaseKey, flags.Lookup("database"))
	viper.BindPFlag(logLevelKey, flags.Lookup("log-level"))
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
		viper.SetConfigName(".pushy")
	}

	viper.SetEnvPrefix("pushy")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}
}

func loadConfig() (domain.Config, error) {
	cfg := domain.Config{
		Host:           viper.GetString(hostKey),
		Port:           viper.GetInt(portKey),
		Backlog:        viper.GetInt(backlogKey),
		ReadBufferSize: viper.GetInt(readBufferSizeKey),
		WriteTimeout:   viper.GetDuration(writeTimeoutKey),
		DatabasePath:   viper.GetString(databaseKey),
	}
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString(logLevelKey))); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}
