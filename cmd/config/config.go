// Package config wires viper configuration for the backend binary.
package config

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/takecopter/backend/pkg/paths"
	"github.com/takecopter/backend/pkg/project"
)

var cfgFile string

// InitConfig loads configuration from the config file, environment
// (TAKECOPTER_ prefix) and defaults.
func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "takecopter")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("TAKECOPTER")

	viper.SetDefault("data_dir", paths.DefaultDataDir())
	viper.SetDefault("listen_addr", "127.0.0.1:7411")
	viper.SetDefault("log_level", "warn")

	// Missing config file is fine; defaults and env cover everything.
	_ = viper.ReadInConfig()
}

// NewLogger builds the process logger from config.
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		level = logrus.WarnLevel
	}
	log.SetLevel(level)
	return log
}

// InitService builds the project service from config.
func InitService() *project.Service {
	return project.New(&project.Config{
		DataDir: viper.GetString("data_dir"),
		Logger:  NewLogger(),
	})
}

// ListenAddr returns the configured IPC listen address.
func ListenAddr() string {
	return viper.GetString("listen_addr")
}

// AddGlobalFlags attaches the shared flags to the root command.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/takecopter/config.yaml)")
}
