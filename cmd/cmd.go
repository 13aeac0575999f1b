package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	clearData  bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "fleet-management",
	Short: "Fleet Management",
	Long:  `Vehicle registry, trip, fuel and maintenance approvals, reports and notifications for a company fleet.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig reads config.yml from path (or ./config) with FLEET_* overrides.
// Deployments without a config file fall back to the environment alone.
func loadConfig(path string) (*internal.Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		cfg := internal.LoadConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("error validating config from environment: %w", err)
		}
		return cfg, nil
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("FLEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			cfg := internal.LoadConfigFromEnv()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("no config file and environment is incomplete: %w", err)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}
	return &cfg, nil
}

// setupLogger installs the process logger and returns the log file closer.
func setupLogger(cfg *internal.Config) io.Closer {
	lc := cfg.Observability.Logging
	return logger.Configure(logger.Options{
		Env:        cfg.Environment,
		Level:      lc.Level,
		Format:     lc.Format,
		File:       lc.File.Enabled,
		FilePath:   lc.File.Path,
		MaxSizeMB:  lc.File.MaxSizeMB,
		MaxBackups: lc.File.MaxBackups,
		MaxAgeDays: lc.File.MaxAgeDays,
	})
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory holding config.yml")
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
