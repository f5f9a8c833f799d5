package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/bugbridge/disclosoor/pkg/client"
	"github.com/bugbridge/disclosoor/pkg/config"
	"github.com/bugbridge/disclosoor/pkg/store"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Version information set at build time.
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile  string
	logLevel string
	log      *logrus.Logger
)

func main() {
	log = logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Fatal("Failed to execute command")
	}
}

var rootCmd = &cobra.Command{
	Use:   "disclosoor",
	Short: "BugBridge vulnerability-disclosure platform client",
	Long: `Disclosoor is the command-line client for the BugBridge
vulnerability-disclosure coordination platform. Companies maintain
profiles and receive security reports; researchers browse companies and
submit bug reports. It also ships the reverse-proxy companion that
serves the web UI and rewrites its API prefix.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A local .env may carry DISCLOSOOR_* overrides; absence is fine.
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.WithError(err).Warn("Failed to load .env file")
		}

		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}

		log.SetLevel(level)

		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("disclosoor %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level ("+strings.Join(logLevels(), ", ")+")")

	rootCmd.AddCommand(versionCmd)
}

func logLevels() []string {
	levels := make([]string, 0, len(logrus.AllLevels))
	for _, level := range logrus.AllLevels {
		levels = append(levels, level.String())
	}

	return levels
}

// loadConfig loads and validates configuration from --config and the
// environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// newClient builds a bare platform client for read-only lookups that do
// not need store state.
func newClient() (client.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	return client.New(cfg, log), nil
}

// newStore builds the client and state store from config.
func newStore() (*store.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	c := client.New(cfg, log)
	s := store.New(c, store.FileCredentials{}, cfg.API.UseMockData, log)

	return s, cfg, nil
}
