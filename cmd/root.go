package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	dbPath  string
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "valtrack",
	Short: "Valorant player performance tracker",
	Long: `Ingest Valorant match telemetry and compute per-agent, per-map,
per-weapon and per-season performance aggregates for a tracked player.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultDB := filepath.Join(mustUserHome(), ".valtrack", "valtrack.db")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.valtrack/valtrack.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(mapsCmd)
	rootCmd.AddCommand(weaponsCmd)
	rootCmd.AddCommand(seasonsCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(roundsCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(filepath.Join(mustUserHome(), ".valtrack"))
		viper.AddConfigPath(".")
		viper.SetConfigName("valtrack")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("valtrack")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("region", "na")
	viper.SetDefault("henrikdev.api_key", "")
	viper.SetDefault("player.puuid", "")
	viper.SetDefault("active_season", "")

	if err := viper.ReadInConfig(); err != nil {
		// Missing config file is fine; flags and env cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}
	return nil
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolvePlayer returns the tracked player's puuid from the flag or config.
func resolvePlayer(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if p := viper.GetString("player.puuid"); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("no player puuid: pass --player or set player.puuid in the config")
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
