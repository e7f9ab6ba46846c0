package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"valtrack/internal/aggregator"
	"valtrack/internal/content"
	"valtrack/internal/henrikdev"
	"valtrack/internal/merge"
	"valtrack/internal/model"
	"valtrack/internal/premium"
	"valtrack/internal/storage"
)

// generate command flags.
var (
	genPlayer string
	genCount  int
	genRegion string
	genAPIKey string
	genInput  string
	genForce  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Fetch recent matches and regenerate player aggregates",
	Long: `Fetches the tracked player's recent matches, derives per-round
performance facts, folds them into per-agent, per-map, per-weapon and
per-season aggregates, merges them with the stored aggregates and flags
premium entries.

Matches already recorded in the processed ledger are skipped unless
--force is given. With --input, matches are read from local JSON files
instead of the HenrikDev API.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genPlayer, "player", "", "tracked player puuid (default: player.puuid from config)")
	generateCmd.Flags().IntVar(&genCount, "count", 10, "number of recent matches to fetch")
	generateCmd.Flags().StringVar(&genRegion, "region", "", "API region, e.g. na, eu (default: region from config)")
	generateCmd.Flags().StringVar(&genAPIKey, "api-key", "", "HenrikDev API key (default: henrikdev.api_key from config or $VALTRACK_HENRIKDEV_API_KEY)")
	generateCmd.Flags().StringVar(&genInput, "input", "", "read match JSON from this file or directory instead of the API")
	generateCmd.Flags().BoolVar(&genForce, "force", false, "re-process matches already in the ledger")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	playerID, err := resolvePlayer(genPlayer)
	if err != nil {
		return err
	}

	matches, err := loadMatches(cmd, playerID)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Fprintln(os.Stdout, "No matches found.")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	if !genForce {
		processed, err := db.ProcessedMatchIDs(playerID)
		if err != nil {
			return fmt.Errorf("load processed ledger: %w", err)
		}
		matches = dropProcessed(matches, processed)
		if len(matches) == 0 {
			fmt.Fprintln(os.Stdout, "All fetched matches already processed. Use --force to re-process.")
			return nil
		}
	}
	logger.Info("generating aggregates", "player", playerID, "matches", len(matches))

	cache := content.NewCache(content.NewClient(""))
	gen := &aggregator.Generator{Logger: logger, Callouts: cache}
	fresh := gen.Generate(cmd.Context(), playerID, matches)

	old, err := db.GetBundle(playerID)
	if err != nil {
		return fmt.Errorf("load stored aggregates: %w", err)
	}

	engine := &merge.Engine{Logger: logger}
	merged := engine.Bundle(old, fresh)

	scorer := &premium.Scorer{ActiveSeason: viper.GetString("active_season")}
	scorer.Flag(merged)

	cache.Enrich(cmd.Context(), logger, merged)

	if err := db.UpsertBundle(playerID, merged); err != nil {
		return fmt.Errorf("store aggregates: %w", err)
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.MatchID)
	}
	if err := db.MarkProcessed(playerID, ids); err != nil {
		return fmt.Errorf("update processed ledger: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Processed %d matches: %d agents, %d maps, %d weapons, %d seasons.\n",
		len(matches), len(merged.Agents), len(merged.Maps), len(merged.Weapons), len(merged.Seasons))
	return nil
}

func loadMatches(cmd *cobra.Command, playerID string) ([]model.MatchRecord, error) {
	if genInput != "" {
		return loadMatchFiles(genInput)
	}

	region := genRegion
	if region == "" {
		region = viper.GetString("region")
	}
	apiKey := genAPIKey
	if apiKey == "" {
		apiKey = viper.GetString("henrikdev.api_key")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no API key: pass --api-key or set henrikdev.api_key in the config")
	}

	client := henrikdev.NewClient(henrikdev.Config{APIKey: apiKey, Region: region})
	matches, err := client.MatchHistory(cmd.Context(), playerID, genCount)
	if err != nil {
		return nil, fmt.Errorf("fetch match history: %w", err)
	}
	return matches, nil
}

// loadMatchFiles reads one or more exported match JSON files. A directory is
// read non-recursively, all .json entries in name order.
func loadMatchFiles(path string) ([]model.MatchRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("input %s: %w", path, err)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read input dir: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
		sort.Strings(files)
	} else {
		files = []string{path}
	}

	var matches []model.MatchRecord
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		parsed, err := henrikdev.ParseMatches(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		matches = append(matches, parsed...)
	}
	return matches, nil
}

func dropProcessed(matches []model.MatchRecord, processed map[string]bool) []model.MatchRecord {
	kept := matches[:0]
	for _, m := range matches {
		if !processed[m.MatchID] {
			kept = append(kept, m)
		}
	}
	return kept
}
