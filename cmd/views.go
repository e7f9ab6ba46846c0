package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"valtrack/internal/model"
	"valtrack/internal/report"
	"valtrack/internal/storage"
)

// Shared flag for all view commands.
var viewPlayer string

func init() {
	for _, c := range []*cobra.Command{agentsCmd, mapsCmd, weaponsCmd, seasonsCmd, matchesCmd, roundsCmd} {
		c.Flags().StringVar(&viewPlayer, "player", "", "tracked player puuid (default: player.puuid from config)")
	}
}

// loadBundle opens storage and reads the tracked player's stored aggregates.
// The caller owns closing the returned DB.
func loadBundle() (*storage.DB, *model.StatsBundle, error) {
	playerID, err := resolvePlayer(viewPlayer)
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	bundle, err := db.GetBundle(playerID)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("load aggregates: %w", err)
	}
	return db, bundle, nil
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Show per-agent aggregates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, bundle, err := loadBundle()
		if err != nil {
			return err
		}
		defer db.Close()
		if len(bundle.Agents) == 0 {
			fmt.Fprintln(os.Stdout, "No agent data yet. Run 'valtrack generate' first.")
			return nil
		}
		report.PrintAgentTable(os.Stdout, bundle.Agents)
		return nil
	},
}

var mapsCmd = &cobra.Command{
	Use:   "maps",
	Short: "Show per-map aggregates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, bundle, err := loadBundle()
		if err != nil {
			return err
		}
		defer db.Close()
		if len(bundle.Maps) == 0 {
			fmt.Fprintln(os.Stdout, "No map data yet. Run 'valtrack generate' first.")
			return nil
		}
		report.PrintMapTable(os.Stdout, bundle.Maps)
		return nil
	},
}

var weaponsCmd = &cobra.Command{
	Use:   "weapons",
	Short: "Show per-weapon aggregates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, bundle, err := loadBundle()
		if err != nil {
			return err
		}
		defer db.Close()
		if len(bundle.Weapons) == 0 {
			fmt.Fprintln(os.Stdout, "No weapon data yet. Run 'valtrack generate' first.")
			return nil
		}
		report.PrintWeaponTable(os.Stdout, bundle.Weapons)
		return nil
	},
}

var seasonsCmd = &cobra.Command{
	Use:   "seasons",
	Short: "Show per-season totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, bundle, err := loadBundle()
		if err != nil {
			return err
		}
		defer db.Close()
		if len(bundle.Seasons) == 0 {
			fmt.Fprintln(os.Stdout, "No season data yet. Run 'valtrack generate' first.")
			return nil
		}
		report.PrintSeasonTable(os.Stdout, bundle.Seasons)
		return nil
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List processed matches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, bundle, err := loadBundle()
		if err != nil {
			return err
		}
		defer db.Close()
		if len(bundle.Matches) == 0 {
			fmt.Fprintln(os.Stdout, "No matches yet. Run 'valtrack generate' first.")
			return nil
		}
		report.PrintMatchTable(os.Stdout, bundle.Matches)
		return nil
	},
}

var roundsCmd = &cobra.Command{
	Use:   "rounds <match-id-prefix>",
	Short: "Show the round-by-round breakdown of one match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, bundle, err := loadBundle()
		if err != nil {
			return err
		}
		defer db.Close()

		match, err := findMatch(bundle.Matches, args[0])
		if err != nil {
			return err
		}
		report.PrintRoundTable(os.Stdout, match)
		return nil
	},
}

// findMatch resolves a match-id prefix against the stored matches.
func findMatch(matches []*model.MatchStat, prefix string) (*model.MatchStat, error) {
	var found *model.MatchStat
	for _, m := range matches {
		if !strings.HasPrefix(m.MatchID, prefix) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("match prefix %q is ambiguous", prefix)
		}
		found = m
	}
	if found == nil {
		return nil, fmt.Errorf("no match with prefix %q", prefix)
	}
	return found, nil
}
