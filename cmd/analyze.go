package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"

	"valtrack/internal/model"
)

const analyzeSystemPrompt = `You are a Valorant performance analyst. You are given structured aggregate
data from a match-telemetry tool and a question from the player.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise and actionable — focus on what the player can actually improve.
- Avoid generic Valorant advice unless it directly explains a pattern in the data.

Metrics glossary:
- K/D: Kills ÷ deaths. 1.0 is break-even.
- Win%: matches won ÷ matches played.
- Impact: per-round 0–100 composite of combat, economy, positioning and utility.
- First kills: rounds opened with a kill — high strategic value.
- Aces: rounds with 5 or more kills.
- 1vN clutch W/A: won/attempted situations as last player alive vs N enemies.
- Attack/Defense splits: rounds 1–12 one side, 13+ the other.
- Role (Aggressive/Control/Anchor/Lurk/Retake): inferred from where the player
  took their first fight each round.
- AKPR: average kills per round with a given weapon, counting only rounds
  where it was bought or scored a kill.`

var (
	analyzeModel  string
	analyzeAPIKey string
	analyzePlayer string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "AI-powered grounded analysis (requires ANTHROPIC_API_KEY)",
}

var analyzePlayerCmd = &cobra.Command{
	Use:   "player <question>",
	Short: "Analyze the tracked player's aggregates with AI",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyzePlayer,
}

var analyzeMatchCmd = &cobra.Command{
	Use:   "match <match-id-prefix> <question>",
	Short: "Analyze a single match with AI",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyzeMatch,
}

func init() {
	analyzeCmd.PersistentFlags().StringVar(&analyzeModel, "model", "claude-haiku-4-5-20251001", "Anthropic model to use")
	analyzeCmd.PersistentFlags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	analyzeCmd.PersistentFlags().StringVar(&analyzePlayer, "player", "", "tracked player puuid (default: player.puuid from config)")

	analyzeCmd.AddCommand(analyzePlayerCmd)
	analyzeCmd.AddCommand(analyzeMatchCmd)
}

func runAnalyzePlayer(cmd *cobra.Command, args []string) error {
	viewPlayer = analyzePlayer
	db, bundle, err := loadBundle()
	if err != nil {
		return err
	}
	defer db.Close()

	if len(bundle.Seasons) == 0 {
		return fmt.Errorf("no stored aggregates; run 'valtrack generate' first")
	}

	contextJSON, err := buildPlayerContext(bundle)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	return callAnthropic(cmd.Context(), analyzeAPIKey, analyzeModel, contextJSON, args[0])
}

func runAnalyzeMatch(cmd *cobra.Command, args []string) error {
	viewPlayer = analyzePlayer
	db, bundle, err := loadBundle()
	if err != nil {
		return err
	}
	defer db.Close()

	match, err := findMatch(bundle.Matches, args[0])
	if err != nil {
		return err
	}

	contextJSON, err := buildMatchContext(match)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	return callAnthropic(cmd.Context(), analyzeAPIKey, analyzeModel, contextJSON, args[1])
}

// buildPlayerContext serialises the stored aggregates into compact JSON.
func buildPlayerContext(b *model.StatsBundle) (string, error) {
	type seasonEntry struct {
		Season     string  `json:"season"`
		Matches    int     `json:"matches"`
		WinPct     float64 `json:"win_pct"`
		KD         float64 `json:"kd"`
		Aces       int     `json:"aces"`
		FirstKills int     `json:"first_kills"`
	}
	type agentEntry struct {
		Agent   string  `json:"agent"`
		Matches int     `json:"matches"`
		WinPct  float64 `json:"win_pct"`
		KD      float64 `json:"kd"`
		Premium bool    `json:"standout"`
	}
	type mapEntry struct {
		Map           string  `json:"map"`
		Matches       int     `json:"matches"`
		WinPct        float64 `json:"win_pct"`
		AttackWinPct  float64 `json:"attack_round_win_pct"`
		DefenseWinPct float64 `json:"defense_round_win_pct"`
	}
	type weaponEntry struct {
		Weapon string  `json:"weapon"`
		Kills  int     `json:"kills"`
		AKPR   float64 `json:"akpr"`
		HSPct  float64 `json:"hs_pct"`
	}

	seasons := make([]seasonEntry, 0, len(b.Seasons))
	for _, s := range b.Seasons {
		name := s.Name
		if name == "" {
			name = s.SeasonID
		}
		seasons = append(seasons, seasonEntry{
			Season:     name,
			Matches:    s.Totals.MatchesPlayed,
			WinPct:     round2(s.Totals.WinRate()),
			KD:         round2(s.Totals.KDRatio()),
			Aces:       s.Totals.Aces,
			FirstKills: s.Totals.FirstKills,
		})
	}

	agents := make([]agentEntry, 0, len(b.Agents))
	for _, a := range b.Agents {
		var matches, wins, kills, deaths int
		for _, sp := range a.Seasons {
			matches += sp.Totals.MatchesPlayed
			wins += sp.Totals.MatchesWon
			kills += sp.Totals.Kills
			deaths += sp.Totals.Deaths
		}
		name := a.Name
		if name == "" {
			name = a.AgentID
		}
		agents = append(agents, agentEntry{
			Agent:   name,
			Matches: matches,
			WinPct:  round2(pct(wins, matches)),
			KD:      round2(ratio(kills, deaths)),
			Premium: a.Premium,
		})
	}

	maps := make([]mapEntry, 0, len(b.Maps))
	for _, m := range b.Maps {
		var matches, wins, atkW, atkL, defW, defL int
		for _, sp := range m.Seasons {
			matches += sp.Totals.MatchesPlayed
			wins += sp.Totals.MatchesWon
			if sp.Attack != nil {
				atkW += sp.Attack.RoundsWon
				atkL += sp.Attack.RoundsLost
			}
			if sp.Defense != nil {
				defW += sp.Defense.RoundsWon
				defL += sp.Defense.RoundsLost
			}
		}
		name := m.Name
		if name == "" {
			name = m.MapID
		}
		maps = append(maps, mapEntry{
			Map:           name,
			Matches:       matches,
			WinPct:        round2(pct(wins, matches)),
			AttackWinPct:  round2(pct(atkW, atkW+atkL)),
			DefenseWinPct: round2(pct(defW, defW+defL)),
		})
	}

	weapons := make([]weaponEntry, 0, len(b.Weapons))
	for _, w := range b.Weapons {
		var kills, head, body, leg, rounds int
		for _, sp := range w.Seasons {
			if sp.Weapon == nil {
				continue
			}
			kills += sp.Weapon.Kills
			head += sp.Weapon.Headshots
			body += sp.Weapon.Bodyshots
			leg += sp.Weapon.Legshots
			rounds += sp.Weapon.RoundsUsed
		}
		name := w.Name
		if name == "" {
			name = w.WeaponID
		}
		weapons = append(weapons, weaponEntry{
			Weapon: name,
			Kills:  kills,
			AKPR:   round2(ratio(kills, rounds)),
			HSPct:  round2(pct(head, head+body+leg)),
		})
	}

	doc := map[string]interface{}{
		"subject": "player",
		"seasons": seasons,
		"agents":  agents,
		"maps":    maps,
		"weapons": weapons,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// buildMatchContext serialises one match's round breakdown into compact JSON.
func buildMatchContext(m *model.MatchStat) (string, error) {
	type roundEntry struct {
		Round       int      `json:"round"`
		Won         bool     `json:"won"`
		Side        string   `json:"side"`
		Kills       int      `json:"kills"`
		Deaths      int      `json:"deaths"`
		Damage      int      `json:"damage"`
		Role        string   `json:"role,omitempty"`
		Impact      float64  `json:"impact"`
		Suggestions []string `json:"suggestions,omitempty"`
	}
	rounds := make([]roundEntry, 0, len(m.Rounds))
	for _, r := range m.Rounds {
		rounds = append(rounds, roundEntry{
			Round:       r.RoundNumber,
			Won:         r.Outcome == model.OutcomeWon,
			Side:        r.Positioning.Side.String(),
			Kills:       r.Combat.Kills,
			Deaths:      r.Combat.Deaths,
			Damage:      r.Combat.DamageDealt,
			Role:        r.Positioning.PositionType,
			Impact:      round2(r.ImpactScore),
			Suggestions: r.Suggestions,
		})
	}

	clutches := make([]map[string]interface{}, 0, len(m.Clutches))
	for _, c := range m.Clutches {
		clutches = append(clutches, map[string]interface{}{
			"round":     c.RoundNumber,
			"situation": c.Situation,
			"won":       c.Won,
		})
	}

	doc := map[string]interface{}{
		"subject":  "match",
		"match_id": m.MatchID,
		"map":      m.MapID,
		"agent":    m.AgentID,
		"won":      m.Won,
		"score":    fmt.Sprintf("%d-%d", m.RoundsWon, m.RoundsLost),
		"kd":       round2(m.KDRatio()),
		"impact":   round2(m.ImpactScore),
		"rounds":   rounds,
		"clutches": clutches,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// callAnthropic streams a response from the Anthropic API and prints it to stdout.
func callAnthropic(ctx context.Context, apiKey, modelID, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)

	fmt.Fprintln(os.Stdout, "\n─── AI Analysis ─────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: analyzeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(os.Stdout, delta.Delta.AsTextDelta().Text)
			}
		}
	}
	fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed — check your API key")
		}
		return fmt.Errorf("API request failed: %w", err)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return float64(num)
	}
	return float64(num) / float64(den)
}
