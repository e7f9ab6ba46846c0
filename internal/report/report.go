package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"valtrack/internal/model"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func premiumMarker(premium bool) string {
	if premium {
		return "*"
	}
	return " "
}

// statLine is the per-season aggregate summed across all seasons of one entity.
type statLine struct {
	matches int
	wins    int
	kills   int
	deaths  int
	assists int
	rounds  int
}

func sumSeasons(seasons []*model.SeasonPerformance) statLine {
	var l statLine
	for _, sp := range seasons {
		if sp == nil {
			continue
		}
		l.matches += sp.Totals.MatchesPlayed
		l.wins += sp.Totals.MatchesWon
		l.kills += sp.Totals.Kills
		l.deaths += sp.Totals.Deaths
		l.assists += sp.Totals.Assists
		l.rounds += sp.Totals.RoundsPlayed
	}
	return l
}

func (l statLine) kd() string {
	if l.deaths == 0 {
		return fmt.Sprintf("%.2f", float64(l.kills))
	}
	return fmt.Sprintf("%.2f", float64(l.kills)/float64(l.deaths))
}

func (l statLine) winRate() string {
	if l.matches == 0 {
		return "—"
	}
	return fmt.Sprintf("%.0f%%", 100*float64(l.wins)/float64(l.matches))
}

func name(n, fallback string) string {
	if n != "" {
		return n
	}
	return fallback
}

// PrintAgentTable prints per-agent aggregates. Premium rows are marked with "*".
func PrintAgentTable(w io.Writer, agents []*model.AgentStat) {
	table := newTable(w)
	table.Header(" ", "AGENT", "MATCHES", "WIN%", "K", "D", "A", "K/D", "SEASONS")

	for _, a := range agents {
		l := sumSeasons(a.Seasons)
		table.Append(
			premiumMarker(a.Premium),
			name(a.Name, a.AgentID),
			strconv.Itoa(l.matches),
			l.winRate(),
			strconv.Itoa(l.kills),
			strconv.Itoa(l.deaths),
			strconv.Itoa(l.assists),
			l.kd(),
			strconv.Itoa(len(a.Seasons)),
		)
	}
	table.Render()
}

// PrintMapTable prints per-map aggregates with attack/defense splits.
func PrintMapTable(w io.Writer, maps []*model.MapStat) {
	table := newTable(w)
	table.Header(" ", "MAP", "MATCHES", "WIN%", "ATK_RW", "ATK_RL", "DEF_RW", "DEF_RL", "K/D")

	for _, m := range maps {
		l := sumSeasons(m.Seasons)
		var atkW, atkL, defW, defL int
		for _, sp := range m.Seasons {
			if sp == nil {
				continue
			}
			if sp.Attack != nil {
				atkW += sp.Attack.RoundsWon
				atkL += sp.Attack.RoundsLost
			}
			if sp.Defense != nil {
				defW += sp.Defense.RoundsWon
				defL += sp.Defense.RoundsLost
			}
		}
		table.Append(
			premiumMarker(m.Premium),
			name(m.Name, m.MapID),
			strconv.Itoa(l.matches),
			l.winRate(),
			strconv.Itoa(atkW),
			strconv.Itoa(atkL),
			strconv.Itoa(defW),
			strconv.Itoa(defL),
			l.kd(),
		)
	}
	table.Render()
}

// PrintWeaponTable prints per-weapon aggregates.
func PrintWeaponTable(w io.Writer, weapons []*model.WeaponStat) {
	table := newTable(w)
	table.Header(" ", "WEAPON", "KILLS", "HS", "BODY", "LEG", "K/RND", "DMG/RND")

	for _, wp := range weapons {
		var kills, head, body, leg, rounds, damage int
		for _, sp := range wp.Seasons {
			if sp == nil || sp.Weapon == nil {
				continue
			}
			kills += sp.Weapon.Kills
			head += sp.Weapon.Headshots
			body += sp.Weapon.Bodyshots
			leg += sp.Weapon.Legshots
			rounds += sp.Weapon.RoundsUsed
			damage += sp.Weapon.Damage
		}
		kpr, dpr := "—", "—"
		if rounds > 0 {
			kpr = fmt.Sprintf("%.2f", float64(kills)/float64(rounds))
			dpr = fmt.Sprintf("%.1f", float64(damage)/float64(rounds))
		}
		table.Append(
			premiumMarker(wp.Premium),
			name(wp.Name, wp.WeaponID),
			strconv.Itoa(kills),
			strconv.Itoa(head),
			strconv.Itoa(body),
			strconv.Itoa(leg),
			kpr,
			dpr,
		)
	}
	table.Render()
}

// PrintSeasonTable prints flat per-season totals.
func PrintSeasonTable(w io.Writer, seasons []*model.SeasonStat) {
	table := newTable(w)
	table.Header(" ", "SEASON", "MATCHES", "WIN%", "K", "D", "A", "K/D", "ACES", "FIRST_K", "RANK")

	for _, s := range seasons {
		t := s.Totals
		rank := "—"
		if t.HighestRank > 0 {
			rank = strconv.Itoa(t.HighestRank)
		}
		table.Append(
			premiumMarker(s.Premium),
			name(s.Name, s.SeasonID),
			strconv.Itoa(t.MatchesPlayed),
			fmt.Sprintf("%.0f%%", t.WinRate()),
			strconv.Itoa(t.Kills),
			strconv.Itoa(t.Deaths),
			strconv.Itoa(t.Assists),
			fmt.Sprintf("%.2f", t.KDRatio()),
			strconv.Itoa(t.Aces),
			strconv.Itoa(t.FirstKills),
			rank,
		)
	}
	table.Render()
}

// PrintMatchTable prints one row per processed match, most recent first.
func PrintMatchTable(w io.Writer, matches []*model.MatchStat) {
	sorted := append([]*model.MatchStat{}, matches...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartedAt.After(sorted[j].StartedAt)
	})

	table := newTable(w)
	table.Header(" ", "MATCH", "MAP", "AGENT", "RESULT", "K", "D", "A", "K/D", "IMPACT")

	for _, m := range sorted {
		result := "LOSS"
		if m.Won {
			result = "WIN"
		}
		table.Append(
			premiumMarker(m.Premium),
			shortID(m.MatchID),
			m.MapID,
			m.AgentID,
			result,
			strconv.Itoa(m.Kills),
			strconv.Itoa(m.Deaths),
			strconv.Itoa(m.Assists),
			fmt.Sprintf("%.2f", m.KDRatio()),
			fmt.Sprintf("%.1f", m.ImpactScore),
		)
	}
	table.Render()
}

// PrintRoundTable prints the per-round breakdown for a single match.
func PrintRoundTable(w io.Writer, m *model.MatchStat) {
	fmt.Fprintf(w, "\nMatch: %s  |  Map: %s  |  Agent: %s  |  Impact: %.1f\n\n",
		m.MatchID, m.MapID, m.AgentID, m.ImpactScore)

	table := newTable(w)
	table.Header("RND", "W/L", "SIDE", "K", "D", "A", "DMG", "ROLE", "IMPACT", "SUGGESTION")

	for _, r := range m.Rounds {
		role := r.Positioning.PositionType
		if role == "" {
			role = "—"
		}
		suggestion := ""
		if len(r.Suggestions) > 0 {
			suggestion = r.Suggestions[0]
		}
		table.Append(
			strconv.Itoa(r.RoundNumber),
			winLoss(r.Outcome),
			r.Positioning.Side.String(),
			strconv.Itoa(r.Combat.Kills),
			strconv.Itoa(r.Combat.Deaths),
			strconv.Itoa(r.Combat.Assists),
			strconv.Itoa(r.Combat.DamageDealt),
			role,
			fmt.Sprintf("%.1f", r.ImpactScore),
			suggestion,
		)
	}
	table.Render()

	if len(m.Clutches) > 0 {
		fmt.Fprintln(w)
		for _, c := range m.Clutches {
			outcome := "lost"
			if c.Won {
				outcome = "won"
			}
			fmt.Fprintf(w, "  round %d: %s clutch %s\n", c.RoundNumber, c.Situation, outcome)
		}
	}
}

func winLoss(outcome string) string {
	if outcome == model.OutcomeWon {
		return "W"
	}
	return "L"
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
