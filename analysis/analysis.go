// Package analysis turns raw passing records into per-team centrality tables
// and answers the ball-distribution imbalance query over the combined table.
package analysis

import (
	"errors"
	"fmt"
	"strings"

	"passnet/graph"
)

// PassingRecord is one season-total passing pair for a team. Immutable once
// fetched.
type PassingRecord struct {
	Passer    string `json:"passer"`
	Receiver  string `json:"receiver"`
	PassCount int    `json:"pass_count"`
	Team      string `json:"team"`
}

// CentralityRow holds the three centrality measures for one player on one
// team. A player who rostered with two teams in a season appears once per
// team in the combined table.
type CentralityRow struct {
	Player      string  `json:"player" db:"player"`
	Degree      float64 `json:"degree" db:"degree"`
	Betweenness float64 `json:"betweenness" db:"betweenness"`
	Closeness   float64 `json:"closeness" db:"closeness"`
	Team        string  `json:"team" db:"team"`
}

var ErrNoRecords = errors.New("no passing records")
var ErrMalformedRecord = errors.New("malformed passing record")
var ErrUnknownMetric = errors.New("unknown centrality metric")
var ErrEmptyTable = errors.New("empty centrality table")

// TeamCentrality builds the passing graph for one team and emits one
// CentralityRow per node. Nodes are seeded from the passer column; a player
// who only ever appears as a receiver enters the graph through edge
// insertion. That asymmetry matches the upstream dashboard, which emits a
// row set per rostered passer.
func TeamCentrality(team string, records []PassingRecord) ([]CentralityRow, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w for team %s", ErrNoRecords, team)
	}

	g := graph.NewGraph()
	for _, r := range records {
		if r.Passer == "" {
			return nil, fmt.Errorf("%w: missing passer name for team %s", ErrMalformedRecord, team)
		}
		g.AddNode(r.Passer)
	}
	for _, r := range records {
		if r.Receiver == "" {
			return nil, fmt.Errorf("%w: missing receiver name for team %s", ErrMalformedRecord, team)
		}
		g.AddEdge(r.Passer, r.Receiver)
	}

	deg := g.DegreeCentrality()
	btw := g.Betweenness()
	clo := g.Closeness()

	rows := make([]CentralityRow, 0, g.NodeCount())
	for _, name := range g.Nodes() {
		rows = append(rows, CentralityRow{
			Player:      name,
			Degree:      deg[name],
			Betweenness: btw[name],
			Closeness:   clo[name],
			Team:        team,
		})
	}
	return rows, nil
}

// Combine concatenates per-team tables into one, preserving input order.
// No dedup: cross-team duplicates are meaningful.
func Combine(tables ...[]CentralityRow) []CentralityRow {
	total := 0
	for _, t := range tables {
		total += len(t)
	}
	combined := make([]CentralityRow, 0, total)
	for _, t := range tables {
		combined = append(combined, t...)
	}
	return combined
}

type Metric string

const (
	MetricDegree      Metric = "DEGREE"
	MetricBetweenness Metric = "BETWEENNESS"
	MetricCloseness   Metric = "CLOSENESS"
)

// ParseMetric recognizes the three metric names, case-insensitively.
func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToUpper(s)) {
	case MetricDegree:
		return MetricDegree, nil
	case MetricBetweenness:
		return MetricBetweenness, nil
	case MetricCloseness:
		return MetricCloseness, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

func (m Metric) value(row CentralityRow) float64 {
	switch m {
	case MetricDegree:
		return row.Degree
	case MetricBetweenness:
		return row.Betweenness
	case MetricCloseness:
		return row.Closeness
	}
	return 0
}

// ImbalanceReport names the team with the widest max-minus-min spread of a
// metric and the player holding that team's maximum.
type ImbalanceReport struct {
	Team   string  `json:"team"`
	Player string  `json:"player"`
	Spread float64 `json:"spread"`
	Metric Metric  `json:"metric"`
}

// MostImbalancedTeam groups the combined table by team, computes the spread
// of the selected metric per team, and returns the widest-spread team along
// with its top player. Ties at either level go to the first-encountered
// candidate in input order.
func MostImbalancedTeam(rows []CentralityRow, metric Metric) (*ImbalanceReport, error) {
	metric, err := ParseMetric(string(metric))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	teamOrder := []string{}
	byTeam := map[string][]CentralityRow{}
	for _, r := range rows {
		if _, exists := byTeam[r.Team]; !exists {
			teamOrder = append(teamOrder, r.Team)
		}
		byTeam[r.Team] = append(byTeam[r.Team], r)
	}

	bestTeam := ""
	bestSpread := -1.0
	for _, team := range teamOrder {
		min, max := byTeam[team][0], byTeam[team][0]
		for _, r := range byTeam[team][1:] {
			if metric.value(r) > metric.value(max) {
				max = r
			}
			if metric.value(r) < metric.value(min) {
				min = r
			}
		}
		spread := metric.value(max) - metric.value(min)
		if spread > bestSpread {
			bestSpread = spread
			bestTeam = team
		}
	}

	top := byTeam[bestTeam][0]
	for _, r := range byTeam[bestTeam][1:] {
		if metric.value(r) > metric.value(top) {
			top = r
		}
	}

	return &ImbalanceReport{
		Team:   bestTeam,
		Player: top.Player,
		Spread: bestSpread,
		Metric: metric,
	}, nil
}
