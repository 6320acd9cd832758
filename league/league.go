// Package league walks the team directory and assembles per-team passing
// records and centrality tables, isolating per-team failures so one bad
// fetch never aborts the rest of the run.
package league

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"passnet/analysis"
	"passnet/nba"
	"passnet/utils"
)

type RosterFunc func(ctx context.Context, teamID int, season string) ([]nba.RosterPlayer, error)
type PassesFunc func(ctx context.Context, playerID, teamID int, season string) ([]nba.PlayerPass, error)

// Aggregator fetches and aggregates passing data league-wide. Fetch funcs
// default to the stats.nba.com client and are fields so tests can inject
// fakes.
type Aggregator struct {
	Logger  *slog.Logger
	Teams   []nba.Team
	Workers int
	Roster  RosterFunc
	Passes  PassesFunc
}

func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Aggregator{
		Logger:  logger,
		Teams:   nba.Teams,
		Workers: 4,
		Roster:  nba.CommonTeamRoster,
		Passes:  nba.PlayerPassesMade,
	}
}

// TeamResult carries one team's outcome for a run: either its data or the
// failure that replaced it. Downstream chooses to continue past failed
// teams; nothing is swallowed silently.
type TeamResult struct {
	Team    string
	Records []analysis.PassingRecord
	Rows    []analysis.CentralityRow
	Err     error
}

// TeamPassing merges the pass dashboards of every rostered player into one
// record slice for the team. A single player's fetch failure is logged and
// substituted with nothing; a roster failure fails the team.
func (a *Aggregator) TeamPassing(ctx context.Context, season string, team nba.Team) ([]analysis.PassingRecord, error) {
	roster, err := a.Roster(ctx, team.ID, season)
	if err != nil {
		return nil, utils.ErrorWithTrace(fmt.Errorf("roster lookup failed for %s: %v", team.Abbreviation, err))
	}

	records := []analysis.PassingRecord{}
	for _, p := range roster {
		if p.PlayerID == nil {
			a.Logger.Warn("roster row missing player id", "team", team.Abbreviation)
			continue
		}
		passes, err := a.Passes(ctx, int(*p.PlayerID), team.ID, season)
		if err != nil {
			a.Logger.Warn("pass dashboard fetch failed",
				"team", team.Abbreviation,
				"player_id", int(*p.PlayerID),
				"err", err,
			)
			continue
		}
		for _, pass := range passes {
			if pass.PasserName == nil || pass.PassTo == nil || pass.PassCount == nil {
				a.Logger.Warn("pass row missing columns", "team", team.Abbreviation)
				continue
			}
			records = append(records, analysis.PassingRecord{
				Passer:    *pass.PasserName,
				Receiver:  *pass.PassTo,
				PassCount: int(*pass.PassCount),
				Team:      team.Abbreviation,
			})
		}
	}
	return records, nil
}

// LeaguePassing fetches every team's passing records with a bounded worker
// pool. Results are indexed by directory position, so the flattened order is
// the directory order no matter how the fetches interleave.
func (a *Aggregator) LeaguePassing(ctx context.Context, season string) ([]TeamResult, error) {
	if utils.IsInvalidSeason(season) {
		return nil, utils.ErrorWithTrace(fmt.Errorf("invalid season provided: %s", season))
	}

	workers := a.Workers
	if workers < 1 {
		workers = 1
	}
	results := make([]TeamResult, len(a.Teams))
	sem := make(chan struct{}, workers)
	wg := sync.WaitGroup{}

	for i, team := range a.Teams {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			records, err := a.TeamPassing(ctx, season, team)
			if err != nil {
				a.Logger.Error("team passing fetch failed", "team", team.Abbreviation, "err", err)
			}
			results[i] = TeamResult{Team: team.Abbreviation, Records: records, Err: err}
		}()
	}
	wg.Wait()

	return results, nil
}

// LeagueCentrality runs the centrality engine over every team's records and
// concatenates the per-team tables in directory order. Per-team computation
// failures are logged and recorded on the outcome; the combined table simply
// omits that team.
func (a *Aggregator) LeagueCentrality(ctx context.Context, season string) ([]analysis.CentralityRow, []TeamResult, error) {
	outcomes, err := a.LeaguePassing(ctx, season)
	if err != nil {
		return nil, nil, utils.ErrorWithTrace(err)
	}

	tables := make([][]analysis.CentralityRow, 0, len(outcomes))
	for i := range outcomes {
		if outcomes[i].Err != nil {
			continue
		}
		rows, err := analysis.TeamCentrality(outcomes[i].Team, outcomes[i].Records)
		if err != nil {
			a.Logger.Error("centrality computation failed", "team", outcomes[i].Team, "err", err)
			outcomes[i].Err = err
			continue
		}
		outcomes[i].Rows = rows
		tables = append(tables, rows)
	}

	return analysis.Combine(tables...), outcomes, nil
}
