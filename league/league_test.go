package league

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"passnet/analysis"
	"passnet/nba"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTeams() []nba.Team {
	return []nba.Team{
		{Abbreviation: "AAA", ID: 1, Name: "Team A"},
		{Abbreviation: "BBB", ID: 2, Name: "Team B"},
		{Abbreviation: "CCC", ID: 3, Name: "Team C"},
	}
}

func fakeRoster(players ...int) RosterFunc {
	return func(ctx context.Context, teamID int, season string) ([]nba.RosterPlayer, error) {
		roster := make([]nba.RosterPlayer, len(players))
		for i, id := range players {
			pid := float64(teamID*100 + id)
			name := fmt.Sprintf("Player %d-%d", teamID, id)
			roster[i] = nba.RosterPlayer{PlayerID: &pid, PlayerName: &name}
		}
		return roster, nil
	}
}

func fakePasses(ctx context.Context, playerID, teamID int, season string) ([]nba.PlayerPass, error) {
	passer := fmt.Sprintf("Player %d-%d", teamID, playerID%100)
	receiver := fmt.Sprintf("Player %d-%d", teamID, playerID%100+1)
	count := 10.0
	return []nba.PlayerPass{
		{PasserName: &passer, PassTo: &receiver, PassCount: &count},
	}, nil
}

func newTestAggregator(t *testing.T) *Aggregator {
	t.Helper()
	a := NewAggregator(slog.New(slog.DiscardHandler))
	a.Teams = testTeams()
	a.Roster = fakeRoster(1, 2)
	a.Passes = fakePasses
	return a
}

func TestTeamPassing_MergesRosterDashboards(t *testing.T) {
	a := newTestAggregator(t)

	records, err := a.TeamPassing(context.Background(), "2024-25", a.Teams[0])
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "AAA", records[0].Team)
	assert.Equal(t, "Player 1-1", records[0].Passer)
	assert.Equal(t, 10, records[0].PassCount)
}

func TestTeamPassing_PlayerFailureIsSkipped(t *testing.T) {
	a := newTestAggregator(t)
	a.Passes = func(ctx context.Context, playerID, teamID int, season string) ([]nba.PlayerPass, error) {
		if playerID%100 == 1 {
			return nil, errors.New("stats.nba.com hung up")
		}
		return fakePasses(ctx, playerID, teamID, season)
	}

	records, err := a.TeamPassing(context.Background(), "2024-25", a.Teams[0])
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Player 1-2", records[0].Passer)
}

func TestLeaguePassing_InvalidSeason(t *testing.T) {
	a := newTestAggregator(t)
	_, err := a.LeaguePassing(context.Background(), "banana")
	assert.Error(t, err)
}

func TestLeaguePassing_DeterministicOrderUnderFanOut(t *testing.T) {
	a := newTestAggregator(t)
	a.Workers = 3

	first, err := a.LeaguePassing(context.Background(), "2024-25")
	require.NoError(t, err)
	second, err := a.LeaguePassing(context.Background(), "2024-25")
	require.NoError(t, err)

	require.Len(t, first, 3)
	for i, team := range testTeams() {
		assert.Equal(t, team.Abbreviation, first[i].Team)
	}
	assert.Equal(t, first, second)
}

func TestLeagueCentrality_OneTeamFailureDoesNotAbortOthers(t *testing.T) {
	a := newTestAggregator(t)
	a.Roster = func(ctx context.Context, teamID int, season string) ([]nba.RosterPlayer, error) {
		if teamID == 2 {
			return nil, errors.New("roster unavailable")
		}
		return fakeRoster(1, 2)(ctx, teamID, season)
	}

	combined, outcomes, err := a.LeagueCentrality(context.Background(), "2024-25")
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.NoError(t, outcomes[0].Err)
	assert.Error(t, outcomes[1].Err)
	assert.NoError(t, outcomes[2].Err)

	teams := map[string]bool{}
	for _, r := range combined {
		teams[r.Team] = true
	}
	assert.True(t, teams["AAA"])
	assert.False(t, teams["BBB"])
	assert.True(t, teams["CCC"])
}

func TestLeagueCentrality_EmptyTeamRecordedAsComputationFailure(t *testing.T) {
	a := newTestAggregator(t)
	a.Roster = func(ctx context.Context, teamID int, season string) ([]nba.RosterPlayer, error) {
		if teamID == 3 {
			return []nba.RosterPlayer{}, nil
		}
		return fakeRoster(1, 2)(ctx, teamID, season)
	}

	combined, outcomes, err := a.LeagueCentrality(context.Background(), "2024-25")
	require.NoError(t, err)
	assert.ErrorIs(t, outcomes[2].Err, analysis.ErrNoRecords)
	for _, r := range combined {
		assert.NotEqual(t, "CCC", r.Team)
	}
}

func TestLeagueCentrality_CombinedMatchesPerTeamRows(t *testing.T) {
	a := newTestAggregator(t)

	combined, outcomes, err := a.LeagueCentrality(context.Background(), "2024-25")
	require.NoError(t, err)

	flattened := []analysis.CentralityRow{}
	for _, o := range outcomes {
		flattened = append(flattened, o.Rows...)
	}
	assert.Equal(t, flattened, combined)
}
