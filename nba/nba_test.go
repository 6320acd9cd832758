package nba

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rosterFixture = `{
	"resultSets": [{
		"name": "CommonTeamRoster",
		"rowSet": [
			[1610612744, "2024-25", "00", "Stephen Curry", "stephen-curry", "30", "G", "6-2", "185", "MAR 14, 1988", 36.0, "15", "Davidson", 201939.0, "Draft"],
			[1610612744, "2024-25", "00", "Draymond Green", "draymond-green", "23", "F", "6-6", "230", "MAR 04, 1990", 34.0, "12", "Michigan State", 203110.0, "Draft"]
		]
	}]
}`

const passesFixture = `{
	"resultSets": [{
		"name": "PassesMade",
		"rowSet": [
			[201939.0, "Curry, Stephen", "Golden State Warriors", 1610612744.0, "GSW", "made", 74.0, "Green, Draymond", 203110.0, 0.205, 612.0, 38.0],
			[201939.0, "Curry, Stephen", "Golden State Warriors", 1610612744.0, "GSW", "made", 74.0, "Kuminga, Jonathan", 1630228.0, 0.11, 328.0, 21.0]
		]
	}, {
		"name": "PassesReceived",
		"rowSet": []
	}]
}`

func withFixtureServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	orig := StatsBaseURL
	StatsBaseURL = server.URL
	t.Cleanup(func() { StatsBaseURL = orig })
}

func TestCommonTeamRoster(t *testing.T) {
	withFixtureServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "commonteamroster")
		assert.Equal(t, "2024-25", r.URL.Query().Get("Season"))
		w.Write([]byte(rosterFixture))
	})

	roster, err := CommonTeamRoster(context.Background(), 1610612744, "2024-25")
	require.NoError(t, err)
	require.Len(t, roster, 2)

	require.NotNil(t, roster[0].PlayerName)
	require.NotNil(t, roster[0].PlayerID)
	assert.Equal(t, "Stephen Curry", *roster[0].PlayerName)
	assert.Equal(t, 201939.0, *roster[0].PlayerID)
}

func TestPlayerPassesMade(t *testing.T) {
	withFixtureServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "playerdashptpass")
		w.Write([]byte(passesFixture))
	})

	passes, err := PlayerPassesMade(context.Background(), 201939, 1610612744, "2024-25")
	require.NoError(t, err)
	require.Len(t, passes, 2)

	require.NotNil(t, passes[0].PassTo)
	require.NotNil(t, passes[0].PassCount)
	assert.Equal(t, "Curry, Stephen", *passes[0].PasserName)
	assert.Equal(t, "Green, Draymond", *passes[0].PassTo)
	assert.Equal(t, 612.0, *passes[0].PassCount)
	assert.Equal(t, "GSW", *passes[0].TeamAbbr)
}

func TestFetchStats_NonOKStatus(t *testing.T) {
	withFixtureServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := CommonTeamRoster(context.Background(), 1610612744, "2024-25")
	assert.Error(t, err)
}

func TestCommonTeamRoster_ShortRow(t *testing.T) {
	withFixtureServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resultSets": [{"name": "CommonTeamRoster", "rowSet": [[1610612744, "2024-25"]]}]}`))
	})

	_, err := CommonTeamRoster(context.Background(), 1610612744, "2024-25")
	assert.Error(t, err)
}

func TestTeamID(t *testing.T) {
	id, ok := TeamID("NYK")
	require.True(t, ok)
	assert.Equal(t, 1610612752, id)

	_, ok = TeamID("SEA")
	assert.False(t, ok)
}
