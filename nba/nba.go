package nba

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"passnet/utils"

	"golang.org/x/time/rate"
)

// StatsBaseURL is a var so tests can point the client at a fixture server.
var StatsBaseURL = "https://stats.nba.com/stats"

// stats.nba.com silently hangs on aggressive callers, so every request
// goes through one shared limiter.
var limiter = rate.NewLimiter(rate.Limit(5), 3)

func initNBAReq(url string) *http.Request {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		panic(err)
	}
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Referer", "https://www.nba.com/")
	req.Header.Add("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	return req
}

type statsResp struct {
	ResultSets []struct {
		Name    string          `json:"name"`
		RowSet  [][]interface{} `json:"rowSet"`
		Headers []string        `json:"headers"`
	} `json:"resultSets"`
}

func fetchStats(ctx context.Context, url string) (*statsResp, error) {
	if err := limiter.Wait(ctx); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	req := initNBAReq(url).WithContext(ctx)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, utils.ErrorWithTrace(fmt.Errorf("%s returned %d", url, resp.StatusCode))
	}

	unmarshalledBody := statsResp{}
	if err := json.Unmarshal(body, &unmarshalledBody); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	return &unmarshalledBody, nil
}

type RosterPlayer struct {
	PlayerID   *float64
	PlayerName *string
}

// CommonTeamRoster returns the roster for a team and season, in the order
// stats.nba.com lists it.
func CommonTeamRoster(ctx context.Context, teamID int, season string) ([]RosterPlayer, error) {
	url := fmt.Sprintf("%s/commonteamroster?LeagueID=00&Season=%s&TeamID=%d", StatsBaseURL, season, teamID)
	resp, err := fetchStats(ctx, url)
	if err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	if len(resp.ResultSets) == 0 {
		return nil, utils.ErrorWithTrace(fmt.Errorf("commonteamroster returned no result sets for team %d", teamID))
	}

	players := make([]RosterPlayer, len(resp.ResultSets[0].RowSet))
	for i, raw := range resp.ResultSets[0].RowSet {
		if len(raw) < 14 {
			return nil, utils.ErrorWithTrace(fmt.Errorf("commonteamroster row has %d columns, want at least 14", len(raw)))
		}
		players[i] = RosterPlayer{
			PlayerName: maybe[string](raw[3]),
			PlayerID:   maybe[float64](raw[13]),
		}
	}
	return players, nil
}

type PlayerPass struct {
	PasserID   *float64
	PasserName *string
	TeamAbbr   *string
	PassTo     *string
	Frequency  *float64
	PassCount  *float64
}

// PlayerPassesMade returns the PassesMade rows of the player passing
// dashboard: one row per (passer, receiver) pair with season totals.
func PlayerPassesMade(ctx context.Context, playerID, teamID int, season string) ([]PlayerPass, error) {
	url := fmt.Sprintf(
		"%s/playerdashptpass?DateFrom=&DateTo=&LastNGames=0&LeagueID=00&Location=&Month=0&OpponentTeamID=0&Outcome=&PerMode=Totals&PlayerID=%d&Season=%s&SeasonSegment=&SeasonType=Regular+Season&TeamID=%d&VsConference=&VsDivision=",
		StatsBaseURL, playerID, season, teamID,
	)
	resp, err := fetchStats(ctx, url)
	if err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	if len(resp.ResultSets) == 0 {
		return nil, utils.ErrorWithTrace(fmt.Errorf("playerdashptpass returned no result sets for player %d", playerID))
	}

	// resultSets[0] is PassesMade, resultSets[1] is PassesReceived
	passes := make([]PlayerPass, len(resp.ResultSets[0].RowSet))
	for i, raw := range resp.ResultSets[0].RowSet {
		if len(raw) < 11 {
			return nil, utils.ErrorWithTrace(fmt.Errorf("playerdashptpass row has %d columns, want at least 11", len(raw)))
		}
		passes[i] = PlayerPass{
			PasserID:   maybe[float64](raw[0]),
			PasserName: maybe[string](raw[1]),
			TeamAbbr:   maybe[string](raw[4]),
			PassTo:     maybe[string](raw[7]),
			Frequency:  maybe[float64](raw[9]),
			PassCount:  maybe[float64](raw[10]),
		}
	}
	return passes, nil
}

func maybe[T any](x any) *T {
	if x, ok := x.(T); ok {
		return &x
	}
	return nil
}
