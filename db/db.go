package db

import (
	"fmt"
	"hash/fnv"
	"log"
	"os"

	"passnet/analysis"
	"passnet/config"
	"passnet/utils"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
)

type CachedCentralityRow struct {
	Season      string  `db:"season"`
	Team        string  `db:"team"`
	Player      string  `db:"player"`
	Degree      float64 `db:"degree"`
	Betweenness float64 `db:"betweenness"`
	Closeness   float64 `db:"closeness"`
	RecordsHash string  `db:"records_hash"`
}

func SetupDatabase() error {
	_, err := os.Stat(config.DatabaseFile)
	if os.IsNotExist(err) {
		log.Println("Database file not found. Creating a new database.")
		file, err := os.Create(config.DatabaseFile)
		if err != nil {
			return utils.ErrorWithTrace(err)
		}
		file.Close()
	} else if err != nil {
		return utils.ErrorWithTrace(err)
	}
	return nil
}

func RunMigrations() error {
	m, err := migrate.New(
		"file://"+config.MigrationsDir,
		"sqlite3://"+config.DatabaseFile,
	)
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return utils.ErrorWithTrace(err)
	}
	return nil
}

func ValidateMigrations() error {
	db, err := sqlx.Open("sqlite3", config.DatabaseFile)
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM teams").Scan(&count); err != nil {
		return utils.ErrorWithTrace(err)
	}
	if count != 31 {
		return utils.ErrorWithTrace(fmt.Errorf("expected 31 teams, found %d", count))
	}

	var name string
	if err := db.QueryRow("SELECT name FROM teams WHERE id = 1610612752").Scan(&name); err != nil {
		return utils.ErrorWithTrace(fmt.Errorf("failed to find Knicks: %v", err))
	}
	if name != "New York Knicks" {
		return utils.ErrorWithTrace(fmt.Errorf("expected team.id 1610612752 to have name 'New York Knicks', got '%s'", name))
	}
	err = db.QueryRow("SELECT name FROM teams WHERE id = 0").Scan(&name)
	if err != nil {
		return utils.ErrorWithTrace(fmt.Errorf("failed to find NULL_TEAM: %v", err))
	}
	if name != "NULL_TEAM" {
		return utils.ErrorWithTrace(fmt.Errorf("expected team.id 0 to have name 'NULL_TEAM', got '%s'", name))
	}
	return nil
}

// RecordsHash fingerprints a team's passing records in input order so cached
// centrality can be reused when an identical fetch comes back.
func RecordsHash(records []analysis.PassingRecord) string {
	h := fnv.New64a()
	for _, r := range records {
		fmt.Fprintf(h, "%s|%s|%d|%s\n", r.Passer, r.Receiver, r.PassCount, r.Team)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func InsertTeamCentrality(season, team, recordsHash string, rows []analysis.CentralityRow) error {
	db, err := sqlx.Open("sqlite3", config.DatabaseFile)
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	defer db.Close()

	tx, err := db.Beginx()
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM centrality_cache WHERE season = ? AND team = ?", season, team); err != nil {
		return utils.ErrorWithTrace(err)
	}

	query := `
		REPLACE INTO centrality_cache (
			season, team, player, degree, betweenness, closeness, records_hash
		) VALUES (
			:season, :team, :player, :degree, :betweenness, :closeness, :records_hash
		)
	`
	for _, r := range rows {
		cached := CachedCentralityRow{
			Season:      season,
			Team:        team,
			Player:      r.Player,
			Degree:      r.Degree,
			Betweenness: r.Betweenness,
			Closeness:   r.Closeness,
			RecordsHash: recordsHash,
		}
		if _, err := tx.NamedExec(query, cached); err != nil {
			return utils.ErrorWithTrace(err)
		}
	}

	return tx.Commit()
}

func SelectTeamRecordsHash(season, team string) (string, error) {
	db, err := sqlx.Open("sqlite3", config.DatabaseFile)
	if err != nil {
		return "", utils.ErrorWithTrace(err)
	}
	defer db.Close()

	var hash string
	query := "SELECT records_hash FROM centrality_cache WHERE season = ? AND team = ? LIMIT 1"
	if err := db.QueryRow(query, season, team).Scan(&hash); err != nil {
		return "", err
	}
	return hash, nil
}

// SelectSeasonCentrality returns every cached row for a season ordered by
// team then player. Serving order after a restart is documented as
// alphabetical; fresh computations keep directory order.
func SelectSeasonCentrality(season string) ([]analysis.CentralityRow, error) {
	if utils.IsInvalidSeason(season) {
		return nil, fmt.Errorf("invalid season provided: %s", season)
	}

	db, err := sqlx.Open("sqlite3", config.DatabaseFile)
	if err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	defer db.Close()

	query := `
		SELECT season, team, player, degree, betweenness, closeness, records_hash
		FROM centrality_cache WHERE season = ? ORDER BY team, player;
	`
	cached := []CachedCentralityRow{}
	if err := db.Select(&cached, query, season); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}

	rows := make([]analysis.CentralityRow, len(cached))
	for i, c := range cached {
		rows[i] = analysis.CentralityRow{
			Player:      c.Player,
			Degree:      c.Degree,
			Betweenness: c.Betweenness,
			Closeness:   c.Closeness,
			Team:        c.Team,
		}
	}
	return rows, nil
}
