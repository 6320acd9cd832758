package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"passnet/analysis"
	"passnet/config"
	"passnet/db"
	"passnet/league"
	"passnet/sheets"
	"passnet/utils"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var sigChan = make(chan os.Signal, 1)

var exportEnabled = false

// latest holds the most recent combined table per season. The cache table
// backs it across restarts.
var latest = map[string][]analysis.CentralityRow{}
var latestMu = sync.RWMutex{}

func init() {
	if err := config.LoadConfig(); err != nil {
		panic(err)
	}
	if err := db.SetupDatabase(); err != nil {
		panic(err)
	}
	if err := db.RunMigrations(); err != nil {
		panic(err)
	}
	if err := db.ValidateMigrations(); err != nil {
		panic(err)
	}
	signal.Notify(sigChan, syscall.SIGTERM, os.Interrupt, syscall.SIGINT)
	go cleanup()

	if err := sheets.InitService(); err != nil {
		log.Println("sheets export disabled:", err)
	} else {
		exportEnabled = true
		go sheets.ServiceJanitor()
	}
	log.Println("Ball movement wins championships")
}

func cleanup() {
	<-sigChan
	log.Println("\nshutting down...")
	os.Exit(0)
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	aggregator := league.NewAggregator(logger)
	go refreshDaemon(aggregator, *config.Season)

	e := echo.New()
	e.Use(middleware.Logger())

	e.GET("/centrality/:season", func(c echo.Context) error {
		season := c.Param("season")
		rows, err := seasonTable(season)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, rows)
	})

	e.GET("/imbalance/:season/:metric", func(c echo.Context) error {
		metric, err := analysis.ParseMetric(c.Param("metric"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		season := c.Param("season")
		rows, err := seasonTable(season)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		if len(rows) == 0 {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "no centrality data for " + season})
		}
		report, err := analysis.MostImbalancedTeam(rows, metric)
		if err != nil {
			return utils.ErrorWithTrace(err)
		}
		return c.JSON(http.StatusOK, report)
	})

	e.POST("/export/:season", func(c echo.Context) error {
		if !exportEnabled {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "sheets export is not configured"})
		}
		season := c.Param("season")
		rows, err := seasonTable(season)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		if len(rows) == 0 {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "no centrality data for " + season})
		}
		url, err := sheets.ExportCombined(season, rows)
		if err != nil {
			return utils.ErrorWithTrace(err)
		}
		return c.JSON(http.StatusOK, map[string]string{"url": url})
	})

	e.Logger.Fatal(e.Start(*config.Addr))
}

func seasonTable(season string) ([]analysis.CentralityRow, error) {
	latestMu.RLock()
	rows, ok := latest[season]
	latestMu.RUnlock()
	if ok {
		return rows, nil
	}
	return db.SelectSeasonCentrality(season)
}

func refreshDaemon(aggregator *league.Aggregator, season string) {
	log.Printf("refreshing league centrality for %s", season)
	if err := refreshSeason(aggregator, season); err != nil {
		log.Println(err)
	}
	ticker := time.NewTicker(6 * time.Hour)
	for range ticker.C {
		log.Printf("refreshing league centrality for %s", season)
		if err := refreshSeason(aggregator, season); err != nil {
			log.Println(err)
		}
	}
}

func refreshSeason(aggregator *league.Aggregator, season string) error {
	combined, outcomes, err := aggregator.LeagueCentrality(context.Background(), season)
	if err != nil {
		return utils.ErrorWithTrace(err)
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			continue
		}
		hash := db.RecordsHash(o.Records)
		if cached, err := db.SelectTeamRecordsHash(season, o.Team); err == nil && cached == hash {
			continue
		}
		if err := db.InsertTeamCentrality(season, o.Team, hash, o.Rows); err != nil {
			log.Println(err)
		}
	}

	latestMu.Lock()
	latest[season] = combined
	latestMu.Unlock()

	log.Printf("refreshed %s: %d rows, %d teams failed", season, len(combined), failed)
	return nil
}
