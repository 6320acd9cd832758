package config

import (
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"
)

var DatabaseFile string
var SecretFile string
var TokenFile string
var MigrationsDir string
var ProdFlag *bool
var Season *string
var Addr *string

var ValidSeasons = []string{
	"2024-25",
	"2023-24",
	"2022-23",
	"2021-22",
	"2020-21",
	"2019-20",
	"2018-19",
	"2017-18",
	"2016-17",
	"2015-16",
	"2014-15",
}

func LoadConfig() error {
	ProdFlag = flag.BoolP("prod", "p", false, "designates production")
	Season = flag.StringP("season", "s", "2024-25", "season to refresh, format YYYY-YY")
	Addr = flag.StringP("addr", "a", ":8080", "listen address")
	flag.Parse()
	binPath, err := os.Executable()
	if err != nil {
		return err
	}
	if *ProdFlag {
		DatabaseFile = "/sqlitedata/database.db"
		SecretFile = "/secrets/secret.json"
		TokenFile = "/secrets/token.json"
		MigrationsDir = "/app/db/migrations"
	} else {
		DatabaseFile = filepath.Join(filepath.Dir(binPath), "database.db")
		SecretFile = filepath.Join(filepath.Dir(binPath), "secret.json")
		TokenFile = filepath.Join(filepath.Dir(binPath), "token.json")
		MigrationsDir = "db/migrations"
	}
	fmt.Printf("season: %s\n", *Season)
	return nil
}
