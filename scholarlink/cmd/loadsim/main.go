package main

import (
	"flag"
	"log"

	"scholarlink/scholarlink/cmd"
	"scholarlink/scholarlink/schema/migrations"
	"scholarlink/scholarlink/store"
)

func main() {
	envFile := flag.String("env", "", "path to load env from")
	dir := flag.String("dir", "", "maxlevel-N output directory of a similarity run")
	maxLevel := flag.Int("maxlevel", 2, "topic level the directory was computed at")
	flag.Parse()

	config := cmd.ParseConfig(*envFile)
	logFile := cmd.InitLogging(config.Logfile)
	defer logFile.Close()

	if *dir == "" {
		log.Fatalf("-dir is required")
	}

	db := cmd.OpenDB(config.DBTarget)
	migrations.RunMigrations(db)

	if err := store.LoadSimilarityDir(db, *dir, *maxLevel); err != nil {
		log.Fatalf("error loading similarity outputs: %v", err)
	}
}
