package main

import (
	"flag"
	"log"
	"log/slog"

	"scholarlink/scholarlink/cmd"
	"scholarlink/scholarlink/svd"
)

func main() {
	envFile := flag.String("env", "", "path to load env from")
	components := flag.Int("components", 50, "number of svd components")
	maxLevel := flag.Int("maxlevel", 2, "maximum topic level")
	out := flag.String("out", "", "path to write the fitted model to")
	flag.Parse()

	config := cmd.ParseConfig(*envFile)
	logFile := cmd.InitLogging(config.Logfile)
	defer logFile.Close()

	if *out == "" {
		log.Fatalf("-out is required")
	}

	db := cmd.OpenDB(config.DBTarget)

	var triplets []svd.Triplet
	err := db.Raw(`
		SELECT "AuthorId" AS row_id, "FieldOfStudyId" AS field_id, SUM("Score") AS value
		FROM author_fields
		WHERE "FieldLevel" <= ?
		GROUP BY "AuthorId", "FieldOfStudyId"
	`, *maxLevel).Scan(&triplets).Error
	if err != nil {
		log.Fatalf("error loading topic scores: %v", err)
	}
	slog.Info("topic scores loaded", "triplets", len(triplets))

	model, embeddings, err := svd.Fit(triplets, *components)
	if err != nil {
		log.Fatalf("error fitting svd: %v", err)
	}
	if err := model.Save(*out); err != nil {
		log.Fatalf("error saving model: %v", err)
	}

	rows, _ := embeddings.Vectors.Dims()
	slog.Info("svd model saved", "path", *out, "rows", rows, "components", *components, "seed", model.Seed)
}
