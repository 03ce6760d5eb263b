package main

import (
	"flag"
	"log"
	"runtime"
	"strings"

	"gorm.io/gorm"

	"scholarlink/scholarlink/cmd"
	"scholarlink/scholarlink/monitoring"
	"scholarlink/scholarlink/similarity"
	"scholarlink/scholarlink/store"
	"scholarlink/scholarlink/svd"
)

func main() {
	envFile := flag.String("env", "", "path to load env from")
	fields := flag.String("fields", "", "comma-separated fields of study")
	start := flag.Int("start", 1985, "first degree year")
	end := flag.Int("end", 2022, "last degree year")
	iteration := flag.Int("iteration", 0, "link table iteration to read")
	maxLevel := flag.Int("maxlevel", 2, "maximum topic level")
	topN := flag.Int("topn", similarity.DefaultTopN, "collaborators per institution")
	ncores := flag.Int("ncores", runtime.NumCPU(), "worker pool size")
	writeDir := flag.String("writedir", "", "output directory (must not exist)")
	svdModel := flag.String("svdmodel", "", "optional fitted svd model to reduce vectors with")
	limit := flag.Int("limit", 0, "cap on the number of cells, 0 for all")
	flag.Parse()

	config := cmd.ParseConfig(*envFile)
	logFile := cmd.InitLogging(config.Logfile)
	defer logFile.Close()

	if *fields == "" {
		log.Fatalf("-fields is required")
	}
	if *writeDir == "" {
		log.Fatalf("-writedir is required")
	}

	if config.MetricsPort != 0 {
		monitoring.ExposeWorkerMetrics(config.MetricsPort)
	}

	simCfg := similarity.Config{
		Iteration: *iteration,
		MaxLevel:  *maxLevel,
		TopN:      *topN,
		WriteDir:  *writeDir,
	}
	if *svdModel != "" {
		model, err := svd.Load(*svdModel)
		if err != nil {
			log.Fatalf("error loading svd model: %v", err)
		}
		simCfg.Reduce = model.Reducer()
	}

	cells := make([]similarity.Cell, 0)
	for _, field := range strings.Split(*fields, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		for year := *start; year <= *end; year++ {
			cells = append(cells, similarity.Cell{DegreeYear: year, Field: field})
		}
	}
	if *limit > 0 && len(cells) > *limit {
		cells = cells[:*limit]
	}

	err := similarity.RunCells(cells, simCfg, *ncores, func() (*gorm.DB, error) {
		return store.OpenReadOnly(config.DBTarget)
	})
	if err != nil {
		log.Fatalf("similarity run failed: %v", err)
	}
}
