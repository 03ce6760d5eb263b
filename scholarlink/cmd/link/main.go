package main

import (
	"encoding/csv"
	"flag"
	"log"
	"log/slog"
	"os"
	"strconv"

	"scholarlink/scholarlink/cmd"
	"scholarlink/scholarlink/linking"
	"scholarlink/scholarlink/monitoring"
	"scholarlink/scholarlink/schema/migrations"
	"scholarlink/scholarlink/store"
)

func main() {
	envFile := flag.String("env", "", "path to load env from")
	job := cmd.RegisterLinkFlags()
	mergeMode := flag.String("mergemode", string(linking.MergeOneToOne), "one_to_one, many_to_one or gazetteer")
	topK := flag.Int("topk", 1, "links per record in gazetteer mode")
	prelink := flag.Bool("prelink", true, "link unique exact names before scoring")
	csvOut := flag.String("csv", "", "write links to this CSV instead of the store")
	flag.Parse()

	config := cmd.ParseConfig(*envFile)
	logFile := cmd.InitLogging(config.Logfile)
	defer logFile.Close()

	if config.MetricsPort != 0 {
		monitoring.ExposeWorkerMetrics(config.MetricsPort)
	}

	fp := job.Fingerprint()
	mode, err := linking.ParseMergeMode(*mergeMode)
	if err != nil {
		log.Fatalf("bad job settings: %v", err)
	}

	engine, err := linking.NewEngine(fp, false)
	if err != nil {
		log.Fatalf("error building engine: %v", err)
	}
	if err := engine.LoadModel(config.ModelDir); err != nil {
		log.Fatalf("no usable model for these settings (run train first): %v", err)
	}

	db := cmd.OpenDB(config.DBTarget)
	migrations.RunMigrations(db)

	popA, popB, err := linking.LoadPopulations(db, fp)
	if err != nil {
		log.Fatalf("error loading populations: %v", err)
	}

	var links []linking.Link
	if *prelink {
		links, popA, popB = linking.PrelinkExactNames(popA, popB)
	}

	scored, err := engine.Link(popA, popB, mode, *topK)
	if err != nil {
		log.Fatalf("error linking: %v", err)
	}
	links = append(links, scored...)
	monitoring.LinksEmitted.WithLabelValues(string(fp.LinkingType)).Add(float64(len(links)))

	if *csvOut != "" {
		if err := writeLinksCSV(*csvOut, links); err != nil {
			log.Fatalf("error writing %s: %v", *csvOut, err)
		}
		slog.Info("links written", "path", *csvOut, "links", len(links))
		return
	}

	iteration, err := store.NextIterationId(db, fp.LinkingType)
	if err != nil {
		log.Fatalf("error reading iteration id: %v", err)
	}

	labels, err := linking.LoadLabels(fp.LabelsPath(config.ModelDir))
	if err != nil {
		log.Fatalf("error loading labels: %v", err)
	}

	info := store.RunInfo{
		IterationId:   iteration,
		Fingerprint:   fp,
		Recall:        engine.Model.Recall,
		MergeMode:     mode,
		TrainMatches:  len(labels.Match),
		TrainDistinct: len(labels.Distinct),
	}
	if err := store.EmitLinks(db, info, links); err != nil {
		log.Fatalf("error emitting links: %v", err)
	}
	slog.Info("links emitted", "iteration", iteration, "links", len(links))
}

func writeLinksCSV(path string, links []linking.Link) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id_a", "id_b", "link_score"}); err != nil {
		return err
	}
	for _, l := range links {
		if err := w.Write([]string{l.A, l.B, strconv.FormatFloat(l.Score, 'g', -1, 64)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
