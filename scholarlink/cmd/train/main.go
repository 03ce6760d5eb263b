package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"scholarlink/scholarlink/cmd"
	"scholarlink/scholarlink/linking"
)

// consoleLabeller asks match/distinct questions on stdin.
type consoleLabeller struct {
	in *bufio.Reader
}

func (c *consoleLabeller) Decide(a, b *linking.Record) (linking.LabelDecision, error) {
	fmt.Printf("\n--- candidate pair ---\n")
	printRecord("A", a)
	printRecord("B", b)

	for {
		fmt.Print("same person? [y]es / [n]o / [u]nsure / [f]inish: ")
		line, err := c.in.ReadString('\n')
		if err != nil {
			return linking.DecisionFinish, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y":
			return linking.DecisionMatch, nil
		case "n":
			return linking.DecisionDistinct, nil
		case "u":
			return linking.DecisionUnsure, nil
		case "f":
			return linking.DecisionFinish, nil
		}
	}
}

func printRecord(side string, r *linking.Record) {
	middle := ""
	if r.MiddleName != nil {
		middle = " " + *r.MiddleName
	}
	fmt.Printf("%s: %s%s %s (%s), year %.0f", side, r.FirstName, middle, r.LastName, r.Key, r.Year)
	if len(r.Institutions) > 0 {
		fmt.Printf(", %s", strings.Join(r.Institutions, "; "))
	}
	if r.FieldOfStudy != "" {
		fmt.Printf(", %s", r.FieldOfStudy)
	}
	fmt.Println()
}

func main() {
	envFile := flag.String("env", "", "path to load env from")
	job := cmd.RegisterLinkFlags()
	sampleSize := flag.Int("samplesize", linking.DefaultBlocking.SampleSize, "candidate pairs to sample")
	blocked := flag.Float64("blocked", linking.DefaultBlocking.BlockedProportion, "fraction of the sample proposed by the name index")
	recall := flag.Float64("recall", linking.DefaultTrain.Recall, "fraction of labelled matches the threshold must keep")
	maxQuestions := flag.Int("maxquestions", linking.DefaultActive.MaxQuestions, "labelling questions before the session ends")
	flag.Parse()

	config := cmd.ParseConfig(*envFile)
	logFile := cmd.InitLogging(config.Logfile)
	defer logFile.Close()

	fp := job.Fingerprint()

	// Labelling tolerates the degenerate year ranges the sampler can
	// produce; scoring runs use the strict schema.
	engine, err := linking.NewEngine(fp, true)
	if err != nil {
		log.Fatalf("error building engine: %v", err)
	}

	db := cmd.OpenDB(config.DBTarget)
	popA, popB, err := linking.LoadPopulations(db, fp)
	if err != nil {
		log.Fatalf("error loading populations: %v", err)
	}
	if len(popA) == 0 || len(popB) == 0 {
		log.Fatalf("empty population: %d external, %d graph records", len(popA), len(popB))
	}

	blocking := linking.DefaultBlocking
	blocking.SampleSize = *sampleSize
	blocking.BlockedProportion = *blocked
	candidates := linking.BlockPairs(popA, popB, blocking)

	active := linking.DefaultActive
	active.MaxQuestions = *maxQuestions
	active.Train.Recall = *recall

	labeller := &consoleLabeller{in: bufio.NewReader(os.Stdin)}
	if err := engine.Train(config.ModelDir, candidates, labeller, active); err != nil {
		log.Fatalf("error training model: %v", err)
	}

	fmt.Printf("model saved to %s\n", fp.ModelPath(config.ModelDir))
}
