package cmd

import (
	"flag"
	"log"

	"scholarlink/scholarlink/linking"
)

// LinkJob collects the flags the train and link CLIs share. The values
// map directly onto the artifact fingerprint, so the two commands agree
// on which model they mean.
type LinkJob struct {
	Type      string
	Field     string
	StartYear int
	EndYear   int

	Institution     bool
	FieldOfStudyCat bool
	FieldOfStudyStr bool
	Keywords        bool

	TrainName string
}

// RegisterLinkFlags wires the shared flags onto the default flag set.
func RegisterLinkFlags() *LinkJob {
	job := &LinkJob{}
	flag.StringVar(&job.Type, "type", string(linking.LinkGraduates), "linking type: graduates, advisors or grants")
	flag.StringVar(&job.Field, "field", "", "field of study to link")
	flag.IntVar(&job.StartYear, "start", 1985, "first year of the window")
	flag.IntVar(&job.EndYear, "end", 2022, "last year of the window")
	flag.BoolVar(&job.Institution, "institution", false, "compare institutions")
	flag.BoolVar(&job.FieldOfStudyCat, "fieldofstudy-cat", false, "compare field of study categorically")
	flag.BoolVar(&job.FieldOfStudyStr, "fieldofstudy-str", false, "compare field of study as strings")
	flag.BoolVar(&job.Keywords, "keywords", false, "compare keyword sets")
	flag.StringVar(&job.TrainName, "trainname", "", "suffix distinguishing label sessions")
	return job
}

// Fingerprint validates the job and derives the artifact fingerprint.
func (j *LinkJob) Fingerprint() linking.Fingerprint {
	fp := linking.Fingerprint{
		LinkingType: linking.LinkingType(j.Type),
		Field:       j.Field,
		StartYear:   j.StartYear,
		EndYear:     j.EndYear,
		Flags: linking.FeatureFlags{
			Institution:     j.Institution,
			FieldOfStudyCat: j.FieldOfStudyCat,
			FieldOfStudyStr: j.FieldOfStudyStr,
			Keywords:        j.Keywords,
		},
		TrainName: j.TrainName,
	}
	if err := fp.Validate(); err != nil {
		log.Fatalf("bad job settings: %v", err)
	}
	return fp
}
