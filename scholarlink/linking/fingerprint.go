package linking

import (
	"fmt"
	"path/filepath"
)

// Fingerprint identifies a trained model and its labels by the settings
// that shaped them. Two runs with the same fingerprint share artifacts;
// changing any feature flag forces a retrain.
type Fingerprint struct {
	LinkingType LinkingType
	Field       string
	StartYear   int
	EndYear     int
	Flags       FeatureFlags
	// TrainName distinguishes label sets collected by different sessions
	// over the same settings. May be empty.
	TrainName string
}

// Validate rejects settings that would silently produce an empty run.
func (f Fingerprint) Validate() error {
	switch f.LinkingType {
	case LinkGraduates, LinkAdvisors, LinkGrants:
	default:
		return fmt.Errorf("unknown linking type %q", f.LinkingType)
	}
	if f.Field == "" {
		return fmt.Errorf("field of study is required")
	}
	if f.StartYear > f.EndYear {
		return fmt.Errorf("inverted year window %d-%d", f.StartYear, f.EndYear)
	}
	return nil
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func (f Fingerprint) name() string {
	return fmt.Sprintf("settings_%s_%d_%d_institution%s_fieldofstudy_cat%s_fieldofstudy_str%s_keywords%s%s",
		f.Field, f.StartYear, f.EndYear,
		pyBool(f.Flags.Institution),
		pyBool(f.Flags.FieldOfStudyCat),
		pyBool(f.Flags.FieldOfStudyStr),
		pyBool(f.Flags.Keywords),
		f.TrainName)
}

func (f Fingerprint) dir(root string) string {
	switch f.LinkingType {
	case LinkAdvisors:
		return filepath.Join(root, "advisors")
	case LinkGrants:
		return filepath.Join(root, "grants")
	default:
		return root
	}
}

// ModelPath is where the fitted model for these settings lives.
func (f Fingerprint) ModelPath(root string) string {
	return filepath.Join(f.dir(root), f.name())
}

// LabelsPath is where the training labels for these settings live.
func (f Fingerprint) LabelsPath(root string) string {
	return filepath.Join(f.dir(root), f.name()+".json")
}
