package linking

import (
	"path/filepath"
	"testing"
)

func TestFingerprintPaths(t *testing.T) {
	fp := Fingerprint{
		LinkingType: LinkGraduates,
		Field:       "chemistry",
		StartYear:   1990,
		EndYear:     2015,
		Flags:       FeatureFlags{Institution: true, FieldOfStudyCat: true},
		TrainName:   "_with_protocol",
	}
	wantName := "settings_chemistry_1990_2015_institutionTrue_fieldofstudy_catTrue_fieldofstudy_strFalse_keywordsFalse_with_protocol"
	if got := fp.ModelPath("/models"); got != filepath.Join("/models", wantName) {
		t.Fatalf("model path %q", got)
	}
	if got := fp.LabelsPath("/models"); got != filepath.Join("/models", wantName+".json") {
		t.Fatalf("labels path %q", got)
	}
}

func TestFingerprintSubdirectories(t *testing.T) {
	base := Fingerprint{Field: "biology", StartYear: 1985, EndYear: 2022}

	adv := base
	adv.LinkingType = LinkAdvisors
	if got := adv.ModelPath("/models"); filepath.Dir(got) != filepath.Join("/models", "advisors") {
		t.Fatalf("advisor artifacts should live under advisors/, got %q", got)
	}

	gr := base
	gr.LinkingType = LinkGrants
	if got := gr.ModelPath("/models"); filepath.Dir(got) != filepath.Join("/models", "grants") {
		t.Fatalf("grant artifacts should live under grants/, got %q", got)
	}
}

func TestFingerprintValidate(t *testing.T) {
	good := Fingerprint{LinkingType: LinkGraduates, Field: "chemistry", StartYear: 1990, EndYear: 2015}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid settings rejected: %v", err)
	}

	inverted := good
	inverted.StartYear, inverted.EndYear = 2015, 1990
	if err := inverted.Validate(); err == nil {
		t.Fatal("inverted year window should fail before any work starts")
	}

	noField := good
	noField.Field = ""
	if err := noField.Validate(); err == nil {
		t.Fatal("missing field should fail")
	}

	badType := good
	badType.LinkingType = "institutions"
	if err := badType.Validate(); err == nil {
		t.Fatal("unknown linking type should fail")
	}
}

func TestFingerprintFlagChangesName(t *testing.T) {
	a := Fingerprint{LinkingType: LinkGraduates, Field: "chemistry", StartYear: 1990, EndYear: 2015}
	b := a
	b.Flags.Keywords = true
	if a.ModelPath("/m") == b.ModelPath("/m") {
		t.Fatal("changing a feature flag must change the artifact path")
	}
}
