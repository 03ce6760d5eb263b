package linking

import (
	"fmt"

	"scholarlink/scholarlink/compare"
)

// FeatureFlags selects the optional feature groups of a linking run. They
// participate in the artifact fingerprint: changing any flag retrains.
type FeatureFlags struct {
	Institution     bool
	FieldOfStudyCat bool
	FieldOfStudyStr bool
	Keywords        bool
}

func getFirstName(r *Record) (compare.Value, bool) { return compare.String(r.FirstName), true }
func getLastName(r *Record) (compare.Value, bool)  { return compare.String(r.LastName), true }

func getMiddleName(r *Record) (compare.Value, bool) {
	if r.MiddleName == nil {
		return nil, false
	}
	return compare.String(*r.MiddleName), true
}

func getYear(r *Record) (compare.Value, bool) { return compare.Numeric(r.Year), true }

func getYearRange(r *Record) (compare.Value, bool) {
	if len(r.YearRange) == 0 {
		return nil, false
	}
	return r.YearRange, true
}

func getFieldOfStudy(r *Record) (compare.Value, bool) {
	if r.FieldOfStudy == "" {
		return nil, false
	}
	return compare.String(r.FieldOfStudy), true
}

func getInstitutions(r *Record) (compare.Value, bool) {
	if len(r.Institutions) == 0 {
		return nil, false
	}
	return r.Institutions, true
}

func getInstitutionYears(r *Record) (compare.Value, bool) {
	if len(r.InstitutionYears) == 0 {
		return nil, false
	}
	return r.InstitutionYears, true
}

func getAllInstitutionYears(r *Record) (compare.Value, bool) {
	if len(r.AllInstitutionYears) == 0 {
		return nil, false
	}
	return r.AllInstitutionYears, true
}

func getPaperTitles(r *Record) (compare.Value, bool) {
	if len(r.PaperTitles) == 0 {
		return nil, false
	}
	return r.PaperTitles, true
}

func compareTitles(a, b compare.Value) (float64, bool) {
	sa, okA := a.(compare.TupleSet)
	sb, okB := b.(compare.TupleSet)
	if !okA || !okB {
		return 0, false
	}
	return compare.YearTitleSimilarity(sa, sb), true
}

func getKeywords(r *Record) (compare.Value, bool) {
	if r.Keywords.Set == nil {
		return nil, false
	}
	return r.Keywords, true
}

func compareInstitutions(a, b compare.Value) (float64, bool) {
	sa, okA := a.(compare.Strings)
	sb, okB := b.(compare.Strings)
	if !okA || !okB {
		return 0, false
	}
	d := compare.InstitutionDistance(sa, sb)
	return d, d != compare.UnmatchedSentinel
}

func tupleSetComparator(dist func(a, b compare.TupleSet) float64) CustomComparator {
	return func(a, b compare.Value) (float64, bool) {
		sa, okA := a.(compare.TupleSet)
		sb, okB := b.(compare.TupleSet)
		if !okA || !okB {
			return 0, false
		}
		d := dist(sa, sb)
		return d, d != compare.UnmatchedSentinel
	}
}

func rangeComparator(lenient bool) CustomComparator {
	return func(a, b compare.Value) (float64, bool) {
		ta, okA := a.(compare.YearTuple)
		tb, okB := b.(compare.YearTuple)
		if !okA || !okB {
			return 0, false
		}
		if lenient {
			return compare.RangeMembershipLenient(ta, tb, compare.RangeMargin)
		}
		out, err := compare.RangeMembership(ta, tb, compare.RangeMargin)
		if err != nil {
			// Scoring-time length violations mean the populations were
			// loaded wrong; surface via the Vector error path.
			return 0, false
		}
		return out, true
	}
}

// BuildSchema assembles the feature schema for one linking type. The
// lenient flag selects the forgiving range comparator used during active
// labelling, where the pair sampler occasionally produces degenerate
// self-comparisons; scoring runs use the strict variant.
func BuildSchema(lt LinkingType, flags FeatureFlags, lenient bool) (*Schema, error) {
	features := []Feature{
		{Name: "firstname", Kind: FeatureString, Get: getFirstName},
		{Name: "same_firstname", Kind: FeatureExact, Get: getFirstName},
		{Name: "lastname", Kind: FeatureString, Get: getLastName},
		{Name: "same_lastname", Kind: FeatureExact, Get: getLastName},
		{Name: "middlename", Kind: FeatureString, Get: getMiddleName, HasMissing: true},
	}

	switch lt {
	case LinkGraduates:
		features = append(features,
			Feature{Name: "year", Kind: FeatureNumeric, Get: getYear},
			Feature{Kind: FeatureInteraction, Interaction: [2]string{"year", "same_firstname"}},
			Feature{Kind: FeatureInteraction, Interaction: [2]string{"year", "same_lastname"}},
		)
	case LinkAdvisors:
		// names only in the base schema
	case LinkGrants:
		features = append(features,
			Feature{Name: "year_range", Kind: FeatureCustom, Get: getYearRange,
				Compare: rangeComparator(lenient), HasMissing: true},
		)
	default:
		return nil, fmt.Errorf("unsupported linking type %q", lt)
	}

	if flags.Institution {
		switch lt {
		case LinkGraduates:
			features = append(features,
				Feature{Name: "institution", Kind: FeatureCustom, Get: getInstitutions,
					Compare: compareInstitutions, HasMissing: true},
			)
		case LinkAdvisors:
			features = append(features,
				Feature{Name: "institution", Kind: FeatureCustom, Get: getInstitutions,
					Compare: compareInstitutions, HasMissing: true},
				Feature{Kind: FeatureInteraction, Interaction: [2]string{"institution", "same_firstname"}},
				Feature{Kind: FeatureInteraction, Interaction: [2]string{"institution", "same_lastname"}},
			)
		case LinkGrants:
			features = append(features,
				Feature{Name: "main_inst_year", Kind: FeatureCustom, Get: getInstitutionYears,
					Compare: tupleSetComparator(compare.SetDistanceOverall), HasMissing: true},
				Feature{Name: "main_inst_similarity", Kind: FeatureCustom, Get: getInstitutionYears,
					Compare: tupleSetComparator(compare.SetDistanceString), HasMissing: true},
				Feature{Name: "main_inst_year_similarity", Kind: FeatureCustom, Get: getInstitutionYears,
					Compare: tupleSetComparator(compare.SetDistanceNumeric), HasMissing: true},
				Feature{Kind: FeatureInteraction, Interaction: [2]string{"main_inst_year_similarity", "firstname"}},
				Feature{Kind: FeatureInteraction, Interaction: [2]string{"main_inst_year_similarity", "lastname"}},
				Feature{Name: "all_inst_year", Kind: FeatureCustom, Get: getAllInstitutionYears,
					Compare: tupleSetComparator(compare.SetDistanceOverall), HasMissing: true},
				Feature{Name: "all_inst_similarity", Kind: FeatureCustom, Get: getAllInstitutionYears,
					Compare: tupleSetComparator(compare.SetDistanceString), HasMissing: true},
				Feature{Name: "all_inst_year_similarity", Kind: FeatureCustom, Get: getAllInstitutionYears,
					Compare: tupleSetComparator(compare.SetDistanceNumeric), HasMissing: true},
			)
		}
	}

	if flags.FieldOfStudyCat {
		features = append(features,
			Feature{Name: "same_fieldofstudy", Kind: FeatureExact, Get: getFieldOfStudy, HasMissing: true},
		)
	}
	if flags.FieldOfStudyStr {
		features = append(features,
			Feature{Name: "fieldofstudy", Kind: FeatureString, Get: getFieldOfStudy, HasMissing: true},
		)
	}
	if flags.Keywords {
		features = append(features,
			Feature{Name: "keywords", Kind: FeatureSet, Get: getKeywords, HasMissing: true},
			Feature{Name: "titles", Kind: FeatureCustom, Get: getPaperTitles,
				Compare: compareTitles, HasMissing: true},
		)
	}

	return NewSchema(features)
}
