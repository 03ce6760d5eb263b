package linking

import (
	"strconv"
	"strings"

	"github.com/bbalet/stopwords"

	"scholarlink/scholarlink/compare"
)

// LinkingType selects which two populations are being linked and, through
// BuildSchema, which features are compared.
type LinkingType string

const (
	LinkGraduates LinkingType = "graduates"
	LinkAdvisors  LinkingType = "advisors"
	LinkGrants    LinkingType = "grants"
)

// Record is one entity instance from either population, with explicit
// optional fields. A nil/zero optional field means "missing": the feature
// assembly supplies a neutral contribution and never hands a missing value
// to a comparator.
type Record struct {
	Key string

	FirstName  string
	LastName   string
	MiddleName *string

	// Year is the degree year (ProQuest), first-publication year (MAG) or
	// award year (NSF).
	Year float64

	// YearRange is the publication activity range of a MAG author, or the
	// single award year of a grant. Nil when unknown.
	YearRange compare.YearTuple

	FieldOfStudy string

	// Institutions are all reported institution names; InstitutionYears
	// and AllInstitutionYears carry (year, institution) observations for
	// the main and for all U.S. affiliations.
	Institutions        compare.Strings
	InstitutionYears    compare.TupleSet
	AllInstitutionYears compare.TupleSet

	Coauthors compare.Strings
	Keywords  compare.Keywords

	// PaperTitles are (year, title) observations used for text similarity.
	PaperTitles compare.TupleSet
}

// The aggregate columns produced by the upstream SQL layer pack lists into
// delimited strings: ";" between entries, "//" between the year and the
// category inside one entry.

// ParseStrings splits a ";"-delimited aggregate into a Strings value.
func ParseStrings(s string) compare.Strings {
	if s == "" {
		return nil
	}
	return compare.Strings(strings.Split(s, ";"))
}

// ParseKeywords splits a ";"-delimited keyword aggregate into a keyword
// set, dropping stopword-only entries.
func ParseKeywords(s string) compare.Keywords {
	if s == "" {
		return compare.Keywords{}
	}
	kws := compare.NewKeywords()
	for _, k := range strings.Split(s, ";") {
		k = strings.TrimSpace(k)
		if k == "" || strings.TrimSpace(stopwords.CleanString(k, "en", false)) == "" {
			continue
		}
		kws.Add(k)
	}
	return kws
}

// ParseYearCategories parses "year//category;year//category;..." into a
// TupleSet. Entries with a malformed year are skipped.
func ParseYearCategories(s string) compare.TupleSet {
	if s == "" {
		return nil
	}
	var out compare.TupleSet
	for _, entry := range strings.Split(s, ";") {
		year, category, found := strings.Cut(entry, "//")
		if !found {
			continue
		}
		y, err := strconv.Atoi(strings.TrimSpace(year))
		if err != nil {
			continue
		}
		out = append(out, compare.YearCategory{Year: y, Category: category})
	}
	return out
}

// ParseYearRange parses either a ";"-separated pair of years or a single
// year into a YearTuple.
func ParseYearRange(s string) compare.YearTuple {
	if s == "" {
		return nil
	}
	var out compare.YearTuple
	for _, part := range strings.Split(s, ";") {
		y, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil
		}
		out = append(out, y)
	}
	return out
}
