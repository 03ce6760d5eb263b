package linking

import (
	"fmt"
	"strconv"

	"gorm.io/gorm"
)

// The linking views are prepared by the upstream SQL layer: one row per
// candidate record with list-valued fields packed into ";" / "//"
// delimited aggregates.

type graduateRow struct {
	Goid       string
	Firstname  string
	Middlename string
	Lastname   string
	DegreeYear float64
	Fieldname  string
	University string
	Keywords   string
}

type magAuthorRow struct {
	AuthorId      int64
	Firstname     string
	Middlename    string
	Lastname      string
	FirstPubYear  float64
	YearRange     string
	Fieldofstudy  string
	Institutions  string
	MainInstYears string
	AllInstYears  string
	Keywords      string
	Coauthors     string
	Titles        string
}

func middle(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func graduateRecord(row graduateRow) *Record {
	return &Record{
		Key:          row.Goid,
		FirstName:    row.Firstname,
		MiddleName:   middle(row.Middlename),
		LastName:     row.Lastname,
		Year:         row.DegreeYear,
		FieldOfStudy: row.Fieldname,
		Institutions: ParseStrings(row.University),
		Keywords:     ParseKeywords(row.Keywords),
	}
}

func magAuthorRecord(row magAuthorRow) *Record {
	return &Record{
		Key:                 strconv.FormatInt(row.AuthorId, 10),
		FirstName:           row.Firstname,
		MiddleName:          middle(row.Middlename),
		LastName:            row.Lastname,
		Year:                row.FirstPubYear,
		YearRange:           ParseYearRange(row.YearRange),
		FieldOfStudy:        row.Fieldofstudy,
		Institutions:        ParseStrings(row.Institutions),
		InstitutionYears:    ParseYearCategories(row.MainInstYears),
		AllInstitutionYears: ParseYearCategories(row.AllInstYears),
		Keywords:            ParseKeywords(row.Keywords),
		Coauthors:           ParseStrings(row.Coauthors),
		PaperTitles:         ParseYearCategories(row.Titles),
	}
}

// LoadPopulations reads the two record populations for one linking run:
// A is the external dataset (ProQuest, advisors, or NSF grants), B is the
// publication graph side.
func LoadPopulations(db *gorm.DB, fp Fingerprint) ([]*Record, []*Record, error) {
	popB, err := loadMagAuthors(db, fp)
	if err != nil {
		return nil, nil, err
	}

	switch fp.LinkingType {
	case LinkGraduates:
		popA, err := loadGraduates(db, "pq_graduates_linking", "goid", fp)
		return popA, popB, err
	case LinkAdvisors:
		popA, err := loadGraduates(db, "pq_advisors_linking", "relationship_id", fp)
		return popA, popB, err
	case LinkGrants:
		popA, err := loadGrants(db, fp)
		return popA, popB, err
	default:
		return nil, nil, fmt.Errorf("unsupported linking type %q", fp.LinkingType)
	}
}

func loadGraduates(db *gorm.DB, table, keyColumn string, fp Fingerprint) ([]*Record, error) {
	var rows []graduateRow
	err := db.Raw(fmt.Sprintf(`
		SELECT %s AS goid, firstname, middlename, lastname,
			degree_year, fieldname, university, keywords
		FROM %s
		WHERE fieldname = ? AND degree_year BETWEEN ? AND ?
		ORDER BY %s
	`, keyColumn, table, keyColumn), fp.Field, fp.StartYear, fp.EndYear).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", table, err)
	}

	records := make([]*Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, graduateRecord(row))
	}
	return records, nil
}

type grantRow struct {
	GrantId     string
	Firstname   string
	Middlename  string
	Lastname    string
	AwardYear   float64
	YearRange   string
	Institution string
}

func loadGrants(db *gorm.DB, fp Fingerprint) ([]*Record, error) {
	var rows []grantRow
	err := db.Raw(`
		SELECT "GrantID" AS grant_id, firstname, middlename, lastname,
			award_year, year_range, institution
		FROM nsf_grants_linking
		WHERE fieldname = ? AND award_year BETWEEN ? AND ?
		ORDER BY "GrantID"
	`, fp.Field, fp.StartYear, fp.EndYear).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("loading nsf_grants_linking: %w", err)
	}

	records := make([]*Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, &Record{
			Key:          row.GrantId,
			FirstName:    row.Firstname,
			MiddleName:   middle(row.Middlename),
			LastName:     row.Lastname,
			Year:         row.AwardYear,
			YearRange:    ParseYearRange(row.YearRange),
			Institutions: ParseStrings(row.Institution),
		})
	}
	return records, nil
}

func loadMagAuthors(db *gorm.DB, fp Fingerprint) ([]*Record, error) {
	var rows []magAuthorRow
	err := db.Raw(`
		SELECT "AuthorId" AS author_id, firstname, middlename, lastname,
			first_pub_year, year_range, fieldofstudy, institutions,
			main_inst_years, all_inst_years, keywords, coauthors, titles
		FROM mag_authors_linking
		WHERE fieldofstudy = ? AND first_pub_year BETWEEN ? AND ?
		ORDER BY "AuthorId"
	`, fp.Field, fp.StartYear, fp.EndYear).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("loading mag_authors_linking: %w", err)
	}

	records := make([]*Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, magAuthorRecord(row))
	}
	return records, nil
}
