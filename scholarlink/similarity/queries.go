package similarity

import (
	"fmt"

	"gorm.io/gorm"
)

// Queries is the read-only view of the store a similarity worker needs.
// All methods are plain SELECTs; the similarity pipeline never writes to
// the database directly.
type Queries struct {
	db *gorm.DB
}

func NewQueries(db *gorm.DB) *Queries {
	return &Queries{db: db}
}

// CohortIds returns the linked graph author ids for one (degree year,
// field) cell, in a stable order.
func (q *Queries) CohortIds(degreeYear int, field string, iteration int) ([]int64, error) {
	var ids []int64
	err := q.db.Raw(`
		SELECT l."AuthorId"
		FROM linked_ids l
		INNER JOIN pq_authors p ON p.goid = l.goid
		WHERE p.degree_year = ? AND p.fieldname0 = ? AND l.iteration_id = ?
		ORDER BY l."AuthorId"
	`, degreeYear, field, iteration).Scan(&ids).Error
	if err != nil {
		return nil, fmt.Errorf("loading cohort for %d/%s: %w", degreeYear, field, err)
	}
	return ids, nil
}

type topicRow struct {
	AuthorId       int64
	Year           int
	FieldOfStudyId int64
	Score          float64
}

type outputRow struct {
	AuthorId   int64
	Year       int
	PaperCount int
}

// AuthorTopics builds the pre/post topic vectors for a set of authors,
// paper-count normalized. Missing periods stay absent; callers fill 0.
func (q *Queries) AuthorTopics(authorIds []int64, degreeYear, maxLevel int) (map[int64]map[string]*TopicVector, error) {
	if len(authorIds) == 0 {
		return map[int64]map[string]*TopicVector{}, nil
	}

	var topics []topicRow
	err := q.db.Raw(`
		SELECT "AuthorId", "Year", "FieldOfStudyId", "Score"
		FROM author_fields
		WHERE "AuthorId" IN ? AND "FieldLevel" <= ?
	`, authorIds, maxLevel).Scan(&topics).Error
	if err != nil {
		return nil, fmt.Errorf("loading author topics: %w", err)
	}

	var outputs []outputRow
	err = q.db.Raw(`
		SELECT "AuthorId", "Year", "PaperCount"
		FROM author_output
		WHERE "AuthorId" IN ?
	`, authorIds).Scan(&outputs).Error
	if err != nil {
		return nil, fmt.Errorf("loading author output: %w", err)
	}

	vectors := make(map[int64]map[string]*TopicVector)
	vecFor := func(authorId int64, period string) *TopicVector {
		if vectors[authorId] == nil {
			vectors[authorId] = make(map[string]*TopicVector)
		}
		if vectors[authorId][period] == nil {
			vectors[authorId][period] = NewTopicVector()
		}
		return vectors[authorId][period]
	}

	for _, row := range topics {
		vecFor(row.AuthorId, SplitPrePost(row.Year, degreeYear)).Add(row.FieldOfStudyId, row.Score)
	}
	for _, row := range outputs {
		vecFor(row.AuthorId, SplitPrePost(row.Year, degreeYear)).PaperCount += row.PaperCount
	}
	for _, periods := range vectors {
		for _, vec := range periods {
			vec.Normalize()
		}
	}
	return vectors, nil
}

// InstitutionIds returns every institution carrying a Carnegie
// classification, in a stable order.
func (q *Queries) InstitutionIds() ([]int64, error) {
	var ids []int64
	err := q.db.Raw(`
		SELECT DISTINCT "InstitutionId"
		FROM links_to_carnegie
		ORDER BY "InstitutionId"
	`).Scan(&ids).Error
	if err != nil {
		return nil, fmt.Errorf("loading institutions: %w", err)
	}
	return ids, nil
}

type institutionTopicRow struct {
	InstitutionId  int64
	Year           int
	FieldOfStudyId int64
	Score          float64
	PaperCount     int
}

// InstitutionTopics builds the pre/post topic vectors of institutions,
// aggregated over their affiliated authors' output.
func (q *Queries) InstitutionTopics(institutionIds []int64, degreeYear, maxLevel int) (map[int64]map[string]*TopicVector, error) {
	if len(institutionIds) == 0 {
		return map[int64]map[string]*TopicVector{}, nil
	}

	var rows []institutionTopicRow
	err := q.db.Raw(`
		SELECT "InstitutionId", "Year", "FieldOfStudyId", "Score", "PaperCount"
		FROM institution_fields
		WHERE "InstitutionId" IN ? AND "FieldLevel" <= ?
	`, institutionIds, maxLevel).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("loading institution topics: %w", err)
	}

	vectors := make(map[int64]map[string]*TopicVector)
	for _, row := range rows {
		period := SplitPrePost(row.Year, degreeYear)
		if vectors[row.InstitutionId] == nil {
			vectors[row.InstitutionId] = make(map[string]*TopicVector)
		}
		vec := vectors[row.InstitutionId][period]
		if vec == nil {
			vec = NewTopicVector()
			vectors[row.InstitutionId][period] = vec
		}
		vec.Add(row.FieldOfStudyId, row.Score)
		vec.PaperCount += row.PaperCount
	}
	for _, periods := range vectors {
		for _, vec := range periods {
			vec.Normalize()
		}
	}
	return vectors, nil
}

// TopCollaborators returns the most productive authors per institution,
// by total paper count with id tie-breaks.
func (q *Queries) TopCollaborators(institutionIds []int64, topN int) (map[int64][]int64, error) {
	if len(institutionIds) == 0 {
		return map[int64][]int64{}, nil
	}

	type collabRow struct {
		InstitutionId int64
		AuthorId      int64
	}
	var rows []collabRow
	err := q.db.Raw(`
		SELECT a."InstitutionId", a."AuthorId"
		FROM author_affiliation a
		INNER JOIN (
			SELECT "AuthorId", SUM("PaperCount") AS total
			FROM author_output
			GROUP BY "AuthorId"
		) o ON o."AuthorId" = a."AuthorId"
		WHERE a."InstitutionId" IN ?
		ORDER BY a."InstitutionId", o.total DESC, a."AuthorId"
	`, institutionIds).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("loading collaborators: %w", err)
	}

	out := make(map[int64][]int64)
	for _, row := range rows {
		if len(out[row.InstitutionId]) >= topN {
			continue
		}
		out[row.InstitutionId] = append(out[row.InstitutionId], row.AuthorId)
	}
	return out, nil
}

// CohortTopicRowCount sizes the itergroup partitions for a cell.
func (q *Queries) CohortTopicRowCount(authorIds []int64, maxLevel int) (int, error) {
	if len(authorIds) == 0 {
		return 0, nil
	}
	var count int
	err := q.db.Raw(`
		SELECT COUNT(*)
		FROM author_fields
		WHERE "AuthorId" IN ? AND "FieldLevel" <= ?
	`, authorIds, maxLevel).Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting cohort topic rows: %w", err)
	}
	return count, nil
}
