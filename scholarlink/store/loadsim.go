package store

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"scholarlink/scholarlink/schema"
)

// LoadSimilarityDir concatenates the part files under dir (one
// maxlevel-N directory of a similarity run) and loads them into the
// similarity tables. Reloading the same directory upserts: the unique
// indexes make the load idempotent.
func LoadSimilarityDir(db *gorm.DB, dir string, maxLevel int) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return fmt.Errorf("listing %s: %w", dir, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no part files under %s", dir)
	}

	var own, inst, collab int
	for _, file := range files {
		base := filepath.Base(file)
		switch {
		case strings.Contains(base, "_own-part-"):
			n, err := loadOwnFile(db, file, maxLevel)
			if err != nil {
				return fmt.Errorf("loading %s: %w", base, err)
			}
			own += n
		case strings.Contains(base, "_inst-part-"):
			n, err := loadInstFile(db, file, maxLevel)
			if err != nil {
				return fmt.Errorf("loading %s: %w", base, err)
			}
			inst += n
		case strings.Contains(base, "_closest_collaborator_ids-part-"):
			n, err := loadCollabFile(db, file, maxLevel)
			if err != nil {
				return fmt.Errorf("loading %s: %w", base, err)
			}
			collab += n
		default:
			slog.Warn("skipping unrecognized file", "file", base)
		}
	}

	slog.Info("similarity load complete", "own_rows", own, "institution_rows", inst, "collaborator_rows", collab)
	return nil
}

func readPartFile(path string, columns int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = columns
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header")
	}
	return records[1:], nil
}

func loadOwnFile(db *gorm.DB, path string, maxLevel int) (int, error) {
	records, err := readPartFile(path, 4)
	if err != nil {
		return 0, err
	}
	rows := make([]schema.OwnTopicSimilarity, 0, len(records))
	for _, rec := range records {
		authorId, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad author id %q: %w", rec[0], err)
		}
		year, err := strconv.Atoi(rec[1])
		if err != nil {
			return 0, fmt.Errorf("bad degree year %q: %w", rec[1], err)
		}
		sim, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return 0, fmt.Errorf("bad similarity %q: %w", rec[3], err)
		}
		rows = append(rows, schema.OwnTopicSimilarity{
			AuthorId: authorId, DegreeYear: year, Field: rec[2],
			Similarity: sim, MaxLevel: maxLevel,
		})
	}
	return len(rows), upsert(db, rows)
}

func loadInstFile(db *gorm.DB, path string, maxLevel int) (int, error) {
	records, err := readPartFile(path, 6)
	if err != nil {
		return 0, err
	}
	rows := make([]schema.InstitutionTopicSimilarity, 0, len(records))
	for _, rec := range records {
		authorId, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad author id %q: %w", rec[0], err)
		}
		instId, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad institution id %q: %w", rec[1], err)
		}
		year, err := strconv.Atoi(rec[2])
		if err != nil {
			return 0, fmt.Errorf("bad degree year %q: %w", rec[2], err)
		}
		sim, err := strconv.ParseFloat(rec[5], 64)
		if err != nil {
			return 0, fmt.Errorf("bad similarity %q: %w", rec[5], err)
		}
		rows = append(rows, schema.InstitutionTopicSimilarity{
			AuthorId: authorId, InstitutionId: instId, DegreeYear: year,
			Field: rec[3], Period: rec[4], Similarity: sim, MaxLevel: maxLevel,
		})
	}
	return len(rows), upsert(db, rows)
}

func loadCollabFile(db *gorm.DB, path string, maxLevel int) (int, error) {
	records, err := readPartFile(path, 7)
	if err != nil {
		return 0, err
	}
	rows := make([]schema.ClosestCollaborator, 0, len(records))
	for _, rec := range records {
		authorId, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad author id %q: %w", rec[0], err)
		}
		instId, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad institution id %q: %w", rec[1], err)
		}
		collabId, err := strconv.ParseInt(rec[2], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad collaborator id %q: %w", rec[2], err)
		}
		year, err := strconv.Atoi(rec[3])
		if err != nil {
			return 0, fmt.Errorf("bad degree year %q: %w", rec[3], err)
		}
		sim, err := strconv.ParseFloat(rec[6], 64)
		if err != nil {
			return 0, fmt.Errorf("bad similarity %q: %w", rec[6], err)
		}
		rows = append(rows, schema.ClosestCollaborator{
			AuthorId: authorId, InstitutionId: instId, CollaboratorId: collabId,
			DegreeYear: year, Field: rec[4], Period: rec[5],
			Similarity: sim, MaxLevel: maxLevel,
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}
	// No unique key: a reload first clears the file's cells.
	return len(rows), db.Transaction(func(txn *gorm.DB) error {
		err := txn.Where(`"AuthorId" IN ?`, collectAuthorIds(rows)).
			Where("degree_year = ? AND field = ? AND max_level = ?", rows[0].DegreeYear, rows[0].Field, maxLevel).
			Delete(&schema.ClosestCollaborator{}).Error
		if err != nil {
			return err
		}
		return txn.CreateInBatches(rows, 1000).Error
	})
}

func collectAuthorIds(rows []schema.ClosestCollaborator) []int64 {
	seen := make(map[int64]struct{}, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		if _, dup := seen[r.AuthorId]; !dup {
			seen[r.AuthorId] = struct{}{}
			ids = append(ids, r.AuthorId)
		}
	}
	return ids
}

func upsert[T any](db *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(rows, 1000).Error
}
