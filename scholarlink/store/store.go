package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"scholarlink/scholarlink/linking"
	"scholarlink/scholarlink/schema"
)

// Open connects to the store. A postgres:// URI selects the production
// database; anything else is treated as a sqlite file path.
func Open(target string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://") {
		dialector = postgres.Open(schema.UriToDsn(target))
	} else {
		dialector = sqlite.Open(target)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// OpenReadOnly opens a sqlite database for reading only. Similarity
// workers each hold one of these so a slow cell never blocks another
// worker's reads.
func OpenReadOnly(path string) (*gorm.DB, error) {
	if strings.Contains(path, "://") {
		return nil, fmt.Errorf("read-only worker connections need a sqlite file path, got URI %q", path)
	}
	db, err := gorm.Open(sqlite.Open("file:"+path+"?mode=ro"), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening read-only database: %w", err)
	}
	return db, nil
}

// NextIterationId returns one more than the highest iteration recorded
// for a linking type, starting at 0 on an empty table.
func NextIterationId(db *gorm.DB, lt linking.LinkingType) (int, error) {
	var max *int
	err := db.Model(&schema.LinkingInfo{}).
		Where("linking_type = ?", string(lt)).
		Select("MAX(iteration_id)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("reading iteration id: %w", err)
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

// RunInfo is the metadata recorded alongside one batch of links.
type RunInfo struct {
	IterationId int
	Fingerprint linking.Fingerprint
	Recall      float64
	MergeMode   linking.MergeMode

	TrainMatches  int
	TrainDistinct int
}

// EmitLinks writes a batch of links for one run in a single transaction,
// with the companion linking_info row. Link A/B keys map onto the
// per-type columns: graduates A=goid B=AuthorId, advisors A=relationship
// B=AuthorId, grants A=GrantID B=AuthorId.
func EmitLinks(db *gorm.DB, info RunInfo, links []linking.Link) error {
	return db.Transaction(func(txn *gorm.DB) error {
		switch info.Fingerprint.LinkingType {
		case linking.LinkGraduates:
			rows := make([]schema.LinkedGraduate, 0, len(links))
			for _, l := range links {
				authorId, err := parseAuthorId(l.B)
				if err != nil {
					return err
				}
				rows = append(rows, schema.LinkedGraduate{
					AuthorId: authorId, Goid: l.A,
					LinkScore: l.Score, IterationId: info.IterationId,
				})
			}
			if len(rows) > 0 {
				if err := txn.CreateInBatches(rows, 1000).Error; err != nil {
					return fmt.Errorf("writing graduate links: %w", err)
				}
			}
		case linking.LinkAdvisors:
			rows := make([]schema.LinkedAdvisor, 0, len(links))
			for _, l := range links {
				authorId, err := parseAuthorId(l.B)
				if err != nil {
					return err
				}
				rows = append(rows, schema.LinkedAdvisor{
					RelationshipId: l.A, AuthorId: authorId,
					LinkScore: l.Score, IterationId: info.IterationId,
				})
			}
			if len(rows) > 0 {
				if err := txn.CreateInBatches(rows, 1000).Error; err != nil {
					return fmt.Errorf("writing advisor links: %w", err)
				}
			}
		case linking.LinkGrants:
			rows := make([]schema.LinkedGrant, 0, len(links))
			for _, l := range links {
				authorId, err := parseAuthorId(l.B)
				if err != nil {
					return err
				}
				rows = append(rows, schema.LinkedGrant{
					GrantId: l.A, AuthorId: authorId,
					LinkScore: l.Score, IterationId: info.IterationId,
				})
			}
			if len(rows) > 0 {
				if err := txn.CreateInBatches(rows, 1000).Error; err != nil {
					return fmt.Errorf("writing grant links: %w", err)
				}
			}
		default:
			return fmt.Errorf("unsupported linking type %q", info.Fingerprint.LinkingType)
		}

		row := schema.LinkingInfo{
			RunId:       uuid.New(),
			IterationId: info.IterationId,
			LinkingType: string(info.Fingerprint.LinkingType),
			Date:        time.Now().UTC(),

			Field:     info.Fingerprint.Field,
			StartYear: info.Fingerprint.StartYear,
			EndYear:   info.Fingerprint.EndYear,

			InstitutionFlag:     info.Fingerprint.Flags.Institution,
			FieldOfStudyCatFlag: info.Fingerprint.Flags.FieldOfStudyCat,
			FieldOfStudyStrFlag: info.Fingerprint.Flags.FieldOfStudyStr,
			KeywordsFlag:        info.Fingerprint.Flags.Keywords,

			Recall:    info.Recall,
			MergeMode: string(info.MergeMode),

			TrainMatches:  info.TrainMatches,
			TrainDistinct: info.TrainDistinct,
			LinksEmitted:  len(links),
		}
		if err := txn.Create(&row).Error; err != nil {
			return fmt.Errorf("writing linking info: %w", err)
		}
		return nil
	})
}

func parseAuthorId(key string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(key, "%d", &id); err != nil {
		return 0, fmt.Errorf("link key %q is not an author id: %w", key, err)
	}
	return id, nil
}
