package versions

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func Migration0(db *gorm.DB) error {
	type LinkedGraduate struct {
		AuthorId    int64   `gorm:"column:AuthorId;uniqueIndex:idx_linked_ids_iteration,priority:2"`
		Goid        string  `gorm:"column:goid;uniqueIndex:idx_linked_ids_iteration,priority:3"`
		LinkScore   float64 `gorm:"column:link_score"`
		IterationId int     `gorm:"column:iteration_id;uniqueIndex:idx_linked_ids_iteration,priority:1"`
	}

	type LinkedAdvisor struct {
		RelationshipId string  `gorm:"column:relationship_id;uniqueIndex:idx_linked_advisors_iteration,priority:2"`
		AuthorId       int64   `gorm:"column:AuthorId;uniqueIndex:idx_linked_advisors_iteration,priority:3"`
		LinkScore      float64 `gorm:"column:link_score"`
		IterationId    int     `gorm:"column:iteration_id;uniqueIndex:idx_linked_advisors_iteration,priority:1"`
	}

	type LinkedGrant struct {
		GrantId     string  `gorm:"column:GrantID;uniqueIndex:idx_linked_grants_iteration,priority:2"`
		AuthorId    int64   `gorm:"column:AuthorId;uniqueIndex:idx_linked_grants_iteration,priority:3"`
		LinkScore   float64 `gorm:"column:link_score"`
		IterationId int     `gorm:"column:iteration_id;uniqueIndex:idx_linked_grants_iteration,priority:1"`
	}

	type LinkingInfo struct {
		RunId       uuid.UUID `gorm:"type:uuid;primaryKey"`
		IterationId int       `gorm:"column:iteration_id;index"`
		LinkingType string    `gorm:"size:20;not null"`
		Date        time.Time

		Field     string
		StartYear int
		EndYear   int

		InstitutionFlag     bool
		FieldOfStudyCatFlag bool
		FieldOfStudyStrFlag bool
		KeywordsFlag        bool

		Recall    float64
		MergeMode string `gorm:"size:20"`

		TrainMatches  int
		TrainDistinct int
		LinksEmitted  int
	}

	if err := db.Table("linked_ids").AutoMigrate(&LinkedGraduate{}); err != nil {
		return err
	}
	if err := db.Table("linked_ids_advisors").AutoMigrate(&LinkedAdvisor{}); err != nil {
		return err
	}
	if err := db.Table("linked_ids_grants").AutoMigrate(&LinkedGrant{}); err != nil {
		return err
	}
	return db.Table("linking_info").AutoMigrate(&LinkingInfo{})
}
