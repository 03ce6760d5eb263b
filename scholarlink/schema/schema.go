package schema

import (
	"time"

	"github.com/google/uuid"
)

// Link tables keep one row per accepted match and are versioned by
// IterationId so downstream queries can pin a run. Column order matters
// to the consumers that read these tables positionally.

type LinkedGraduate struct {
	AuthorId    int64   `gorm:"column:AuthorId;uniqueIndex:idx_linked_ids_iteration,priority:2"`
	Goid        string  `gorm:"column:goid;uniqueIndex:idx_linked_ids_iteration,priority:3"`
	LinkScore   float64 `gorm:"column:link_score"`
	IterationId int     `gorm:"column:iteration_id;uniqueIndex:idx_linked_ids_iteration,priority:1"`
}

func (LinkedGraduate) TableName() string { return "linked_ids" }

type LinkedAdvisor struct {
	RelationshipId string  `gorm:"column:relationship_id;uniqueIndex:idx_linked_advisors_iteration,priority:2"`
	AuthorId       int64   `gorm:"column:AuthorId;uniqueIndex:idx_linked_advisors_iteration,priority:3"`
	LinkScore      float64 `gorm:"column:link_score"`
	IterationId    int     `gorm:"column:iteration_id;uniqueIndex:idx_linked_advisors_iteration,priority:1"`
}

func (LinkedAdvisor) TableName() string { return "linked_ids_advisors" }

type LinkedGrant struct {
	GrantId     string  `gorm:"column:GrantID;uniqueIndex:idx_linked_grants_iteration,priority:2"`
	AuthorId    int64   `gorm:"column:AuthorId;uniqueIndex:idx_linked_grants_iteration,priority:3"`
	LinkScore   float64 `gorm:"column:link_score"`
	IterationId int     `gorm:"column:iteration_id;uniqueIndex:idx_linked_grants_iteration,priority:1"`
}

func (LinkedGrant) TableName() string { return "linked_ids_grants" }

// LinkingInfo records the settings and outcome of one linking run per
// iteration. One row per (iteration, linking type).
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

func (LinkingInfo) TableName() string { return "linking_info" }

// Similarity tables hold the per-author topic similarity outputs loaded
// from the worker CSVs. Period is "pre" or "post" relative to the degree
// year; own similarity compares pre against post and has no period.

type OwnTopicSimilarity struct {
	AuthorId   int64   `gorm:"column:AuthorId;uniqueIndex:idx_sim_own,priority:1"`
	DegreeYear int     `gorm:"uniqueIndex:idx_sim_own,priority:2"`
	Field      string  `gorm:"uniqueIndex:idx_sim_own,priority:3"`
	Similarity float64 `gorm:"column:similarity"`
	MaxLevel   int
}

func (OwnTopicSimilarity) TableName() string { return "topic_similarity_own" }

type InstitutionTopicSimilarity struct {
	AuthorId      int64   `gorm:"column:AuthorId;uniqueIndex:idx_sim_inst,priority:1"`
	InstitutionId int64   `gorm:"column:InstitutionId;uniqueIndex:idx_sim_inst,priority:2"`
	DegreeYear    int     `gorm:"uniqueIndex:idx_sim_inst,priority:3"`
	Field         string  `gorm:"uniqueIndex:idx_sim_inst,priority:4"`
	Period        string  `gorm:"size:4;uniqueIndex:idx_sim_inst,priority:5"`
	Similarity    float64 `gorm:"column:similarity"`
	MaxLevel      int
}

func (InstitutionTopicSimilarity) TableName() string { return "topic_similarity_institutions" }

type ClosestCollaborator struct {
	AuthorId       int64 `gorm:"column:AuthorId;index:idx_sim_collab"`
	InstitutionId  int64 `gorm:"column:InstitutionId;index:idx_sim_collab"`
	CollaboratorId int64 `gorm:"column:CollaboratorId"`
	DegreeYear     int
	Field          string
	Period         string `gorm:"size:4"`
	Similarity     float64
	MaxLevel       int
}

func (ClosestCollaborator) TableName() string { return "closest_collaborators" }

// AllTables lists every model in migration order.
func AllTables() []any {
	return []any{
		&LinkedGraduate{}, &LinkedAdvisor{}, &LinkedGrant{}, &LinkingInfo{},
		&OwnTopicSimilarity{}, &InstitutionTopicSimilarity{}, &ClosestCollaborator{},
	}
}
