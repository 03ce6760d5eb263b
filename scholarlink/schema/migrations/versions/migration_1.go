package versions

import (
	"gorm.io/gorm"
)

// Migration1 adds the topic similarity tables loaded by the similarity
// pipeline.
func Migration1(db *gorm.DB) error {
	type OwnTopicSimilarity struct {
		AuthorId   int64   `gorm:"column:AuthorId;uniqueIndex:idx_sim_own,priority:1"`
		DegreeYear int     `gorm:"uniqueIndex:idx_sim_own,priority:2"`
		Field      string  `gorm:"uniqueIndex:idx_sim_own,priority:3"`
		Similarity float64 `gorm:"column:similarity"`
		MaxLevel   int
	}

	type InstitutionTopicSimilarity struct {
		AuthorId      int64   `gorm:"column:AuthorId;uniqueIndex:idx_sim_inst,priority:1"`
		InstitutionId int64   `gorm:"column:InstitutionId;uniqueIndex:idx_sim_inst,priority:2"`
		DegreeYear    int     `gorm:"uniqueIndex:idx_sim_inst,priority:3"`
		Field         string  `gorm:"uniqueIndex:idx_sim_inst,priority:4"`
		Period        string  `gorm:"size:4;uniqueIndex:idx_sim_inst,priority:5"`
		Similarity    float64 `gorm:"column:similarity"`
		MaxLevel      int
	}

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

	if err := db.Table("topic_similarity_own").AutoMigrate(&OwnTopicSimilarity{}); err != nil {
		return err
	}
	if err := db.Table("topic_similarity_institutions").AutoMigrate(&InstitutionTopicSimilarity{}); err != nil {
		return err
	}
	return db.Table("closest_collaborators").AutoMigrate(&ClosestCollaborator{})
}

func Rollback1(db *gorm.DB) error {
	for _, table := range []string{"topic_similarity_own", "topic_similarity_institutions", "closest_collaborators"} {
		if err := db.Migrator().DropTable(table); err != nil {
			return err
		}
	}
	return nil
}
