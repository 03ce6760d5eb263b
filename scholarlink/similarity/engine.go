package similarity

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Cell is one independent unit of work: a degree-year cohort in one field.
type Cell struct {
	DegreeYear int
	Field      string
}

func (c Cell) String() string {
	return fmt.Sprintf("%d/%s", c.DegreeYear, c.Field)
}

// Config holds the per-run parameters shared by every cell.
type Config struct {
	Iteration int
	MaxLevel  int
	TopN      int
	WriteDir  string

	// Reduce optionally maps topic vectors into a lower-dimensional
	// space before comparison.
	Reduce func(*TopicVector) *TopicVector
}

// DefaultTopN bounds the collaborator set per institution.
const DefaultTopN = 200

func (cfg Config) cellDir() string {
	return filepath.Join(cfg.WriteDir, fmt.Sprintf("maxlevel-%d", cfg.MaxLevel))
}

func (cfg Config) reduce(v *TopicVector) *TopicVector {
	if v == nil || cfg.Reduce == nil {
		return v
	}
	return cfg.Reduce(v)
}

// FilesPerCell is the number of part files one cell produces.
const FilesPerCell = 3

type ownRow struct {
	authorId   int64
	similarity float64
}

type instRow struct {
	authorId      int64
	institutionId int64
	period        string
	similarity    float64
}

type collabRow struct {
	authorId       int64
	institutionId  int64
	collaboratorId int64
	period         string
	similarity     float64
}

// ComputeCell computes the three similarity tables for one cell and
// writes them as CSV part files. Rerunning a cell truncates and rewrites
// its own files and touches nothing else.
func ComputeCell(q *Queries, cell Cell, cfg Config) error {
	cohort, err := q.CohortIds(cell.DegreeYear, cell.Field, cfg.Iteration)
	if err != nil {
		return err
	}

	cohortTopics, err := q.AuthorTopics(cohort, cell.DegreeYear, cfg.MaxLevel)
	if err != nil {
		return err
	}

	institutions, err := q.InstitutionIds()
	if err != nil {
		return err
	}

	topicRows, err := q.CohortTopicRowCount(cohort, cfg.MaxLevel)
	if err != nil {
		return err
	}
	groups := MakeGroups(institutions, GroupSizeMax(topicRows))

	own := make([]ownRow, 0, len(cohort))
	for _, authorId := range cohort {
		pre := cfg.reduce(cohortTopics[authorId][PeriodPre])
		post := cfg.reduce(cohortTopics[authorId][PeriodPost])
		sim := 0.0
		if pre != nil && post != nil {
			sim = Cosine(pre, post)
		}
		own = append(own, ownRow{authorId: authorId, similarity: sim})
	}
	if err := writeOwn(cell, cfg, own); err != nil {
		return err
	}

	for gi, group := range groups {
		instRows, collabRows, err := computeGroup(q, cell, cfg, cohort, cohortTopics, group)
		if err != nil {
			return fmt.Errorf("cell %s group %d: %w", cell, gi, err)
		}
		if err := writeInstitutions(cell, cfg, gi, instRows); err != nil {
			return err
		}
		if err := writeCollaborators(cell, cfg, gi, collabRows); err != nil {
			return err
		}
	}

	// Empty cohorts and cohorts with no institutions still leave a full
	// set of files behind so the post-run count check stays meaningful.
	if len(groups) == 0 {
		if err := writeInstitutions(cell, cfg, 0, nil); err != nil {
			return err
		}
		if err := writeCollaborators(cell, cfg, 0, nil); err != nil {
			return err
		}
	}

	return nil
}

func computeGroup(q *Queries, cell Cell, cfg Config, cohort []int64, cohortTopics map[int64]map[string]*TopicVector, group []int64) ([]instRow, []collabRow, error) {
	instTopics, err := q.InstitutionTopics(group, cell.DegreeYear, cfg.MaxLevel)
	if err != nil {
		return nil, nil, err
	}

	collaborators, err := q.TopCollaborators(group, cfg.TopN)
	if err != nil {
		return nil, nil, err
	}
	collabIds := make([]int64, 0)
	seen := make(map[int64]struct{})
	for _, ids := range collaborators {
		for _, id := range ids {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				collabIds = append(collabIds, id)
			}
		}
	}
	collabTopics, err := q.AuthorTopics(collabIds, cell.DegreeYear, cfg.MaxLevel)
	if err != nil {
		return nil, nil, err
	}

	// Dense completion: every (member, institution, period) combination
	// gets a row, absent comparisons filled with 0.
	instRows := make([]instRow, 0, len(cohort)*len(group)*len(Periods))
	for _, authorId := range cohort {
		for _, instId := range group {
			for _, period := range Periods {
				member := cfg.reduce(cohortTopics[authorId][period])
				inst := cfg.reduce(instTopics[instId][period])
				sim := 0.0
				if member != nil && inst != nil {
					sim = Cosine(member, inst)
				}
				instRows = append(instRows, instRow{
					authorId: authorId, institutionId: instId,
					period: period, similarity: sim,
				})
			}
		}
	}

	collabRows := make([]collabRow, 0)
	for _, authorId := range cohort {
		for _, instId := range group {
			for _, period := range Periods {
				member := cfg.reduce(cohortTopics[authorId][period])
				if member == nil {
					continue
				}
				best := -1.0
				var winners []collabRow
				for _, collabId := range collaborators[instId] {
					vec := cfg.reduce(collabTopics[collabId][period])
					if vec == nil {
						continue
					}
					sim := Cosine(member, vec)
					if sim > best {
						best = sim
						winners = winners[:0]
					}
					if sim == best {
						winners = append(winners, collabRow{
							authorId: authorId, institutionId: instId,
							collaboratorId: collabId, period: period, similarity: sim,
						})
					}
				}
				collabRows = append(collabRows, winners...)
			}
		}
	}

	return instRows, collabRows, nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func cellPrefix(cell Cell) string {
	return fmt.Sprintf("%d_%s", cell.DegreeYear, cell.Field)
}

func writeOwn(cell Cell, cfg Config, rows []ownRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			strconv.FormatInt(r.authorId, 10),
			strconv.Itoa(cell.DegreeYear),
			cell.Field,
			formatFloat(r.similarity),
		})
	}
	path := filepath.Join(cfg.cellDir(), cellPrefix(cell)+"_own-part-0.csv")
	return writeCSV(path, []string{"AuthorId", "degree_year", "field", "similarity"}, records)
}

func writeInstitutions(cell Cell, cfg Config, part int, rows []instRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			strconv.FormatInt(r.authorId, 10),
			strconv.FormatInt(r.institutionId, 10),
			strconv.Itoa(cell.DegreeYear),
			cell.Field,
			r.period,
			formatFloat(r.similarity),
		})
	}
	path := filepath.Join(cfg.cellDir(), fmt.Sprintf("%s_inst-part-%d.csv", cellPrefix(cell), part))
	return writeCSV(path, []string{"AuthorId", "InstitutionId", "degree_year", "field", "period", "similarity"}, records)
}

func writeCollaborators(cell Cell, cfg Config, part int, rows []collabRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			strconv.FormatInt(r.authorId, 10),
			strconv.FormatInt(r.institutionId, 10),
			strconv.FormatInt(r.collaboratorId, 10),
			strconv.Itoa(cell.DegreeYear),
			cell.Field,
			r.period,
			formatFloat(r.similarity),
		})
	}
	path := filepath.Join(cfg.cellDir(), fmt.Sprintf("%s_closest_collaborator_ids-part-%d.csv", cellPrefix(cell), part))
	return writeCSV(path, []string{"AuthorId", "InstitutionId", "CollaboratorId", "degree_year", "field", "period", "similarity"}, records)
}
