package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-scheduler/internal/engine"
	"github.com/noah-isme/course-scheduler/internal/models"
)

// CatalogRepository backs engine.CatalogReader with the academic catalog
// tables: sections, subjects, subject_prerequisites and academic_periods.
type CatalogRepository struct {
	db       *sqlx.DB
	subjects *SubjectRepository
	periods  *AcademicPeriodRepository
}

// NewCatalogRepository constructs a CatalogRepository.
func NewCatalogRepository(db *sqlx.DB, subjects *SubjectRepository, periods *AcademicPeriodRepository) *CatalogRepository {
	return &CatalogRepository{db: db, subjects: subjects, periods: periods}
}

type sectionMeetingRow struct {
	ID          string `db:"id"`
	SubjectID   string `db:"subject_id"`
	SubjectCode string `db:"subject_code"`
	SubjectName string `db:"subject_name"`
	ProfessorID string `db:"professor_id"`
	ClassroomID string `db:"classroom_id"`
	Capacity    int    `db:"capacity"`
	Enrolled    int    `db:"enrolled_count"`
	DayOfWeek   int    `db:"day_of_week"`
	StartMinute int    `db:"start_minute"`
	EndMinute   int    `db:"end_minute"`
}

// SectionsForSubject returns every section offering the subject within the
// given academic period, one engine.Section per distinct section id with
// its meeting rows folded into TimeSlots.
func (r *CatalogRepository) SectionsForSubject(ctx context.Context, subjectID, periodID string) ([]engine.Section, error) {
	const query = `
		SELECT s.id, s.subject_id, sub.code AS subject_code, sub.name AS subject_name,
		       s.professor_id, s.classroom_id, s.capacity, s.enrolled_count,
		       s.day_of_week, s.start_minute, s.end_minute
		FROM sections s
		JOIN subjects sub ON sub.id = s.subject_id
		WHERE s.subject_id = $1 AND s.academic_period_id = $2
		ORDER BY s.id`

	var rows []sectionMeetingRow
	if err := r.db.SelectContext(ctx, &rows, query, subjectID, periodID); err != nil {
		return nil, fmt.Errorf("list sections for subject: %w", err)
	}

	order := make([]string, 0)
	bySection := make(map[string]*engine.Section)
	for _, row := range rows {
		section, ok := bySection[row.ID]
		if !ok {
			section = &engine.Section{
				ID:            row.ID,
				SubjectID:     row.SubjectID,
				SubjectCode:   row.SubjectCode,
				SubjectName:   row.SubjectName,
				ProfessorID:   row.ProfessorID,
				ClassroomID:   row.ClassroomID,
				Capacity:      row.Capacity,
				Enrolled:      row.Enrolled,
				SectionNumber: len(order) + 1,
			}
			bySection[row.ID] = section
			order = append(order, row.ID)
		}
		section.TimeSlots = append(section.TimeSlots, engine.TimeSlot{
			Day:   row.DayOfWeek,
			Start: row.StartMinute,
			End:   row.EndMinute,
		})
	}

	sections := make([]engine.Section, 0, len(order))
	for _, id := range order {
		sections = append(sections, *bySection[id])
	}
	return sections, nil
}

// SubjectPrerequisites returns a subject's declared prerequisites mapped
// into the engine's vocabulary.
func (r *CatalogRepository) SubjectPrerequisites(ctx context.Context, subjectID string) ([]engine.Prerequisite, error) {
	prereqs, err := r.subjects.Prerequisites(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	out := make([]engine.Prerequisite, 0, len(prereqs))
	for _, p := range prereqs {
		kind := engine.PrerequisiteObligatory
		if p.Kind == models.PrerequisiteKindCo {
			kind = engine.PrerequisiteCorequisite
		}
		out = append(out, engine.Prerequisite{PrerequisiteSubjectID: p.RequiredSubjectID, Kind: kind})
	}
	return out, nil
}

// SubjectExistsInProgram reports whether a subject belongs to a program.
func (r *CatalogRepository) SubjectExistsInProgram(ctx context.Context, subjectID, programID string) (bool, error) {
	return r.subjects.ExistsInProgram(ctx, subjectID, programID)
}

// ActiveAcademicPeriod returns the institution's currently active period.
func (r *CatalogRepository) ActiveAcademicPeriod(ctx context.Context) (*engine.AcademicPeriod, error) {
	period, err := r.periods.FindActive(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return toEnginePeriod(period), nil
}

// AcademicPeriodByID resolves a period by id.
func (r *CatalogRepository) AcademicPeriodByID(ctx context.Context, id string) (*engine.AcademicPeriod, error) {
	period, err := r.periods.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return toEnginePeriod(period), nil
}

func toEnginePeriod(p *models.AcademicPeriod) *engine.AcademicPeriod {
	return &engine.AcademicPeriod{ID: p.ID, Name: p.Name, IsActive: p.IsActive}
}

// StudentCatalogReader adapts StudentRepository to engine.StudentReader,
// translating the richer persisted academic history rows into the
// engine's minimal vocabulary.
type StudentCatalogReader struct {
	repo *StudentRepository
}

// NewStudentCatalogReader constructs a StudentCatalogReader.
func NewStudentCatalogReader(repo *StudentRepository) *StudentCatalogReader {
	return &StudentCatalogReader{repo: repo}
}

// StudentByID delegates to the underlying repository.
func (a *StudentCatalogReader) StudentByID(ctx context.Context, id string) (*engine.StudentRecord, error) {
	return a.repo.StudentByID(ctx, id)
}

// AcademicHistory translates persisted history rows into engine records.
func (a *StudentCatalogReader) AcademicHistory(ctx context.Context, studentID string) ([]engine.AcademicHistoryRecord, error) {
	history, err := a.repo.AcademicHistory(ctx, studentID)
	if err != nil {
		return nil, err
	}
	out := make([]engine.AcademicHistoryRecord, 0, len(history))
	for _, h := range history {
		out = append(out, engine.AcademicHistoryRecord{
			SubjectID: h.SubjectID,
			Status:    engine.AcademicHistoryStatus(h.Status),
		})
	}
	return out, nil
}
