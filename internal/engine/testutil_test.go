package engine

import "context"

// fakeCatalog is an in-memory CatalogReader built directly from Section
// values, used across engine tests instead of a generated mock.
type fakeCatalog struct {
	sectionsBySubject map[string][]Section
	prereqs           map[string][]Prerequisite
	subjectsInProgram map[string]bool
	activePeriod      *AcademicPeriod
	periods           map[string]*AcademicPeriod
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		sectionsBySubject: make(map[string][]Section),
		prereqs:           make(map[string][]Prerequisite),
		subjectsInProgram: make(map[string]bool),
		periods:           make(map[string]*AcademicPeriod),
	}
}

func (f *fakeCatalog) withSections(subjectID string, sections ...Section) *fakeCatalog {
	f.sectionsBySubject[subjectID] = append(f.sectionsBySubject[subjectID], sections...)
	f.subjectsInProgram[subjectID] = true
	return f
}

func (f *fakeCatalog) withPrerequisite(subjectID string, p Prerequisite) *fakeCatalog {
	f.prereqs[subjectID] = append(f.prereqs[subjectID], p)
	f.subjectsInProgram[subjectID] = true
	return f
}

func (f *fakeCatalog) withActivePeriod(id string) *fakeCatalog {
	p := &AcademicPeriod{ID: id, IsActive: true}
	f.activePeriod = p
	f.periods[id] = p
	return f
}

func (f *fakeCatalog) SectionsForSubject(_ context.Context, subjectID, _ string) ([]Section, error) {
	return f.sectionsBySubject[subjectID], nil
}

func (f *fakeCatalog) SubjectPrerequisites(_ context.Context, subjectID string) ([]Prerequisite, error) {
	return f.prereqs[subjectID], nil
}

func (f *fakeCatalog) SubjectExistsInProgram(_ context.Context, subjectID, _ string) (bool, error) {
	return f.subjectsInProgram[subjectID], nil
}

func (f *fakeCatalog) ActiveAcademicPeriod(_ context.Context) (*AcademicPeriod, error) {
	return f.activePeriod, nil
}

func (f *fakeCatalog) AcademicPeriodByID(_ context.Context, id string) (*AcademicPeriod, error) {
	return f.periods[id], nil
}

type fakeStudents struct {
	students map[string]*StudentRecord
	history  map[string][]AcademicHistoryRecord
}

func newFakeStudents() *fakeStudents {
	return &fakeStudents{students: make(map[string]*StudentRecord), history: make(map[string][]AcademicHistoryRecord)}
}

func (f *fakeStudents) withStudent(id, programID string) *fakeStudents {
	f.students[id] = &StudentRecord{ID: id, ProgramID: programID}
	return f
}

func (f *fakeStudents) withApproved(studentID string, subjectIDs ...string) *fakeStudents {
	for _, s := range subjectIDs {
		f.history[studentID] = append(f.history[studentID], AcademicHistoryRecord{SubjectID: s, Status: HistoryApproved})
	}
	return f
}

func (f *fakeStudents) StudentByID(_ context.Context, id string) (*StudentRecord, error) {
	return f.students[id], nil
}

func (f *fakeStudents) AcademicHistory(_ context.Context, studentID string) ([]AcademicHistoryRecord, error) {
	return f.history[studentID], nil
}

func section(id, subjectID, professorID, classroomID string, capacity, enrolled int, slots ...TimeSlot) Section {
	return Section{
		ID:          id,
		SubjectID:   subjectID,
		SubjectCode: subjectID,
		SubjectName: subjectID,
		ProfessorID: professorID,
		ClassroomID: classroomID,
		Capacity:    capacity,
		Enrolled:    enrolled,
		TimeSlots:   slots,
	}
}

func slot(day, start, end int) TimeSlot {
	return TimeSlot{Day: day, Start: start, End: end}
}
