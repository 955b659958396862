// Package workflow holds the add-results state machine used to assemble a
// batch of marks before it is submitted to the result service.
//
// The current step is derived from the data: a configuration unlocks subject
// selection, at least one subject unlocks student selection and a selected
// student unlocks mark entry. A Workflow is owned by a single caller and is not
// safe for concurrent use.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/noah-isme/school-results-api/internal/dto"
	"github.com/noah-isme/school-results-api/internal/grading"
	"github.com/noah-isme/school-results-api/internal/models"
)

// Step is a stage of the workflow.
type Step int

// Workflow steps in order.
const (
	StepConfigure Step = iota
	StepSelectSubjects
	StepSelectStudents
	StepEnterMarks
)

func (s Step) String() string {
	switch s {
	case StepConfigure:
		return "configure"
	case StepSelectSubjects:
		return "select_subjects"
	case StepSelectStudents:
		return "select_students"
	case StepEnterMarks:
		return "enter_marks"
	}
	return "step(" + strconv.Itoa(int(s)) + ")"
}

// Default configuration values.
const (
	DefaultClass      = models.Class6
	DefaultExamType   = models.ExamMidTerm
	DefaultWrittenCap = 60
	DefaultMCQCap     = 40
)

var (
	// ErrStepLocked is returned when an operation's step is not reachable yet.
	ErrStepLocked = errors.New("workflow: step locked")
	// ErrInvalidConfig is returned for an unknown class or exam type or a bad cap.
	ErrInvalidConfig = errors.New("workflow: invalid configuration")
	// ErrUnknownSubject is returned for a subject outside the class catalog or selection.
	ErrUnknownSubject = errors.New("workflow: unknown subject")
	// ErrUnknownStudent is returned for a student outside the roster or selection.
	ErrUnknownStudent = errors.New("workflow: unknown student")
)

// MarkKind selects which component of a subject mark is edited.
type MarkKind int

// Mark components.
const (
	Written MarkKind = iota
	MCQ
)

// Submitter persists an assembled batch.
type Submitter interface {
	Submit(ctx context.Context, req dto.SubmitResultsRequest) (*dto.SubmitResultsResponse, error)
}

// Config is the exam a batch belongs to.
type Config struct {
	ClassName  models.ClassName
	ExamType   models.ExamType
	Year       int
	WrittenCap float64
	MCQCap     float64
}

// TotalPerSubject is the full mark of one subject.
func (c Config) TotalPerSubject() float64 {
	return c.WrittenCap + c.MCQCap
}

func (c Config) valid() bool {
	return c.ClassName.Valid() && c.ExamType != "" && c.WrittenCap >= 0 && c.MCQCap >= 0 && c.TotalPerSubject() > 0
}

// Entry is one selected student with the marks entered so far.
type Entry struct {
	Student    models.RosterEntry
	Marks      map[string]models.SubjectMark
	TotalMarks float64
	Percentage float64
}

// Workflow accumulates configuration, subjects, students and marks.
type Workflow struct {
	cfg      Config
	scale    grading.Scale
	subjects []string
	roster   []models.RosterEntry
	entries  []*Entry
	search   string
}

// New starts a workflow. Empty class or exam type fall back to the defaults so
// that query parameters can be passed straight through.
func New(className, examType string, scale grading.Scale) (*Workflow, error) {
	w := &Workflow{scale: scale}
	w.cfg = Config{
		ClassName:  DefaultClass,
		ExamType:   DefaultExamType,
		WrittenCap: DefaultWrittenCap,
		MCQCap:     DefaultMCQCap,
	}
	if err := w.Configure(className, examType); err != nil {
		return nil, err
	}
	return w, nil
}

// Configure sets the class and exam type. Changing the class clears subjects
// and students since both depend on it.
func (w *Workflow) Configure(className, examType string) error {
	class := DefaultClass
	if strings.TrimSpace(className) != "" {
		c, ok := models.ParseClassName(className)
		if !ok {
			return fmt.Errorf("%w: class %q", ErrInvalidConfig, className)
		}
		class = c
	}
	exam := DefaultExamType
	if strings.TrimSpace(examType) != "" {
		e, ok := models.ParseExamType(examType)
		if !ok {
			return fmt.Errorf("%w: exam type %q", ErrInvalidConfig, examType)
		}
		exam = e
	}
	if class != w.cfg.ClassName {
		w.subjects = nil
		w.entries = nil
		w.roster = nil
		w.search = ""
	}
	w.cfg.ClassName = class
	w.cfg.ExamType = exam
	return nil
}

// SetYear pins the academic year sent with the batch. Zero lets the server decide.
func (w *Workflow) SetYear(year int) {
	w.cfg.Year = year
}

// SetCaps edits the written and MCQ caps. Marks already entered are clamped to the new caps.
func (w *Workflow) SetCaps(written, mcq float64) error {
	if written < 0 || mcq < 0 || math.IsNaN(written) || math.IsNaN(mcq) || written+mcq <= 0 {
		return fmt.Errorf("%w: caps %v/%v", ErrInvalidConfig, written, mcq)
	}
	w.cfg.WrittenCap = written
	w.cfg.MCQCap = mcq
	for _, e := range w.entries {
		for name, m := range e.Marks {
			m.WrittenMark = clamp(m.WrittenMark, written)
			m.MCQMark = clamp(m.MCQMark, mcq)
			m.TotalMark = m.WrittenMark + m.MCQMark
			e.Marks[name] = m
		}
	}
	w.recompute()
	return nil
}

// Config returns the current configuration.
func (w *Workflow) Config() Config {
	return w.cfg
}

// Step reports the furthest reachable step.
func (w *Workflow) Step() Step {
	switch {
	case !w.cfg.valid():
		return StepConfigure
	case len(w.subjects) == 0:
		return StepSelectSubjects
	case len(w.entries) == 0:
		return StepSelectStudents
	default:
		return StepEnterMarks
	}
}

// Catalog returns the subjects available for the configured class.
func (w *Workflow) Catalog() []string {
	return Catalog(w.cfg.ClassName)
}

// Subjects returns the selected subjects in selection order.
func (w *Workflow) Subjects() []string {
	out := make([]string, len(w.subjects))
	copy(out, w.subjects)
	return out
}

// AddSubject selects a catalog subject. Selecting it twice is a no-op.
func (w *Workflow) AddSubject(subject string) error {
	if !w.cfg.valid() {
		return ErrStepLocked
	}
	if !inCatalog(w.cfg.ClassName, subject) {
		return fmt.Errorf("%w: %s", ErrUnknownSubject, subject)
	}
	if w.hasSubject(subject) {
		return nil
	}
	w.subjects = append(w.subjects, subject)
	w.recompute()
	return nil
}

// AddAllSubjects selects the whole catalog.
func (w *Workflow) AddAllSubjects() error {
	if !w.cfg.valid() {
		return ErrStepLocked
	}
	for _, s := range w.Catalog() {
		if !w.hasSubject(s) {
			w.subjects = append(w.subjects, s)
		}
	}
	w.recompute()
	return nil
}

// RemoveSubject deselects a subject and discards its marks from every entry.
func (w *Workflow) RemoveSubject(subject string) {
	kept := w.subjects[:0]
	for _, s := range w.subjects {
		if s != subject {
			kept = append(kept, s)
		}
	}
	w.subjects = kept
	for _, e := range w.entries {
		delete(e.Marks, subject)
	}
	w.recompute()
}

// RemoveAllSubjects clears the selection and every entered mark.
func (w *Workflow) RemoveAllSubjects() {
	w.subjects = nil
	for _, e := range w.entries {
		e.Marks = map[string]models.SubjectMark{}
	}
	w.recompute()
}

func (w *Workflow) hasSubject(subject string) bool {
	for _, s := range w.subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// SetRoster replaces the pool of students that can be selected.
func (w *Workflow) SetRoster(roster []models.RosterEntry) {
	w.roster = append([]models.RosterEntry(nil), roster...)
}

// Search sets the filter applied by Available.
func (w *Workflow) Search(query string) {
	w.search = strings.TrimSpace(query)
}

// Available lists roster students that match the search and are not selected yet.
func (w *Workflow) Available() []models.RosterEntry {
	q := strings.ToLower(w.search)
	out := make([]models.RosterEntry, 0, len(w.roster))
	for _, r := range w.roster {
		if w.entry(r.StudentID) != nil {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(r.Name), q) &&
			!strings.Contains(strconv.Itoa(r.RollNumber), q) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// AddStudent selects a roster student. Adding a selected student again is a no-op.
func (w *Workflow) AddStudent(studentID string) error {
	if w.Step() < StepSelectStudents {
		return ErrStepLocked
	}
	if w.entry(studentID) != nil {
		return nil
	}
	for _, r := range w.roster {
		if r.StudentID == studentID {
			w.entries = append(w.entries, &Entry{Student: r, Marks: map[string]models.SubjectMark{}})
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownStudent, studentID)
}

// RemoveStudent deselects a student and discards their marks.
func (w *Workflow) RemoveStudent(studentID string) {
	kept := w.entries[:0]
	for _, e := range w.entries {
		if e.Student.StudentID != studentID {
			kept = append(kept, e)
		}
	}
	w.entries = kept
}

// FindByRoll returns the roster student holding roll.
func (w *Workflow) FindByRoll(roll int) (models.RosterEntry, bool) {
	for _, r := range w.roster {
		if r.RollNumber == roll {
			return r, true
		}
	}
	return models.RosterEntry{}, false
}

// SetMark records one mark component, clamped to [0, cap].
func (w *Workflow) SetMark(studentID, subject string, kind MarkKind, value float64) error {
	if w.Step() < StepEnterMarks {
		return ErrStepLocked
	}
	e := w.entry(studentID)
	if e == nil {
		return fmt.Errorf("%w: %s", ErrUnknownStudent, studentID)
	}
	if !w.hasSubject(subject) {
		return fmt.Errorf("%w: %s", ErrUnknownSubject, subject)
	}
	m := e.Marks[subject]
	switch kind {
	case Written:
		m.WrittenMark = clamp(value, w.cfg.WrittenCap)
	case MCQ:
		m.MCQMark = clamp(value, w.cfg.MCQCap)
	default:
		return fmt.Errorf("workflow: unknown mark kind %d", kind)
	}
	m.TotalMark = m.WrittenMark + m.MCQMark
	e.Marks[subject] = m
	w.recomputeEntry(e)
	return nil
}

// Entries returns a snapshot of the selected students and their marks.
func (w *Workflow) Entries() []Entry {
	out := make([]Entry, 0, len(w.entries))
	for _, e := range w.entries {
		marks := make(map[string]models.SubjectMark, len(e.Marks))
		for k, v := range e.Marks {
			marks[k] = v
		}
		out = append(out, Entry{Student: e.Student, Marks: marks, TotalMarks: e.TotalMarks, Percentage: e.Percentage})
	}
	return out
}

// Request assembles the batch payload. Every subject carries the caps and a grade.
func (w *Workflow) Request() dto.SubmitResultsRequest {
	total := w.cfg.TotalPerSubject()
	req := dto.SubmitResultsRequest{
		TestInfo: dto.TestInfo{
			ClassName:            w.cfg.ClassName,
			TestType:             w.cfg.ExamType,
			WrittenMarks:         w.cfg.WrittenCap,
			MCQMarks:             w.cfg.MCQCap,
			TotalMarksPerSubject: total,
			Subjects:             w.Subjects(),
			Year:                 w.cfg.Year,
		},
		Results: make([]dto.StudentResultEntry, 0, len(w.entries)),
	}
	for _, e := range w.entries {
		subjects := make(models.SubjectScores, len(e.Marks))
		for name, m := range e.Marks {
			m.MaxWrittenMark = w.cfg.WrittenCap
			m.MaxMCQMark = w.cfg.MCQCap
			m.MaxTotalMark = total
			m.Grade = w.scale.GradeMarks(m.TotalMark, total)
			subjects[name] = m
		}
		req.Results = append(req.Results, dto.StudentResultEntry{
			StudentID:   e.Student.StudentID,
			StudentName: e.Student.Name,
			RollNumber:  e.Student.RollNumber,
			Subjects:    subjects,
			TotalMarks:  e.TotalMarks,
		})
	}
	return req
}

// Submit sends the batch. On success the workflow resets to its defaults while
// keeping the class and exam type; on failure nothing changes.
func (w *Workflow) Submit(ctx context.Context, s Submitter) (*dto.SubmitResultsResponse, error) {
	if w.Step() < StepEnterMarks {
		return nil, ErrStepLocked
	}
	resp, err := s.Submit(ctx, w.Request())
	if err != nil {
		return nil, err
	}
	w.Reset()
	return resp, nil
}

// Reset clears subjects, students, search and caps.
func (w *Workflow) Reset() {
	w.subjects = nil
	w.entries = nil
	w.search = ""
	w.cfg.WrittenCap = DefaultWrittenCap
	w.cfg.MCQCap = DefaultMCQCap
}

func (w *Workflow) entry(studentID string) *Entry {
	for _, e := range w.entries {
		if e.Student.StudentID == studentID {
			return e
		}
	}
	return nil
}

func (w *Workflow) recompute() {
	for _, e := range w.entries {
		w.recomputeEntry(e)
	}
}

func (w *Workflow) recomputeEntry(e *Entry) {
	var total float64
	for _, m := range e.Marks {
		total += m.TotalMark
	}
	e.TotalMarks = total
	e.Percentage = grading.Percentage(total, float64(len(w.subjects))*w.cfg.TotalPerSubject())
}

func clamp(v, max float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
