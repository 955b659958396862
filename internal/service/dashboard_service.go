package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-results-api/internal/models"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
)

type dashboardStudentCounter interface {
	CountByStatus(ctx context.Context) ([]models.CountRow, error)
}

type dashboardClassCounter interface {
	CountByClass(ctx context.Context, year int) ([]models.CountRow, error)
}

type dashboardResultCounter interface {
	CountByExam(ctx context.Context, year int) ([]models.CountRow, error)
}

type metricsSnapshotter interface {
	Snapshot() models.SystemMetrics
}

// DashboardService composes the admin dashboard figures.
type DashboardService struct {
	students dashboardStudentCounter
	classes  dashboardClassCounter
	results  dashboardResultCounter
	metrics  metricsSnapshotter
	logger   *zap.Logger
	now      func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(students dashboardStudentCounter, classes dashboardClassCounter, results dashboardResultCounter, metrics metricsSnapshotter, logger *zap.Logger, now func() time.Time) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &DashboardService{students: students, classes: classes, results: results, metrics: metrics, logger: logger, now: now}
}

// Summary counts students by status and enrolments and results for a year.
// Every class and status is present in the maps, zero when empty.
func (s *DashboardService) Summary(ctx context.Context, year int) (*models.DashboardSummary, error) {
	if year == 0 {
		year = s.now().Year()
	}
	summary := &models.DashboardSummary{
		Year:          year,
		ByStatus:      make(map[string]int, len(models.StudentStatuses)),
		ByClass:       make(map[string]int, len(models.ClassOrder)),
		ResultsByExam: map[string]int{string(models.ExamMidTerm): 0, string(models.ExamFinal): 0},
	}
	for _, st := range models.StudentStatuses {
		summary.ByStatus[string(st)] = 0
	}
	for _, c := range models.ClassOrder {
		summary.ByClass[string(c)] = 0
	}

	statusRows, err := s.students.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count students")
	}
	for _, row := range statusRows {
		summary.ByStatus[row.Key] = row.Count
		summary.TotalStudents += row.Count
	}

	classRows, err := s.classes.CountByClass(ctx, year)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count enrolments")
	}
	for _, row := range classRows {
		summary.ByClass[row.Key] = row.Count
	}

	examRows, err := s.results.CountByExam(ctx, year)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count results")
	}
	for _, row := range examRows {
		summary.ResultsByExam[row.Key] = row.Count
	}

	if s.metrics != nil {
		snap := s.metrics.Snapshot()
		summary.System = &snap
	}
	return summary, nil
}
