package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/civicdesk/petition-service/internal/domain"
	"github.com/civicdesk/petition-service/internal/mailer"
	"github.com/civicdesk/petition-service/internal/repository"
)

// ReportService compiles and emails daily and weekly department
// digests.
type ReportService struct {
	petitions   repository.PetitionRepository
	departments repository.DepartmentRepository
	mail        mailer.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// ReportDependencies bundles collaborators.
type ReportDependencies struct {
	PetitionRepo   repository.PetitionRepository
	DepartmentRepo repository.DepartmentRepository
	Mail           mailer.Dispatcher
	Logger         *zap.Logger
	Clock          func() time.Time
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &ReportService{
		petitions:   deps.PetitionRepo,
		departments: deps.DepartmentRepo,
		mail:        deps.Mail,
		logger:      deps.Logger,
		now:         clock,
	}
}

// SendDailySummaries emails the daily digest to every department that
// opted in. It returns how many digests were queued.
func (s *ReportService) SendDailySummaries(ctx context.Context) (int, error) {
	depts, err := s.departments.List(ctx)
	if err != nil {
		return 0, err
	}
	sent := 0
	for i := range depts {
		if !depts[i].Notifications.DailySummary {
			continue
		}
		if err := s.sendDailySummary(ctx, &depts[i]); err != nil {
			s.logger.Warn("daily summary failed",
				zap.String("department", depts[i].Name), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

// SendWeeklyReports emails the weekly digest to every department that
// opted in. It returns how many digests were queued.
func (s *ReportService) SendWeeklyReports(ctx context.Context) (int, error) {
	depts, err := s.departments.List(ctx)
	if err != nil {
		return 0, err
	}
	sent := 0
	for i := range depts {
		if !depts[i].Notifications.WeeklyReport {
			continue
		}
		if err := s.sendWeeklyReport(ctx, &depts[i]); err != nil {
			s.logger.Warn("weekly report failed",
				zap.String("department", depts[i].Name), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

// SendDailySummaryFor emails the daily digest to a single department.
// Manual triggers skip the opt-in check.
func (s *ReportService) SendDailySummaryFor(ctx context.Context, dept *domain.Department) error {
	return s.sendDailySummary(ctx, dept)
}

// SendWeeklyReportFor emails the weekly digest to a single department.
func (s *ReportService) SendWeeklyReportFor(ctx context.Context, dept *domain.Department) error {
	return s.sendWeeklyReport(ctx, dept)
}

func (s *ReportService) sendDailySummary(ctx context.Context, dept *domain.Department) error {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	name := dept.Name

	newToday, err := s.petitions.ListWithFilter(ctx, repository.PetitionFilter{
		Department:  &name,
		CreatedFrom: &dayStart,
		Limit:       20,
	})
	if err != nil {
		return err
	}
	resolvedToday, err := s.petitions.CountWithFilter(ctx, repository.PetitionFilter{
		Department:  &name,
		Statuses:    []domain.PetitionStatus{domain.PetitionStatusResolved},
		UpdatedFrom: &dayStart,
	})
	if err != nil {
		return err
	}
	pending, err := s.petitions.CountWithFilter(ctx, repository.PetitionFilter{
		Department: &name,
		Statuses:   []domain.PetitionStatus{domain.PetitionStatusPending},
	})
	if err != nil {
		return err
	}
	urgent, err := s.petitions.ListWithFilter(ctx, repository.PetitionFilter{
		Department: &name,
		Statuses:   []domain.PetitionStatus{domain.PetitionStatusPending, domain.PetitionStatusInProgress},
		Urgencies:  []domain.UrgencyLevel{domain.UrgencyHigh, domain.UrgencyCritical},
		Limit:      20,
	})
	if err != nil {
		return err
	}

	data := mailer.DailySummaryData{
		Department:    name,
		Date:          now,
		NewPetitions:  int64(len(newToday)),
		ResolvedToday: resolvedToday,
		Pending:       pending,
		HighUrgency:   int64(len(urgent)),
		UrgentList:    summaryRows(urgent),
		NewToday:      summaryRows(newToday),
	}
	s.mail.Enqueue(mailer.DailySummary(dept.Email, data))
	return nil
}

func (s *ReportService) sendWeeklyReport(ctx context.Context, dept *domain.Department) error {
	now := s.now()
	weekStart := now.AddDate(0, 0, -7)
	prevWeekStart := now.AddDate(0, 0, -14)
	name := dept.Name

	total, err := s.petitions.CountWithFilter(ctx, repository.PetitionFilter{
		Department:  &name,
		CreatedFrom: &weekStart,
	})
	if err != nil {
		return err
	}
	previous, err := s.petitions.CountWithFilter(ctx, repository.PetitionFilter{
		Department:  &name,
		CreatedFrom: &prevWeekStart,
		CreatedTo:   &weekStart,
	})
	if err != nil {
		return err
	}
	resolved, err := s.petitions.CountWithFilter(ctx, repository.PetitionFilter{
		Department:  &name,
		Statuses:    []domain.PetitionStatus{domain.PetitionStatusResolved},
		UpdatedFrom: &weekStart,
	})
	if err != nil {
		return err
	}
	inProgress, err := s.petitions.CountWithFilter(ctx, repository.PetitionFilter{
		Department: &name,
		Statuses:   []domain.PetitionStatus{domain.PetitionStatusInProgress},
	})
	if err != nil {
		return err
	}
	pending, err := s.petitions.CountWithFilter(ctx, repository.PetitionFilter{
		Department: &name,
		Statuses:   []domain.PetitionStatus{domain.PetitionStatusPending},
	})
	if err != nil {
		return err
	}

	resolutionRate := 0.0
	if total > 0 {
		resolutionRate = float64(resolved) / float64(total) * 100
	}

	data := mailer.WeeklyReportData{
		Department:     name,
		WeekStart:      weekStart,
		WeekEnd:        now,
		TotalPetitions: total,
		VolumeTrendPct: trendPct(total, previous),
		ResolutionRate: resolutionRate,
		ResolvedCount:  resolved,
		InProgress:     inProgress,
		Pending:        pending,
		Insights:       weeklyInsights(total, previous, resolutionRate, pending),
	}
	s.mail.Enqueue(mailer.WeeklyReport(dept.Email, data))
	return nil
}

func summaryRows(items []domain.Petition) []mailer.SummaryRow {
	rows := make([]mailer.SummaryRow, 0, len(items))
	for _, p := range items {
		rows = append(rows, mailer.SummaryRow{
			TicketID: p.TicketID,
			Title:    p.Title,
			Urgency:  string(p.Urgency),
			Category: p.Category,
		})
	}
	return rows
}

func weeklyInsights(total, previous int64, resolutionRate float64, pending int64) []string {
	insights := make([]string, 0, 3)
	switch {
	case total > previous:
		insights = append(insights, fmt.Sprintf("Petition volume rose from %d to %d week over week.", previous, total))
	case total < previous:
		insights = append(insights, fmt.Sprintf("Petition volume fell from %d to %d week over week.", previous, total))
	default:
		insights = append(insights, "Petition volume held steady week over week.")
	}
	if resolutionRate >= 70 {
		insights = append(insights, fmt.Sprintf("Strong resolution rate of %.1f%% this week.", resolutionRate))
	} else if total > 0 {
		insights = append(insights, fmt.Sprintf("Resolution rate of %.1f%% leaves room to improve.", resolutionRate))
	}
	if pending > 0 {
		insights = append(insights, fmt.Sprintf("%d petitions are still awaiting a first response.", pending))
	}
	return insights
}
