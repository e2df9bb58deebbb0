package service

import (
	"context"
	"time"

	"github.com/civicdesk/petition-service/internal/domain"
	"github.com/civicdesk/petition-service/internal/lifecycle"
	"github.com/civicdesk/petition-service/internal/repository"
)

// StatsService aggregates dashboard figures for citizens, departments
// and admins.
type StatsService struct {
	petitions   repository.PetitionRepository
	users       repository.UserRepository
	departments repository.DepartmentRepository
	now         func() time.Time
}

// StatsDependencies bundles collaborators.
type StatsDependencies struct {
	PetitionRepo   repository.PetitionRepository
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
	Clock          func() time.Time
}

// NewStatsService constructs the service.
func NewStatsService(deps StatsDependencies) *StatsService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &StatsService{
		petitions:   deps.PetitionRepo,
		users:       deps.UserRepo,
		departments: deps.DepartmentRepo,
		now:         clock,
	}
}

// StatusBreakdown counts petitions per lifecycle state.
type StatusBreakdown struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Resolved   int64 `json:"resolved"`
	Rejected   int64 `json:"rejected"`
}

// UserDashboard summarises a citizen's own petitions.
type UserDashboard struct {
	Statuses StatusBreakdown `json:"statuses"`
	Overdue  int64           `json:"overdue"`
}

// DailyCount is one point of a per-day submission series.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// DepartmentVolume pairs a department with its petition count.
type DepartmentVolume struct {
	Department string `json:"department"`
	Count      int64  `json:"count"`
}

// AdminStats is the system-wide dashboard payload.
type AdminStats struct {
	Statuses     StatusBreakdown    `json:"statuses"`
	Users        int64              `json:"users"`
	Departments  int                `json:"departments"`
	HighUrgency  int64              `json:"high_urgency_open"`
	DailySeries  []DailyCount       `json:"daily_series"`
	ByDepartment []DepartmentVolume `json:"by_department"`
}

// DepartmentAnalytics is the per-department performance payload.
type DepartmentAnalytics struct {
	Statuses         StatusBreakdown            `json:"statuses"`
	ResolutionRate   float64                    `json:"resolution_rate"`
	Overdue          int64                      `json:"overdue"`
	WeeklyVolume     int64                      `json:"weekly_volume"`
	PrevWeeklyVolume int64                      `json:"previous_weekly_volume"`
	VolumeTrendPct   float64                    `json:"volume_trend_pct"`
	TopCategories    []repository.CategoryCount `json:"top_categories"`
}

// ForUser builds the citizen dashboard.
func (s *StatsService) ForUser(ctx context.Context, userID string) (*UserDashboard, error) {
	breakdown, err := s.statusBreakdown(ctx, repository.PetitionFilter{UserID: &userID})
	if err != nil {
		return nil, err
	}
	overdue, err := s.countOverdue(ctx, repository.PetitionFilter{UserID: &userID})
	if err != nil {
		return nil, err
	}
	return &UserDashboard{Statuses: *breakdown, Overdue: overdue}, nil
}

// ForAdmin builds the system-wide dashboard with a 7-day submission
// series and per-department volumes.
func (s *StatsService) ForAdmin(ctx context.Context) (*AdminStats, error) {
	breakdown, err := s.statusBreakdown(ctx, repository.PetitionFilter{})
	if err != nil {
		return nil, err
	}
	userCount, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	depts, err := s.departments.List(ctx)
	if err != nil {
		return nil, err
	}

	highOpen, err := s.petitions.CountWithFilter(ctx, repository.PetitionFilter{
		Statuses:  []domain.PetitionStatus{domain.PetitionStatusPending, domain.PetitionStatusInProgress},
		Urgencies: []domain.UrgencyLevel{domain.UrgencyHigh, domain.UrgencyCritical},
	})
	if err != nil {
		return nil, err
	}

	series, err := s.dailySeries(ctx, 7)
	if err != nil {
		return nil, err
	}

	volumes := make([]DepartmentVolume, 0, len(depts))
	for _, dept := range depts {
		name := dept.Name
		count, err := s.petitions.CountWithFilter(ctx, repository.PetitionFilter{Department: &name})
		if err != nil {
			return nil, err
		}
		volumes = append(volumes, DepartmentVolume{Department: name, Count: count})
	}

	return &AdminStats{
		Statuses:     *breakdown,
		Users:        userCount,
		Departments:  len(depts),
		HighUrgency:  highOpen,
		DailySeries:  series,
		ByDepartment: volumes,
	}, nil
}

// ForDepartment builds per-department analytics with a week-over-week
// volume trend and category distribution.
func (s *StatsService) ForDepartment(ctx context.Context, department string) (*DepartmentAnalytics, error) {
	base := repository.PetitionFilter{Department: &department}
	breakdown, err := s.statusBreakdown(ctx, base)
	if err != nil {
		return nil, err
	}
	overdue, err := s.countOverdue(ctx, base)
	if err != nil {
		return nil, err
	}

	now := s.now()
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	weekly, err := s.petitions.CountWithFilter(ctx, repository.PetitionFilter{
		Department:  &department,
		CreatedFrom: &weekAgo,
	})
	if err != nil {
		return nil, err
	}
	previous, err := s.petitions.CountWithFilter(ctx, repository.PetitionFilter{
		Department:  &department,
		CreatedFrom: &twoWeeksAgo,
		CreatedTo:   &weekAgo,
	})
	if err != nil {
		return nil, err
	}

	categories, err := s.petitions.CategoryCounts(ctx, department, 5)
	if err != nil {
		return nil, err
	}

	resolutionRate := 0.0
	if breakdown.Total > 0 {
		resolutionRate = float64(breakdown.Resolved) / float64(breakdown.Total) * 100
	}

	return &DepartmentAnalytics{
		Statuses:         *breakdown,
		ResolutionRate:   resolutionRate,
		Overdue:          overdue,
		WeeklyVolume:     weekly,
		PrevWeeklyVolume: previous,
		VolumeTrendPct:   trendPct(weekly, previous),
		TopCategories:    categories,
	}, nil
}

func (s *StatsService) statusBreakdown(ctx context.Context, base repository.PetitionFilter) (*StatusBreakdown, error) {
	var breakdown StatusBreakdown
	counts := []struct {
		status domain.PetitionStatus
		target *int64
	}{
		{domain.PetitionStatusPending, &breakdown.Pending},
		{domain.PetitionStatusInProgress, &breakdown.InProgress},
		{domain.PetitionStatusResolved, &breakdown.Resolved},
		{domain.PetitionStatusRejected, &breakdown.Rejected},
	}
	for _, c := range counts {
		filter := base
		filter.Statuses = []domain.PetitionStatus{c.status}
		count, err := s.petitions.CountWithFilter(ctx, filter)
		if err != nil {
			return nil, err
		}
		*c.target = count
	}
	breakdown.Total = breakdown.Pending + breakdown.InProgress + breakdown.Resolved + breakdown.Rejected
	return &breakdown, nil
}

func (s *StatsService) countOverdue(ctx context.Context, base repository.PetitionFilter) (int64, error) {
	filter := base
	filter.Statuses = []domain.PetitionStatus{domain.PetitionStatusPending, domain.PetitionStatusInProgress}
	items, err := s.petitions.ListWithFilter(ctx, filter)
	if err != nil {
		return 0, err
	}
	now := s.now()
	var overdue int64
	for i := range items {
		if lifecycle.IsOverdue(&items[i], now) {
			overdue++
		}
	}
	return overdue, nil
}

func (s *StatsService) dailySeries(ctx context.Context, days int) ([]DailyCount, error) {
	now := s.now()
	series := make([]DailyCount, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		end := start.AddDate(0, 0, 1)
		count, err := s.petitions.CountWithFilter(ctx, repository.PetitionFilter{
			CreatedFrom: &start,
			CreatedTo:   &end,
		})
		if err != nil {
			return nil, err
		}
		series = append(series, DailyCount{Date: start.Format("2006-01-02"), Count: count})
	}
	return series, nil
}

func trendPct(current, previous int64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (float64(current) - float64(previous)) / float64(previous) * 100
}
