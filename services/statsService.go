package services

import (
	"context"

	"civicfix-be/models"
	"civicfix-be/store"
)

// StatsService computes read-only rollups for the dashboards. The
// numbers are snapshots over a live store; a count taken a moment before
// a concurrent write completes is acceptable.
type StatsService struct {
	issues   store.IssueStore
	users    store.UserStore
	payments store.PaymentStore
}

func NewStatsService(issues store.IssueStore, users store.UserStore, payments store.PaymentStore) *StatsService {
	return &StatsService{issues: issues, users: users, payments: payments}
}

type AdminStats struct {
	TotalIssues      int64                          `json:"totalIssues"`
	TotalUsers       int64                          `json:"totalUsers"`
	IssuesByStatus   map[models.IssueStatus]int64   `json:"issuesByStatus"`
	IssuesByPriority map[models.IssuePriority]int64 `json:"issuesByPriority"`
	IssuesByCategory map[models.IssueCategory]int64 `json:"issuesByCategory"`
	PaymentTotal     int64                          `json:"confirmedPaymentTotal"`
	LatestIssues     []models.Issue                 `json:"latestIssues"`
	LatestPayments   []models.Payment               `json:"latestPayments"`
}

func (s *StatsService) Admin(ctx context.Context, actorID string) (*AdminStats, error) {
	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}
	if !models.CanPerform(actor.Role, actor.Email, models.ActionViewStats, "") {
		return nil, models.ForbiddenErr("admin access required")
	}

	byStatus, err := s.issues.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.issues.CountByPriority(ctx)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.issues.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	userCount, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	paymentTotal, err := s.payments.ConfirmedTotal(ctx)
	if err != nil {
		return nil, err
	}
	latestIssues, err := s.issues.Latest(ctx, 5)
	if err != nil {
		return nil, err
	}
	latestPayments, err := s.payments.Latest(ctx, 5)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}

	return &AdminStats{
		TotalIssues:      total,
		TotalUsers:       userCount,
		IssuesByStatus:   byStatus,
		IssuesByPriority: byPriority,
		IssuesByCategory: byCategory,
		PaymentTotal:     paymentTotal,
		LatestIssues:     latestIssues,
		LatestPayments:   latestPayments,
	}, nil
}

type StaffStats struct {
	TotalAssigned int64                          `json:"totalAssigned"`
	ByStatus      map[models.IssueStatus]int64   `json:"byStatus"`
	ByPriority    map[models.IssuePriority]int64 `json:"byPriority"`
	Resolved      int64                          `json:"resolved"`
}

func (s *StatsService) Staff(ctx context.Context, actorID string) (*StaffStats, error) {
	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}
	if !models.CanPerform(actor.Role, actor.Email, models.ActionViewAssigned, "") {
		return nil, models.ForbiddenErr("staff access required")
	}

	assigned, err := s.issues.ListByAssignee(ctx, actor.Email)
	if err != nil {
		return nil, err
	}

	stats := &StaffStats{
		TotalAssigned: int64(len(assigned)),
		ByStatus:      make(map[models.IssueStatus]int64),
		ByPriority:    make(map[models.IssuePriority]int64),
	}
	for _, issue := range assigned {
		stats.ByStatus[issue.Status]++
		stats.ByPriority[issue.Priority]++
		if issue.Status == models.StatusResolved || issue.Status == models.StatusClosed {
			stats.Resolved++
		}
	}
	return stats, nil
}
