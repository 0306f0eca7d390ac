package services

import (
	"civicfix-be/models"
)

func (s *ServiceSuite) TestAdminStats() {
	s.addUser("admin@x.com", models.RoleAdmin)
	s.addUser("rahim@x.com", models.RoleCitizen)
	s.addUser("karim@x.com", models.RoleCitizen)
	s.addUser("staff@x.com", models.RoleStaff)

	open := s.reportIssue("rahim@x.com")
	assigned := s.reportIssue("rahim@x.com")
	_, err := s.issues.AssignStaff(s.ctx, assigned.ID, "staff@x.com", "admin@x.com")
	s.Require().NoError(err)

	checkout, err := s.payments.InitiateBoost(s.ctx, open.ID, "karim@x.com")
	s.Require().NoError(err)
	s.gateway.MarkPaid(checkout.Payment.SessionID)
	_, err = s.payments.ConfirmPayment(s.ctx, checkout.Payment.SessionID)
	s.Require().NoError(err)

	// A failed payment must not count toward the confirmed total.
	lost, err := s.payments.InitiateSubscription(s.ctx, "rahim@x.com")
	s.Require().NoError(err)
	_, err = s.payments.ConfirmPayment(s.ctx, lost.Payment.SessionID)
	s.requireKind(err, models.KindPaymentFailed)

	stats, err := s.stats.Admin(s.ctx, "admin@x.com")
	s.Require().NoError(err)
	s.Equal(int64(2), stats.TotalIssues)
	s.Equal(int64(4), stats.TotalUsers)
	s.Equal(int64(1), stats.IssuesByStatus[models.StatusPending])
	s.Equal(int64(1), stats.IssuesByStatus[models.StatusAssigned])
	s.Equal(int64(1), stats.IssuesByPriority[models.PriorityHigh])
	s.Equal(int64(2), stats.IssuesByCategory[models.Road])
	s.Equal(int64(100), stats.PaymentTotal)
	s.Len(stats.LatestIssues, 2)
	s.Len(stats.LatestPayments, 2)

	_, err = s.stats.Admin(s.ctx, "rahim@x.com")
	s.requireKind(err, models.KindForbidden)
}

func (s *ServiceSuite) TestStaffStats() {
	s.addUser("admin@x.com", models.RoleAdmin)
	s.addUser("rahim@x.com", models.RoleCitizen)
	s.addUser("staff@x.com", models.RoleStaff)

	first := s.reportIssue("rahim@x.com")
	second := s.reportIssue("rahim@x.com")
	for _, issue := range []*models.Issue{first, second} {
		_, err := s.issues.AssignStaff(s.ctx, issue.ID, "staff@x.com", "admin@x.com")
		s.Require().NoError(err)
	}
	for _, target := range []string{"in-progress", "working", "resolved"} {
		_, err := s.issues.Advance(s.ctx, first.ID, target, "staff@x.com")
		s.Require().NoError(err)
	}

	stats, err := s.stats.Staff(s.ctx, "staff@x.com")
	s.Require().NoError(err)
	s.Equal(int64(2), stats.TotalAssigned)
	s.Equal(int64(1), stats.ByStatus[models.StatusResolved])
	s.Equal(int64(1), stats.ByStatus[models.StatusAssigned])
	s.Equal(int64(1), stats.Resolved)

	_, err = s.stats.Staff(s.ctx, "rahim@x.com")
	s.requireKind(err, models.KindForbidden)
}
