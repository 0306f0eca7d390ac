package services

import (
	"context"

	"civicfix-be/models"
	"civicfix-be/payments"
	"civicfix-be/store"
)

// stuckGateway hands out the same session id on every call.
type stuckGateway struct {
	id string
}

func (g *stuckGateway) CreateSession(ctx context.Context, req payments.SessionRequest) (*payments.Session, error) {
	return &payments.Session{ID: g.id, URL: "https://checkout.example.com/" + g.id}, nil
}

func (g *stuckGateway) VerifySession(ctx context.Context, sessionID string) (bool, error) {
	return false, nil
}

func (s *ServiceSuite) TestBoostCheckoutAndConfirm() {
	s.addUser("rahim@x.com", models.RoleCitizen)
	s.addUser("karim@x.com", models.RoleCitizen)
	issue := s.reportIssue("rahim@x.com")

	checkout, err := s.payments.InitiateBoost(s.ctx, issue.ID, "karim@x.com")
	s.Require().NoError(err)
	s.Equal(models.PaymentPending, checkout.Payment.Status)
	s.Equal(models.PurposeBoost, checkout.Payment.Purpose)
	s.Equal(int64(100), checkout.Payment.Amount)
	s.NotEmpty(checkout.URL)

	s.gateway.MarkPaid(checkout.Payment.SessionID)
	confirmed, err := s.payments.ConfirmPayment(s.ctx, checkout.Payment.SessionID)
	s.Require().NoError(err)
	s.Equal(models.PaymentConfirmed, confirmed.Status)

	boosted, err := s.issues.Get(s.ctx, issue.ID)
	s.Require().NoError(err)
	s.Equal(models.PriorityHigh, boosted.Priority)
	s.Equal("Priority boosted to high", boosted.Timeline[len(boosted.Timeline)-1].Text)
}

func (s *ServiceSuite) TestConfirmIsIdempotent() {
	s.addUser("rahim@x.com", models.RoleCitizen)
	s.addUser("karim@x.com", models.RoleCitizen)
	issue := s.reportIssue("rahim@x.com")

	checkout, err := s.payments.InitiateBoost(s.ctx, issue.ID, "karim@x.com")
	s.Require().NoError(err)
	s.gateway.MarkPaid(checkout.Payment.SessionID)

	_, err = s.payments.ConfirmPayment(s.ctx, checkout.Payment.SessionID)
	s.Require().NoError(err)
	before, err := s.issues.Get(s.ctx, issue.ID)
	s.Require().NoError(err)

	// Replayed confirmation settles to the same record with no second
	// side effect.
	again, err := s.payments.ConfirmPayment(s.ctx, checkout.Payment.SessionID)
	s.Require().NoError(err)
	s.Equal(models.PaymentConfirmed, again.Status)

	after, err := s.issues.Get(s.ctx, issue.ID)
	s.Require().NoError(err)
	s.Equal(len(before.Timeline), len(after.Timeline))
}

func (s *ServiceSuite) TestConfirmUnpaidSessionFails() {
	s.addUser("rahim@x.com", models.RoleCitizen)
	s.addUser("karim@x.com", models.RoleCitizen)
	issue := s.reportIssue("rahim@x.com")

	checkout, err := s.payments.InitiateBoost(s.ctx, issue.ID, "karim@x.com")
	s.Require().NoError(err)

	_, err = s.payments.ConfirmPayment(s.ctx, checkout.Payment.SessionID)
	s.requireKind(err, models.KindPaymentFailed)

	record, err := s.paymentStore.FindBySession(s.ctx, checkout.Payment.SessionID)
	s.Require().NoError(err)
	s.Equal(models.PaymentFailed, record.Status)

	unboosted, err := s.issues.Get(s.ctx, issue.ID)
	s.Require().NoError(err)
	s.Equal(models.PriorityNormal, unboosted.Priority)

	// Failed is terminal: even a late MarkPaid cannot resurrect it.
	s.gateway.MarkPaid(checkout.Payment.SessionID)
	settled, err := s.payments.ConfirmPayment(s.ctx, checkout.Payment.SessionID)
	s.Require().NoError(err)
	s.Equal(models.PaymentFailed, settled.Status)
}

func (s *ServiceSuite) TestBoostRules() {
	s.addUser("rahim@x.com", models.RoleCitizen)
	s.addUser("karim@x.com", models.RoleCitizen)
	s.addUser("staff@x.com", models.RoleStaff)
	s.addUser("admin@x.com", models.RoleAdmin)
	issue := s.reportIssue("rahim@x.com")

	_, err := s.payments.InitiateBoost(s.ctx, issue.ID, "staff@x.com")
	s.requireKind(err, models.KindForbidden)

	// Boost survives rejection; priority is orthogonal to status.
	_, err = s.issues.Reject(s.ctx, issue.ID, "admin@x.com")
	s.Require().NoError(err)
	checkout, err := s.payments.InitiateBoost(s.ctx, issue.ID, "karim@x.com")
	s.Require().NoError(err)
	s.gateway.MarkPaid(checkout.Payment.SessionID)
	_, err = s.payments.ConfirmPayment(s.ctx, checkout.Payment.SessionID)
	s.Require().NoError(err)

	boosted, err := s.issues.Get(s.ctx, issue.ID)
	s.Require().NoError(err)
	s.Equal(models.PriorityHigh, boosted.Priority)
	s.Equal(models.StatusRejected, boosted.Status)

	// Already-high issues cannot be boosted again.
	_, err = s.payments.InitiateBoost(s.ctx, issue.ID, "karim@x.com")
	s.requireKind(err, models.KindInvalidTransition)
}

func (s *ServiceSuite) TestSubscription() {
	s.addUser("karim@x.com", models.RoleCitizen)

	checkout, err := s.payments.InitiateSubscription(s.ctx, "karim@x.com")
	s.Require().NoError(err)
	s.Equal(models.PurposeSubscribe, checkout.Payment.Purpose)
	s.Equal(int64(1000), checkout.Payment.Amount)
	s.Nil(checkout.Payment.IssueID)

	s.gateway.MarkPaid(checkout.Payment.SessionID)
	confirmed, err := s.payments.ConfirmPayment(s.ctx, checkout.Payment.SessionID)
	s.Require().NoError(err)
	s.Equal(models.PaymentConfirmed, confirmed.Status)

	user, err := s.userStore.FindByEmail(s.ctx, "karim@x.com")
	s.Require().NoError(err)
	s.True(user.IsPremium)

	_, err = s.payments.InitiateSubscription(s.ctx, "karim@x.com")
	s.requireKind(err, models.KindValidation)
}

func (s *ServiceSuite) TestGatewayOutage() {
	s.addUser("rahim@x.com", models.RoleCitizen)
	s.addUser("karim@x.com", models.RoleCitizen)
	issue := s.reportIssue("rahim@x.com")

	s.gateway.FailNext(true)
	_, err := s.payments.InitiateBoost(s.ctx, issue.ID, "karim@x.com")
	s.requireKind(err, models.KindExternalService)

	s.gateway.FailNext(false)
	checkout, err := s.payments.InitiateBoost(s.ctx, issue.ID, "karim@x.com")
	s.Require().NoError(err)

	// Verify during an outage leaves the payment pending and retryable.
	s.gateway.FailNext(true)
	_, err = s.payments.ConfirmPayment(s.ctx, checkout.Payment.SessionID)
	s.requireKind(err, models.KindExternalService)
	record, err := s.paymentStore.FindBySession(s.ctx, checkout.Payment.SessionID)
	s.Require().NoError(err)
	s.Equal(models.PaymentPending, record.Status)

	s.gateway.FailNext(false)
	s.gateway.MarkPaid(checkout.Payment.SessionID)
	confirmed, err := s.payments.ConfirmPayment(s.ctx, checkout.Payment.SessionID)
	s.Require().NoError(err)
	s.Equal(models.PaymentConfirmed, confirmed.Status)
}

func (s *ServiceSuite) TestRepeatedSessionIDIsConflict() {
	s.addUser("rahim@x.com", models.RoleCitizen)
	s.addUser("karim@x.com", models.RoleCitizen)
	issue := s.reportIssue("rahim@x.com")

	svc := NewPaymentService(s.paymentStore, s.issueStore, s.userStore, &stuckGateway{id: "sess_fixed"}, 100, 1000)
	_, err := svc.InitiateBoost(s.ctx, issue.ID, "karim@x.com")
	s.Require().NoError(err)

	_, err = svc.InitiateBoost(s.ctx, issue.ID, "karim@x.com")
	s.requireKind(err, models.KindConflict)

	_, err = svc.InitiateSubscription(s.ctx, "karim@x.com")
	s.requireKind(err, models.KindConflict)
}

func (s *ServiceSuite) TestConfirmUnknownSession() {
	_, err := s.payments.ConfirmPayment(s.ctx, "sess_missing")
	s.requireKind(err, models.KindNotFound)
}

func (s *ServiceSuite) TestBoostSettlesWhenIssueGone() {
	s.addUser("rahim@x.com", models.RoleCitizen)
	s.addUser("karim@x.com", models.RoleCitizen)
	issue := s.reportIssue("rahim@x.com")

	checkout, err := s.payments.InitiateBoost(s.ctx, issue.ID, "karim@x.com")
	s.Require().NoError(err)
	s.Require().NoError(s.issues.Delete(s.ctx, issue.ID, "rahim@x.com"))

	s.gateway.MarkPaid(checkout.Payment.SessionID)
	confirmed, err := s.payments.ConfirmPayment(s.ctx, checkout.Payment.SessionID)
	s.Require().NoError(err)
	s.Equal(models.PaymentConfirmed, confirmed.Status)
}

func (s *ServiceSuite) TestListPaymentsIsAdminOnly() {
	s.addUser("karim@x.com", models.RoleCitizen)
	s.addUser("admin@x.com", models.RoleAdmin)

	checkout, err := s.payments.InitiateSubscription(s.ctx, "karim@x.com")
	s.Require().NoError(err)
	s.gateway.MarkPaid(checkout.Payment.SessionID)
	_, err = s.payments.ConfirmPayment(s.ctx, checkout.Payment.SessionID)
	s.Require().NoError(err)

	list, err := s.payments.List(s.ctx, store.PaymentFilter{Payer: "karim@x.com"}, "admin@x.com")
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(models.PaymentConfirmed, list[0].Status)

	_, err = s.payments.List(s.ctx, store.PaymentFilter{}, "karim@x.com")
	s.requireKind(err, models.KindForbidden)
}
