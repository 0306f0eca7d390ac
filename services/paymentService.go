package services

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/models"
	"civicfix-be/payments"
	"civicfix-be/store"
)

// PaymentService owns escalation: paid priority boosts and premium
// subscriptions. A payment's effect is applied only after the external
// gateway confirms the session, and a session settles exactly once no
// matter how many times the confirmation callback fires.
type PaymentService struct {
	payments        store.PaymentStore
	issues          store.IssueStore
	users           store.UserStore
	gateway         payments.Gateway
	boostFee        int64
	subscriptionFee int64
	currency        string
}

func NewPaymentService(paymentStore store.PaymentStore, issues store.IssueStore, users store.UserStore, gateway payments.Gateway, boostFee, subscriptionFee int64) *PaymentService {
	return &PaymentService{
		payments:        paymentStore,
		issues:          issues,
		users:           users,
		gateway:         gateway,
		boostFee:        boostFee,
		subscriptionFee: subscriptionFee,
		currency:        "BDT",
	}
}

// Checkout is what the caller needs to send the customer to the gateway.
type Checkout struct {
	Payment *models.Payment `json:"payment"`
	URL     string          `json:"url"`
}

// InitiateBoost opens a checkout session to raise an issue's priority.
// Only issues still at normal priority can be boosted; priority never
// moves back down.
func (s *PaymentService) InitiateBoost(ctx context.Context, issueID primitive.ObjectID, payer string) (*Checkout, error) {
	actor, err := requireActor(ctx, s.users, payer)
	if err != nil {
		return nil, err
	}
	if !models.CanPerform(actor.Role, actor.Email, models.ActionInitiatePayment, "") {
		return nil, models.ForbiddenErr("only citizens can boost issues")
	}

	issue, err := s.issues.FindByID(ctx, issueID)
	if err == store.ErrNotFound {
		return nil, models.NotFoundErr("issue not found")
	}
	if err != nil {
		return nil, err
	}
	if issue.Priority == models.PriorityHigh {
		return nil, models.InvalidTransitionErr("issue priority is already high")
	}

	session, err := s.gateway.CreateSession(ctx, payments.SessionRequest{
		Amount:        s.boostFee,
		Currency:      s.currency,
		Purpose:       string(models.PurposeBoost),
		CustomerEmail: actor.Email,
		Reference:     issueID.Hex(),
	})
	if err != nil {
		log.Printf("gateway create session failed: %v", err)
		return nil, models.ExternalServiceErr("payment gateway is unavailable, try again later")
	}

	now := time.Now()
	payment := &models.Payment{
		PayerID:   actor.Email,
		Purpose:   models.PurposeBoost,
		IssueID:   &issueID,
		Amount:    s.boostFee,
		SessionID: session.ID,
		Status:    models.PaymentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.payments.Insert(ctx, payment)
	if err == store.ErrDuplicate {
		return nil, models.ConflictErr("checkout session already recorded, retry")
	}
	if err != nil {
		return nil, err
	}
	return &Checkout{Payment: payment, URL: session.URL}, nil
}

// InitiateSubscription opens a checkout session for premium membership.
func (s *PaymentService) InitiateSubscription(ctx context.Context, payer string) (*Checkout, error) {
	actor, err := requireActor(ctx, s.users, payer)
	if err != nil {
		return nil, err
	}
	if !models.CanPerform(actor.Role, actor.Email, models.ActionInitiatePayment, "") {
		return nil, models.ForbiddenErr("only citizens can subscribe")
	}
	if actor.IsPremium {
		return nil, models.ValidationErr("you are already a premium member")
	}

	session, err := s.gateway.CreateSession(ctx, payments.SessionRequest{
		Amount:        s.subscriptionFee,
		Currency:      s.currency,
		Purpose:       string(models.PurposeSubscribe),
		CustomerEmail: actor.Email,
	})
	if err != nil {
		log.Printf("gateway create session failed: %v", err)
		return nil, models.ExternalServiceErr("payment gateway is unavailable, try again later")
	}

	now := time.Now()
	payment := &models.Payment{
		PayerID:   actor.Email,
		Purpose:   models.PurposeSubscribe,
		Amount:    s.subscriptionFee,
		SessionID: session.ID,
		Status:    models.PaymentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.payments.Insert(ctx, payment)
	if err == store.ErrDuplicate {
		return nil, models.ConflictErr("checkout session already recorded, retry")
	}
	if err != nil {
		return nil, err
	}
	return &Checkout{Payment: payment, URL: session.URL}, nil
}

// ConfirmPayment settles a checkout session. Safe under at-least-once
// delivery: once the payment is terminal every further call is a no-op
// that returns the settled record. The side effect (priority=high or
// isPremium=true) is itself an idempotent set, applied before the
// pending->terminal claim so a crashed confirmation can be retried.
func (s *PaymentService) ConfirmPayment(ctx context.Context, sessionID string) (*models.Payment, error) {
	payment, err := s.payments.FindBySession(ctx, sessionID)
	if err == store.ErrNotFound {
		return nil, models.NotFoundErr("payment not found")
	}
	if err != nil {
		return nil, err
	}
	if payment.Terminal() {
		return payment, nil
	}

	paid, err := s.gateway.VerifySession(ctx, sessionID)
	if err != nil {
		log.Printf("gateway verify session %s failed: %v", sessionID, err)
		return nil, models.ExternalServiceErr("payment gateway is unavailable, try again later")
	}

	if !paid {
		failed, err := s.payments.Finalize(ctx, sessionID, models.PaymentFailed)
		if err == store.ErrGuardFailed {
			// Another confirmation settled the session first; defer to it.
			return s.payments.FindBySession(ctx, sessionID)
		}
		if err != nil {
			return nil, err
		}
		return failed, models.PaymentFailedErr("payment was not completed")
	}

	if err := s.applyEffect(ctx, payment); err != nil {
		return nil, err
	}

	confirmed, err := s.payments.Finalize(ctx, sessionID, models.PaymentConfirmed)
	if err == store.ErrGuardFailed {
		return s.payments.FindBySession(ctx, sessionID)
	}
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

func (s *PaymentService) applyEffect(ctx context.Context, payment *models.Payment) error {
	switch payment.Purpose {
	case models.PurposeBoost:
		if payment.IssueID == nil {
			return models.ValidationErr("boost payment without an issue")
		}
		entry := models.TimelineEntry{Text: "Priority boosted to high", Timestamp: time.Now()}
		_, err := s.issues.SetPriorityHigh(ctx, *payment.IssueID, entry)
		if err == store.ErrNotFound {
			// Issue was deleted while still pending; the payment still
			// settles, there is just nothing left to escalate.
			log.Printf("boost payment %s: issue %s no longer exists", payment.SessionID, payment.IssueID.Hex())
			return nil
		}
		return err
	case models.PurposeSubscribe:
		err := s.users.SetPremium(ctx, payment.PayerID)
		if err == store.ErrNotFound {
			log.Printf("subscription payment %s: payer %s no longer exists", payment.SessionID, payment.PayerID)
			return nil
		}
		return err
	}
	return models.ValidationErr("unknown payment purpose")
}

// List returns payments for the admin dashboard.
func (s *PaymentService) List(ctx context.Context, f store.PaymentFilter, actorID string) ([]models.Payment, error) {
	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}
	if !models.CanPerform(actor.Role, actor.Email, models.ActionViewPayments, "") {
		return nil, models.ForbiddenErr("admin access required")
	}
	return s.payments.List(ctx, f)
}
