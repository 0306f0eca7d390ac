package payments

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// FakeGateway is an in-process Gateway for tests and gateway-less local
// runs. Sessions start unpaid; MarkPaid simulates the customer completing
// checkout.
type FakeGateway struct {
	mu       sync.Mutex
	sessions map[string]bool // session id -> paid
	fail     bool
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{sessions: make(map[string]bool)}
}

// FailNext makes every subsequent call return a transport error, to
// exercise unreachable-gateway paths.
func (g *FakeGateway) FailNext(fail bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail = fail
}

// MarkPaid flips the session to paid.
func (g *FakeGateway) MarkPaid(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[sessionID] = true
}

func (g *FakeGateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return nil, errors.New("fake gateway: unreachable")
	}
	id := "sess_" + uuid.NewString()
	g.sessions[id] = false
	return &Session{ID: id, URL: "https://checkout.example.com/" + id}, nil
}

func (g *FakeGateway) VerifySession(ctx context.Context, sessionID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return false, errors.New("fake gateway: unreachable")
	}
	paid, ok := g.sessions[sessionID]
	return ok && paid, nil
}
