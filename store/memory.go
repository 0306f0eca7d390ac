package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/models"
)

// In-memory implementations with the same guard semantics as the Mongo
// stores. Used by the service test suites and for gateway-less local runs.

type MemoryIssues struct {
	mu     sync.Mutex
	issues map[primitive.ObjectID]*models.Issue
}

func NewMemoryIssues() *MemoryIssues {
	return &MemoryIssues{issues: make(map[primitive.ObjectID]*models.Issue)}
}

func cloneIssue(i *models.Issue) *models.Issue {
	c := *i
	c.Voters = append([]string(nil), i.Voters...)
	c.Timeline = append([]models.TimelineEntry(nil), i.Timeline...)
	return &c
}

func (s *MemoryIssues) Insert(ctx context.Context, issue *models.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	s.issues[issue.ID] = cloneIssue(issue)
	return nil
}

func (s *MemoryIssues) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneIssue(issue), nil
}

func (s *MemoryIssues) List(ctx context.Context, f IssueFilter) ([]models.Issue, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Issue
	for _, issue := range s.issues {
		if f.Category != "" && issue.Category != f.Category {
			continue
		}
		if f.Status != "" && issue.Status != f.Status {
			continue
		}
		if f.Priority != "" && issue.Priority != f.Priority {
			continue
		}
		if f.Reporter != "" && issue.ReportedBy != f.Reporter {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(issue.Title), needle) &&
				!strings.Contains(strings.ToLower(issue.Description), needle) {
				continue
			}
		}
		matched = append(matched, *cloneIssue(issue))
	}

	sort.Slice(matched, func(a, b int) bool {
		if f.Sort == "oldest" {
			return matched[a].CreatedAt.Before(matched[b].CreatedAt)
		}
		return matched[a].CreatedAt.After(matched[b].CreatedAt)
	})

	total := int64(len(matched))
	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return []models.Issue{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *MemoryIssues) listWhere(keep func(*models.Issue) bool) []models.Issue {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Issue
	for _, issue := range s.issues {
		if keep(issue) {
			out = append(out, *cloneIssue(issue))
		}
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out
}

func (s *MemoryIssues) ListByReporter(ctx context.Context, reporter string) ([]models.Issue, error) {
	return s.listWhere(func(i *models.Issue) bool { return i.ReportedBy == reporter }), nil
}

func (s *MemoryIssues) ListByAssignee(ctx context.Context, assignee string) ([]models.Issue, error) {
	return s.listWhere(func(i *models.Issue) bool { return i.AssignedTo == assignee }), nil
}

func (s *MemoryIssues) UpdatePendingFields(ctx context.Context, id primitive.ObjectID, patch IssuePatch) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[id]
	if !ok {
		return nil, ErrNotFound
	}
	if issue.Status != models.StatusPending {
		return nil, ErrGuardFailed
	}
	if patch.Title != nil {
		issue.Title = *patch.Title
	}
	if patch.Description != nil {
		issue.Description = *patch.Description
	}
	if patch.Category != nil {
		issue.Category = *patch.Category
	}
	if patch.Location != nil {
		issue.Location = *patch.Location
	}
	if patch.ImageURL != nil {
		issue.ImageURL = patch.ImageURL
	}
	issue.UpdatedAt = time.Now()
	return cloneIssue(issue), nil
}

func (s *MemoryIssues) Delete(ctx context.Context, id primitive.ObjectID, onlyPending bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[id]
	if !ok {
		return ErrNotFound
	}
	if onlyPending && issue.Status != models.StatusPending {
		return ErrGuardFailed
	}
	delete(s.issues, id)
	return nil
}

func (s *MemoryIssues) AddVote(ctx context.Context, id primitive.ObjectID, voter string) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[id]
	if !ok {
		return nil, ErrNotFound
	}
	if issue.ReportedBy == voter || issue.HasVoted(voter) {
		return nil, ErrGuardFailed
	}
	issue.Voters = append(issue.Voters, voter)
	issue.VoteCount = len(issue.Voters)
	issue.UpdatedAt = time.Now()
	return cloneIssue(issue), nil
}

func (s *MemoryIssues) Transition(ctx context.Context, id primitive.ObjectID, from, to models.IssueStatus, assignee string, entry models.TimelineEntry) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[id]
	if !ok {
		return nil, ErrNotFound
	}
	if issue.Status != from {
		return nil, ErrGuardFailed
	}
	issue.Status = to
	if assignee != "" {
		issue.AssignedTo = assignee
	}
	issue.Timeline = append(issue.Timeline, entry)
	issue.UpdatedAt = time.Now()
	return cloneIssue(issue), nil
}

func (s *MemoryIssues) SetPriorityHigh(ctx context.Context, id primitive.ObjectID, entry models.TimelineEntry) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[id]
	if !ok {
		return nil, ErrNotFound
	}
	if issue.Priority != models.PriorityHigh {
		issue.Priority = models.PriorityHigh
		issue.Timeline = append(issue.Timeline, entry)
		issue.UpdatedAt = time.Now()
	}
	return cloneIssue(issue), nil
}

func (s *MemoryIssues) CountByStatus(ctx context.Context) (map[models.IssueStatus]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[models.IssueStatus]int64)
	for _, issue := range s.issues {
		counts[issue.Status]++
	}
	return counts, nil
}

func (s *MemoryIssues) CountByPriority(ctx context.Context) (map[models.IssuePriority]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[models.IssuePriority]int64)
	for _, issue := range s.issues {
		counts[issue.Priority]++
	}
	return counts, nil
}

func (s *MemoryIssues) CountByCategory(ctx context.Context) (map[models.IssueCategory]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[models.IssueCategory]int64)
	for _, issue := range s.issues {
		counts[issue.Category]++
	}
	return counts, nil
}

func (s *MemoryIssues) Latest(ctx context.Context, n int) ([]models.Issue, error) {
	out := s.listWhere(func(*models.Issue) bool { return true })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

type MemoryUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[primitive.ObjectID]*models.User)}
}

func (s *MemoryUsers) Insert(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	c := *user
	s.users[user.ID] = &c
	return nil
}

func (s *MemoryUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *u
	return &c, nil
}

func (s *MemoryUsers) List(ctx context.Context, search string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	needle := strings.ToLower(search)
	for _, u := range s.users {
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), needle) &&
			!strings.Contains(strings.ToLower(u.Email), needle) {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Email < out[b].Email })
	return out, nil
}

func (s *MemoryUsers) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Email < out[b].Email })
	return out, nil
}

func (s *MemoryUsers) SetRole(ctx context.Context, id primitive.ObjectID, role models.Role) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	c := *u
	return &c, nil
}

func (s *MemoryUsers) SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Blocked = blocked
	u.UpdatedAt = time.Now()
	c := *u
	return &c, nil
}

func (s *MemoryUsers) SetPremium(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			u.IsPremium = true
			u.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryUsers) UpdateProfile(ctx context.Context, id primitive.ObjectID, name string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Name = name
	u.UpdatedAt = time.Now()
	c := *u
	return &c, nil
}

func (s *MemoryUsers) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

type MemoryPayments struct {
	mu       sync.Mutex
	payments map[string]*models.Payment // keyed by session id
}

func NewMemoryPayments() *MemoryPayments {
	return &MemoryPayments{payments: make(map[string]*models.Payment)}
}

func (s *MemoryPayments) Insert(ctx context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.payments[payment.SessionID]; exists {
		return ErrDuplicate
	}
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	c := *payment
	s.payments[payment.SessionID] = &c
	return nil
}

func (s *MemoryPayments) FindBySession(ctx context.Context, sessionID string) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	c := *p
	return &c, nil
}

func (s *MemoryPayments) List(ctx context.Context, f PaymentFilter) ([]models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Payment
	for _, p := range s.payments {
		if f.Purpose != "" && p.Purpose != f.Purpose {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Payer != "" && p.PayerID != f.Payer {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out, nil
}

func (s *MemoryPayments) Finalize(ctx context.Context, sessionID string, to models.PaymentStatus) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Status != models.PaymentPending {
		return nil, ErrGuardFailed
	}
	p.Status = to
	p.UpdatedAt = time.Now()
	c := *p
	return &c, nil
}

func (s *MemoryPayments) ConfirmedTotal(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, p := range s.payments {
		if p.Status == models.PaymentConfirmed {
			total += p.Amount
		}
	}
	return total, nil
}

func (s *MemoryPayments) Latest(ctx context.Context, n int) ([]models.Payment, error) {
	out, err := s.List(ctx, PaymentFilter{})
	if err != nil {
		return nil, err
	}
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}
