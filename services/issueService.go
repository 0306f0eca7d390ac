package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/models"
	"civicfix-be/store"
)

// IssueService drives the issue lifecycle: creation, owner edits, the
// vote ledger, admin triage and the staff status machine. All mutations
// go through guarded store writes so racing clients fail with Conflict
// instead of clobbering each other.
type IssueService struct {
	issues store.IssueStore
	users  store.UserStore
}

func NewIssueService(issues store.IssueStore, users store.UserStore) *IssueService {
	return &IssueService{issues: issues, users: users}
}

// CreateIssueInput carries the reporter-supplied fields.
type CreateIssueInput struct {
	Title       string
	Description string
	Category    string
	Location    string
	ImageURL    *string
}

func (in *CreateIssueInput) validate() error {
	if strings.TrimSpace(in.Title) == "" || len(in.Title) > 200 {
		return models.ValidationErr("title is required and must be at most 200 characters")
	}
	if strings.TrimSpace(in.Description) == "" || len(in.Description) > 1000 {
		return models.ValidationErr("description is required and must be at most 1000 characters")
	}
	if strings.TrimSpace(in.Location) == "" || len(in.Location) > 200 {
		return models.ValidationErr("location is required and must be at most 200 characters")
	}
	if !models.ValidCategory(models.IssueCategory(in.Category)) {
		return models.ValidationErr("invalid category")
	}
	return nil
}

// validatePatch holds owner edits to the same field rules as create;
// only fields present in the patch are checked.
func validatePatch(patch store.IssuePatch) error {
	if patch.Title != nil && (strings.TrimSpace(*patch.Title) == "" || len(*patch.Title) > 200) {
		return models.ValidationErr("title is required and must be at most 200 characters")
	}
	if patch.Description != nil && (strings.TrimSpace(*patch.Description) == "" || len(*patch.Description) > 1000) {
		return models.ValidationErr("description is required and must be at most 1000 characters")
	}
	if patch.Location != nil && (strings.TrimSpace(*patch.Location) == "" || len(*patch.Location) > 200) {
		return models.ValidationErr("location is required and must be at most 200 characters")
	}
	if patch.Category != nil && !models.ValidCategory(*patch.Category) {
		return models.ValidationErr("invalid category")
	}
	return nil
}

func (s *IssueService) Create(ctx context.Context, in CreateIssueInput, reporter string) (*models.Issue, error) {
	actor, err := requireActor(ctx, s.users, reporter)
	if err != nil {
		return nil, err
	}
	if !models.CanPerform(actor.Role, actor.Email, models.ActionCreateIssue, "") {
		return nil, models.ForbiddenErr("only citizens can report issues")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	issue := &models.Issue{
		Title:       in.Title,
		Description: in.Description,
		Category:    models.IssueCategory(in.Category),
		Location:    in.Location,
		ImageURL:    in.ImageURL,
		Status:      models.StatusPending,
		Priority:    models.PriorityNormal,
		ReportedBy:  actor.Email,
		Voters:      []string{},
		Timeline: []models.TimelineEntry{
			{Text: "Issue reported", Timestamp: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.issues.Insert(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

func (s *IssueService) Get(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	issue, err := s.issues.FindByID(ctx, id)
	if err == store.ErrNotFound {
		return nil, models.NotFoundErr("issue not found")
	}
	return issue, err
}

func (s *IssueService) List(ctx context.Context, f store.IssueFilter) ([]models.Issue, int64, error) {
	return s.issues.List(ctx, f)
}

func (s *IssueService) ListByReporter(ctx context.Context, reporter string) ([]models.Issue, error) {
	if _, err := loadActor(ctx, s.users, reporter); err != nil {
		return nil, err
	}
	return s.issues.ListByReporter(ctx, reporter)
}

// ListAssigned returns the staff member's queue, boosted issues first.
func (s *IssueService) ListAssigned(ctx context.Context, staff string) ([]models.Issue, error) {
	actor, err := loadActor(ctx, s.users, staff)
	if err != nil {
		return nil, err
	}
	if !models.CanPerform(actor.Role, actor.Email, models.ActionViewAssigned, "") {
		return nil, models.ForbiddenErr("staff access required")
	}
	issues, err := s.issues.ListByAssignee(ctx, actor.Email)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(issues, func(a, b int) bool {
		return issues[a].Priority == models.PriorityHigh && issues[b].Priority != models.PriorityHigh
	})
	return issues, nil
}

func (s *IssueService) Update(ctx context.Context, id primitive.ObjectID, patch store.IssuePatch, actorID string) (*models.Issue, error) {
	actor, err := requireActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}
	issue, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanPerform(actor.Role, actor.Email, models.ActionEditIssue, issue.ReportedBy) {
		return nil, models.ForbiddenErr("you may only edit your own issues")
	}
	if issue.Status != models.StatusPending {
		return nil, models.InvalidTransitionErr("issues can only be edited while pending")
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	updated, err := s.issues.UpdatePendingFields(ctx, id, patch)
	if err == store.ErrGuardFailed {
		return nil, models.ConflictErr("issue changed while editing, reload and retry")
	}
	if err == store.ErrNotFound {
		return nil, models.NotFoundErr("issue not found")
	}
	return updated, err
}

func (s *IssueService) Delete(ctx context.Context, id primitive.ObjectID, actorID string) error {
	actor, err := requireActor(ctx, s.users, actorID)
	if err != nil {
		return err
	}
	issue, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !models.CanPerform(actor.Role, actor.Email, models.ActionDeleteIssue, issue.ReportedBy) {
		return models.ForbiddenErr("you may only delete your own issues")
	}
	// Reporter and admin alike may only delete while the issue is still
	// pending; once triaged the record stays.
	if issue.Status != models.StatusPending {
		return models.InvalidTransitionErr("issues can only be deleted while pending")
	}

	err = s.issues.Delete(ctx, id, true)
	if err == store.ErrGuardFailed {
		return models.ConflictErr("issue changed while deleting, reload and retry")
	}
	if err == store.ErrNotFound {
		return models.NotFoundErr("issue not found")
	}
	return err
}

// Vote adds the voter to the issue's ledger. The store write re-checks
// both ledger guards atomically, so two racing votes from the same
// identity produce exactly one increment.
func (s *IssueService) Vote(ctx context.Context, id primitive.ObjectID, voter string) (*models.Issue, error) {
	actor, err := requireActor(ctx, s.users, voter)
	if err != nil {
		return nil, err
	}
	issue, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Email == issue.ReportedBy {
		return nil, models.SelfVoteErr()
	}
	if issue.HasVoted(actor.Email) {
		return nil, models.DuplicateVoteErr()
	}
	if !models.CanPerform(actor.Role, actor.Email, models.ActionVoteIssue, issue.ReportedBy) {
		return nil, models.ForbiddenErr("only citizens can vote on issues")
	}

	updated, err := s.issues.AddVote(ctx, id, actor.Email)
	if err == store.ErrGuardFailed {
		// Guard failed after the snapshot checks passed: someone else
		// landed the same vote in between.
		current, findErr := s.issues.FindByID(ctx, id)
		if findErr == nil && current.HasVoted(actor.Email) {
			return nil, models.DuplicateVoteErr()
		}
		return nil, models.ConflictErr("issue changed while voting, retry")
	}
	if err == store.ErrNotFound {
		return nil, models.NotFoundErr("issue not found")
	}
	return updated, err
}

// AssignStaff hands a pending issue to a staff member. Once an issue has
// left pending it cannot be re-triaged.
func (s *IssueService) AssignStaff(ctx context.Context, id primitive.ObjectID, staffID, actorID string) (*models.Issue, error) {
	actor, err := requireActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}
	if !models.CanPerform(actor.Role, actor.Email, models.ActionAssignStaff, "") {
		return nil, models.ForbiddenErr("admin access required")
	}

	staff, err := s.users.FindByEmail(ctx, staffID)
	if err == store.ErrNotFound {
		return nil, models.ValidationErr("no such staff account")
	}
	if err != nil {
		return nil, err
	}
	if staff.Role != models.RoleStaff || staff.Blocked {
		return nil, models.ValidationErr("not an active staff account")
	}

	issue, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue.Status != models.StatusPending {
		return nil, models.InvalidTransitionErr("only pending issues can be assigned")
	}

	entry := models.TimelineEntry{
		Text:      "Assigned to " + staff.Name,
		Timestamp: time.Now(),
	}
	updated, err := s.issues.Transition(ctx, id, models.StatusPending, models.StatusAssigned, staff.Email, entry)
	if err == store.ErrGuardFailed {
		return nil, models.ConflictErr("issue changed during assignment, retry")
	}
	if err == store.ErrNotFound {
		return nil, models.NotFoundErr("issue not found")
	}
	return updated, err
}

// Reject moves a pending issue to the rejected terminal state.
func (s *IssueService) Reject(ctx context.Context, id primitive.ObjectID, actorID string) (*models.Issue, error) {
	actor, err := requireActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}
	if !models.CanPerform(actor.Role, actor.Email, models.ActionRejectIssue, "") {
		return nil, models.ForbiddenErr("admin access required")
	}

	issue, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue.Status != models.StatusPending {
		return nil, models.InvalidTransitionErr("only pending issues can be rejected")
	}

	entry := models.TimelineEntry{Text: "Issue rejected", Timestamp: time.Now()}
	updated, err := s.issues.Transition(ctx, id, models.StatusPending, models.StatusRejected, "", entry)
	if err == store.ErrGuardFailed {
		return nil, models.ConflictErr("issue changed during rejection, retry")
	}
	if err == store.ErrNotFound {
		return nil, models.NotFoundErr("issue not found")
	}
	return updated, err
}

// Advance moves the issue one edge forward along the status graph. The
// edge must exist from the current status and the actor must satisfy the
// edge's actor requirement.
func (s *IssueService) Advance(ctx context.Context, id primitive.ObjectID, target string, actorID string) (*models.Issue, error) {
	actor, err := requireActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}

	to, ok := models.NormalizeStatus(target)
	if !ok {
		return nil, models.ValidationErr("unknown status " + target)
	}

	issue, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rule, ok := models.TransitionRule(issue.Status, to)
	if !ok {
		return nil, models.InvalidTransitionErr(fmt.Sprintf("cannot move from %s to %s", issue.Status, to))
	}
	if !rule.Satisfies(actor.Role, actor.Email, issue.AssignedTo) {
		return nil, models.ForbiddenErr("you are not allowed to perform this transition")
	}

	entry := models.TimelineEntry{
		Text:      "Status changed to " + string(to),
		Timestamp: time.Now(),
	}
	updated, err := s.issues.Transition(ctx, id, issue.Status, to, "", entry)
	if err == store.ErrGuardFailed {
		return nil, models.ConflictErr("issue status changed concurrently, reload and retry")
	}
	if err == store.ErrNotFound {
		return nil, models.NotFoundErr("issue not found")
	}
	return updated, err
}
