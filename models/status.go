package models

import "strings"

// IssueStatus enum
type IssueStatus string

const (
	StatusPending    IssueStatus = "pending"
	StatusAssigned   IssueStatus = "assigned"
	StatusInProgress IssueStatus = "in-progress"
	StatusWorking    IssueStatus = "working"
	StatusResolved   IssueStatus = "resolved"
	StatusClosed     IssueStatus = "closed"
	StatusRejected   IssueStatus = "rejected"
)

// IssuePriority enum
type IssuePriority string

const (
	PriorityNormal IssuePriority = "normal"
	PriorityHigh   IssuePriority = "high"
)

// TransitionActor names who is allowed to drive a given status edge.
type TransitionActor int

const (
	ActorAdmin TransitionActor = iota
	ActorAssignee
	ActorAssigneeOrAdmin
)

// transitions is the full directed graph of legal status edges. Any pair
// not present here is an invalid transition regardless of who asks.
var transitions = map[IssueStatus]map[IssueStatus]TransitionActor{
	StatusPending: {
		StatusAssigned: ActorAdmin,
		StatusRejected: ActorAdmin,
	},
	StatusAssigned: {
		StatusInProgress: ActorAssignee,
	},
	StatusInProgress: {
		StatusWorking: ActorAssignee,
	},
	StatusWorking: {
		StatusResolved: ActorAssignee,
	},
	StatusResolved: {
		StatusClosed: ActorAssigneeOrAdmin,
	},
}

// TransitionRule returns the actor required for the edge from -> to.
// ok is false when no such edge exists.
func TransitionRule(from, to IssueStatus) (actor TransitionActor, ok bool) {
	actor, ok = transitions[from][to]
	return actor, ok
}

// Satisfies reports whether an actor with the given role and identity
// meets the edge's requirement. assigneeID is the issue's assigned staff
// identity ("" when unassigned).
func (a TransitionActor) Satisfies(role Role, actorID, assigneeID string) bool {
	switch a {
	case ActorAdmin:
		return role == RoleAdmin
	case ActorAssignee:
		return role == RoleStaff && actorID != "" && actorID == assigneeID
	case ActorAssigneeOrAdmin:
		if role == RoleAdmin {
			return true
		}
		return role == RoleStaff && actorID != "" && actorID == assigneeID
	}
	return false
}

// Terminal reports whether no edges leave the status.
func (s IssueStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// NormalizeStatus folds the status spellings that accumulated across
// earlier iterations of the product ("Pending", "In Progress", "in_progress")
// into the canonical lowercase kebab-case vocabulary. Every status string
// arriving from a client or legacy document goes through here.
func NormalizeStatus(raw string) (IssueStatus, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	switch IssueStatus(s) {
	case StatusPending, StatusAssigned, StatusInProgress, StatusWorking,
		StatusResolved, StatusClosed, StatusRejected:
		return IssueStatus(s), true
	}
	return "", false
}

// NormalizePriority does the same for priority strings ("Normal", "High").
func NormalizePriority(raw string) (IssuePriority, bool) {
	switch p := IssuePriority(strings.ToLower(strings.TrimSpace(raw))); p {
	case PriorityNormal, PriorityHigh:
		return p, true
	}
	return "", false
}
