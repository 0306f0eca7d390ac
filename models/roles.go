package models

// Role enum
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// ValidRole checks a role string coming from an admin request.
func ValidRole(r Role) bool {
	switch r {
	case RoleCitizen, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// Action enumerates every permission-gated operation in the system.
type Action string

const (
	ActionCreateIssue     Action = "issue:create"
	ActionEditIssue       Action = "issue:edit"
	ActionDeleteIssue     Action = "issue:delete"
	ActionVoteIssue       Action = "issue:vote"
	ActionAssignStaff     Action = "issue:assign"
	ActionRejectIssue     Action = "issue:reject"
	ActionInitiatePayment Action = "payment:initiate"
	ActionViewAssigned    Action = "staff:assigned"
	ActionManageUsers     Action = "admin:users"
	ActionManageStaff     Action = "admin:staff"
	ActionViewStats       Action = "admin:stats"
	ActionViewPayments    Action = "admin:payments"
)

// CanPerform is the single authorization decision point. Every role check
// in the service layer routes through this table; nothing compares role
// strings anywhere else. ownerID is the identity owning the resource when
// the action is ownership-scoped, "" otherwise. The blocked-user gate is
// not part of this table: blocked users are rejected before role
// evaluation (see services.requireActor).
func CanPerform(role Role, actorID string, action Action, ownerID string) bool {
	switch role {
	case RoleCitizen:
		switch action {
		case ActionCreateIssue, ActionInitiatePayment:
			return true
		case ActionVoteIssue:
			return actorID != ownerID
		case ActionEditIssue, ActionDeleteIssue:
			return actorID == ownerID
		}
	case RoleStaff:
		switch action {
		case ActionViewAssigned:
			return true
		}
	case RoleAdmin:
		switch action {
		case ActionAssignStaff, ActionRejectIssue, ActionDeleteIssue,
			ActionManageUsers, ActionManageStaff,
			ActionViewStats, ActionViewPayments:
			return true
		}
	}
	return false
}

// Status advancement is not in this table: the required actor for each
// edge is part of the state machine itself (see TransitionRule and
// TransitionActor.Satisfies).
