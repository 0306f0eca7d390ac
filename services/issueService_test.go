package services

import (
	"strings"

	"civicfix-be/models"
	"civicfix-be/store"
)

func (s *ServiceSuite) TestCreateDefaults() {
	s.addUser("rahim@x.com", models.RoleCitizen)

	issue := s.reportIssue("rahim@x.com")

	s.Equal(models.StatusPending, issue.Status)
	s.Equal(models.PriorityNormal, issue.Priority)
	s.Equal("rahim@x.com", issue.ReportedBy)
	s.Empty(issue.AssignedTo)
	s.Equal(0, issue.VoteCount)
	s.Require().Len(issue.Timeline, 1)
	s.Equal("Issue reported", issue.Timeline[0].Text)
}

func (s *ServiceSuite) TestCreateValidation() {
	s.addUser("rahim@x.com", models.RoleCitizen)

	_, err := s.issues.Create(s.ctx, CreateIssueInput{
		Title:       "",
		Description: "desc",
		Category:    "Road",
		Location:    "Dhaka",
	}, "rahim@x.com")
	s.requireKind(err, models.KindValidation)

	_, err = s.issues.Create(s.ctx, CreateIssueInput{
		Title:       "Title",
		Description: "desc",
		Category:    "Potholes",
		Location:    "Dhaka",
	}, "rahim@x.com")
	s.requireKind(err, models.KindValidation)
}

func (s *ServiceSuite) TestOnlyCitizensReport() {
	s.addUser("staff@x.com", models.RoleStaff)
	s.addUser("admin@x.com", models.RoleAdmin)

	_, err := s.issues.Create(s.ctx, CreateIssueInput{
		Title: "t", Description: "d", Category: "Road", Location: "l",
	}, "staff@x.com")
	s.requireKind(err, models.KindForbidden)

	_, err = s.issues.Create(s.ctx, CreateIssueInput{
		Title: "t", Description: "d", Category: "Road", Location: "l",
	}, "admin@x.com")
	s.requireKind(err, models.KindForbidden)
}

func (s *ServiceSuite) TestUnknownAndBlockedActors() {
	s.addUser("rahim@x.com", models.RoleCitizen)
	issue := s.reportIssue("rahim@x.com")

	_, err := s.issues.Vote(s.ctx, issue.ID, "ghost@x.com")
	s.requireKind(err, models.KindUnauthorized)

	s.addUser("karim@x.com", models.RoleCitizen)
	s.blockUser("karim@x.com")
	_, err = s.issues.Vote(s.ctx, issue.ID, "karim@x.com")
	s.requireKind(err, models.KindForbidden)

	// Blocked accounts cannot report either.
	_, err = s.issues.Create(s.ctx, CreateIssueInput{
		Title: "t", Description: "d", Category: "Road", Location: "l",
	}, "karim@x.com")
	s.requireKind(err, models.KindForbidden)
}

func (s *ServiceSuite) TestVoteLedger() {
	s.addUser("rahim@x.com", models.RoleCitizen)
	s.addUser("karim@x.com", models.RoleCitizen)
	s.addUser("staff@x.com", models.RoleStaff)
	issue := s.reportIssue("rahim@x.com")

	updated, err := s.issues.Vote(s.ctx, issue.ID, "karim@x.com")
	s.Require().NoError(err)
	s.Equal(1, updated.VoteCount)
	s.True(updated.HasVoted("karim@x.com"))

	_, err = s.issues.Vote(s.ctx, issue.ID, "karim@x.com")
	s.requireKind(err, models.KindDuplicateVote)

	_, err = s.issues.Vote(s.ctx, issue.ID, "rahim@x.com")
	s.requireKind(err, models.KindSelfVote)

	_, err = s.issues.Vote(s.ctx, issue.ID, "staff@x.com")
	s.requireKind(err, models.KindForbidden)

	final, err := s.issues.Get(s.ctx, issue.ID)
	s.Require().NoError(err)
	s.Equal(1, final.VoteCount)
	s.Equal(len(final.Voters), final.VoteCount)
}

func (s *ServiceSuite) TestAssignStaff() {
	s.addUser("rahim@x.com", models.RoleCitizen)
	s.addUser("admin@x.com", models.RoleAdmin)
	s.addUser("staff@x.com", models.RoleStaff)
	issue := s.reportIssue("rahim@x.com")

	updated, err := s.issues.AssignStaff(s.ctx, issue.ID, "staff@x.com", "admin@x.com")
	s.Require().NoError(err)
	s.Equal(models.StatusAssigned, updated.Status)
	s.Equal("staff@x.com", updated.AssignedTo)
	s.Equal("Assigned to User staff@x.com", updated.Timeline[len(updated.Timeline)-1].Text)

	// Re-triage is not allowed once the issue has left pending.
	_, err = s.issues.AssignStaff(s.ctx, issue.ID, "staff@x.com", "admin@x.com")
	s.requireKind(err, models.KindInvalidTransition)
}

func (s *ServiceSuite) TestAssignRequiresActiveStaff() {
	s.addUser("rahim@x.com", models.RoleCitizen)
	s.addUser("admin@x.com", models.RoleAdmin)
	s.addUser("karim@x.com", models.RoleCitizen)
	s.addUser("benched@x.com", models.RoleStaff)
	s.blockUser("benched@x.com")
	issue := s.reportIssue("rahim@x.com")

	_, err := s.issues.AssignStaff(s.ctx, issue.ID, "nobody@x.com", "admin@x.com")
	s.requireKind(err, models.KindValidation)

	_, err = s.issues.AssignStaff(s.ctx, issue.ID, "karim@x.com", "admin@x.com")
	s.requireKind(err, models.KindValidation)

	_, err = s.issues.AssignStaff(s.ctx, issue.ID, "benched@x.com", "admin@x.com")
	s.requireKind(err, models.KindValidation)

	_, err = s.issues.AssignStaff(s.ctx, issue.ID, "benched@x.com", "rahim@x.com")
	s.requireKind(err, models.KindForbidden)
}

func (s *ServiceSuite) TestRejectPendingOnly() {
	s.addUser("rahim@x.com", models.RoleCitizen)
	s.addUser("admin@x.com", models.RoleAdmin)
	s.addUser("staff@x.com", models.RoleStaff)

	issue := s.reportIssue("rahim@x.com")
	updated, err := s.issues.Reject(s.ctx, issue.ID, "admin@x.com")
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, updated.Status)
	s.Equal("Issue rejected", updated.Timeline[len(updated.Timeline)-1].Text)

	assigned := s.reportIssue("rahim@x.com")
	_, err = s.issues.AssignStaff(s.ctx, assigned.ID, "staff@x.com", "admin@x.com")
	s.Require().NoError(err)
	_, err = s.issues.Reject(s.ctx, assigned.ID, "admin@x.com")
	s.requireKind(err, models.KindInvalidTransition)

	_, err = s.issues.Reject(s.ctx, issue.ID, "rahim@x.com")
	s.requireKind(err, models.KindForbidden)
}

func (s *ServiceSuite) TestAdvanceHappyPath() {
	s.addUser("rahim@x.com", models.RoleCitizen)
	s.addUser("admin@x.com", models.RoleAdmin)
	s.addUser("staff@x.com", models.RoleStaff)
	issue := s.reportIssue("rahim@x.com")
	_, err := s.issues.AssignStaff(s.ctx, issue.ID, "staff@x.com", "admin@x.com")
	s.Require().NoError(err)

	for _, target := range []string{"in-progress", "working", "resolved"} {
		updated, err := s.issues.Advance(s.ctx, issue.ID, target, "staff@x.com")
		s.Require().NoError(err)
		s.Equal(target, string(updated.Status))
	}

	// Either the assignee or an admin may close a resolved issue.
	closed, err := s.issues.Advance(s.ctx, issue.ID, "closed", "admin@x.com")
	s.Require().NoError(err)
	s.Equal(models.StatusClosed, closed.Status)
	s.Equal("Status changed to closed", closed.Timeline[len(closed.Timeline)-1].Text)

	// Closed is terminal.
	_, err = s.issues.Advance(s.ctx, issue.ID, "in-progress", "staff@x.com")
	s.requireKind(err, models.KindInvalidTransition)
}

func (s *ServiceSuite) TestAdvanceAcceptsLegacyStatusNames() {
	s.addUser("rahim@x.com", models.RoleCitizen)
	s.addUser("admin@x.com", models.RoleAdmin)
	s.addUser("staff@x.com", models.RoleStaff)
	issue := s.reportIssue("rahim@x.com")
	_, err := s.issues.AssignStaff(s.ctx, issue.ID, "staff@x.com", "admin@x.com")
	s.Require().NoError(err)

	updated, err := s.issues.Advance(s.ctx, issue.ID, "In Progress", "staff@x.com")
	s.Require().NoError(err)
	s.Equal(models.StatusInProgress, updated.Status)

	_, err = s.issues.Advance(s.ctx, issue.ID, "shipped", "staff@x.com")
	s.requireKind(err, models.KindValidation)
}

func (s *ServiceSuite) TestAdvanceForwardOnly() {
	s.addUser("rahim@x.com", models.RoleCitizen)
	s.addUser("admin@x.com", models.RoleAdmin)
	s.addUser("staff@x.com", models.RoleStaff)
	issue := s.reportIssue("rahim@x.com")
	_, err := s.issues.AssignStaff(s.ctx, issue.ID, "staff@x.com", "admin@x.com")
	s.Require().NoError(err)
	_, err = s.issues.Advance(s.ctx, issue.ID, "in-progress", "staff@x.com")
	s.Require().NoError(err)
	_, err = s.issues.Advance(s.ctx, issue.ID, "working", "staff@x.com")
	s.Require().NoError(err)

	// No skipping edges and no going back.
	_, err = s.issues.Advance(s.ctx, issue.ID, "closed", "staff@x.com")
	s.requireKind(err, models.KindInvalidTransition)
	_, err = s.issues.Advance(s.ctx, issue.ID, "in-progress", "staff@x.com")
	s.requireKind(err, models.KindInvalidTransition)
}

func (s *ServiceSuite) TestAdvanceActorChecks() {
	s.addUser("rahim@x.com", models.RoleCitizen)
	s.addUser("admin@x.com", models.RoleAdmin)
	s.addUser("staff@x.com", models.RoleStaff)
	s.addUser("other-staff@x.com", models.RoleStaff)
	issue := s.reportIssue("rahim@x.com")
	_, err := s.issues.AssignStaff(s.ctx, issue.ID, "staff@x.com", "admin@x.com")
	s.Require().NoError(err)

	// Only the assignee moves the work forward, not some other staff,
	// not the admin and not the reporter.
	for _, actor := range []string{"other-staff@x.com", "admin@x.com", "rahim@x.com"} {
		_, err := s.issues.Advance(s.ctx, issue.ID, "in-progress", actor)
		s.requireKind(err, models.KindForbidden)
	}

	updated, err := s.issues.Advance(s.ctx, issue.ID, "in-progress", "staff@x.com")
	s.Require().NoError(err)
	s.Equal(models.StatusInProgress, updated.Status)
}

func (s *ServiceSuite) TestEditPendingOnly() {
	s.addUser("rahim@x.com", models.RoleCitizen)
	s.addUser("karim@x.com", models.RoleCitizen)
	s.addUser("admin@x.com", models.RoleAdmin)
	s.addUser("staff@x.com", models.RoleStaff)
	issue := s.reportIssue("rahim@x.com")

	title := "Pothole fixed title"
	updated, err := s.issues.Update(s.ctx, issue.ID, store.IssuePatch{Title: &title}, "rahim@x.com")
	s.Require().NoError(err)
	s.Equal(title, updated.Title)

	_, err = s.issues.Update(s.ctx, issue.ID, store.IssuePatch{Title: &title}, "karim@x.com")
	s.requireKind(err, models.KindForbidden)

	_, err = s.issues.AssignStaff(s.ctx, issue.ID, "staff@x.com", "admin@x.com")
	s.Require().NoError(err)
	_, err = s.issues.Update(s.ctx, issue.ID, store.IssuePatch{Title: &title}, "rahim@x.com")
	s.requireKind(err, models.KindInvalidTransition)
}

func (s *ServiceSuite) TestEditKeepsFieldRules() {
	s.addUser("rahim@x.com", models.RoleCitizen)
	issue := s.reportIssue("rahim@x.com")

	empty := ""
	blank := "   "
	long := strings.Repeat("x", 201)
	category := models.IssueCategory("Potholes")

	for _, patch := range []store.IssuePatch{
		{Title: &empty},
		{Title: &blank},
		{Title: &long},
		{Description: &empty},
		{Location: &empty},
		{Category: &category},
	} {
		_, err := s.issues.Update(s.ctx, issue.ID, patch, "rahim@x.com")
		s.requireKind(err, models.KindValidation)
	}

	// Fields left out of the patch are untouched, not re-validated.
	location := "Mirpur 2, Dhaka"
	updated, err := s.issues.Update(s.ctx, issue.ID, store.IssuePatch{Location: &location}, "rahim@x.com")
	s.Require().NoError(err)
	s.Equal(location, updated.Location)
	s.Equal(issue.Title, updated.Title)
}

func (s *ServiceSuite) TestDeletePendingOnly() {
	s.addUser("rahim@x.com", models.RoleCitizen)
	s.addUser("karim@x.com", models.RoleCitizen)
	s.addUser("admin@x.com", models.RoleAdmin)
	s.addUser("staff@x.com", models.RoleStaff)

	issue := s.reportIssue("rahim@x.com")
	err := s.issues.Delete(s.ctx, issue.ID, "karim@x.com")
	s.requireKind(err, models.KindForbidden)
	s.Require().NoError(s.issues.Delete(s.ctx, issue.ID, "rahim@x.com"))
	_, err = s.issues.Get(s.ctx, issue.ID)
	s.requireKind(err, models.KindNotFound)

	// Admin may delete any pending issue, but nothing past pending.
	second := s.reportIssue("rahim@x.com")
	s.Require().NoError(s.issues.Delete(s.ctx, second.ID, "admin@x.com"))

	third := s.reportIssue("rahim@x.com")
	_, err = s.issues.AssignStaff(s.ctx, third.ID, "staff@x.com", "admin@x.com")
	s.Require().NoError(err)
	err = s.issues.Delete(s.ctx, third.ID, "admin@x.com")
	s.requireKind(err, models.KindInvalidTransition)
	err = s.issues.Delete(s.ctx, third.ID, "rahim@x.com")
	s.requireKind(err, models.KindInvalidTransition)
}

func (s *ServiceSuite) TestAssignedQueueOrdersBoostedFirst() {
	s.addUser("rahim@x.com", models.RoleCitizen)
	s.addUser("admin@x.com", models.RoleAdmin)
	s.addUser("staff@x.com", models.RoleStaff)

	plain := s.reportIssue("rahim@x.com")
	boosted := s.reportIssue("rahim@x.com")
	_, err := s.issues.AssignStaff(s.ctx, plain.ID, "staff@x.com", "admin@x.com")
	s.Require().NoError(err)
	_, err = s.issues.AssignStaff(s.ctx, boosted.ID, "staff@x.com", "admin@x.com")
	s.Require().NoError(err)

	_, err = s.issueStore.SetPriorityHigh(s.ctx, boosted.ID, models.TimelineEntry{Text: "Priority boosted to high"})
	s.Require().NoError(err)

	queue, err := s.issues.ListAssigned(s.ctx, "staff@x.com")
	s.Require().NoError(err)
	s.Require().Len(queue, 2)
	s.Equal(boosted.ID, queue[0].ID)
	s.Equal(models.PriorityHigh, queue[0].Priority)

	_, err = s.issues.ListAssigned(s.ctx, "rahim@x.com")
	s.requireKind(err, models.KindForbidden)
}
