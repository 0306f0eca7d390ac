package services

import (
	"civicfix-be/models"
)

func (s *ServiceSuite) TestRoleComesFromTheStore() {
	s.addUser("karim@x.com", models.RoleCitizen)

	role, err := s.users.RoleOf(s.ctx, "karim@x.com")
	s.Require().NoError(err)
	s.Equal(models.RoleCitizen, role)

	_, err = s.users.RoleOf(s.ctx, "ghost@x.com")
	s.requireKind(err, models.KindNotFound)
}

func (s *ServiceSuite) TestUserListIsAdminOnly() {
	s.addUser("admin@x.com", models.RoleAdmin)
	s.addUser("karim@x.com", models.RoleCitizen)
	s.addUser("rahim@x.com", models.RoleCitizen)

	all, err := s.users.List(s.ctx, "", "admin@x.com")
	s.Require().NoError(err)
	s.Len(all, 3)

	filtered, err := s.users.List(s.ctx, "karim", "admin@x.com")
	s.Require().NoError(err)
	s.Require().Len(filtered, 1)
	s.Equal("karim@x.com", filtered[0].Email)

	_, err = s.users.List(s.ctx, "", "karim@x.com")
	s.requireKind(err, models.KindForbidden)
}

func (s *ServiceSuite) TestSetRoleAndBlock() {
	s.addUser("admin@x.com", models.RoleAdmin)
	target := s.addUser("karim@x.com", models.RoleCitizen)

	updated, err := s.users.SetRole(s.ctx, target.ID, models.RoleStaff, "admin@x.com")
	s.Require().NoError(err)
	s.Equal(models.RoleStaff, updated.Role)

	_, err = s.users.SetRole(s.ctx, target.ID, "superuser", "admin@x.com")
	s.requireKind(err, models.KindValidation)

	blocked, err := s.users.SetBlocked(s.ctx, target.ID, true, "admin@x.com")
	s.Require().NoError(err)
	s.True(blocked.Blocked)

	// A blocked admin cannot keep administering.
	s.blockUser("admin@x.com")
	_, err = s.users.SetBlocked(s.ctx, target.ID, false, "admin@x.com")
	s.requireKind(err, models.KindForbidden)
}

func (s *ServiceSuite) TestStaffRoster() {
	s.addUser("admin@x.com", models.RoleAdmin)
	s.addUser("karim@x.com", models.RoleCitizen)

	added, err := s.users.AddStaff(s.ctx, AddStaffInput{
		Name:     "Field Staff",
		Email:    "staff@x.com",
		Password: "secret123",
	}, "admin@x.com")
	s.Require().NoError(err)
	s.Equal(models.RoleStaff, added.Role)
	s.Empty(added.Password)

	_, err = s.users.AddStaff(s.ctx, AddStaffInput{
		Name:     "Dup",
		Email:    "staff@x.com",
		Password: "secret123",
	}, "admin@x.com")
	s.requireKind(err, models.KindValidation)

	_, err = s.users.AddStaff(s.ctx, AddStaffInput{
		Name:     "Short",
		Email:    "short@x.com",
		Password: "123",
	}, "admin@x.com")
	s.requireKind(err, models.KindValidation)

	roster, err := s.users.StaffList(s.ctx, "admin@x.com")
	s.Require().NoError(err)
	s.Require().Len(roster, 1)
	s.Equal("staff@x.com", roster[0].Email)

	renamed, err := s.users.UpdateStaff(s.ctx, added.ID, "Senior Field Staff", "admin@x.com")
	s.Require().NoError(err)
	s.Equal("Senior Field Staff", renamed.Name)

	// Removal demotes instead of deleting so history keeps resolving.
	demoted, err := s.users.RemoveStaff(s.ctx, added.ID, "admin@x.com")
	s.Require().NoError(err)
	s.Equal(models.RoleCitizen, demoted.Role)

	_, err = s.users.RemoveStaff(s.ctx, added.ID, "admin@x.com")
	s.requireKind(err, models.KindValidation)

	citizen, err := s.userStore.FindByEmail(s.ctx, "karim@x.com")
	s.Require().NoError(err)
	_, err = s.users.UpdateStaff(s.ctx, citizen.ID, "Nope", "admin@x.com")
	s.requireKind(err, models.KindValidation)

	_, err = s.users.AddStaff(s.ctx, AddStaffInput{
		Name:     "Sneaky",
		Email:    "sneaky@x.com",
		Password: "secret123",
	}, "karim@x.com")
	s.requireKind(err, models.KindForbidden)
}
