package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/models"
	"civicfix-be/store"
)

// UserService covers account administration: the user directory, role
// and block flags, and the staff roster.
type UserService struct {
	users store.UserStore
}

func NewUserService(users store.UserStore) *UserService {
	return &UserService{users: users}
}

// RoleOf reports the stored role for an identity. Role always comes from
// the user document, never from client claims.
func (s *UserService) RoleOf(ctx context.Context, identity string) (models.Role, error) {
	user, err := s.users.FindByEmail(ctx, identity)
	if err == store.ErrNotFound {
		return "", models.NotFoundErr("user not found")
	}
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

func (s *UserService) Get(ctx context.Context, identity string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, identity)
	if err == store.ErrNotFound {
		return nil, models.NotFoundErr("user not found")
	}
	return user, err
}

func (s *UserService) List(ctx context.Context, search, actorID string) ([]models.User, error) {
	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}
	if !models.CanPerform(actor.Role, actor.Email, models.ActionManageUsers, "") {
		return nil, models.ForbiddenErr("admin access required")
	}
	return s.users.List(ctx, search)
}

func (s *UserService) SetRole(ctx context.Context, id primitive.ObjectID, role models.Role, actorID string) (*models.User, error) {
	actor, err := requireActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}
	if !models.CanPerform(actor.Role, actor.Email, models.ActionManageUsers, "") {
		return nil, models.ForbiddenErr("admin access required")
	}
	if !models.ValidRole(role) {
		return nil, models.ValidationErr("invalid role")
	}

	user, err := s.users.SetRole(ctx, id, role)
	if err == store.ErrNotFound {
		return nil, models.NotFoundErr("user not found")
	}
	return user, err
}

func (s *UserService) SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool, actorID string) (*models.User, error) {
	actor, err := requireActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}
	if !models.CanPerform(actor.Role, actor.Email, models.ActionManageUsers, "") {
		return nil, models.ForbiddenErr("admin access required")
	}

	user, err := s.users.SetBlocked(ctx, id, blocked)
	if err == store.ErrNotFound {
		return nil, models.NotFoundErr("user not found")
	}
	return user, err
}

// StaffList returns the roster admins assign from.
func (s *UserService) StaffList(ctx context.Context, actorID string) ([]models.User, error) {
	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}
	if !models.CanPerform(actor.Role, actor.Email, models.ActionManageStaff, "") {
		return nil, models.ForbiddenErr("admin access required")
	}
	return s.users.ListByRole(ctx, models.RoleStaff)
}

// AddStaffInput carries a new staff account's details.
type AddStaffInput struct {
	Name     string
	Email    string
	Password string
}

func (s *UserService) AddStaff(ctx context.Context, in AddStaffInput, actorID string) (*models.User, error) {
	actor, err := requireActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}
	if !models.CanPerform(actor.Role, actor.Email, models.ActionManageStaff, "") {
		return nil, models.ForbiddenErr("admin access required")
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
		return nil, models.ValidationErr("name and email are required")
	}
	if len(in.Password) < 6 {
		return nil, models.ValidationErr("password must be at least 6 characters")
	}

	now := time.Now()
	user := &models.User{
		Name:      in.Name,
		Email:     in.Email,
		Password:  in.Password,
		Role:      models.RoleStaff,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.HashPassword(); err != nil {
		return nil, err
	}
	err = s.users.Insert(ctx, user)
	if err == store.ErrDuplicate {
		return nil, models.ValidationErr("email is already registered")
	}
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

func (s *UserService) UpdateStaff(ctx context.Context, id primitive.ObjectID, name, actorID string) (*models.User, error) {
	actor, err := requireActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}
	if !models.CanPerform(actor.Role, actor.Email, models.ActionManageStaff, "") {
		return nil, models.ForbiddenErr("admin access required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, models.ValidationErr("name is required")
	}

	target, err := s.users.FindByID(ctx, id)
	if err == store.ErrNotFound {
		return nil, models.NotFoundErr("staff member not found")
	}
	if err != nil {
		return nil, err
	}
	if target.Role != models.RoleStaff {
		return nil, models.ValidationErr("not a staff account")
	}

	return s.users.UpdateProfile(ctx, id, name)
}

// RemoveStaff demotes the account back to citizen. The document is kept
// so assigned-issue history still resolves to a person.
func (s *UserService) RemoveStaff(ctx context.Context, id primitive.ObjectID, actorID string) (*models.User, error) {
	actor, err := requireActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}
	if !models.CanPerform(actor.Role, actor.Email, models.ActionManageStaff, "") {
		return nil, models.ForbiddenErr("admin access required")
	}

	target, err := s.users.FindByID(ctx, id)
	if err == store.ErrNotFound {
		return nil, models.NotFoundErr("staff member not found")
	}
	if err != nil {
		return nil, err
	}
	if target.Role != models.RoleStaff {
		return nil, models.ValidationErr("not a staff account")
	}

	return s.users.SetRole(ctx, id, models.RoleCitizen)
}
