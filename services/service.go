// Package services implements the issue lifecycle and workflow
// orchestration rules. Every operation takes the acting identity as an
// explicit argument; nothing is resolved from ambient request state.
package services

import (
	"context"

	"civicfix-be/models"
	"civicfix-be/store"
)

// requireActor resolves an identity for a mutating operation. Blocked
// accounts are rejected here, before any role evaluation: blocked is an
// absolute gate, not a role.
func requireActor(ctx context.Context, users store.UserStore, identity string) (*models.User, error) {
	user, err := loadActor(ctx, users, identity)
	if err != nil {
		return nil, err
	}
	if user.Blocked {
		return nil, models.ForbiddenErr("account is blocked")
	}
	return user, nil
}

// loadActor resolves an identity for a read-only operation.
func loadActor(ctx context.Context, users store.UserStore, identity string) (*models.User, error) {
	if identity == "" {
		return nil, models.UnauthorizedErr("no verified identity")
	}
	user, err := users.FindByEmail(ctx, identity)
	if err == store.ErrNotFound {
		return nil, models.UnauthorizedErr("unknown identity")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
