package auth

import (
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
)

// Actor is the authenticated principal performing an operation. It is
// built from verified token claims and passed explicitly to services.
type Actor struct {
	ID   int64
	Role models.RoleType
}

// Student returns an actor for a student account
func Student(id int64) Actor { return Actor{ID: id, Role: models.RoleStudent} }

// Administrator returns an actor for an admin
func Administrator(id int64) Actor { return Actor{ID: id, Role: models.RoleAdmin} }

// IsAdmin reports whether the actor holds the admin role
func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// IsStudent reports whether the actor holds the student role
func (a Actor) IsStudent() bool { return a.Role == models.RoleStudent }

// RequireAdmin returns ErrAdminOnly unless the actor is an admin
func (a Actor) RequireAdmin() error {
	if !a.IsAdmin() {
		return apperrors.ErrAdminOnly
	}
	return nil
}

// RequireStudent returns a permission error unless the actor is a student
func (a Actor) RequireStudent() error {
	if !a.IsStudent() {
		return apperrors.NewForbiddenError("student account required")
	}
	return nil
}

// CanView reports whether the actor may read a resource owned by ownerID
func (a Actor) CanView(ownerID int64) bool {
	return a.IsAdmin() || a.ID == ownerID
}
