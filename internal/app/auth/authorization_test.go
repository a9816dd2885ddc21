package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
)

func TestActorRoles(t *testing.T) {
	s := Student(5)
	a := Administrator(1)

	assert.True(t, s.IsStudent())
	assert.False(t, s.IsAdmin())
	assert.ErrorIs(t, s.RequireAdmin(), apperrors.ErrAdminOnly)
	assert.NoError(t, s.RequireStudent())

	assert.True(t, a.IsAdmin())
	assert.NoError(t, a.RequireAdmin())
	assert.True(t, errors.Is(a.RequireStudent(), apperrors.ErrPermissionDenied))
}

func TestActorCanView(t *testing.T) {
	assert.True(t, Student(5).CanView(5))
	assert.False(t, Student(5).CanView(6))
	assert.True(t, Administrator(1).CanView(6))
}
