package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorPredicates(t *testing.T) {
	validation := NewValidationError("bad value %d", 7)
	migration := NewMigrationError("0.9.0", "1.0.0", "no path")
	persistence := NewPersistenceError("/tmp/x.json", "write failed", errors.New("disk full"))
	inheritance := NewInheritanceError("production", "circular")
	deployment := NewDeploymentError("staging", "halted", nil)

	assert.True(t, IsValidationError(validation))
	assert.True(t, IsMigrationError(migration))
	assert.True(t, IsPersistenceError(persistence))
	assert.True(t, IsInheritanceError(inheritance))
	assert.True(t, IsDeploymentError(deployment))

	assert.False(t, IsValidationError(migration))
	assert.False(t, IsMigrationError(validation))
	assert.False(t, IsPersistenceError(errors.New("plain")))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "bad value 7", NewValidationError("bad value %d", 7).Error())

	migration := NewMigrationError("0.9.0", "1.0.0", "no path")
	assert.Contains(t, migration.Error(), "0.9.0 -> 1.0.0")

	persistence := NewPersistenceError("/tmp/x.json", "write failed", errors.New("disk full"))
	assert.Contains(t, persistence.Error(), "/tmp/x.json")
	assert.Contains(t, persistence.Error(), "disk full")

	inheritance := NewInheritanceError("production", "circular")
	assert.Contains(t, inheritance.Error(), `"production"`)
}

func TestPersistenceErrorUnwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := NewPersistenceError("/tmp/x.json", "write failed", inner)
	assert.True(t, errors.Is(err, inner))

	deployment := NewDeploymentError("staging", "halted", inner)
	assert.True(t, errors.Is(deployment, inner))
}
