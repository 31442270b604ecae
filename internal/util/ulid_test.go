package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewULID(t *testing.T) {
	a, b := NewULID(), NewULID()
	assert.Len(t, a, 26)
	assert.True(t, IsULID(a))
	assert.Less(t, a, b)
	assert.False(t, IsULID("not-a-ulid"))
}
