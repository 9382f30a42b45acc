package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	for _, r := range []Role{System, User, Assistant, Tool} {
		assert.True(t, r.Valid(), r)
	}

	assert.False(t, Role("function").Valid())
	assert.False(t, Role("").Valid())
}

func TestString(t *testing.T) {
	assert.Equal(t, "tool", Tool.String())
}
