package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGOTPGenerator_RandomCode(t *testing.T) {
	g := NewGOTPGenerator()

	code := g.RandomCode(6)
	assert.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9', "code must be numeric, got %q", code)
	}

	assert.Len(t, g.RandomCode(4), 4)
}
