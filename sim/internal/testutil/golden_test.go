package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLines_DropsTrailingNewline(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Lines("a\nb\n"))
	assert.Equal(t, []string{"a", "", "b"}, Lines("a\n\nb"))
	assert.Nil(t, Lines(""))
	assert.Nil(t, Lines("\n"))
}

func TestAssertGolden_MatchesFixture(t *testing.T) {
	AssertGolden(t, "fixture", []byte("[5] internal gen (elapsed 5)\n"))
}
