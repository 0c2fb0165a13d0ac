package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseVipGrant(t *testing.T) {
	targetID, d, ok := parseVipGrant([]string{"42", "3"})
	assert.True(t, ok)
	assert.Equal(t, int64(42), targetID)
	assert.Equal(t, 72*time.Hour, d, "grants are counted in days")

	for _, bad := range [][]string{
		nil,
		{"42"},
		{"42", "3", "extra"},
		{"abc", "3"},
		{"42", "abc"},
		{"42", "0"},
		{"42", "-1"},
	} {
		_, _, ok := parseVipGrant(bad)
		assert.False(t, ok, "args %v", bad)
	}
}
