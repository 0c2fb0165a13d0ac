package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskWallet(t *testing.T) {
	addr := "abcdefghijklmnopqrstuvwxyzABCDEF0123456789_-abcd"
	assert.Equal(t, "abcdefgh...89_-abcd", maskWallet(addr))

	// empty and short values pass through for the "not set" fallback
	assert.Equal(t, "", maskWallet(""))
	assert.Equal(t, "shortaddr", maskWallet("shortaddr"))
}

func TestMaskCard(t *testing.T) {
	assert.Equal(t, "**** **** **** 3456", maskCard("1234567890123456"))
	assert.Equal(t, "", maskCard(""))
}
