package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidDailyTime(t *testing.T) {
	assert.True(t, IsValidDailyTime("00:00"))
	assert.True(t, IsValidDailyTime("08:30"))
	assert.True(t, IsValidDailyTime("23:59"))
	assert.False(t, IsValidDailyTime("8:30"))
	assert.False(t, IsValidDailyTime("24:00"))
	assert.False(t, IsValidDailyTime("12:60"))
	assert.False(t, IsValidDailyTime(""))
	assert.False(t, IsValidDailyTime("noon"))
}

func TestIsValidUTCOffset(t *testing.T) {
	assert.True(t, IsValidUTCOffset(0))
	assert.True(t, IsValidUTCOffset(14*3600))
	assert.True(t, IsValidUTCOffset(-14*3600))
	assert.False(t, IsValidUTCOffset(14*3600+1))
	assert.False(t, IsValidUTCOffset(-15*3600))
}

func TestTrimAndValidate(t *testing.T) {
	s, ok := TrimAndValidate("  London ")
	assert.True(t, ok)
	assert.Equal(t, "London", s)

	_, ok = TrimAndValidate("   ")
	assert.False(t, ok)
}
