package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "12.50", Money(12.5))
	assert.Equal(t, "1,234,567.89", Money(1234567.891))
	assert.Equal(t, "-1,234.50", Money(-1234.5))
	assert.Equal(t, "0.00", Money(math.Copysign(0, -1)))
}

func TestSigned(t *testing.T) {
	assert.Equal(t, "+50.00", Signed(50))
	assert.Equal(t, "+0.00", Signed(0))
	assert.Equal(t, "+0.00", Signed(math.Copysign(0, -1)))
	assert.Equal(t, "-4.00", Signed(-4))
	assert.Equal(t, "+25.00%", Percent(25))
	assert.Equal(t, "-1.23%", Percent(-1.234))
}

func TestNAVAndCost(t *testing.T) {
	v := 1.23456
	assert.Equal(t, "1.2346", NAV(&v))
	assert.Equal(t, Missing, NAV(nil))
	assert.Equal(t, "2.0000", Cost(2))
	assert.Equal(t, Missing, Cost(0))
}

func TestClock(t *testing.T) {
	assert.Equal(t, "14:30", Clock("2024-05-10 14:30"))
	assert.Equal(t, "2024-05-10", Clock("2024-05-10"))
	assert.Equal(t, "fetch failed", Clock("fetch failed"))
	assert.Equal(t, Missing, Clock(""))
}

func TestDot(t *testing.T) {
	assert.Equal(t, "🔴", Dot(0.1))
	assert.Equal(t, "🟢", Dot(-0.1))
	assert.Equal(t, "⚪", Dot(0))
}
