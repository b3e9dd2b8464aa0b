package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	type fund struct{ code, name string }
	liquor := fund{"161725", "China Liquor Index"}
	tech := fund{"005827", "Blue Chip Tech"}
	bond := fund{"000001", "Stable Bond"}

	tests := []struct {
		expr string
		want []bool // liquor, tech, bond
	}{
		{"", []bool{true, true, true}},
		{"   ", []bool{true, true, true}},
		{"161725,005827", []bool{true, true, false}},
		{"Stable Bond, 161725", []bool{true, false, true}},
		{"16*", []bool{true, false, false}},
		{"*Tech", []bool{false, true, false}},
		{"/^00/", []bool{false, true, true}},
		{"/Bond$/", []bool{false, false, true}},
		{"liquor", []bool{true, false, false}},
		{"58", []bool{false, true, false}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := Parse(tt.expr)
			require.NoError(t, err)
			for i, fd := range []fund{liquor, tech, bond} {
				assert.Equal(t, tt.want[i], f.Match(fd.code, fd.name), "%s %s", fd.code, fd.name)
			}
		})
	}
}

func TestParseBadRegex(t *testing.T) {
	_, err := Parse("/([/")
	assert.Error(t, err)
}

func TestStringers(t *testing.T) {
	f, err := Parse("16*")
	require.NoError(t, err)
	assert.Equal(t, "glob:16*", f.(Glob).String())

	f, err = Parse("tech")
	require.NoError(t, err)
	assert.Equal(t, "substr-ci:tech", f.(SubstrCI).String())
}
