package universe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRule(t *testing.T) {
	tests := []struct {
		in       string
		birth    []int
		survival []int
		str      string
	}{
		{in: "B3/S23", birth: []int{3}, survival: []int{2, 3}, str: "B3/S23"},
		{in: "B36/S23", birth: []int{3, 6}, survival: []int{2, 3}, str: "B36/S23"},
		{in: "B63/S32", birth: []int{3, 6}, survival: []int{2, 3}, str: "B36/S23"},
		{in: "B2/S", birth: []int{2}, survival: []int{}, str: "B2/S"},
		{in: "B/S012345678", birth: []int{}, survival: []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, str: "B/S012345678"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, err := ParseRule(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.birth, r.BirthCounts())
			assert.Equal(t, tt.survival, r.SurvivalCounts())
			assert.Equal(t, tt.str, r.String())
			assert.False(t, r.IsZero())
		})
	}
}

func TestParseRule_Malformed(t *testing.T) {
	for _, in := range []string{
		"",
		"B3S23",
		"B3/S23/",
		"3/S23",
		"B3/23",
		"b3/s23",
		"B9/S23",
		"B3/S2x",
		"B33/S23",
		"B3 /S23",
	} {
		t.Run(in, func(t *testing.T) {
			r, err := ParseRule(in)
			require.Error(t, err)
			var mre *MalformedRuleError
			require.True(t, errors.As(err, &mre), "got %T", err)
			assert.Equal(t, in, mre.Rule)
			assert.True(t, r.IsZero())
		})
	}
}

func TestLookupRule(t *testing.T) {
	r, err := LookupRule("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRule(), r)

	r, err = LookupRule("HighLife")
	require.NoError(t, err)
	assert.Equal(t, "B36/S23", r.String())

	r, err = LookupRule("B1/S1")
	require.NoError(t, err)
	assert.Equal(t, "B1/S1", r.String())

	_, err = LookupRule("not-a-rule")
	assert.Error(t, err)
}

func TestWellKnownRules_Parse(t *testing.T) {
	for name, notation := range WellKnownRules {
		r, err := ParseRule(notation)
		require.NoError(t, err, name)
		assert.Equal(t, notation, r.String(), name)
	}
}

func TestRule_Next(t *testing.T) {
	r := DefaultRule()
	for living := 0; living <= 8; living++ {
		assert.Equal(t, State(living == 3), r.Next(Dead, living), "dead with %d", living)
		assert.Equal(t, State(living == 2 || living == 3), r.Next(Alive, living), "alive with %d", living)
	}
	assert.Equal(t, Dead, r.Next(Alive, -1))
	assert.Equal(t, Dead, r.Next(Dead, 9))
}

func TestRule_ZeroValue(t *testing.T) {
	var r Rule
	assert.True(t, r.IsZero())
	assert.Equal(t, "B3/S23", r.String())
	assert.Panics(t, func() { MustParseRule("B3") })
}
