package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"abbreviation", "IA", "Iowa"},
		{"lowercase abbreviation", "ia", "Iowa"},
		{"full name", "Iowa", "Iowa"},
		{"lowercase full name", "iowa", "Iowa"},
		{"padded", "  MN ", "Minnesota"},
		{"military", "Armed Forces Europe", "Armed Forces Europe"},
		{"unknown passthrough", "Ontario", "Ontario"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, State(tt.in, nil, ""))
		})
	}
}

func TestStateAllowList(t *testing.T) {
	valid := []string{"Iowa", "Nebraska"}

	assert.Equal(t, "Iowa", State("IA", valid, "Iowa"))
	assert.Equal(t, "Nebraska", State("nebraska", valid, "Iowa"))
	// Real state outside the allow-list falls back to the default.
	assert.Equal(t, "Iowa", State("Texas", valid, "Iowa"))
	assert.Equal(t, "Iowa", State("garbage", valid, "Iowa"))
	assert.Equal(t, "Iowa", State("", valid, "Iowa"))
}

func TestCountry(t *testing.T) {
	assert.Equal(t, "United States", Country(""))
	assert.Equal(t, "United States", Country("nan"))
	assert.Equal(t, "United States", Country("USA"))
	assert.Equal(t, "United States", Country("u.s."))
	assert.Equal(t, "Canada", Country("CA"))
	assert.Equal(t, "United Kingdom", Country("England"))
	assert.Equal(t, "Japan", Country("Japan"))
}
