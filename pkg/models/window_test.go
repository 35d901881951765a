package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestWindowContains(t *testing.T) {
	w := DefaultWindow()

	cases := []struct {
		time    int
		allowed bool
	}{
		{1100, false}, // exclusive lower bound
		{1101, true},
		{2000, true},
		{2099, true},
		{2100, false}, // exclusive upper bound
		{2101, false},
		{0, false},
		{-1, false},
		{9999, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.allowed, w.Contains(c.time), "Contains(%d)", c.time)
	}
}

func TestWindowNoRangeValidation(t *testing.T) {
	// Bounds are compared numerically, nothing clamps them to clock values
	w := Window{Name: "odd", Open: -100, Close: 99999}
	assert.True(t, w.Contains(5000))
	assert.True(t, w.Contains(0))
	assert.False(t, w.Contains(-100))
}

func TestWindowFileYAML(t *testing.T) {
	data := []byte(`windows:
  - name: working-hours
    open: 1100
    close: 2100
  - name: night-shift
    open: 2200
    close: 2359
    description: late window
`)

	var f WindowFile
	err := yaml.Unmarshal(data, &f)
	assert.NoError(t, err)
	assert.Len(t, f.Windows, 2)
	assert.Equal(t, "working-hours", f.Windows[0].Name)
	assert.Equal(t, 1100, f.Windows[0].Open)
	assert.Equal(t, "late window", f.Windows[1].Description)
}
