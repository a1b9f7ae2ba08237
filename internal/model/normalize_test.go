package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"bool true", true, "TRUE"},
		{"bool false", false, "FALSE"},
		{"int", 42, "42"},
		{"whole float drops decimals", 12.0, "12"},
		{"fractional float kept", 12.5, "12.5"},
		{"numeric string matches float", "12.50", "12.5"},
		{"address uppercased", "4 Durlston Grove", "4 DURLSTON GROVE"},
		{"punctuation stripped", "St. Mary's Road,", "ST MARYS ROAD"},
		{"spaces collapsed", "BS1   1AA", "BS1 1AA"},
		{"leading/trailing trimmed", "  BS1 1AA  ", "BS1 1AA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeValue(tt.in))
		})
	}
}

func TestNormalizeValue_EquivalentFormsAgree(t *testing.T) {
	// The same height expressed as float, int, and string must normalize
	// identically or field deltas would report phantom changes.
	assert.Equal(t, NormalizeValue(12.0), NormalizeValue(12))
	assert.Equal(t, NormalizeValue(12.0), NormalizeValue("12"))
	assert.Equal(t, NormalizeValue(12.5), NormalizeValue("12.5"))
}

func TestValueEmpty(t *testing.T) {
	assert.True(t, ValueEmpty(nil))
	assert.True(t, ValueEmpty(""))
	assert.True(t, ValueEmpty("   "))
	assert.True(t, ValueEmpty([]any{}))
	assert.True(t, ValueEmpty(map[string]any{}))
	assert.False(t, ValueEmpty("x"))
	assert.False(t, ValueEmpty(0))
	assert.False(t, ValueEmpty(false))
}
