package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueNames(t *testing.T) {
	tests := []struct {
		name string
		in   []AttributeInput
		want []string
	}{
		{"nil", nil, []string{}},
		{"keeps order", inputs("b", "a", "c"), []string{"b", "a", "c"}},
		{"first occurrence wins", inputs("x", "y", "x"), []string{"x", "y"}},
		{"trims before comparing", inputs("Salt", " Salt\t"), []string{"Salt"}},
		{"NFC before comparing", inputs("Cafe\u0301", "Caf\u00e9"), []string{"Caf\u00e9"}},
		{"case sensitive", inputs("salt", "Salt"), []string{"salt", "Salt"}},
		{"drops blank", inputs("", "  ", "ok"), []string{"ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, uniqueNames(tt.in))
		})
	}
}

func TestAuthorize(t *testing.T) {
	assert.Equal(t, visible, authorize(7, 7))
	assert.Equal(t, hidden, authorize(7, 8))
	assert.Equal(t, hidden, authorize(0, 0))
}
