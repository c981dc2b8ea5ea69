package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/recipeapp/recipe-server/internal/errors"
)

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int64
	}{
		{"empty", "", nil},
		{"blank", "  ", nil},
		{"single", "7", []int64{7}},
		{"several", "1,2,3", []int64{1, 2, 3}},
		{"spaces", " 4 , 5 ", []int64{4, 5}},
		{"trailing comma", "1,,", []int64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIDList("tags", tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIDList_Invalid(t *testing.T) {
	for _, raw := range []string{"abc", "1,x", "-3", "0", "1.5"} {
		t.Run(raw, func(t *testing.T) {
			_, err := parseIDList("ingredients", raw)
			require.Error(t, err)

			var de *domainerrors.Error
			require.True(t, errors.As(err, &de))
			assert.Equal(t, domainerrors.CodeValidation, de.Code)
			assert.Contains(t, de.Details, "ingredients")
		})
	}
}

func TestParsePathID(t *testing.T) {
	id, err := parsePathID("42", "recipe")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "abc", "0", "-1", "1.5", "99999999999999999999"} {
		t.Run(raw, func(t *testing.T) {
			_, err := parsePathID(raw, "tag")
			assert.ErrorIs(t, err, domainerrors.ErrNotFound)
			assert.EqualError(t, err, "tag not found")
		})
	}
}
