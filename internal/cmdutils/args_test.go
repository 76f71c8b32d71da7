package cmdutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/taskmanager-client/internal/serviceerr"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int64
		wantErr bool
	}{
		{name: "valid", value: "42", want: 42},
		{name: "zero", value: "0", wantErr: true},
		{name: "negative", value: "-3", wantErr: true},
		{name: "not a number", value: "abc", wantErr: true},
		{name: "empty", value: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseID("task id", tt.value)
			if tt.wantErr {
				require.ErrorIs(t, err, serviceerr.ErrInvalidInput)
				assert.Contains(t, err.Error(), "task id")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := ParseIDs([]string{"3", "9"}, "team id", "task id")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 9}, ids)

	_, err = ParseIDs([]string{"3"}, "team id", "task id")
	assert.ErrorIs(t, err, serviceerr.ErrInvalidInput)

	_, err = ParseIDs([]string{"3", "x"}, "team id", "task id")
	assert.ErrorContains(t, err, "task id")
}
