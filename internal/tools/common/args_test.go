package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringArg(t *testing.T) {
	args := map[string]any{
		"date":    "  tomorrow ",
		"count":   3.0,
		"nothing": nil,
	}

	assert.Equal(t, "tomorrow", StringArg(args, "date"))
	assert.Equal(t, "", StringArg(args, "count"))
	assert.Equal(t, "", StringArg(args, "nothing"))
	assert.Equal(t, "", StringArg(args, "missing"))
	assert.Equal(t, "", StringArg(nil, "date"))
}

func TestIntArg(t *testing.T) {
	tests := map[string]struct {
		args    map[string]any
		want    int
		wantErr string
	}{
		"missing":    {args: map[string]any{}, want: 0},
		"null":       {args: map[string]any{"n": nil}, want: 0},
		"json float": {args: map[string]any{"n": 14.0}, want: 14},
		"int":        {args: map[string]any{"n": 5}, want: 5},
		"negative":   {args: map[string]any{"n": -2.0}, want: -2},
		"fraction":   {args: map[string]any{"n": 1.5}, wantErr: "n must be a whole number"},
		"string":     {args: map[string]any{"n": "7"}, wantErr: "n must be a number"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := IntArg(tt.args, "n")
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
