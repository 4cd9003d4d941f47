package batch

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestParseIDs(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    []string
		wantErr string
	}{
		{
			name:  "single string",
			input: "evt001",
			want:  []string{"evt001"},
		},
		{
			name:  "array of strings",
			input: []any{"evt001", "evt002", "evt003"},
			want:  []string{"evt001", "evt002", "evt003"},
		},
		{
			name:  "string slice",
			input: []string{"evt001"},
			want:  []string{"evt001"},
		},
		{
			name:    "nil input",
			input:   nil,
			wantErr: "event_id required",
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: "event_id required",
		},
		{
			name:    "empty array",
			input:   []any{},
			wantErr: "event_id cannot be empty",
		},
		{
			name:    "array with non-string",
			input:   []any{"evt001", 123.0},
			wantErr: "event_id[1] must be a string",
		},
		{
			name:    "array with empty string",
			input:   []any{"evt001", ""},
			wantErr: "event_id[1] cannot be empty",
		},
		{
			name:    "number",
			input:   42.0,
			wantErr: "event_id must be a string or array of strings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDs(tt.input, "event_id")
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("ParseIDs() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseIDs() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseIDs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProcess(t *testing.T) {
	ids := []string{"evt001", "missing", "evt003"}

	var seen []string
	results := Process(context.Background(), ids, func(ctx context.Context, id string) (string, error) {
		seen = append(seen, id)
		if id == "missing" {
			return "", errors.New("event not found: missing")
		}
		return "cancelled", nil
	})

	if !reflect.DeepEqual(seen, ids) {
		t.Errorf("ids processed = %v, want %v", seen, ids)
	}

	want := []Result{
		{ID: "evt001", Status: StatusSuccess, Result: "cancelled"},
		{ID: "missing", Status: StatusError, Error: "event not found: missing"},
		{ID: "evt003", Status: StatusSuccess, Result: "cancelled"},
	}
	if !reflect.DeepEqual(results, want) {
		t.Errorf("Process() = %+v, want %+v", results, want)
	}
}

func TestProcess_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	results := Process(ctx, []string{"a", "b", "c"}, func(ctx context.Context, id string) (string, error) {
		calls++
		cancel()
		return "ok", nil
	})

	if calls != 1 {
		t.Fatalf("fn called %d times, want 1", calls)
	}
	if results[0].Status != StatusSuccess {
		t.Errorf("first result status = %s, want success", results[0].Status)
	}
	for _, r := range results[1:] {
		if r.Status != StatusError || r.Error != context.Canceled.Error() {
			t.Errorf("result %s = %+v, want context canceled error", r.ID, r)
		}
	}
}

func TestFormatResults(t *testing.T) {
	results := []Result{
		{ID: "a", Status: StatusSuccess, Result: "done"},
		{ID: "b", Status: StatusError, Error: "boom"},
		{ID: "c", Status: StatusSuccess, Result: "done"},
	}

	var br BatchResult
	if err := json.Unmarshal([]byte(FormatResults(results)), &br); err != nil {
		t.Fatalf("FormatResults() produced invalid JSON: %v", err)
	}

	if br.Total != 3 || br.Successful != 2 || br.Failed != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1", br.Total, br.Successful, br.Failed)
	}
	if !reflect.DeepEqual(br.Results, results) {
		t.Errorf("results = %+v, want %+v", br.Results, results)
	}
}
