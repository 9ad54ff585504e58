package api

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampLayouts(t *testing.T) {
	want := time.Date(2024, 3, 1, 14, 5, 9, 0, time.Local)
	for _, in := range []string{
		`"2024-03-01T14:05:09"`,
		`"2024-03-01T14:05:09.000"`,
		`"2024-03-01 14:05:09"`,
		`[2024,3,1,14,5,9]`,
	} {
		var ts Timestamp
		if err := json.Unmarshal([]byte(in), &ts); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if !ts.Equal(want) {
			t.Fatalf("unmarshal %s: got %v want %v", in, ts.Time, want)
		}
	}
}

func TestTimestampNullAndGarbage(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte("null"), &ts); err != nil || !ts.IsZero() {
		t.Fatalf("expected zero time for null, got %v err=%v", ts.Time, err)
	}
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Fatalf("expected error for unrecognized layout")
	}
}
