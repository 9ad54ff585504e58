package api

import (
	"errors"
	"fmt"
	"testing"
)

func asError(err error, target **Error) bool {
	return errors.As(err, target)
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&Error{Kind: KindAuth, Status: 401}, "Failed to create group. You are not authenticated. Please log in again."},
		{&Error{Kind: KindAuth, Status: 403}, "Failed to create group. You do not have permission to do this."},
		{&Error{Kind: KindAuth, Status: 403, Message: "Only the creator can edit"}, "Failed to create group. Only the creator can edit"},
		{&Error{Kind: KindValidation, Status: 400, Message: "Name is required"}, "Failed to create group. Name is required"},
		{&Error{Kind: KindValidation, Status: 400}, "Failed to create group. Invalid data provided."},
		{&Error{Kind: KindServer, Status: 503}, "Failed to create group. Server error (503)."},
		{&Error{Kind: KindAmbiguous, Status: 200}, "Failed to create group. Unexpected response from server."},
		{fmt.Errorf("wrapped: %w", &Error{Kind: KindNetwork}), "Failed to create group. Cannot connect to server. Make sure the backend is running."},
		{errors.New("draft invalid"), "Failed to create group. Draft invalid."},
	}
	for _, tc := range cases {
		if got := Describe("create group", tc.err); got != tc.want {
			t.Fatalf("Describe(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestErrorMessageFallbacks(t *testing.T) {
	if got := errorMessage([]byte(`{"message":"m","error":"e"}`)); got != "m" {
		t.Fatalf("expected message to win, got %q", got)
	}
	if got := errorMessage([]byte(`{"error":"e"}`)); got != "e" {
		t.Fatalf("expected error fallback, got %q", got)
	}
	if got := errorMessage([]byte("plain text failure")); got != "plain text failure" {
		t.Fatalf("expected plain text, got %q", got)
	}
	if got := errorMessage([]byte("<html>oops</html>")); got != "" {
		t.Fatalf("expected html to be ignored, got %q", got)
	}
}
