package group

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/notepid/campus_connect/internal/api"
	"github.com/notepid/campus_connect/internal/apitest"
)

func TestDecodeJoinGroupRecord(t *testing.T) {
	// Group records carry a status too; id+name must win.
	body := []byte(`{"id":4,"name":"Calc Crew","status":"ACTIVE","currentSize":3,"maxSize":10,"memberIds":[1,2,9]}`)
	res, err := DecodeJoin(body)
	if err != nil {
		t.Fatalf("DecodeJoin returned error: %v", err)
	}
	if res.Kind != Joined || res.Group == nil || res.Request != nil {
		t.Fatalf("expected joined result, got %+v", res)
	}
	if res.Group.ID != 4 || !res.Group.IsMember(9) {
		t.Fatalf("unexpected group %+v", res.Group)
	}
}

func TestDecodeJoinPendingRequest(t *testing.T) {
	body := []byte(`{"id":31,"status":"PENDING","message":"please","createdAt":"2024-03-01T10:00:00","group":{"id":4,"name":"Calc Crew"}}`)
	res, err := DecodeJoin(body)
	if err != nil {
		t.Fatalf("DecodeJoin returned error: %v", err)
	}
	if res.Kind != Pending || res.Request == nil || res.Group != nil {
		t.Fatalf("expected pending result, got %+v", res)
	}
	if res.Request.Status != RequestPending || res.Request.Message != "please" {
		t.Fatalf("unexpected request %+v", res.Request)
	}
}

func TestDecodeJoinAmbiguous(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"id":4}`,
		`{"id":null,"name":"x"}`,
		`{"id":4,"name":""}`,
		`{"success":true}`,
		`[]`,
		`not json`,
	} {
		res, err := DecodeJoin([]byte(body))
		if err == nil {
			t.Fatalf("%s: expected error, got %+v", body, res)
		}
		if !errors.Is(err, ErrAmbiguousJoin) {
			t.Fatalf("%s: expected ErrAmbiguousJoin, got %v", body, err)
		}
		if api.KindOf(err) != api.KindAmbiguous {
			t.Fatalf("%s: expected ambiguous kind, got %v", body, api.KindOf(err))
		}
	}
}

func TestRepoJoinSendsMessageOnlyWhenSet(t *testing.T) {
	srv := apitest.New(t)
	srv.Handle(http.MethodPost, "/api/groups/:id/join", func(c *gin.Context) {
		if c.Query("message") != "" {
			c.JSON(http.StatusOK, gin.H{"id": 1, "status": "PENDING", "message": c.Query("message")})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": 7, "name": "Open Group"})
	})

	repo := NewRepo(api.New(srv.URL, apitest.StaticToken("tok"), 0))
	ctx := context.Background()

	res, err := repo.Join(ctx, 7, "   ")
	if err != nil || res.Kind != Joined {
		t.Fatalf("expected direct join, got %+v err=%v", res, err)
	}
	r, _ := srv.Last(http.MethodPost, "/api/groups/:id/join")
	if r.Query.Has("message") {
		t.Fatalf("expected blank message to be omitted, got %v", r.Query)
	}
	if r.Header.Get("Authorization") != "Bearer tok" {
		t.Fatalf("expected bearer token on join")
	}

	res, err = repo.Join(ctx, 7, "I'm in the class")
	if err != nil || res.Kind != Pending {
		t.Fatalf("expected pending join, got %+v err=%v", res, err)
	}
	if got := res.Notice(true); got != "Join request sent! The group admin will review your request." {
		t.Fatalf("unexpected notice %q", got)
	}
}

func TestRepoJoinPropagatesServerMessage(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodPost, "/api/groups/:id/join", http.StatusBadRequest, gin.H{"message": "Already a member"})

	repo := NewRepo(api.New(srv.URL, nil, 0))
	_, err := repo.Join(context.Background(), 2, "")
	if got := api.Describe("join group", err); got != "Failed to join group. Already a member" {
		t.Fatalf("unexpected description %q", got)
	}
}

func TestAffordanceFor(t *testing.T) {
	const me = int64(5)
	cases := []struct {
		name  string
		g     Group
		want  Action
		label string
	}{
		{"creator", Group{CreatorID: me, MemberIDs: []int64{me}}, ActionManage, "Edit Group"},
		{"member", Group{CreatorID: 1, MemberIDs: []int64{1, me}}, ActionLeave, "Leave Group"},
		{"open public", Group{CreatorID: 1, Visibility: VisibilityPublic, CurrentSize: 2, MaxSize: 10}, ActionJoin, "Join Group"},
		{"open private", Group{CreatorID: 1, Visibility: VisibilityPrivate, CurrentSize: 2, MaxSize: 10}, ActionJoin, "Join Group (Private)"},
		{"invite only", Group{CreatorID: 1, RequiresInvite: true, CurrentSize: 2, MaxSize: 10}, ActionRequest, "Request to Join"},
		{"full without invite", Group{CreatorID: 1, RequiresInvite: false, CurrentSize: 10, MaxSize: 10}, ActionRequest, "Request to Join"},
	}
	for _, tc := range cases {
		got := AffordanceFor(&tc.g, me)
		if got.Action != tc.want || got.Label != tc.label {
			t.Fatalf("%s: got %+v, want action %v label %q", tc.name, got, tc.want, tc.label)
		}
	}

	if got := AffordanceFor(&Group{}, 0); got.Action != ActionNone {
		t.Fatalf("expected no action for anonymous viewer, got %+v", got)
	}
}

func TestFullGroupMatchesInviteOnlyPath(t *testing.T) {
	full := &Group{CreatorID: 1, CurrentSize: 10, MaxSize: 10, RequiresInvite: false}
	invite := &Group{CreatorID: 1, CurrentSize: 3, MaxSize: 10, RequiresInvite: true}
	if AffordanceFor(full, 2).Action != AffordanceFor(invite, 2).Action {
		t.Fatalf("expected a full group to take the request path")
	}
	if AffordanceFor(full, 2).Confirm == "" {
		t.Fatalf("expected a confirmation prompt for a full group")
	}
}

func TestPrivacyLabel(t *testing.T) {
	cases := map[string]Group{
		"Public - Open Join":    {Visibility: VisibilityPublic},
		"Public - Invite Only":  {Visibility: VisibilityPublic, RequiresInvite: true},
		"Private - Direct Join": {Visibility: VisibilityPrivate},
		"Private - Invite Only": {Visibility: VisibilityPrivate, RequiresInvite: true},
	}
	for want, g := range cases {
		if got := g.PrivacyLabel(); got != want {
			t.Fatalf("got %q want %q", got, want)
		}
	}
}
