package gatekeeper

import (
	"sync"
	"sync/atomic"
	"testing"

	"sentinel/common"
	"sentinel/types"
)

func TestClaimOnce(t *testing.T) {
	r := NewReviews()
	review := r.Open("7", "newbie", types.ServerRegistration{ServerID: "100"})

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := r.Claim(review.ID); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one claim, got %d", wins)
	}
	if _, ok := r.Get(review.ID); ok {
		t.Fatalf("claimed review is still open")
	}
	if r.Len() != 0 {
		t.Fatalf("expected no open reviews got %d", r.Len())
	}
}

func TestOpenIDsAreUnique(t *testing.T) {
	r := NewReviews()
	a := r.Open("7", "a", types.ServerRegistration{})
	b := r.Open("7", "a", types.ServerRegistration{})
	if a.ID == b.ID {
		t.Fatalf("review ids collide")
	}
	r.Drop(a.ID)
	if _, ok := r.Get(b.ID); !ok || r.Len() != 1 {
		t.Fatalf("drop removed the wrong review")
	}
}

func TestCustomIDRoundTrip(t *testing.T) {
	id := customID(types.DecisionReject, "abc-123")
	d, reviewID, ok := parseCustomID(id)
	if !ok || d != types.DecisionReject || reviewID != "abc-123" {
		t.Fatalf("parse %q gave %v %q %t", id, d, reviewID, ok)
	}
}

func TestPastTense(t *testing.T) {
	tests := []struct {
		d    types.Decision
		verb string
		want string
	}{
		{types.DecisionApprove, common.RejectKick, "verified by"},
		{types.DecisionReject, common.RejectBan, "banned by"},
		{types.DecisionReject, common.RejectKick, "kicked by"},
	}
	for _, tc := range tests {
		if got := pastTense(tc.d, tc.verb); got != tc.want {
			t.Errorf("pastTense(%s, %s) = %q, want %q", tc.d, tc.verb, got, tc.want)
		}
	}
}
