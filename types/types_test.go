package types

import (
	"testing"

	"github.com/pkg/errors"
)

func TestFaultKinds(t *testing.T) {
	cause := errors.New("disk full")

	err := StorageFault(cause, "insert registration")
	if !IsStorageFault(err) || IsPlatformFault(err) {
		t.Fatalf("wrong kind for %v", err)
	}
	if errors.Cause(errors.Unwrap(err)) != cause {
		t.Fatalf("cause lost: %v", err)
	}
	if StorageFault(nil, "x") != nil || PlatformFault(nil, "x") != nil {
		t.Fatalf("a nil error must stay nil")
	}
	if !IsPlatformFault(errors.Wrap(PlatformFault(cause, "grant"), "decision")) {
		t.Fatalf("kind must survive wrapping")
	}
}

func TestParseDecision(t *testing.T) {
	for _, d := range []Decision{DecisionApprove, DecisionReject} {
		got, ok := ParseDecision(d.String())
		if !ok || got != d {
			t.Fatalf("round trip of %s failed", d)
		}
	}
	if _, ok := ParseDecision("maybe"); ok {
		t.Fatalf("unknown decision parsed")
	}
}

func TestReviewStates(t *testing.T) {
	if GetReviewState(ReviewApproved.Int()) != ReviewApproved {
		t.Fatalf("lookup by value failed")
	}
	if GetReviewState(99) != ReviewStateUnknown {
		t.Fatalf("unknown value should map to ReviewStateUnknown")
	}
	for _, s := range []ReviewState{ReviewApproved, ReviewRejected, ReviewFailed} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	if ReviewAwaitingDecision.Terminal() {
		t.Errorf("awaiting decision is not terminal")
	}
}
