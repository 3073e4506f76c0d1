package gatekeeper

import (
	"sync"
	"time"

	"sentinel/types"

	"github.com/google/uuid"
)

// JoinReview is the live state behind one alert's buttons
type JoinReview struct {
	ID           string
	MemberID     string
	MemberName   string
	Registration types.ServerRegistration
	CreatedAt    time.Time
}

// Reviews holds the open join reviews. Nothing here outlives the process and nothing
// expires: a review is open until claimed
type Reviews struct {
	mu   sync.Mutex
	open map[string]JoinReview
}

func NewReviews() *Reviews {
	return &Reviews{open: make(map[string]JoinReview)}
}

// Open starts a review for a member that just joined
func (r *Reviews) Open(memberID, memberName string, reg types.ServerRegistration) JoinReview {
	review := JoinReview{
		ID:           uuid.NewString(),
		MemberID:     memberID,
		MemberName:   memberName,
		Registration: reg,
		CreatedAt:    time.Now(),
	}
	r.mu.Lock()
	r.open[review.ID] = review
	r.mu.Unlock()
	return review
}

func (r *Reviews) Get(id string) (JoinReview, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.open[id]
	return review, ok
}

// Claim moves a review from open to resolved. Of any number of concurrent callers for
// the same id exactly one gets ok == true
func (r *Reviews) Claim(id string) (JoinReview, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.open[id]
	if ok {
		delete(r.open, id)
	}
	return review, ok
}

// Drop forgets a review whose alert never made it to Discord
func (r *Reviews) Drop(id string) {
	r.mu.Lock()
	delete(r.open, id)
	r.mu.Unlock()
}

func (r *Reviews) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.open)
}
