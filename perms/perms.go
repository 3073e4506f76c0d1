package perms

import (
	"context"

	"sentinel/store"
)

// Policy is the operator allow-list as it was when the process started. Rows added
// to the database afterwards are not seen until a restart
type Policy struct {
	operators map[string]struct{}
}

func New(operatorIDs []string) *Policy {
	p := &Policy{operators: make(map[string]struct{}, len(operatorIDs))}
	for _, id := range operatorIDs {
		p.operators[id] = struct{}{}
	}
	return p
}

// Load snapshots the operator table
func Load(ctx context.Context, s store.Store) (*Policy, error) {
	ids, err := s.ListOperatorIDs(ctx)
	if err != nil {
		return nil, err
	}
	return New(ids), nil
}

// IsOperator checks to see if a user is a bot operator
func (p *Policy) IsOperator(userID string) bool {
	_, ok := p.operators[userID]
	return ok
}

func (p *Policy) Len() int {
	return len(p.operators)
}

// HasRole reports whether required is among the actor's roles
func HasRole(actorRoles []string, required string) bool {
	for _, role := range actorRoles {
		if role == required {
			return true
		}
	}
	return false
}
