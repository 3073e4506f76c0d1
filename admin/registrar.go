package admin

import (
	"context"

	"sentinel/store"
	"sentinel/types"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type OperatorChecker interface {
	IsOperator(userID string) bool
}

// Registrar records new servers on behalf of bot operators
type Registrar struct {
	store  store.Store
	policy OperatorChecker
}

func NewRegistrar(s store.Store, policy OperatorChecker) *Registrar {
	return &Registrar{store: s, policy: policy}
}

// Register stores reg if callerID is an operator. Ids are stored as given; nothing checks
// that the roles or channel exist. A non-operator gets Unauthorized with an error
// matching types.ErrUnauthorized; otherwise the error is only set for storage faults
// and bad ids
func (r *Registrar) Register(ctx context.Context, callerID string, reg types.ServerRegistration) (types.RegisterOutcome, error) {
	if !r.policy.IsOperator(callerID) {
		log.WithFields(log.Fields{
			"user":  callerID,
			"guild": reg.ServerID,
		}).Warning("Non-operator tried to register a server")
		return types.Unauthorized, errors.Wrap(types.ErrUnauthorized, "user "+callerID)
	}

	err := r.store.InsertRegistration(ctx, reg)
	if errors.Is(err, types.ErrAlreadyRegistered) {
		return types.AlreadyRegistered, nil
	} else if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"user":          callerID,
		"guild":         reg.ServerID,
		"admin_role":    reg.AdminRoleID,
		"verified_role": reg.VerifiedRoleID,
		"alert_channel": reg.AlertChannelID,
	}).Info("Server registered")
	return types.Registered, nil
}
