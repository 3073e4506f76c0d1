// Package store persists server registrations and the operator allow-list.
//
// Two tables are kept, created on open if absent:
//
//	servers(guild_id PRIMARY KEY, admin_role_id, verified_role_id, alert_channel_id)
//	admin_users(user_id PRIMARY KEY)
//
// Ids are decimal snowflake strings in Go and 64-bit integers in the database.
package store

import (
	"context"
	"strconv"
	"strings"

	"sentinel/types"

	"github.com/pkg/errors"
)

type Store interface {
	// GetRegistration returns types.ErrNotFound if the server was never registered
	GetRegistration(ctx context.Context, serverID string) (*types.ServerRegistration, error)
	// InsertRegistration returns types.ErrAlreadyRegistered if the server has a row. The row is never updated
	InsertRegistration(ctx context.Context, reg types.ServerRegistration) error
	ListRegistrations(ctx context.Context) ([]types.ServerRegistration, error)
	ListOperatorIDs(ctx context.Context) ([]string, error)
	AddOperator(ctx context.Context, userID string) error
	Close() error
}

// Open picks the backend from the dsn: postgres:// and postgresql:// go to Postgres,
// anything else is a SQLite file path
func Open(ctx context.Context, dsn string) (Store, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return OpenPostgres(ctx, dsn)
	}
	return OpenSQLite(ctx, dsn)
}

// ParseID converts a snowflake to its column value
func ParseID(id string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || n < 0 {
		return 0, errors.Wrapf(types.ErrInvalidID, "%q", id)
	}
	return n, nil
}

func formatID(n int64) string {
	return strconv.FormatInt(n, 10)
}

type registrationRow struct {
	serverID, adminRoleID, verifiedRoleID, alertChannelID int64
}

func toRow(reg types.ServerRegistration) (r registrationRow, err error) {
	if r.serverID, err = ParseID(reg.ServerID); err != nil {
		return
	}
	if r.adminRoleID, err = ParseID(reg.AdminRoleID); err != nil {
		return
	}
	if r.verifiedRoleID, err = ParseID(reg.VerifiedRoleID); err != nil {
		return
	}
	r.alertChannelID, err = ParseID(reg.AlertChannelID)
	return
}

func (r registrationRow) registration() *types.ServerRegistration {
	return &types.ServerRegistration{
		ServerID:       formatID(r.serverID),
		AdminRoleID:    formatID(r.adminRoleID),
		VerifiedRoleID: formatID(r.verifiedRoleID),
		AlertChannelID: formatID(r.alertChannelID),
	}
}
