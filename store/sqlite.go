package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	"sentinel/types"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS servers (
		guild_id INTEGER PRIMARY KEY,
		admin_role_id INTEGER NOT NULL,
		verified_role_id INTEGER NOT NULL,
		alert_channel_id INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS admin_users (
		user_id INTEGER PRIMARY KEY
	)`,
}

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database file at path.
//
// SQLite has no concurrent writers, so the pool holds a single connection: every
// statement, including the scan of its result, runs alone and the others queue on
// database/sql's connection wait
func OpenSQLite(ctx context.Context, path string) (Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "create database directory")
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, types.StorageFault(err, "open sqlite")
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, types.StorageFault(err, "ping sqlite")
	}

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, types.StorageFault(err, "create tables")
		}
	}

	log.WithFields(log.Fields{
		"path": path,
	}).Info("Connected to sqlite")
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) GetRegistration(ctx context.Context, serverID string) (*types.ServerRegistration, error) {
	id, err := ParseID(serverID)
	if err != nil {
		return nil, err
	}

	var r registrationRow
	err = s.db.QueryRowContext(ctx,
		"SELECT guild_id, admin_role_id, verified_role_id, alert_channel_id FROM servers WHERE guild_id = ?", id,
	).Scan(&r.serverID, &r.adminRoleID, &r.verifiedRoleID, &r.alertChannelID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, types.StorageFault(err, "get registration")
	}
	return r.registration(), nil
}

func (s *sqliteStore) InsertRegistration(ctx context.Context, reg types.ServerRegistration) error {
	r, err := toRow(reg)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO servers (guild_id, admin_role_id, verified_role_id, alert_channel_id) VALUES (?, ?, ?, ?)",
		r.serverID, r.adminRoleID, r.verifiedRoleID, r.alertChannelID,
	)
	if isSQLiteConstraint(err) {
		return types.ErrAlreadyRegistered
	}
	if err != nil {
		return types.StorageFault(err, "insert registration")
	}
	return nil
}

func (s *sqliteStore) ListRegistrations(ctx context.Context) ([]types.ServerRegistration, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT guild_id, admin_role_id, verified_role_id, alert_channel_id FROM servers ORDER BY guild_id")
	if err != nil {
		return nil, types.StorageFault(err, "list registrations")
	}
	defer rows.Close()

	regs := []types.ServerRegistration{}
	for rows.Next() {
		var r registrationRow
		if err := rows.Scan(&r.serverID, &r.adminRoleID, &r.verifiedRoleID, &r.alertChannelID); err != nil {
			return nil, types.StorageFault(err, "scan registration")
		}
		regs = append(regs, *r.registration())
	}
	if err := rows.Err(); err != nil {
		return nil, types.StorageFault(err, "iterate registrations")
	}
	return regs, nil
}

func (s *sqliteStore) ListOperatorIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT user_id FROM admin_users")
	if err != nil {
		return nil, types.StorageFault(err, "list operators")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, types.StorageFault(err, "scan operator")
		}
		ids = append(ids, formatID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, types.StorageFault(err, "iterate operators")
	}
	return ids, nil
}

func (s *sqliteStore) AddOperator(ctx context.Context, userID string) error {
	id, err := ParseID(userID)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, "INSERT INTO admin_users (user_id) VALUES (?) ON CONFLICT DO NOTHING", id)
	return types.StorageFault(err, "add operator")
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func isSQLiteConstraint(err error) bool {
	if err == nil {
		return false
	}
	var sErr *sqlite.Error
	if errors.As(err, &sErr) {
		switch sErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
