package store

import (
	"context"

	"sentinel/types"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const pgUniqueViolation = "23505"

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS servers (
		guild_id BIGINT PRIMARY KEY,
		admin_role_id BIGINT NOT NULL,
		verified_role_id BIGINT NOT NULL,
		alert_channel_id BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS admin_users (
		user_id BIGINT PRIMARY KEY
	)`,
}

type postgresStore struct {
	db *pgxpool.Pool
}

// OpenPostgres connects a pool to dsn. Postgres handles concurrent writers itself so
// the pool keeps pgxpool's default size
func OpenPostgres(ctx context.Context, dsn string) (Store, error) {
	db, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, types.StorageFault(err, "connect postgres")
	}

	for _, stmt := range postgresSchema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			db.Close()
			return nil, types.StorageFault(err, "create tables")
		}
	}

	log.Info("Connected to postgres")
	return &postgresStore{db: db}, nil
}

func (s *postgresStore) GetRegistration(ctx context.Context, serverID string) (*types.ServerRegistration, error) {
	id, err := ParseID(serverID)
	if err != nil {
		return nil, err
	}

	var guildID, adminRole, verifiedRole, alertChannel pgtype.Int8
	err = s.db.QueryRow(ctx,
		"SELECT guild_id, admin_role_id, verified_role_id, alert_channel_id FROM servers WHERE guild_id = $1", id,
	).Scan(&guildID, &adminRole, &verifiedRole, &alertChannel)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, types.StorageFault(err, "get registration")
	}
	return registrationRow{guildID.Int, adminRole.Int, verifiedRole.Int, alertChannel.Int}.registration(), nil
}

func (s *postgresStore) InsertRegistration(ctx context.Context, reg types.ServerRegistration) error {
	r, err := toRow(reg)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx,
		"INSERT INTO servers (guild_id, admin_role_id, verified_role_id, alert_channel_id) VALUES ($1, $2, $3, $4)",
		r.serverID, r.adminRoleID, r.verifiedRoleID, r.alertChannelID,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return types.ErrAlreadyRegistered
	}
	if err != nil {
		return types.StorageFault(err, "insert registration")
	}
	return nil
}

func (s *postgresStore) ListRegistrations(ctx context.Context) ([]types.ServerRegistration, error) {
	rows, err := s.db.Query(ctx, "SELECT guild_id, admin_role_id, verified_role_id, alert_channel_id FROM servers ORDER BY guild_id")
	if err != nil {
		return nil, types.StorageFault(err, "list registrations")
	}
	defer rows.Close()

	regs := []types.ServerRegistration{}
	for rows.Next() {
		var guildID, adminRole, verifiedRole, alertChannel pgtype.Int8
		if err := rows.Scan(&guildID, &adminRole, &verifiedRole, &alertChannel); err != nil {
			return nil, types.StorageFault(err, "scan registration")
		}
		regs = append(regs, *registrationRow{guildID.Int, adminRole.Int, verifiedRole.Int, alertChannel.Int}.registration())
	}
	if err := rows.Err(); err != nil {
		return nil, types.StorageFault(err, "iterate registrations")
	}
	return regs, nil
}

func (s *postgresStore) ListOperatorIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, "SELECT user_id FROM admin_users")
	if err != nil {
		return nil, types.StorageFault(err, "list operators")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var userID pgtype.Int8
		if err := rows.Scan(&userID); err != nil {
			return nil, types.StorageFault(err, "scan operator")
		}
		if userID.Status != pgtype.Present {
			continue
		}
		ids = append(ids, formatID(userID.Int))
	}
	if err := rows.Err(); err != nil {
		return nil, types.StorageFault(err, "iterate operators")
	}
	return ids, nil
}

func (s *postgresStore) AddOperator(ctx context.Context, userID string) error {
	id, err := ParseID(userID)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, "INSERT INTO admin_users (user_id) VALUES ($1) ON CONFLICT DO NOTHING", id)
	return types.StorageFault(err, "add operator")
}

func (s *postgresStore) Close() error {
	s.db.Close()
	return nil
}
