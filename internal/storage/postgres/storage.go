package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/storage"
)

const uniqueViolation = "23505"

// Storage is a PostgreSQL-backed implementation of the storage interface
type Storage struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New connects to PostgreSQL and applies migrations
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Storage, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Storage{pool: pool, logger: logger}
	if err := s.RunMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the connection pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Account operations

const accountColumns = `id, username, password_hash, role, name, email, team, status, last_login, created_at, updated_at`

func (s *Storage) SaveAccount(ctx context.Context, a *model.Account) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			password_hash = EXCLUDED.password_hash,
			role = EXCLUDED.role,
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			team = EXCLUDED.team,
			status = EXCLUDED.status,
			last_login = EXCLUDED.last_login,
			updated_at = EXCLUDED.updated_at`,
		a.ID, a.Username, a.PasswordHash, a.Role, a.Name, a.Email, a.Team, a.Status, a.LastLogin, a.CreatedAt, a.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return model.ErrUsernameExists
	}
	return err
}

func (s *Storage) TouchLastLogin(ctx context.Context, id model.AccountID, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE accounts SET last_login = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Role, &a.Name, &a.Email, &a.Team, &a.Status, &a.LastLogin, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	return scanAccount(s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	return scanAccount(s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username))
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	storage.SortAccounts(accounts)
	return accounts, nil
}

func (s *Storage) DeleteAccount(ctx context.Context, id model.AccountID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	return err
}

// Player operations

const playerColumns = `id, ncc_ref, name, belt_rank, team, gender, birthdate, address, contact_number, email,
	emergency_contact, emergency_number, next_belt, last_promotion_exam, photo_url, required_forms,
	achievements, competitions, medals, created_at`

func (s *Storage) SavePlayer(ctx context.Context, p *model.Player) error {
	achievements := p.Achievements
	if achievements == nil {
		achievements = []string{}
	}
	competitions := p.Stats.Competitions
	if competitions == nil {
		competitions = []string{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO players (`+playerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO UPDATE SET
			ncc_ref = EXCLUDED.ncc_ref,
			name = EXCLUDED.name,
			belt_rank = EXCLUDED.belt_rank,
			team = EXCLUDED.team,
			gender = EXCLUDED.gender,
			birthdate = EXCLUDED.birthdate,
			address = EXCLUDED.address,
			contact_number = EXCLUDED.contact_number,
			email = EXCLUDED.email,
			emergency_contact = EXCLUDED.emergency_contact,
			emergency_number = EXCLUDED.emergency_number,
			next_belt = EXCLUDED.next_belt,
			last_promotion_exam = EXCLUDED.last_promotion_exam,
			photo_url = EXCLUDED.photo_url,
			required_forms = EXCLUDED.required_forms,
			achievements = EXCLUDED.achievements,
			competitions = EXCLUDED.competitions,
			medals = EXCLUDED.medals`,
		p.ID, p.NCCRef, p.Name, p.BeltRank, p.Team, p.Gender, p.Birthdate, p.Address, p.ContactNumber, p.Email,
		p.EmergencyContact, p.EmergencyNumber, p.NextBelt, p.LastPromotionExam, p.PhotoURL, p.RequiredForms,
		achievements, competitions, p.Stats.Medals, p.CreatedAt,
	)
	return err
}

func scanPlayer(row pgx.Row) (*model.Player, error) {
	var p model.Player
	err := row.Scan(&p.ID, &p.NCCRef, &p.Name, &p.BeltRank, &p.Team, &p.Gender, &p.Birthdate, &p.Address,
		&p.ContactNumber, &p.Email, &p.EmergencyContact, &p.EmergencyNumber, &p.NextBelt, &p.LastPromotionExam,
		&p.PhotoURL, &p.RequiredForms, &p.Achievements, &p.Stats.Competitions, &p.Stats.Medals, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return scanPlayer(s.pool.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id))
}

func (s *Storage) FindPlayers(ctx context.Context, q model.PlayerQuery) ([]*model.Player, error) {
	var (
		where []string
		args  []any
	)
	if t := q.Team.Normalized(); t != model.NoTeam {
		args = append(args, string(t))
		where = append(where, fmt.Sprintf("upper(trim(team)) = $%d", len(args)))
	}
	if q.NCCRef != "" {
		args = append(args, q.NCCRef)
		where = append(where, fmt.Sprintf("ncc_ref = $%d", len(args)))
	}
	if q.Name != "" {
		args = append(args, q.Name)
		where = append(where, fmt.Sprintf("name = $%d", len(args)))
	}

	sql := `SELECT ` + playerColumns + ` FROM players`
	if len(where) > 0 {
		sql += ` WHERE ` + strings.Join(where, " AND ")
	}
	sql += ` ORDER BY name, id`

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []*model.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	return err
}

// Activity log operations

func (s *Storage) AppendActivity(ctx context.Context, e *model.ActivityLogEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO activity_log (id, user_id, user_role, user_name, activity, details, logged_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.UserID, e.UserRole, e.UserName, e.Activity, e.Details, e.Timestamp,
	)
	return err
}

func (s *Storage) RecentActivity(ctx context.Context, limit int) ([]*model.ActivityLogEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, user_role, user_name, activity, details, logged_at
		FROM activity_log ORDER BY seq DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*model.ActivityLogEntry
	for rows.Next() {
		var e model.ActivityLogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserRole, &e.UserName, &e.Activity, &e.Details, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (s *Storage) ClearActivity(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM activity_log`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// Session operations. Expired rows are ignored on read and purged on write.

func (s *Storage) SaveSession(ctx context.Context, sess *model.Session, ttl time.Duration) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`); err != nil {
		s.logger.Warn("failed to purge expired sessions", slog.String("error", err.Error()))
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (token, user_id, username, name, role, team, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (token) DO UPDATE SET status = EXCLUDED.status, expires_at = EXCLUDED.expires_at`,
		sess.Token, sess.UserID, sess.Username, sess.Name, sess.Role, sess.Team, sess.Status, sess.CreatedAt,
		time.Now().Add(ttl),
	)
	return err
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var sess model.Session
	err := s.pool.QueryRow(ctx, `
		SELECT token, user_id, username, name, role, team, status, created_at
		FROM sessions WHERE token = $1 AND expires_at >= now()`, token,
	).Scan(&sess.Token, &sess.UserID, &sess.Username, &sess.Name, &sess.Role, &sess.Team, &sess.Status, &sess.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

func (s *Storage) ClearSessions(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// reset empties every table; used by tests
func (s *Storage) reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE accounts, players, activity_log, sessions`)
	return err
}
