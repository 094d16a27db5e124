package jobstore

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/shacharon/placesearch/internal/app/models"
)

// PGStore is the production Store, backed by Postgres via pgx/pgxpool with
// queries built through Masterminds/squirrel, the same pairing the teacher
// uses for its own Postgres-backed repositories.
type PGStore struct {
	pool *pgxpool.Pool
	psql sq.StatementBuilderType
}

// NewPGStore wraps an existing pgxpool.Pool. Schema migrations are applied
// separately via internal/db.RunMigrations before the store is used.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool, psql: sq.StatementBuilder.PlaceHolderFormat(sq.Dollar)}
}

func (s *PGStore) Create(ctx context.Context, job *models.Job) error {
	q, args, err := s.psql.Insert("jobs").
		Columns("request_id", "session_id", "status", "progress", "created_at", "updated_at", "idempotency_key").
		Values(job.RequestID, job.SessionID, job.Status, job.Progress, job.CreatedAt, job.UpdatedAt, job.IdempotencyKey).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build insert job")
	}
	_, err = s.pool.Exec(ctx, q, args...)
	return errors.Wrap(err, "insert job")
}

func (s *PGStore) SetStatus(ctx context.Context, requestID string, status models.JobStatus, progress *int) error {
	return s.withNonTerminalJob(ctx, requestID, func(tx pgx.Tx) error {
		upd := s.psql.Update("jobs").
			Set("status", status).
			Set("updated_at", time.Now()).
			Where(sq.Eq{"request_id": requestID})
		if progress != nil {
			upd = upd.Set("progress", *progress)
		}
		q, args, err := upd.ToSql()
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, q, args...)
		return err
	})
}

func (s *PGStore) SetResult(ctx context.Context, requestID string, result []byte) error {
	q, args, err := s.psql.Update("jobs").
		Set("result", result).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"request_id": requestID}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build update result")
	}
	tag, err := s.pool.Exec(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "update result")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) SetError(ctx context.Context, requestID string, kind models.ErrorKind, message, route string) error {
	return s.withNonTerminalJob(ctx, requestID, func(tx pgx.Tx) error {
		q, args, err := s.psql.Update("jobs").
			Set("status", models.JobDoneFailed).
			Set("error_kind", kind).
			Set("error_message", message).
			Set("error_route", route).
			Set("updated_at", time.Now()).
			Where(sq.Eq{"request_id": requestID}).
			ToSql()
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, q, args...)
		return err
	})
}

func (s *PGStore) UpdateHeartbeat(ctx context.Context, requestID string) error {
	return s.withNonTerminalJob(ctx, requestID, func(tx pgx.Tx) error {
		q, args, err := s.psql.Update("jobs").
			Set("updated_at", time.Now()).
			Where(sq.Eq{"request_id": requestID}).
			ToSql()
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, q, args...)
		return err
	})
}

// withNonTerminalJob re-reads the job inside the write's transaction before
// applying fn, so a racing write that already made the job terminal is
// never overwritten — the spec's "re-read before writing" requirement.
func (s *PGStore) withNonTerminalJob(ctx context.Context, requestID string, fn func(pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback(ctx)

	var status models.JobStatus
	err = tx.QueryRow(ctx, `SELECT status FROM jobs WHERE request_id = $1 FOR UPDATE`, requestID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return errors.Wrap(err, "select job for update")
	}
	if status.IsTerminal() {
		return nil
	}
	if err := fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(ctx), "commit")
}

// MarkStaleIfRunning re-reads the job's status under a row lock and only
// transitions it when still RUNNING, so this is safe under concurrent
// callers: the loser of the race observes a non-RUNNING status and returns
// false without writing anything.
func (s *PGStore) MarkStaleIfRunning(ctx context.Context, requestID, message string, resultJSON []byte) (bool, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback(ctx)

	var status models.JobStatus
	err = tx.QueryRow(ctx, `SELECT status FROM jobs WHERE request_id = $1 FOR UPDATE`, requestID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, errors.Wrap(err, "select job for update")
	}
	if status != models.JobRunning {
		return false, nil
	}

	q, args, err := s.psql.Update("jobs").
		Set("status", models.JobDoneFailed).
		Set("error_kind", models.ErrStaleRunning).
		Set("error_message", message).
		Set("error_route", "stale_check").
		Set("result", resultJSON).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"request_id": requestID}).
		ToSql()
	if err != nil {
		return false, errors.Wrap(err, "build stale update")
	}
	if _, err := tx.Exec(ctx, q, args...); err != nil {
		return false, errors.Wrap(err, "exec stale update")
	}
	return true, errors.Wrap(tx.Commit(ctx), "commit")
}

func (s *PGStore) FindByIdempotencyKey(ctx context.Context, key string) (*models.Job, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT request_id, session_id, status, progress, created_at, updated_at, idempotency_key
		FROM jobs WHERE idempotency_key = $1 ORDER BY created_at DESC LIMIT 1`, key)
	return scanJob(row)
}

func (s *PGStore) SetCandidatePool(ctx context.Context, requestID string, pool *models.CandidatePool) error {
	data, err := json.Marshal(pool)
	if err != nil {
		return errors.Wrap(err, "marshal candidate pool")
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO candidate_pools (request_id, pool)
		VALUES ($1, $2)
		ON CONFLICT (request_id) DO UPDATE SET pool = EXCLUDED.pool`, requestID, data)
	return errors.Wrap(err, "upsert candidate pool")
}

func (s *PGStore) GetCandidatePool(ctx context.Context, requestID, sessionID string) (*models.CandidatePool, error) {
	var ownerSession string
	err := s.pool.QueryRow(ctx, `SELECT session_id FROM jobs WHERE request_id = $1`, requestID).Scan(&ownerSession)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup job owner")
	}
	if ownerSession != sessionID {
		return nil, ErrNotFound
	}

	var data []byte
	err = s.pool.QueryRow(ctx, `SELECT pool FROM candidate_pools WHERE request_id = $1`, requestID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "select candidate pool")
	}
	var pool models.CandidatePool
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, errors.Wrap(err, "unmarshal candidate pool")
	}
	return &pool, nil
}

func (s *PGStore) Get(ctx context.Context, requestID, sessionID string) (*models.Job, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT request_id, session_id, status, progress, created_at, updated_at, idempotency_key,
		       result, error_kind, error_message, error_route
		FROM jobs WHERE request_id = $1`, requestID)

	job, err := scanJobWithResult(row)
	if err != nil {
		return nil, err
	}
	if job.SessionID != sessionID {
		return nil, ErrNotFound
	}
	return job, nil
}

func scanJob(row pgx.Row) (*models.Job, error) {
	var job models.Job
	err := row.Scan(&job.RequestID, &job.SessionID, &job.Status, &job.Progress, &job.CreatedAt, &job.UpdatedAt, &job.IdempotencyKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "scan job")
	}
	return &job, nil
}

func scanJobWithResult(row pgx.Row) (*models.Job, error) {
	var job models.Job
	var errKind, errMsg, errRoute *string
	err := row.Scan(&job.RequestID, &job.SessionID, &job.Status, &job.Progress, &job.CreatedAt, &job.UpdatedAt,
		&job.IdempotencyKey, &job.Result, &errKind, &errMsg, &errRoute)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "scan job")
	}
	if errKind != nil {
		job.Error = &models.JobError{Kind: models.ErrorKind(*errKind)}
		if errMsg != nil {
			job.Error.Message = *errMsg
		}
		if errRoute != nil {
			job.Error.Route = *errRoute
		}
	}
	return &job, nil
}
