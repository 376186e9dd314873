package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"registrar/internal/identity/models"
	"registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// PostgresStore persists the request ledger in PostgreSQL. The primary key
// on (caller_id, request_id) is the storage-level uniqueness constraint the
// idempotency guarantee rests on; no additional locking is used.
type PostgresStore struct {
	db    *sql.DB
	clock func() time.Time
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithPostgresClock sets the clock function for testability.
func WithPostgresClock(clock func() time.Time) PostgresOption {
	return func(s *PostgresStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewPostgres constructs a PostgreSQL-backed ledger store.
func NewPostgres(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const ledgerColumns = `caller_id, request_id, candidate_id, trn, status, withheld, in_flight, lease_expires_at, opt_out_token, created_at, updated_at`

func (s *PostgresStore) GetOrCreate(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID) (*models.LedgerEntry, bool, error) {
	now := s.clock()
	// DO NOTHING makes the insert race-safe without error inspection: the
	// loser gets no row back and re-reads the winner's row below.
	query := `
		INSERT INTO trn_request_ledger (caller_id, request_id, status, withheld, created_at, updated_at)
		VALUES ($1, $2, 'pending', FALSE, $3, $3)
		ON CONFLICT (caller_id, request_id) DO NOTHING
		RETURNING ` + ledgerColumns
	entry, err := scanLedgerEntry(s.db.QueryRowContext(ctx, query, string(callerID), string(requestID), now))
	if err == nil {
		return entry, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("insert ledger entry: %w", err)
	}

	entry, err = s.Get(ctx, callerID, requestID)
	if err != nil {
		return nil, false, err
	}
	return entry, false, nil
}

func (s *PostgresStore) Get(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID) (*models.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM trn_request_ledger WHERE caller_id = $1 AND request_id = $2`
	entry, err := scanLedgerEntry(s.db.QueryRowContext(ctx, query, string(callerID), string(requestID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ledger entry %s/%s: %w", callerID, requestID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return entry, nil
}

// Claim is a conditional update: the single row it touches is the lease.
// Two racing claimers serialize on the row lock and only the first sees a
// free lease, so losers get no row back.
func (s *PostgresStore) Claim(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID) (*models.LedgerEntry, error) {
	now := s.clock()
	query := `
		UPDATE trn_request_ledger
		SET in_flight = TRUE, lease_expires_at = $3, updated_at = $4
		WHERE caller_id = $1 AND request_id = $2
		  AND status = 'pending' AND NOT withheld
		  AND (NOT in_flight OR lease_expires_at <= $4)
		RETURNING ` + ledgerColumns
	entry, err := scanLedgerEntry(s.db.QueryRowContext(ctx, query,
		string(callerID), string(requestID), now.Add(LeaseDuration), now))
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("claim ledger entry: %w", err)
	}
	// No claimable row: either the key is missing or another holder has it.
	if _, err := s.Get(ctx, callerID, requestID); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("ledger entry %s/%s is settled or being resolved: %w", callerID, requestID, sentinel.ErrConflict)
}

func (s *PostgresStore) Release(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID) error {
	query := `
		UPDATE trn_request_ledger
		SET in_flight = FALSE, lease_expires_at = NULL, updated_at = $3
		WHERE caller_id = $1 AND request_id = $2 AND in_flight
	`
	if _, err := s.db.ExecContext(ctx, query, string(callerID), string(requestID), s.clock()); err != nil {
		return fmt.Errorf("release ledger lease: %w", err)
	}
	return nil
}

func (s *PostgresStore) AttachCandidate(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID, candidateID domain.CandidateID) error {
	query := `
		UPDATE trn_request_ledger
		SET candidate_id = $3, in_flight = FALSE, lease_expires_at = NULL, updated_at = $4
		WHERE caller_id = $1 AND request_id = $2 AND status = 'pending'
	`
	if err := s.updatePending(ctx, callerID, requestID, query, uuid.UUID(candidateID), s.clock()); err != nil {
		return fmt.Errorf("attach candidate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Withhold(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID, candidateID *domain.CandidateID) error {
	var id any
	if candidateID != nil {
		id = uuid.UUID(*candidateID)
	}
	query := `
		UPDATE trn_request_ledger
		SET withheld = TRUE, candidate_id = COALESCE($3, candidate_id), in_flight = FALSE, lease_expires_at = NULL, updated_at = $4
		WHERE caller_id = $1 AND request_id = $2 AND status = 'pending'
	`
	if err := s.updatePending(ctx, callerID, requestID, query, id, s.clock()); err != nil {
		return fmt.Errorf("withhold ledger entry: %w", err)
	}
	return nil
}

// updatePending runs a pending-only update and distinguishes "row missing"
// from "row already completed": the former is an error, the latter a no-op.
func (s *PostgresStore) updatePending(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID, query string, args ...any) error {
	all := append([]any{string(callerID), string(requestID)}, args...)
	result, err := s.db.ExecContext(ctx, query, all...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}
	if _, err := s.Get(ctx, callerID, requestID); err != nil {
		return err
	}
	return nil
}

func (s *PostgresStore) Complete(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID, candidateID domain.CandidateID, trn domain.TRN, optOutToken string) (*models.LedgerEntry, error) {
	// Conditional update: only a Pending row transitions. A concurrent
	// completer that lost the race falls through to the re-read, so the
	// first writer's identifier is never overwritten.
	query := `
		UPDATE trn_request_ledger
		SET status = 'completed', withheld = FALSE, in_flight = FALSE, lease_expires_at = NULL, candidate_id = $3, trn = $4, opt_out_token = $5, updated_at = $6
		WHERE caller_id = $1 AND request_id = $2 AND status = 'pending'
		RETURNING ` + ledgerColumns
	entry, err := scanLedgerEntry(s.db.QueryRowContext(ctx, query,
		string(callerID), string(requestID), uuid.UUID(candidateID), string(trn), optOutToken, s.clock()))
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("complete ledger entry: %w", err)
	}
	return s.Get(ctx, callerID, requestID)
}

type ledgerRow interface {
	Scan(dest ...any) error
}

func scanLedgerEntry(row ledgerRow) (*models.LedgerEntry, error) {
	var (
		entry        models.LedgerEntry
		callerID     string
		requestID    string
		candidateID  sql.Null[uuid.UUID]
		trn          sql.NullString
		status       string
		leaseExpires sql.NullTime
		optOutToken  sql.NullString
	)
	if err := row.Scan(&callerID, &requestID, &candidateID, &trn, &status, &entry.Withheld, &entry.InFlight, &leaseExpires, &optOutToken, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		return nil, err
	}
	if leaseExpires.Valid {
		entry.LeaseExpiresAt = leaseExpires.Time
	}
	entry.CallerID = domain.CallerID(callerID)
	entry.RequestID = domain.RequestID(requestID)
	entry.Status = models.LedgerStatus(status)
	if candidateID.Valid {
		id := domain.CandidateID(candidateID.V)
		entry.CandidateID = &id
	}
	if trn.Valid {
		entry.TRN = domain.TRN(trn.String)
	}
	if optOutToken.Valid {
		entry.OptOutToken = optOutToken.String
	}
	return &entry, nil
}
