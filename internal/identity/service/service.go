// Package service implements the allocation coordinator: the single
// orchestration path from a submission to a ledger resolution. All policy
// lives in the pure match/classify/review packages; this package sequences
// registry calls and ledger writes around them.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"registrar/internal/audit"
	"registrar/internal/identity/classify"
	"registrar/internal/identity/ledger"
	"registrar/internal/identity/lookup"
	"registrar/internal/identity/match"
	"registrar/internal/identity/metrics"
	"registrar/internal/identity/models"
	"registrar/internal/identity/review"
	"registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/secrets"
)

// Coordinator resolves submissions into ledger entries. Registry failures
// always leave the ledger entry untouched so a retry can resume; ledger
// writes are ordered so that no observable state ever regresses.
type Coordinator struct {
	registry RegistryClient
	ledger   ledger.Store
	chain    *lookup.Chain
	audit    AuditPublisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
	clock    func() time.Time
	tracer   trace.Tracer
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAuditPublisher sets the audit sink.
func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(c *Coordinator) {
		c.audit = publisher
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(c *Coordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithChain overrides the default strong-key lookup chain.
func WithChain(chain *lookup.Chain) Option {
	return func(c *Coordinator) {
		if chain != nil {
			c.chain = chain
		}
	}
}

// New constructs a Coordinator over the registry client and ledger store.
func New(registry RegistryClient, store ledger.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		registry: registry,
		ledger:   store,
		chain:    lookup.DefaultChain(registry),
		logger:   slog.Default(),
		clock:    time.Now,
		tracer:   otel.Tracer("registrar/internal/identity/service"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit is the create-or-fetch entry point. The first call for a
// (caller, request) key runs the resolution flow; replays return whatever
// the ledger already decided without touching the registry.
//
// Outcomes:
//   - completed entry, nil error: identifier confirmed (fresh or replay)
//   - pending entry, nil error: candidate attached, registry allocation in flight
//   - pending entry, CodeWithheld: held for human review
//   - pending entry, CodeConflict: unresolvable ambiguity
//   - nil entry, CodeInvalidInput / CodeUnavailable / CodeInternal
func (c *Coordinator) Submit(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID, attrs models.IdentityAttributes) (*models.LedgerEntry, error) {
	ctx, span := c.tracer.Start(ctx, "coordinator.Submit", trace.WithAttributes(
		attribute.String("caller_id", callerID.String()),
		attribute.String("request_id", requestID.String()),
	))
	defer span.End()

	start := c.clock()
	defer func() {
		c.metrics.ObserveSubmitLatency(c.clock().Sub(start))
	}()

	if reasons := attrs.Validate(c.clock()); len(reasons) > 0 {
		c.metrics.IncrementOutcome("invalid")
		return nil, dErrors.New(dErrors.CodeInvalidInput, "submitted attributes failed validation").
			WithDetails(models.ReasonStrings(reasons)...)
	}

	entry, created, err := c.ledger.GetOrCreate(ctx, callerID, requestID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "ledger read failed")
	}
	if !created {
		if result, err := c.replay(ctx, entry); result != nil || err != nil {
			return result, err
		}
		// Pending with nothing attached: a previous attempt failed before
		// reaching a decision. Resume the resolution flow below.
	}

	// Claim the resolution lease so a concurrent Submit for the same new key
	// never also runs matching or allocates an identity. The claim loser
	// reports the entry's current state and leaves the winner alone.
	claimed, err := c.ledger.Claim(ctx, callerID, requestID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "ledger claim failed")
		}
		current, getErr := c.ledger.Get(ctx, callerID, requestID)
		if getErr != nil {
			return nil, dErrors.Wrap(getErr, dErrors.CodeInternal, "ledger read failed")
		}
		if result, err := c.replay(ctx, current); result != nil || err != nil {
			return result, err
		}
		return current, nil
	}

	result, err := c.resolve(ctx, claimed, attrs)
	if err != nil {
		c.releaseLease(ctx, callerID, requestID)
	}
	return result, err
}

// replay answers a Submit from the ledger alone when the entry is already
// settled or awaiting the registry. (nil, nil) means the entry is bare
// Pending and the resolution flow should run.
func (c *Coordinator) replay(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error) {
	switch {
	case entry.Completed():
		return entry, nil
	case entry.Withheld && entry.CandidateID != nil:
		return entry, dErrors.New(dErrors.CodeWithheld, "submission is held for human review")
	case entry.Withheld:
		return entry, dErrors.New(dErrors.CodeConflict, "submission matches multiple records and needs human resolution")
	case entry.AwaitingRegistry():
		return c.pollCandidate(ctx, entry)
	}
	return nil, nil
}

// releaseLease is best-effort: a lease that cannot be freed expires on its
// own, at the cost of a delayed retry.
func (c *Coordinator) releaseLease(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID) {
	if err := c.ledger.Release(ctx, callerID, requestID); err != nil {
		c.logger.WarnContext(ctx, "lease release failed",
			"caller_id", callerID.String(),
			"request_id", requestID.String(),
			"error", err)
	}
}

// Get is the side-effect-free polling read, except that an entry awaiting
// registry allocation re-checks the candidate and completes when the
// identifier has appeared.
func (c *Coordinator) Get(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID) (*models.LedgerEntry, error) {
	ctx, span := c.tracer.Start(ctx, "coordinator.Get", trace.WithAttributes(
		attribute.String("caller_id", callerID.String()),
		attribute.String("request_id", requestID.String()),
	))
	defer span.End()

	entry, err := c.ledger.Get(ctx, callerID, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "no submission for this request id")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "ledger read failed")
	}
	if entry.AwaitingRegistry() {
		return c.pollCandidate(ctx, entry)
	}
	return entry, nil
}

func (c *Coordinator) resolve(ctx context.Context, entry *models.LedgerEntry, attrs models.IdentityAttributes) (*models.LedgerEntry, error) {
	chainStart := c.clock()
	resolved, err := c.chain.Resolve(ctx, attrs)
	c.metrics.ObserveLookupLatency("strong_key_chain", c.clock().Sub(chainStart))
	if err != nil {
		return nil, c.unavailable(err, "strong-key lookup failed")
	}
	if len(resolved) > 1 {
		return c.conflict(ctx, entry)
	}
	if len(resolved) == 1 {
		return c.attach(ctx, entry, resolved[0], "unique_attach")
	}

	searchStart := c.clock()
	candidates, err := c.registry.FindByAttributes(ctx, attrs)
	c.metrics.ObserveLookupLatency("attributes", c.clock().Sub(searchStart))
	if err != nil {
		return nil, c.unavailable(err, "candidate search failed")
	}

	matched := make([][]models.AttributeName, len(candidates))
	for i, candidate := range candidates {
		matched[i] = match.Compare(attrs, candidate.Attributes)
	}

	result := classify.Classify(candidates, matched)
	switch result.Outcome {
	case classify.OutcomeUnique:
		record, err := c.registry.CreateIdentity(ctx, attrs)
		if err != nil {
			return nil, c.unavailable(err, "identity creation failed")
		}
		return c.attach(ctx, entry, *record, "unique")

	case classify.OutcomeUniqueAttach:
		return c.attach(ctx, entry, *result.Candidate, "unique_attach")

	case classify.OutcomePotentialDuplicate:
		return c.withholdForReview(ctx, entry, attrs, result)

	default:
		return c.conflict(ctx, entry)
	}
}

// attach binds the entry to a candidate and completes it when the candidate
// already carries an issued identifier. The attach is written first so a
// crash between the two writes leaves a resumable entry, never a lost
// decision.
func (c *Coordinator) attach(ctx context.Context, entry *models.LedgerEntry, candidate models.CandidateRecord, outcome string) (*models.LedgerEntry, error) {
	if err := c.ledger.AttachCandidate(ctx, entry.CallerID, entry.RequestID, candidate.ID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "ledger write failed")
	}
	c.metrics.IncrementOutcome(outcome)

	if candidate.TRN.IsZero() {
		refreshed, err := c.ledger.Get(ctx, entry.CallerID, entry.RequestID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "ledger read failed")
		}
		c.emit(ctx, refreshed, audit.OutcomeAttached)
		return refreshed, nil
	}

	return c.complete(ctx, entry, candidate.ID, candidate.TRN)
}

func (c *Coordinator) complete(ctx context.Context, entry *models.LedgerEntry, candidateID domain.CandidateID, trn domain.TRN) (*models.LedgerEntry, error) {
	token, err := secrets.Generate()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "token generation failed")
	}
	completed, err := c.ledger.Complete(ctx, entry.CallerID, entry.RequestID, candidateID, trn, token)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "ledger write failed")
	}
	c.emit(ctx, completed, audit.OutcomeCompleted)
	return completed, nil
}

func (c *Coordinator) withholdForReview(ctx context.Context, entry *models.LedgerEntry, attrs models.IdentityAttributes, result classify.Result) (*models.LedgerEntry, error) {
	task := review.Build(result.Candidate.ID, result.Matched, attrs, result.Candidate.Flags, c.clock())
	if _, err := c.registry.CreateReviewTask(ctx, task); err != nil {
		// Entry stays untouched: a retry must raise the task before the
		// submission is observably withheld.
		return nil, c.unavailable(err, "review task creation failed")
	}
	if err := c.ledger.Withhold(ctx, entry.CallerID, entry.RequestID, &result.Candidate.ID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "ledger write failed")
	}
	refreshed, err := c.ledger.Get(ctx, entry.CallerID, entry.RequestID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "ledger read failed")
	}
	c.metrics.IncrementOutcome("potential_duplicate")
	c.metrics.IncrementReviewTasksRaised()
	c.emit(ctx, refreshed, audit.OutcomeWithheld)
	return refreshed, dErrors.New(dErrors.CodeWithheld, "submission is held for human review")
}

func (c *Coordinator) conflict(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error) {
	if err := c.ledger.Withhold(ctx, entry.CallerID, entry.RequestID, nil); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "ledger write failed")
	}
	refreshed, err := c.ledger.Get(ctx, entry.CallerID, entry.RequestID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "ledger read failed")
	}
	c.metrics.IncrementOutcome("conflict")
	c.emit(ctx, refreshed, audit.OutcomeConflict)
	return refreshed, dErrors.New(dErrors.CodeConflict, "submission matches multiple records and needs human resolution")
}

// pollCandidate re-checks a candidate whose allocation was in flight when
// the entry was attached. Registry unavailability is not surfaced here; the
// entry simply stays pending for the next poll.
func (c *Coordinator) pollCandidate(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error) {
	record, err := c.registry.GetCandidate(ctx, *entry.CandidateID)
	if err != nil {
		c.logger.WarnContext(ctx, "candidate re-check failed",
			"caller_id", entry.CallerID.String(),
			"request_id", entry.RequestID.String(),
			"candidate_id", entry.CandidateID.String(),
			"error", err)
		return entry, nil
	}
	if record.TRN.IsZero() {
		return entry, nil
	}
	return c.complete(ctx, entry, record.ID, record.TRN)
}

func (c *Coordinator) unavailable(err error, message string) error {
	c.metrics.IncrementOutcome("unavailable")
	return dErrors.Wrap(err, dErrors.CodeUnavailable, message)
}

func (c *Coordinator) emit(ctx context.Context, entry *models.LedgerEntry, outcome audit.Outcome) {
	if c.audit == nil {
		return
	}
	event := audit.Event{
		At:        c.clock(),
		CallerID:  entry.CallerID,
		RequestID: entry.RequestID,
		Outcome:   outcome,
	}
	if entry.CandidateID != nil {
		id := *entry.CandidateID
		event.CandidateID = &id
	}
	if err := c.audit.Publish(ctx, event); err != nil {
		c.logger.WarnContext(ctx, "audit publish failed",
			"caller_id", entry.CallerID.String(),
			"request_id", entry.RequestID.String(),
			"outcome", string(outcome),
			"error", err)
	}
}
