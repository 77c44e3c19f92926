package ledger

import (
	"context"
	"time"

	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ledger holds what every mutating service shares: the transaction scope, the
// tenant lock, the batch selection rule and the metrics sink.
type Ledger struct {
	scope           TransactionScope
	reads           Repositories
	locker          TenantLocker
	recorder        Recorder
	selector        inventory.BatchSelector
	logger          *zap.Logger
	rejectBelowCost bool
}

// Option configures a Ledger
type Option func(*Ledger)

// WithLocker sets the cross-process tenant lock
func WithLocker(l TenantLocker) Option {
	return func(lg *Ledger) {
		if l != nil {
			lg.locker = l
		}
	}
}

// WithRecorder sets the metrics sink
func WithRecorder(r Recorder) Option {
	return func(lg *Ledger) {
		if r != nil {
			lg.recorder = r
		}
	}
}

// WithBatchSelector replaces the single-batch FIFO rule
func WithBatchSelector(s inventory.BatchSelector) Option {
	return func(lg *Ledger) {
		if s != nil {
			lg.selector = s
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(lg *Ledger) {
		if l != nil {
			lg.logger = l
		}
	}
}

// WithRejectBelowCost makes sales priced under cost fail with BELOW_COST
func WithRejectBelowCost(reject bool) Option {
	return func(lg *Ledger) {
		lg.rejectBelowCost = reject
	}
}

// New creates a Ledger. reads serves queries outside transactions.
func New(scope TransactionScope, reads Repositories, opts ...Option) *Ledger {
	lg := &Ledger{
		scope:    scope,
		reads:    reads,
		locker:   NoopLocker{},
		recorder: NopRecorder{},
		selector: inventory.FIFOSingleBatch{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(lg)
	}
	return lg
}

// Reads returns the non-transactional repositories
func (lg *Ledger) Reads() Repositories {
	return lg.reads
}

// mutation is the state of one ledger transaction
type mutation struct {
	Repositories
	tenantID  uuid.UUID
	logger    *zap.Logger
	varieties map[uuid.UUID]*inventory.Variety
	order     []uuid.UUID
	movements []*inventory.Movement
	sales     []decimal.Decimal
}

// mutate runs fn inside the tenant lock and one transaction. Varieties touched
// through the mutation are saved with their version check before commit.
func (lg *Ledger) mutate(ctx context.Context, tenantID uuid.UUID, fn func(m *mutation) error) error {
	release, err := lg.locker.Lock(ctx, tenantID)
	if err != nil {
		return err
	}
	defer release()

	var done *mutation
	err = lg.scope.Execute(ctx, func(repos Repositories) error {
		m := &mutation{
			Repositories: repos,
			tenantID:     tenantID,
			logger:       lg.logger,
			varieties:    make(map[uuid.UUID]*inventory.Variety),
		}
		if err := fn(m); err != nil {
			return err
		}
		for _, id := range m.order {
			if err := repos.VarietyRepo().SaveWithLock(ctx, m.varieties[id]); err != nil {
				return err
			}
		}
		done = m
		return nil
	})
	if err != nil {
		return err
	}

	for _, mv := range done.movements {
		lg.recorder.MovementRecorded(ctx, mv.Type, mv.Quantity)
	}
	for _, q := range done.sales {
		lg.recorder.SaleRecorded(ctx, q)
	}
	return nil
}

// track registers a locked variety so it is saved at commit. Tracking the
// same row twice returns the first instance.
func (m *mutation) track(v *inventory.Variety) *inventory.Variety {
	if existing, ok := m.varieties[v.ID]; ok {
		return existing
	}
	m.varieties[v.ID] = v
	m.order = append(m.order, v.ID)
	return v
}

// lockVariety reads and locks a variety of the tenant
func (m *mutation) lockVariety(ctx context.Context, id uuid.UUID) (*inventory.Variety, error) {
	if v, ok := m.varieties[id]; ok {
		return v, nil
	}
	v, err := m.VarietyRepo().FindByIDForUpdate(ctx, m.tenantID, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.Errorf(shared.CodeNotFound, "Variety %s not found", id)
		}
		return nil, err
	}
	return m.track(v), nil
}

// apply changes the variety stock and appends the matching movement
func (m *mutation) apply(ctx context.Context, v *inventory.Variety, t inventory.MovementType, delta decimal.Decimal, ref inventory.Reference, date time.Time, notes string) error {
	mv, err := v.Apply(t, delta, ref, date, notes)
	if err != nil {
		return err
	}
	if err := m.MovementRepo().Append(ctx, mv); err != nil {
		return err
	}
	m.movements = append(m.movements, mv)
	return nil
}

// saveBatch persists a batch after checking its conservation law
func (m *mutation) saveBatch(ctx context.Context, b *inventory.Batch) error {
	if err := b.CheckConservation(); err != nil {
		return err
	}
	b.Touch()
	return m.BatchRepo().SaveWithLock(ctx, b)
}

// lockBatch reads and locks a batch. A nil ID or a batch that no longer
// exists yields no batch, and the caller only moves variety stock.
func (m *mutation) lockBatch(ctx context.Context, id *uuid.UUID) (*inventory.Batch, error) {
	if id == nil {
		return nil, nil
	}
	b, err := m.BatchRepo().FindByIDForUpdate(ctx, m.tenantID, *id)
	if err != nil {
		if shared.IsNotFound(err) {
			m.logger.Warn("Referenced batch missing, updating variety stock only",
				zap.String("tenant_id", m.tenantID.String()),
				zap.String("batch_id", id.String()))
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

// allocate picks one batch able to supply q with the configured selector and consumes q from it
func (lg *Ledger) allocate(ctx context.Context, m *mutation, varietyID uuid.UUID, q decimal.Decimal) (*inventory.Batch, error) {
	candidates, err := m.BatchRepo().FindAvailableForUpdate(ctx, m.tenantID, varietyID)
	if err != nil {
		return nil, err
	}
	idx, ok := lg.selector.Select(candidates, q)
	if !ok {
		return nil, nil
	}
	b := &candidates[idx]
	if err := b.Consume(q); err != nil {
		return nil, err
	}
	if err := m.saveBatch(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}
