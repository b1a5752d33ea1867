// Copyright 2026 The Clubledger Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ikubchain/clubledger/balance"
	"github.com/ikubchain/clubledger/club"
	"github.com/ikubchain/clubledger/database"
	"github.com/ikubchain/clubledger/database/models"
	"github.com/ikubchain/clubledger/disputes"
	"github.com/ikubchain/clubledger/event"
	"github.com/ikubchain/clubledger/governance"
	"github.com/ikubchain/clubledger/treasury"
	"github.com/ikubchain/clubledger/types"
)

const tracerName = "github.com/ikubchain/clubledger/ledger"

// BlockProducerAccount is the caller recorded on blocks produced by the dev
// block producer
const BlockProducerAccount types.AccountId = "block-producer"

var ErrLedgerClosed = errors.New("ledger is closed")

// ledgerData is the arena that owns every entity. Only the apply goroutine
// mutates it and only while holding the write lock.
type ledgerData struct {
	clubs      *club.Registry
	balances   *balance.Book
	governance *governance.Engine
	treasury   *treasury.Engine
	disputes   *disputes.Engine
	block      types.BlockNumber
	issued     types.Amount
}

func newLedgerData(cfg LedgerStateConfig) (*ledgerData, error) {
	gov, err := governance.NewEngine(cfg.Governance)
	if err != nil {
		return nil, err
	}
	tre, err := treasury.NewEngine(cfg.Treasury)
	if err != nil {
		return nil, fmt.Errorf("invalid treasury config: %w", err)
	}
	return &ledgerData{
		clubs:      club.NewRegistry(cfg.Club),
		balances:   balance.NewBook(),
		governance: gov,
		treasury:   tre,
		disputes:   disputes.NewEngine(),
	}, nil
}

type LedgerState struct {
	sync.RWMutex
	config    LedgerStateConfig
	db        *database.Database
	data      *ledgerData
	seq       uint64
	halted    error
	metrics   stateMetrics
	tracer    trace.Tracer
	queue     chan *pendingAction
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	producer  *Scheduler
	// beforePersist runs ahead of every storage write; tests use it to hold
	// a write in flight
	beforePersist func()
}

// NewLedgerState rebuilds the state from the action log, if a database is
// configured, and starts the apply goroutine
func NewLedgerState(cfg LedgerStateConfig) (*LedgerState, error) {
	cfg = cfg.withDefaults()
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	data, err := newLedgerData(cfg)
	if err != nil {
		return nil, err
	}
	ls := &LedgerState{
		config: cfg,
		db:     cfg.Database,
		data:   data,
		tracer: otel.Tracer(tracerName),
		queue:  make(chan *pendingAction),
		done:   make(chan struct{}),
	}
	// Init metrics
	ls.metrics.init(cfg.PromRegistry)
	if ls.db != nil {
		if err := ls.replay(); err != nil {
			return nil, fmt.Errorf("failed to replay action log: %w", err)
		}
	}
	ls.updateMetrics()
	// Start goroutine to apply actions
	ls.wg.Add(1)
	go ls.processActions()
	if cfg.BlockInterval > 0 {
		ls.producer = NewScheduler(cfg.BlockInterval)
		ls.producer.Register(1, ls.produceBlock, func() {
			ls.config.Logger.Debug(
				"skipping block, previous block still pending",
				"component", "ledger",
			)
		})
		ls.producer.Start()
		ls.config.Logger.Info(
			"dev block producer started",
			"component", "ledger",
			"interval", cfg.BlockInterval.String(),
		)
	}
	return ls, nil
}

// Close stops the block producer and the apply goroutine. Actions already
// admitted finish first. The database is owned by the caller.
func (ls *LedgerState) Close() error {
	ls.closeOnce.Do(func() {
		if ls.producer != nil {
			ls.producer.Stop()
		}
		close(ls.done)
		ls.wg.Wait()
	})
	return nil
}

// Halted returns the invariant error that stopped the ledger, if any
func (ls *LedgerState) Halted() error {
	ls.RLock()
	defer ls.RUnlock()
	return ls.halted
}

// Seq returns the sequence of the last committed action
func (ls *LedgerState) Seq() uint64 {
	ls.RLock()
	defer ls.RUnlock()
	return ls.seq
}

func (ls *LedgerState) produceBlock(ctx context.Context) {
	if _, err := ls.AdvanceBlocks(ctx, BlockProducerAccount, 1); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, ErrLedgerClosed) {
			return
		}
		ls.config.Logger.Error(
			"failed to produce block",
			"component", "ledger",
			"error", err,
		)
	}
}

// submit hands an action to the apply goroutine and waits for its result.
// The context only matters until the action is admitted.
func (ls *LedgerState) submit(
	ctx context.Context,
	caller types.AccountId,
	params actionParams,
) (any, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	a := &pendingAction{
		id:     uuid.New(),
		caller: caller,
		params: params,
		result: make(chan actionResult, 1),
	}
	select {
	case ls.queue <- a:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-ls.done:
		return nil, ErrLedgerClosed
	}
	res := <-a.result
	return res.value, res.err
}

// submitAction is submit with a typed result
func submitAction[T any](
	ctx context.Context,
	ls *LedgerState,
	caller types.AccountId,
	params actionParams,
) (T, error) {
	var zero T
	value, err := ls.submit(ctx, caller, params)
	if err != nil {
		return zero, err
	}
	ret, ok := value.(T)
	if !ok {
		return zero, types.NewInvariantError(
			"%s returned %T",
			params.actionType(),
			value,
		)
	}
	return ret, nil
}

func (ls *LedgerState) processActions() {
	defer ls.wg.Done()
	for {
		select {
		case <-ls.done:
			return
		case a := <-ls.queue:
			a.result <- ls.processAction(a)
		}
	}
}

func (ls *LedgerState) processAction(a *pendingAction) actionResult {
	kind := a.params.actionType()
	_, span := ls.tracer.Start(
		context.Background(),
		"ledger.apply",
		trace.WithAttributes(
			attribute.String("clubledger.action.type", string(kind)),
			attribute.String("clubledger.action.id", a.id.String()),
		),
	)
	defer span.End()
	start := time.Now()
	ls.Lock()
	if ls.halted != nil {
		err := ls.halted
		ls.Unlock()
		span.SetStatus(codes.Error, "ledger halted")
		return actionResult{err: err}
	}
	actx := newApplyContext(ls.data, &ls.config, a.caller)
	value, err := applyRecover(actx, a.params)
	var pending *pendingCommit
	if err == nil && !actx.unchanged {
		pending, err = ls.prepareCommit(a, actx)
	}
	if err != nil {
		halted := types.IsInvariant(err)
		if halted {
			ls.halted = err
		}
		seq := ls.seq
		ls.Unlock()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if halted {
			ls.onHalt(kind, seq, err)
		} else if errKind, ok := types.KindOf(err); ok {
			ls.metrics.rejectedTotal.WithLabelValues(string(kind), string(errKind)).Inc()
		}
		return actionResult{err: err}
	}
	seq := ls.seq
	block := ls.data.block
	ls.Unlock()
	// Storage I/O runs without the lock so queries are never held up by it.
	// Only this goroutine writes, so the log still grows in apply order.
	if pending != nil {
		if err := ls.persist(pending); err != nil {
			err = &types.InvariantError{
				Message: fmt.Sprintf("persisting action %d", pending.seq),
				Err:     err,
			}
			ls.Lock()
			ls.halted = err
			ls.Unlock()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			ls.onHalt(kind, pending.seq, err)
			return actionResult{err: err}
		}
	}
	if !actx.unchanged {
		ls.metrics.actionsTotal.WithLabelValues(string(kind)).Inc()
		ls.metrics.applyLatency.Observe(time.Since(start).Seconds())
		ls.updateMetrics()
		span.SetAttributes(attribute.Int64("clubledger.action.seq", int64(seq)))
		ls.publish(ActionEventType, ActionEvent{
			Id:     a.id,
			Type:   kind,
			Caller: a.caller,
			Result: value,
			Seq:    seq,
			Block:  block,
		})
		for _, evt := range actx.events {
			ls.publish(evt.Type, evt.Data)
		}
	}
	return actionResult{value: value}
}

// pendingCommit is an applied action waiting to be written to storage
type pendingCommit struct {
	seq        uint64
	record     []byte
	row        *models.Action
	projection models.Projection
}

// prepareCommit assigns the next sequence to an applied action and copies
// out everything storage needs. It must be called with the write lock held.
func (ls *LedgerState) prepareCommit(
	a *pendingAction,
	actx *applyContext,
) (*pendingCommit, error) {
	seq := ls.seq + 1
	projection, err := actx.dirty.projection(ls.data)
	if err != nil {
		return nil, err
	}
	record, err := encodeActionRecord(a.id, a.caller, ls.data.block, a.params)
	if err != nil {
		return nil, &types.InvariantError{Message: "encoding action record", Err: err}
	}
	ls.seq = seq
	if ls.db == nil {
		return nil, nil
	}
	return &pendingCommit{
		seq:    seq,
		record: record,
		row: &models.Action{
			ActionId: a.id.String(),
			Type:     string(a.params.actionType()),
			Caller:   string(a.caller),
			Payload:  record,
			Seq:      seq,
			Block:    uint64(ls.data.block),
		},
		projection: projection,
	}, nil
}

// persist writes one action to the log and the projection in a single
// coordinated transaction. Any failure here means memory and storage
// diverged.
func (ls *LedgerState) persist(c *pendingCommit) error {
	if ls.beforePersist != nil {
		ls.beforePersist()
	}
	txn := ls.db.Transaction(true)
	return txn.Do(func(txn *database.Txn) error {
		if err := ls.db.AppendAction(c.seq, c.record, txn); err != nil {
			return fmt.Errorf("append action: %w", err)
		}
		meta := ls.db.Metadata()
		if err := meta.AddAction(c.row, txn.Metadata()); err != nil {
			return fmt.Errorf("add action: %w", err)
		}
		if err := meta.ApplyProjection(c.projection, txn.Metadata()); err != nil {
			return fmt.Errorf("apply projection: %w", err)
		}
		if err := meta.SetTip(c.seq, c.row.Block, txn.Metadata()); err != nil {
			return fmt.Errorf("set tip: %w", err)
		}
		txn.SetCommitSeq(c.seq)
		return nil
	})
}

func (ls *LedgerState) onHalt(kind ActionType, seq uint64, err error) {
	ls.metrics.halted.Set(1)
	ls.config.Logger.Error(
		"ledger halted after invariant violation",
		"component", "ledger",
		"action", string(kind),
		"seq", seq,
		"error", err,
	)
	ls.publish(LedgerErrorEventType, LedgerErrorEvent{
		Error:     err,
		Operation: kind,
		Seq:       seq,
	})
}

func (ls *LedgerState) publish(eventType event.EventType, data any) {
	if ls.config.EventBus == nil {
		return
	}
	ls.config.EventBus.Publish(eventType, event.NewEvent(eventType, data))
}

func (ls *LedgerState) updateMetrics() {
	ls.RLock()
	defer ls.RUnlock()
	ls.metrics.blockNum.Set(float64(ls.data.block))
	ls.metrics.actionSeq.Set(float64(ls.seq))
	ls.metrics.issuedCurrency.Set(float64(ls.data.issued))
}

// applyRecover runs an action handler and turns a panic into an invariant
// violation
func applyRecover(actx *applyContext, params actionParams) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = types.NewInvariantError(
				"panic applying %s: %v",
				params.actionType(),
				r,
			)
		}
	}()
	return params.apply(actx)
}
