// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ava-labs/hypercounter/chain"
	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/executor"
	"github.com/ava-labs/hypercounter/program"
	"github.com/ava-labs/hypercounter/state"
	"github.com/ava-labs/hypercounter/storage"
	"github.com/ava-labs/hypercounter/system"
	"github.com/ava-labs/hypercounter/tstate"

	oteltrace "go.opentelemetry.io/otel/trace"
)

// Runtime executes transactions against a [Database]. Transactions in the
// same batch that touch disjoint accounts run in parallel.
type Runtime struct {
	config  Config
	log     logging.Logger
	tracer  trace.Tracer
	db      Database
	metrics *metrics

	// l serializes batches and guards [programs].
	l        sync.Mutex
	programs map[codec.Address]program.Entrypoint
}

// New returns a runtime with the system program registered.
func New(
	config Config,
	log logging.Logger,
	tracer trace.Tracer,
	db Database,
	reg prometheus.Registerer,
) (*Runtime, error) {
	if config.ExecutionCores <= 0 {
		return nil, fmt.Errorf("%w: execution cores must be positive", program.ErrInvalidArgument)
	}
	if config.MaxInvokeDepth <= 0 {
		return nil, fmt.Errorf("%w: max invoke depth must be positive", program.ErrInvalidArgument)
	}
	m, err := newMetrics(reg)
	if err != nil {
		return nil, err
	}
	r := &Runtime{
		config:   config,
		log:      log,
		tracer:   tracer,
		db:       db,
		metrics:  m,
		programs: map[codec.Address]program.Entrypoint{},
	}
	if err := r.Register(program.SystemProgramID, system.ProcessInstruction); err != nil {
		return nil, err
	}
	return r, nil
}

// Register makes [entry] callable at [id].
func (r *Runtime) Register(id codec.Address, entry program.Entrypoint) error {
	r.l.Lock()
	defer r.l.Unlock()

	if _, ok := r.programs[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateProgram, id)
	}
	r.programs[id] = entry
	r.log.Info("registered program", zap.Stringer("programID", id))
	return nil
}

func (r *Runtime) Rent() program.Rent {
	return r.config.Rent
}

// programAccount returns the synthetic account of a registered program.
// Program accounts are never persisted.
func (r *Runtime) programAccount(id codec.Address) (*program.AccountInfo, bool) {
	if _, ok := r.programs[id]; !ok {
		return nil, false
	}
	return &program.AccountInfo{
		Key:        id,
		Owner:      program.NativeLoaderID,
		Lamports:   1,
		Executable: true,
	}, true
}

// GetAccount returns the committed state of [addr].
func (r *Runtime) GetAccount(_ context.Context, addr codec.Address) (*program.AccountInfo, error) {
	r.l.Lock()
	defer r.l.Unlock()

	if acct, ok := r.programAccount(addr); ok {
		return acct, nil
	}
	return storage.GetAccountFromReader(r.db, addr)
}

// Execute runs a single transaction and persists its effects.
func (r *Runtime) Execute(ctx context.Context, tx *chain.Transaction) (*chain.Result, error) {
	ctx, span := r.tracer.Start(ctx, "Runtime.Execute")
	defer span.End()

	results, err := r.ExecuteBatch(ctx, []*chain.Transaction{tx})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// ExecuteBatch runs [txs] and persists their effects in a single database
// batch. Transactions that share a writable account execute in the order
// they appear in [txs]. A failed transaction is reported in its
// [chain.Result] and leaves no trace in state. The returned error is only
// set when the batch could not be processed at all.
func (r *Runtime) ExecuteBatch(ctx context.Context, txs []*chain.Transaction) ([]*chain.Result, error) {
	ctx, span := r.tracer.Start(ctx, "Runtime.ExecuteBatch", oteltrace.WithAttributes(
		attribute.Int("txs", len(txs)),
	))
	defer span.End()

	r.l.Lock()
	defer r.l.Unlock()

	var (
		start   = time.Now()
		ts      = tstate.New(len(txs) * 2)
		e       = executor.New(len(txs), r.config.ExecutionCores, r.metrics)
		results = make([]*chain.Result, len(txs))
	)
	for i, tx := range txs {
		i, tx := i, tx
		stateKeys := tx.StateKeys()
		e.Run(stateKeys, func() error {
			values, err := r.readKeys(stateKeys)
			if err != nil {
				return err
			}
			tsv := ts.NewView(stateKeys, values)
			result, err := r.executeTx(ctx, tsv, tx)
			if err != nil {
				return err
			}
			tsv.Commit()
			results[i] = result
			return nil
		})
	}
	if err := e.Wait(); err != nil {
		return nil, err
	}

	batch := r.db.NewBatch()
	if err := ts.WriteChanges(ctx, batch, r.tracer); err != nil {
		return nil, err
	}
	if err := batch.Write(); err != nil {
		return nil, err
	}
	r.metrics.stateChanges.Add(float64(ts.PendingChanges()))
	r.metrics.executeBatch.Observe(float64(time.Since(start)))
	return results, nil
}

// Mutate applies [f] directly to state, outside of any transaction. It is
// used to seed accounts at genesis.
func (r *Runtime) Mutate(ctx context.Context, stateKeys state.Keys, f func(context.Context, state.Mutable) error) error {
	ctx, span := r.tracer.Start(ctx, "Runtime.Mutate")
	defer span.End()

	r.l.Lock()
	defer r.l.Unlock()

	values, err := r.readKeys(stateKeys)
	if err != nil {
		return err
	}
	ts := tstate.New(len(stateKeys))
	tsv := ts.NewView(stateKeys, values)
	if err := f(ctx, tsv); err != nil {
		return err
	}
	tsv.Commit()

	batch := r.db.NewBatch()
	if err := ts.WriteChanges(ctx, batch, r.tracer); err != nil {
		return err
	}
	return batch.Write()
}

func (r *Runtime) readKeys(stateKeys state.Keys) (map[string][]byte, error) {
	values := make(map[string][]byte, len(stateKeys))
	for k := range stateKeys {
		v, err := r.db.Get([]byte(k))
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		values[k] = v
	}
	return values, nil
}
