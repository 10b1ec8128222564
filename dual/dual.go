// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package dual implements the validation session driving two execution
// backends in lockstep. Every adapter operation is fanned out to both
// backends; results that must match are checked via the compare package, and
// any disagreement is rendered through the Reporter and surfaced as a fatal
// divergence error.
package dual

import (
	"errors"
	"fmt"

	"github.com/0xsoniclabs/tracy"

	"github.com/0xsoniclabs/fidelio/adapter"
	"github.com/0xsoniclabs/fidelio/compare"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Backend labels used when attributing failures.
const (
	ReferenceLabel = "reference"
	CandidateLabel = "candidate"
)

// BackendError wraps a failure raised by one of the underlying engines,
// attributing it to the backend that raised it.
type BackendError struct {
	Backend string
	Op      string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend failed in %s: %v", e.Backend, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Adapter implements the adapter contract on top of a reference and a
// candidate backend. Mutating operations are replicated to both backends
// sequentially, candidate first; reads are executed on both and compared.
//
// Arbitration of the value returned on agreement is fixed per operation
// category:
//
//	GetStateRoot, GetCode, DryRun (result and trace)  -> reference
//	GetAccount, GetStorage, RunTxInBlock (result)     -> candidate
//	RunTxInBlock (trace)                              -> reference
//	TraceTransaction, EnableTracing, DisableTracing,
//	SetBlockContext                                   -> reference only
//
// Either choice is behaviorally equivalent once equality is proven; the
// split is kept deliberately so that backend-specific formatting reaches
// callers through both paths.
//
// An Adapter must be driven from a single logical thread of control. Once a
// replicated write has failed on one backend, the pair may be inconsistent;
// the session must be treated as lost and no rollback is attempted.
type Adapter struct {
	reference adapter.Adapter
	candidate adapter.Adapter
	reporter  Reporter
	phase     blockPhase
}

var _ adapter.Adapter = (*Adapter)(nil)

// NewAdapter creates a validation session over the given backend pair. A nil
// reporter defaults to rendering on standard error.
func NewAdapter(reference, candidate adapter.Adapter, reporter Reporter) *Adapter {
	if reporter == nil {
		reporter = NewDefaultReporter()
	}
	return &Adapter{
		reference: reference,
		candidate: candidate,
		reporter:  reporter,
	}
}

// --- State Access (read-compare) ---

func (a *Adapter) GetAccount(address common.Address) (adapter.Account, error) {
	candidate, err := a.candidate.GetAccount(address)
	if err != nil {
		return adapter.Account{}, &BackendError{CandidateLabel, "getAccount", err}
	}
	reference, err := a.reference.GetAccount(address)
	if err != nil {
		return adapter.Account{}, &BackendError{ReferenceLabel, "getAccount", err}
	}
	if err := compare.Accounts(reference, candidate); err != nil {
		a.reporter.ReportDivergence("getAccount", err, nil, nil)
		return adapter.Account{}, err
	}
	return candidate, nil
}

func (a *Adapter) GetStorage(address common.Address, key common.Hash) (common.Hash, error) {
	candidate, err := a.candidate.GetStorage(address, key)
	if err != nil {
		return common.Hash{}, &BackendError{CandidateLabel, "getStorage", err}
	}
	reference, err := a.reference.GetStorage(address, key)
	if err != nil {
		return common.Hash{}, &BackendError{ReferenceLabel, "getStorage", err}
	}
	if err := compare.Hashes("storageSlot", reference, candidate); err != nil {
		a.reporter.ReportDivergence("getStorage", err, nil, nil)
		return common.Hash{}, err
	}
	return candidate, nil
}

func (a *Adapter) GetCode(address common.Address) ([]byte, error) {
	candidate, err := a.candidate.GetCode(address)
	if err != nil {
		return nil, &BackendError{CandidateLabel, "getCode", err}
	}
	reference, err := a.reference.GetCode(address)
	if err != nil {
		return nil, &BackendError{ReferenceLabel, "getCode", err}
	}
	if err := compare.Bytes("code", reference, candidate); err != nil {
		a.reporter.ReportDivergence("getCode", err, nil, nil)
		return nil, err
	}
	return reference, nil
}

func (a *Adapter) GetStateRoot() (common.Hash, error) {
	candidate, err := a.candidate.GetStateRoot()
	if err != nil {
		return common.Hash{}, &BackendError{CandidateLabel, "getStateRoot", err}
	}
	reference, err := a.reference.GetStateRoot()
	if err != nil {
		return common.Hash{}, &BackendError{ReferenceLabel, "getStateRoot", err}
	}
	if err := compare.Hashes("stateRoot", reference, candidate); err != nil {
		a.reporter.ReportDivergence("getStateRoot", err, nil, nil)
		return common.Hash{}, err
	}
	return reference, nil
}

// --- State Mutation (write-replicate) ---

func (a *Adapter) PutAccount(address common.Address, account adapter.Account) error {
	return a.replicate("putAccount", func(backend adapter.Adapter) error {
		return backend.PutAccount(address, account)
	})
}

func (a *Adapter) PutStorage(address common.Address, key common.Hash, value common.Hash) error {
	return a.replicate("putStorage", func(backend adapter.Adapter) error {
		return backend.PutStorage(address, key, value)
	})
}

func (a *Adapter) PutCode(address common.Address, code []byte) error {
	return a.replicate("putCode", func(backend adapter.Adapter) error {
		return backend.PutCode(address, code)
	})
}

// --- Transaction Execution ---

func (a *Adapter) DryRun(tx *adapter.Transaction, env *adapter.BlockEnvironment, forceZeroBaseFee bool) (adapter.TransactionResult, adapter.Trace, error) {
	zone := tracy.ZoneBegin("dual::dry_run")
	defer zone.End()

	candidate, candidateTrace, err := a.candidate.DryRun(tx, env, forceZeroBaseFee)
	if err != nil {
		return adapter.TransactionResult{}, nil, &BackendError{CandidateLabel, "dryRun", err}
	}
	reference, referenceTrace, err := a.reference.DryRun(tx, env, forceZeroBaseFee)
	if err != nil {
		return adapter.TransactionResult{}, nil, &BackendError{ReferenceLabel, "dryRun", err}
	}
	if err := compare.Results(&reference, &candidate); err != nil {
		a.reporter.ReportDivergence("dryRun", err, referenceTrace, candidateTrace)
		return adapter.TransactionResult{}, nil, err
	}
	return reference, referenceTrace, nil
}

func (a *Adapter) RunTxInBlock(tx *adapter.Transaction, env *adapter.BlockEnvironment) (adapter.TransactionResult, adapter.Trace, error) {
	zone := tracy.ZoneBegin("dual::run_tx_in_block")
	defer zone.End()

	if err := a.phase.requireOpen("runTxInBlock"); err != nil {
		return adapter.TransactionResult{}, nil, err
	}
	candidate, candidateTrace, err := a.candidate.RunTxInBlock(tx, env)
	if err != nil {
		return adapter.TransactionResult{}, nil, &BackendError{CandidateLabel, "runTxInBlock", err}
	}
	reference, referenceTrace, err := a.reference.RunTxInBlock(tx, env)
	if err != nil {
		return adapter.TransactionResult{}, nil, &BackendError{ReferenceLabel, "runTxInBlock", err}
	}
	if err := compare.Results(&reference, &candidate); err != nil {
		a.reporter.ReportDivergence("runTxInBlock", err, referenceTrace, candidateTrace)
		return adapter.TransactionResult{}, nil, err
	}
	return candidate, referenceTrace, nil
}

// --- Block Lifecycle ---

func (a *Adapter) StartBlock() error {
	if err := a.phase.requireIdle("startBlock"); err != nil {
		return err
	}
	if err := a.replicate("startBlock", adapter.Adapter.StartBlock); err != nil {
		return err
	}
	a.phase = phaseOpen
	return nil
}

func (a *Adapter) AddBlockRewards(rewards []adapter.Reward) error {
	if err := a.phase.requireOpen("addBlockRewards"); err != nil {
		return err
	}
	return a.replicate("addBlockRewards", func(backend adapter.Adapter) error {
		return backend.AddBlockRewards(rewards)
	})
}

func (a *Adapter) SealBlock() error {
	if err := a.phase.requireOpen("sealBlock"); err != nil {
		return err
	}
	if err := a.replicate("sealBlock", adapter.Adapter.SealBlock); err != nil {
		return err
	}
	a.phase = phaseIdle
	return nil
}

func (a *Adapter) RevertBlock() error {
	if err := a.phase.requireOpen("revertBlock"); err != nil {
		return err
	}
	if err := a.replicate("revertBlock", adapter.Adapter.RevertBlock); err != nil {
		return err
	}
	a.phase = phaseIdle
	return nil
}

// --- Context Control ---

// SetBlockContext switches to an arbitrary historical block, a capability the
// candidate backend is not required to provide; it is delegated to the
// reference backend only.
func (a *Adapter) SetBlockContext(header *types.Header, irregularRoot *common.Hash) error {
	if err := a.reference.SetBlockContext(header, irregularRoot); err != nil {
		return &BackendError{ReferenceLabel, "setBlockContext", err}
	}
	return nil
}

// RestoreContext rewinds both backends; unlike SetBlockContext it is part of
// the block-building protocol and must keep the pair in lockstep.
func (a *Adapter) RestoreContext(root common.Hash) error {
	if err := a.replicate("restoreContext", func(backend adapter.Adapter) error {
		return backend.RestoreContext(root)
	}); err != nil {
		return err
	}
	a.phase = phaseIdle
	return nil
}

// --- Tracing (reference only) ---

func (a *Adapter) TraceTransaction(tx *adapter.Transaction, env *adapter.BlockEnvironment) (adapter.Trace, error) {
	trace, err := a.reference.TraceTransaction(tx, env)
	if err != nil {
		return nil, &BackendError{ReferenceLabel, "traceTransaction", err}
	}
	return trace, nil
}

func (a *Adapter) EnableTracing(hooks adapter.TraceHooks) error {
	if err := a.reference.EnableTracing(hooks); err != nil {
		return &BackendError{ReferenceLabel, "enableTracing", err}
	}
	return nil
}

func (a *Adapter) DisableTracing() error {
	if err := a.reference.DisableTracing(); err != nil {
		return &BackendError{ReferenceLabel, "disableTracing", err}
	}
	return nil
}

func (a *Adapter) Close() error {
	return errors.Join(
		a.candidate.Close(),
		a.reference.Close(),
	)
}

// replicate applies a mutating operation to both backends, candidate first.
// A failure of either call fails the operation; the backends may be left
// inconsistent in that case and the session must not continue.
func (a *Adapter) replicate(op string, f func(backend adapter.Adapter) error) error {
	if err := f(a.candidate); err != nil {
		return &BackendError{CandidateLabel, op, err}
	}
	if err := f(a.reference); err != nil {
		return &BackendError{ReferenceLabel, op, err}
	}
	return nil
}
