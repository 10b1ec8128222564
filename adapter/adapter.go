// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package adapter

import (
	fcommon "github.com/0xsoniclabs/fidelio/common"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

//go:generate mockgen -source adapter.go -destination adapter_mocks.go -package adapter

const (
	// ErrNotSupported is returned by backends for capabilities they do not
	// implement. Unsupported operations must fail with this error instead of
	// silently doing nothing.
	ErrNotSupported = fcommon.ConstError("operation not supported")

	// ErrStateNotFound is returned by SetBlockContext and RestoreContext if
	// the backend cannot locate the requested state root.
	ErrStateNotFound = fcommon.ConstError("no such state root")
)

// Adapter is the capability set an execution/state backend must expose to be
// usable in a validation session. Two independent implementations are held by
// the dual adapter, which replays every operation against both.
//
// Implementations are not required to be safe for concurrent use; a session
// drives an adapter from a single logical thread of control.
type Adapter interface {
	// --- State Access ---

	// GetAccount retrieves the account record stored for the given address.
	// Addresses without an explicit record yield the empty account.
	GetAccount(address common.Address) (Account, error)

	// GetStorage retrieves the value of the given storage slot. Unset slots
	// yield the zero value.
	GetStorage(address common.Address, key common.Hash) (common.Hash, error)

	// GetCode retrieves the code deployed at the given address. Addresses
	// without code yield an empty byte slice.
	GetCode(address common.Address) ([]byte, error)

	// GetStateRoot returns a digest identifying the current working state.
	// Two consecutive calls without an intervening write must return the
	// same digest.
	GetStateRoot() (common.Hash, error)

	// PutAccount stores the given account record unconditionally. No
	// validation beyond what the engine itself enforces is applied.
	PutAccount(address common.Address, account Account) error

	// PutStorage stores the given value in the addressed storage slot.
	PutStorage(address common.Address, key common.Hash, value common.Hash) error

	// PutCode deploys the given code at the given address.
	PutCode(address common.Address, code []byte) error

	// --- Transaction Execution ---

	// DryRun executes the given transaction in the given block environment
	// without persisting any state changes. If forceZeroBaseFee is set, the
	// environment's base fee is treated as zero for this execution.
	DryRun(tx *Transaction, env *BlockEnvironment, forceZeroBaseFee bool) (TransactionResult, Trace, error)

	// RunTxInBlock executes the given transaction and persists its effects
	// into the currently open block. It is only valid between StartBlock and
	// AddBlockRewards.
	RunTxInBlock(tx *Transaction, env *BlockEnvironment) (TransactionResult, Trace, error)

	// --- Block Lifecycle ---

	// StartBlock opens a checkpoint from which all subsequent changes can be
	// rolled back by RevertBlock.
	StartBlock() error

	// AddBlockRewards credits the given rewards to their beneficiaries. It
	// must be called after all transactions of the block and before
	// SealBlock.
	AddBlockRewards(rewards []Reward) error

	// SealBlock finalizes the currently open block. Backends without an
	// extra finalization step treat this as a no-op beyond closing the
	// checkpoint.
	SealBlock() error

	// RevertBlock discards the currently open block, restoring the state
	// present when StartBlock was called.
	RevertBlock() error

	// --- Context Control ---

	// SetBlockContext moves the working state to the post-state of the given
	// block header, or to irregularRoot if one is provided. It fails with
	// ErrStateNotFound if the backend cannot locate the target state.
	SetBlockContext(header *types.Header, irregularRoot *common.Hash) error

	// RestoreContext rewinds the working state to the named root. It fails
	// with ErrStateNotFound if the backend does not know the root.
	RestoreContext(root common.Hash) error

	// --- Tracing ---

	// TraceTransaction re-executes the given transaction without persisting
	// state changes and returns the resulting execution trace.
	TraceTransaction(tx *Transaction, env *BlockEnvironment) (Trace, error)

	// EnableTracing installs the given hooks, to be invoked on every
	// execution step until DisableTracing is called.
	EnableTracing(hooks TraceHooks) error

	// DisableTracing removes previously installed tracing hooks.
	DisableTracing() error

	// Close releases all resources held by the backend.
	Close() error
}

// Reward is a block reward to be credited to a beneficiary when a block is
// being finalized.
type Reward struct {
	Beneficiary common.Address
	Amount      *uint256.Int
}

// Trace is a backend-specific execution trace. Traces are opaque, write-only
// diagnostic artifacts; they are never compared between backends and are only
// rendered when a divergence needs to be diagnosed.
type Trace interface {
	String() string
}

// TraceHooks bundles the callbacks a tracing-capable backend invokes during
// transaction execution. Individual hooks may be nil.
type TraceHooks struct {
	// OnTxStart is called before a transaction starts executing.
	OnTxStart func(tx *Transaction)

	// OnStep is called for every execution step with a rendered description.
	OnStep func(step string)

	// OnTxEnd is called after a transaction finished executing.
	OnTxEnd func(result TransactionResult)
}
