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
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// Account is the backend-independent view of an account record. Backends may
// store accounts in arbitrary encodings, but must be able to produce and
// accept this form.
type Account struct {
	Balance  *uint256.Int
	Nonce    uint64
	CodeHash common.Hash

	// StorageRoot is reported by backends maintaining per-account storage
	// tries and left zero by others. It is informational only; account
	// comparison ignores it until both backends compute compatible roots.
	StorageRoot common.Hash
}

// Empty reports whether the account is indistinguishable from an absent one.
func (a Account) Empty() bool {
	return (a.Balance == nil || a.Balance.IsZero()) && a.Nonce == 0 &&
		(a.CodeHash == common.Hash{} || a.CodeHash == types.EmptyCodeHash)
}

// Transaction is an already-validated transaction record. Signature checking
// and sender recovery happen upstream; backends receive the sender address
// explicitly.
type Transaction struct {
	From     common.Address
	To       *common.Address // nil for contract creation
	Nonce    uint64
	GasLimit uint64
	GasPrice *uint256.Int
	Value    *uint256.Int
	Data     []byte

	AccessList types.AccessList
}

// IsCreation reports whether the transaction deploys a new contract.
func (tx *Transaction) IsCreation() bool {
	return tx.To == nil
}

// ExecutionError describes why a transaction failed inside an engine. Only
// the kind and category are significant for cross-backend comparison; any
// engine-specific message text is deliberately excluded from this type.
type ExecutionError struct {
	// Kind identifies the specific failure, e.g. "out-of-gas" or
	// "insufficient-balance".
	Kind string

	// Category is the coarse failure class, e.g. "halt" or "revert".
	Category string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Kind, e.Category)
}

// TransactionResult is the externally observable outcome of executing a
// single transaction.
type TransactionResult struct {
	// GasUsed is the total gas spent by the transaction.
	GasUsed uint64

	// GasRefund is the refund granted at the end of the execution.
	GasRefund uint64

	// CreatedContract is the address of the deployed contract, present if
	// and only if the transaction was a contract creation.
	CreatedContract *common.Address

	// Err describes the execution failure, if any. A nil Err means the
	// transaction executed successfully.
	Err *ExecutionError

	// ReturnValue is the data returned by the executed call.
	ReturnValue []byte
}
