// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package compare implements the equality rules deciding whether the results
// produced by two execution backends represent the same outcome. The two
// backends use structurally different encodings internally; the rules in this
// package define semantic equivalence over the backend-independent types of
// the adapter package.
package compare

import (
	"bytes"
	"fmt"

	"github.com/0xsoniclabs/fidelio/adapter"
	fcommon "github.com/0xsoniclabs/fidelio/common"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ErrDivergence is the sentinel all divergence errors match against via
// errors.Is. A divergence is always a fatal correctness bug, never retried
// or auto-resolved.
const ErrDivergence = fcommon.ConstError("backends diverged")

// DivergenceError reports a disagreement between the two backends on a value
// that should be identical. Both values are rendered in a stable,
// human-readable form.
type DivergenceError struct {
	Field     string
	Reference string
	Candidate string
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("backends diverged on %s: reference=%s candidate=%s",
		e.Field, e.Reference, e.Candidate)
}

func (e *DivergenceError) Is(target error) bool {
	return target == ErrDivergence
}

// Results checks whether two transaction results are semantically equal. On
// a mismatch, the returned divergence names the first differing field.
//
// The return value is only compared when neither result reports a created
// contract; the backends are known to include constructor output differently
// for creation transactions. This is a documented limitation, not a rule to
// tighten unilaterally.
func Results(reference, candidate *adapter.TransactionResult) error {
	if reference.GasUsed != candidate.GasUsed {
		return diff("totalGasSpent", reference.GasUsed, candidate.GasUsed)
	}
	if reference.GasRefund != candidate.GasRefund {
		return diff("gasRefund", reference.GasRefund, candidate.GasRefund)
	}
	if !addressesEqual(reference.CreatedContract, candidate.CreatedContract) {
		return diff("createdAddress",
			renderAddress(reference.CreatedContract),
			renderAddress(candidate.CreatedContract))
	}
	if !executionErrorsEqual(reference.Err, candidate.Err) {
		return diff("exceptionError",
			renderExecutionError(reference.Err),
			renderExecutionError(candidate.Err))
	}
	noCreation := reference.CreatedContract == nil && candidate.CreatedContract == nil
	if noCreation && !bytes.Equal(reference.ReturnValue, candidate.ReturnValue) {
		return diff("returnValue", reference.ReturnValue, candidate.ReturnValue)
	}
	return nil
}

// Accounts checks whether two account records are semantically equal.
// Storage roots are intentionally excluded until both backends compute
// compatible roots.
func Accounts(reference, candidate adapter.Account) error {
	if !balancesEqual(reference.Balance, candidate.Balance) {
		return diff("balance", reference.Balance, candidate.Balance)
	}
	if reference.Nonce != candidate.Nonce {
		return diff("nonce", reference.Nonce, candidate.Nonce)
	}
	if reference.CodeHash != candidate.CodeHash {
		return diff("codeHash", reference.CodeHash, candidate.CodeHash)
	}
	return nil
}

// Bytes checks two raw byte buffers for byte-for-byte equality, reporting a
// divergence on the given field on mismatch.
func Bytes(field string, reference, candidate []byte) error {
	if !bytes.Equal(reference, candidate) {
		return diff(field, reference, candidate)
	}
	return nil
}

// Hashes checks two 32-byte digests for equality, reporting a divergence on
// the given field on mismatch.
func Hashes(field string, reference, candidate common.Hash) error {
	if reference != candidate {
		return diff(field, reference, candidate)
	}
	return nil
}

func diff(field string, reference, candidate any) error {
	return &DivergenceError{
		Field:     field,
		Reference: render(reference),
		Candidate: render(candidate),
	}
}

func addressesEqual(a, b *common.Address) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func executionErrorsEqual(a, b *adapter.ExecutionError) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Kind == b.Kind && a.Category == b.Category
}

func balancesEqual(a, b *uint256.Int) bool {
	if a == nil {
		a = uint256.NewInt(0)
	}
	if b == nil {
		b = uint256.NewInt(0)
	}
	return a.Eq(b)
}

func render(value any) string {
	switch v := value.(type) {
	case nil:
		return "<absent>"
	case string:
		return v
	case []byte:
		return fmt.Sprintf("0x%x", v)
	case common.Hash:
		return v.Hex()
	case *uint256.Int:
		if v == nil {
			return "0"
		}
		return v.Dec()
	case uint64:
		return fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("%v", value)
}

func renderAddress(addr *common.Address) string {
	if addr == nil {
		return "<absent>"
	}
	return addr.Hex()
}

func renderExecutionError(err *adapter.ExecutionError) string {
	if err == nil {
		return "<absent>"
	}
	return err.Error()
}
