// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package exec implements the transaction execution rules shared by the
// in-repo backends: plain value transfers and trivial contract deployments
// with intrinsic gas accounting. Full bytecode interpretation is the job of
// the external engines; the rules here are just rich enough to drive every
// state transition a validation session exercises.
package exec

import (
	"fmt"

	"github.com/0xsoniclabs/fidelio/adapter"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

const (
	// TxGas is the intrinsic gas of any transaction.
	TxGas = 21_000

	// TxGasContractCreation is the additional intrinsic gas of a contract
	// creation transaction.
	TxGasContractCreation = 32_000

	// TxDataNonZeroGas and TxDataZeroGas are the per-byte calldata costs.
	TxDataNonZeroGas = 16
	TxDataZeroGas    = 4
)

// State is the mutable account view a backend exposes to the execution
// rules. Representation, checkpointing, and persistence remain the backend's
// concern.
type State interface {
	GetAccount(address common.Address) (adapter.Account, error)
	PutAccount(address common.Address, account adapter.Account) error
	PutCode(address common.Address, code []byte) error
}

// Observer receives a rendered description of every execution step. A nil
// observer disables step reporting.
type Observer func(step string)

// IntrinsicGas computes the intrinsic gas of the given transaction.
func IntrinsicGas(tx *adapter.Transaction) uint64 {
	gas := uint64(TxGas)
	if tx.IsCreation() {
		gas += TxGasContractCreation
	}
	for _, b := range tx.Data {
		if b == 0 {
			gas += TxDataZeroGas
		} else {
			gas += TxDataNonZeroGas
		}
	}
	return gas
}

// Apply executes the given transaction against the given state under the
// given block environment. Execution failures are reported inside the result;
// an error return indicates the state itself could not be accessed.
func Apply(
	state State,
	tx *adapter.Transaction,
	env *adapter.BlockEnvironment,
	forceZeroBaseFee bool,
	observe Observer,
) (adapter.TransactionResult, error) {
	step := func(format string, args ...any) {
		if observe != nil {
			observe(fmt.Sprintf(format, args...))
		}
	}

	gasPrice := tx.GasPrice
	if gasPrice == nil {
		gasPrice = uint256.NewInt(0)
	}
	value := tx.Value
	if value == nil {
		value = uint256.NewInt(0)
	}

	baseFee := env.EffectiveBaseFee(forceZeroBaseFee)
	if gasPrice.Lt(baseFee) {
		step("reject: gas price %s below base fee %s", gasPrice.Dec(), baseFee.Dec())
		return adapter.TransactionResult{
			Err: &adapter.ExecutionError{Kind: "base-fee-exceeds-gas-price", Category: "invalid"},
		}, nil
	}

	intrinsic := IntrinsicGas(tx)
	step("intrinsic gas %d for limit %d", intrinsic, tx.GasLimit)
	if intrinsic > tx.GasLimit {
		return adapter.TransactionResult{
			GasUsed: tx.GasLimit,
			Err:     &adapter.ExecutionError{Kind: "out-of-gas", Category: "halt"},
		}, nil
	}

	sender, err := state.GetAccount(tx.From)
	if err != nil {
		return adapter.TransactionResult{}, fmt.Errorf("failed to load sender %s: %w", tx.From, err)
	}
	if sender.Nonce != tx.Nonce {
		step("reject: nonce %d does not match account nonce %d", tx.Nonce, sender.Nonce)
		return adapter.TransactionResult{
			Err: &adapter.ExecutionError{Kind: "nonce-mismatch", Category: "invalid"},
		}, nil
	}

	fee := new(uint256.Int).Mul(gasPrice, uint256.NewInt(intrinsic))
	balance := sender.Balance
	if balance == nil {
		balance = uint256.NewInt(0)
	}
	if balance.Lt(fee) {
		step("reject: balance %s cannot cover fee %s", balance.Dec(), fee.Dec())
		return adapter.TransactionResult{
			Err: &adapter.ExecutionError{Kind: "insufficient-balance", Category: "halt"},
		}, nil
	}

	// The fee is charged and the nonce consumed even if the value transfer
	// itself fails afterwards.
	sender.Balance = new(uint256.Int).Sub(balance, fee)
	sender.Nonce++
	if err := state.PutAccount(tx.From, sender); err != nil {
		return adapter.TransactionResult{}, fmt.Errorf("failed to charge sender %s: %w", tx.From, err)
	}
	step("charge fee %s from %s", fee.Dec(), tx.From)
	if err := credit(state, env.Coinbase, fee); err != nil {
		return adapter.TransactionResult{}, fmt.Errorf("failed to credit coinbase: %w", err)
	}
	// The sender may be the coinbase; reload to observe the fee credit.
	sender, err = state.GetAccount(tx.From)
	if err != nil {
		return adapter.TransactionResult{}, fmt.Errorf("failed to load sender %s: %w", tx.From, err)
	}

	if sender.Balance.Lt(value) {
		step("revert: balance %s cannot cover value %s", sender.Balance.Dec(), value.Dec())
		return adapter.TransactionResult{
			GasUsed: intrinsic,
			Err:     &adapter.ExecutionError{Kind: "insufficient-balance", Category: "revert"},
		}, nil
	}
	sender.Balance = new(uint256.Int).Sub(sender.Balance, value)
	if err := state.PutAccount(tx.From, sender); err != nil {
		return adapter.TransactionResult{}, fmt.Errorf("failed to debit sender %s: %w", tx.From, err)
	}

	result := adapter.TransactionResult{GasUsed: intrinsic}
	if tx.IsCreation() {
		created := crypto.CreateAddress(tx.From, tx.Nonce)
		step("create contract %s with %d bytes of code", created, len(tx.Data))
		existing, err := state.GetAccount(created)
		if err != nil {
			return adapter.TransactionResult{}, fmt.Errorf("failed to load contract target %s: %w", created, err)
		}
		// Funds already sitting at the derived address survive the deployment.
		balance := new(uint256.Int).Set(value)
		if existing.Balance != nil {
			balance.Add(balance, existing.Balance)
		}
		account := adapter.Account{
			Balance:  balance,
			Nonce:    1, // EIP-161
			CodeHash: crypto.Keccak256Hash(tx.Data),
		}
		if err := state.PutAccount(created, account); err != nil {
			return adapter.TransactionResult{}, fmt.Errorf("failed to create contract %s: %w", created, err)
		}
		if err := state.PutCode(created, tx.Data); err != nil {
			return adapter.TransactionResult{}, fmt.Errorf("failed to deploy code at %s: %w", created, err)
		}
		result.CreatedContract = &created
		result.ReturnValue = tx.Data
	} else {
		step("transfer %s from %s to %s", value.Dec(), tx.From, *tx.To)
		if err := credit(state, *tx.To, value); err != nil {
			return adapter.TransactionResult{}, fmt.Errorf("failed to credit recipient %s: %w", *tx.To, err)
		}
	}
	return result, nil
}

// credit adds the given amount to the balance of the given account, creating
// the account record if necessary.
func credit(state State, address common.Address, amount *uint256.Int) error {
	account, err := state.GetAccount(address)
	if err != nil {
		return err
	}
	if account.Balance == nil {
		account.Balance = uint256.NewInt(0)
	}
	if account.CodeHash == (common.Hash{}) {
		account.CodeHash = types.EmptyCodeHash
	}
	account.Balance = new(uint256.Int).Add(account.Balance, amount)
	return state.PutAccount(address, account)
}
