// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ldb

import (
	"testing"

	"github.com/0xsoniclabs/fidelio/adapter"
	"github.com/0xsoniclabs/fidelio/backend/memory"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	addr1 = common.Address{0x01}
	addr2 = common.Address{0x02}
	key1  = common.Hash{0x0a}
	val1  = common.Hash{0x0b}
)

func testState(t *testing.T) *State {
	t.Helper()
	state, err := NewTransientState()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, state.Close())
	})
	return state
}

func testEnv() *adapter.BlockEnvironment {
	return &adapter.BlockEnvironment{
		Number:   1,
		Coinbase: common.Address{0xc0},
		GasLimit: 30_000_000,
	}
}

func TestState_AbsentAccountIsEmpty(t *testing.T) {
	require := require.New(t)
	state := testState(t)
	account, err := state.GetAccount(addr1)
	require.NoError(err)
	require.True(account.Empty())
	require.Equal(types.EmptyCodeHash, account.CodeHash)
}

func TestState_AccountRoundTrip(t *testing.T) {
	require := require.New(t)
	state := testState(t)
	written := adapter.Account{
		Balance:  uint256.NewInt(42),
		Nonce:    7,
		CodeHash: common.Hash{0x11},
	}
	require.NoError(state.PutAccount(addr1, written))

	read, err := state.GetAccount(addr1)
	require.NoError(err)
	require.Equal(written.Balance, read.Balance)
	require.Equal(written.Nonce, read.Nonce)
	require.Equal(written.CodeHash, read.CodeHash)
}

func TestState_StorageAndCodeRoundTrip(t *testing.T) {
	require := require.New(t)
	state := testState(t)
	require.NoError(state.PutStorage(addr1, key1, val1))
	code := []byte{0x60, 0x00}
	require.NoError(state.PutCode(addr1, code))

	got, err := state.GetStorage(addr1, key1)
	require.NoError(err)
	require.Equal(val1, got)

	gotCode, err := state.GetCode(addr1)
	require.NoError(err)
	require.Equal(code, gotCode)

	// Clearing removes the records again.
	before, err := state.GetStateRoot()
	require.NoError(err)
	require.NoError(state.PutStorage(addr2, key1, val1))
	require.NoError(state.PutCode(addr2, []byte{1}))
	require.NoError(state.PutStorage(addr2, key1, common.Hash{}))
	require.NoError(state.PutCode(addr2, nil))
	after, err := state.GetStateRoot()
	require.NoError(err)
	require.Equal(before, after)
}

func TestState_RootMatchesTheMemoryBackend(t *testing.T) {
	// Both in-repo backends must report identical roots for identical
	// content, independent of their internal representation.
	require := require.New(t)
	state := testState(t)
	reference := memory.NewState()

	for _, backend := range []adapter.Adapter{state, reference} {
		require.NoError(backend.PutAccount(addr1, adapter.Account{Balance: uint256.NewInt(42), Nonce: 7}))
		require.NoError(backend.PutStorage(addr1, key1, val1))
		require.NoError(backend.PutCode(addr2, []byte{0x60, 0x00}))
	}

	a, err := state.GetStateRoot()
	require.NoError(err)
	b, err := reference.GetStateRoot()
	require.NoError(err)
	require.Equal(b, a)
}

func TestState_EmptyRootMatchesTheMemoryBackend(t *testing.T) {
	require := require.New(t)
	state := testState(t)
	a, err := state.GetStateRoot()
	require.NoError(err)
	b, err := memory.NewState().GetStateRoot()
	require.NoError(err)
	require.Equal(b, a)
}

func TestState_OpenBlockWritesAreBufferedUntilSeal(t *testing.T) {
	require := require.New(t)
	state := testState(t)
	before, err := state.GetStateRoot()
	require.NoError(err)

	require.NoError(state.StartBlock())
	require.NoError(state.PutAccount(addr1, adapter.Account{Balance: uint256.NewInt(1)}))

	// The buffered write is visible through reads and the root.
	account, err := state.GetAccount(addr1)
	require.NoError(err)
	require.Equal(uint256.NewInt(1), account.Balance)
	mid, err := state.GetStateRoot()
	require.NoError(err)
	require.NotEqual(before, mid)

	require.NoError(state.RevertBlock())
	after, err := state.GetStateRoot()
	require.NoError(err)
	require.Equal(before, after)
}

func TestState_OverlayDeletionsDoNotCreatePhantomAccounts(t *testing.T) {
	require := require.New(t)
	state := testState(t)
	before, err := state.GetStateRoot()
	require.NoError(err)

	// Deleting code and storage of an absent account inside a block must
	// leave the enumerated state unchanged.
	require.NoError(state.StartBlock())
	require.NoError(state.PutCode(addr1, nil))
	require.NoError(state.PutStorage(addr1, key1, common.Hash{}))
	mid, err := state.GetStateRoot()
	require.NoError(err)
	require.Equal(before, mid)
	require.NoError(state.SealBlock())

	after, err := state.GetStateRoot()
	require.NoError(err)
	require.Equal(before, after)
}

func TestState_MidBlockDeletionOfPersistedContentMatchesTheMemoryBackend(t *testing.T) {
	// Code and storage deleted inside a block must drop out of the state
	// enumeration even when the records live in the database rather than the
	// overlay; a code-only account disappears entirely, like in the memory
	// backend.
	require := require.New(t)
	state := testState(t)
	reference := memory.NewState()

	for _, backend := range []adapter.Adapter{state, reference} {
		require.NoError(backend.PutCode(addr1, []byte{0x60, 0x00}))
		require.NoError(backend.PutStorage(addr2, key1, val1))
		require.NoError(backend.StartBlock())
		require.NoError(backend.PutCode(addr1, nil))
		require.NoError(backend.PutStorage(addr2, key1, common.Hash{}))
	}

	a, err := state.GetStateRoot()
	require.NoError(err)
	b, err := reference.GetStateRoot()
	require.NoError(err)
	require.Equal(b, a)

	require.NoError(state.SealBlock())
	require.NoError(reference.SealBlock())
	a, err = state.GetStateRoot()
	require.NoError(err)
	b, err = reference.GetStateRoot()
	require.NoError(err)
	require.Equal(b, a)
}

func TestState_BufferedBalancesAreIsolatedFromCallers(t *testing.T) {
	require := require.New(t)
	state := testState(t)
	require.NoError(state.StartBlock())

	balance := uint256.NewInt(100)
	require.NoError(state.PutAccount(addr1, adapter.Account{Balance: balance}))
	balance.SetUint64(999)

	account, err := state.GetAccount(addr1)
	require.NoError(err)
	require.Equal(uint256.NewInt(100), account.Balance)

	account.Balance.SetUint64(7)
	again, err := state.GetAccount(addr1)
	require.NoError(err)
	require.Equal(uint256.NewInt(100), again.Balance)
	require.NoError(state.RevertBlock())
}

func TestState_BlockLifecycleGuards(t *testing.T) {
	require := require.New(t)
	state := testState(t)
	require.Error(state.SealBlock())
	require.Error(state.RevertBlock())
	require.Error(state.AddBlockRewards(nil))
	tx := &adapter.Transaction{From: addr1, To: &addr2, GasLimit: 21_000}
	_, _, err := state.RunTxInBlock(tx, testEnv())
	require.Error(err)

	require.NoError(state.StartBlock())
	require.Error(state.StartBlock())
	require.NoError(state.SealBlock())
}

func TestState_DryRunLeavesDatabaseAndOpenBlockUntouched(t *testing.T) {
	require := require.New(t)
	state := testState(t)
	require.NoError(state.PutAccount(addr1, adapter.Account{Balance: uint256.NewInt(100_000)}))

	require.NoError(state.StartBlock())
	mid, err := state.GetStateRoot()
	require.NoError(err)

	tx := &adapter.Transaction{
		From:     addr1,
		To:       &addr2,
		GasLimit: 21_000,
		GasPrice: uint256.NewInt(1),
		Value:    uint256.NewInt(10),
	}
	result, trace, err := state.DryRun(tx, testEnv(), false)
	require.NoError(err)
	require.Nil(result.Err)
	require.Equal(uint64(21_000), result.GasUsed)
	require.NotNil(trace)

	after, err := state.GetStateRoot()
	require.NoError(err)
	require.Equal(mid, after)
	require.NoError(state.RevertBlock())
}

func TestState_SealedRootsCanBeRestored(t *testing.T) {
	require := require.New(t)
	state := testState(t)
	require.NoError(state.PutAccount(addr1, adapter.Account{Balance: uint256.NewInt(100_000)}))
	require.NoError(state.PutCode(addr2, []byte{0x60}))
	require.NoError(state.PutStorage(addr1, key1, val1))
	require.NoError(state.StartBlock())
	require.NoError(state.SealBlock())
	sealed, err := state.GetStateRoot()
	require.NoError(err)

	require.NoError(state.StartBlock())
	tx := &adapter.Transaction{
		From:     addr1,
		To:       &addr2,
		GasLimit: 21_000,
		GasPrice: uint256.NewInt(1),
		Value:    uint256.NewInt(10),
	}
	_, _, err = state.RunTxInBlock(tx, testEnv())
	require.NoError(err)
	require.NoError(state.SealBlock())
	next, err := state.GetStateRoot()
	require.NoError(err)
	require.NotEqual(sealed, next)

	require.NoError(state.RestoreContext(sealed))
	restored, err := state.GetStateRoot()
	require.NoError(err)
	require.Equal(sealed, restored)

	// The restored state carries the full content, not just the root.
	account, err := state.GetAccount(addr1)
	require.NoError(err)
	require.Equal(uint256.NewInt(100_000), account.Balance)
	code, err := state.GetCode(addr2)
	require.NoError(err)
	require.Equal([]byte{0x60}, code)
	value, err := state.GetStorage(addr1, key1)
	require.NoError(err)
	require.Equal(val1, value)
}

func TestState_RestoreContextRejectsUnknownRoots(t *testing.T) {
	require := require.New(t)
	state := testState(t)
	err := state.RestoreContext(common.Hash{0xde, 0xad})
	require.ErrorIs(err, adapter.ErrStateNotFound)
}

func TestState_RestoreContextDiscardsAnOpenBlock(t *testing.T) {
	require := require.New(t)
	state := testState(t)
	empty, err := state.GetStateRoot()
	require.NoError(err)

	require.NoError(state.StartBlock())
	require.NoError(state.PutAccount(addr1, adapter.Account{Balance: uint256.NewInt(1)}))
	require.NoError(state.RestoreContext(empty))

	root, err := state.GetStateRoot()
	require.NoError(err)
	require.Equal(empty, root)
	// The block is gone as well.
	require.Error(state.SealBlock())
}

func TestState_SetBlockContextPrefersTheIrregularRoot(t *testing.T) {
	require := require.New(t)
	state := testState(t)
	empty, err := state.GetStateRoot()
	require.NoError(err)

	require.NoError(state.PutAccount(addr1, adapter.Account{Balance: uint256.NewInt(1)}))
	header := &types.Header{Root: common.Hash{0xff}}
	require.NoError(state.SetBlockContext(header, &empty))

	root, err := state.GetStateRoot()
	require.NoError(err)
	require.Equal(empty, root)
}

func TestState_ContentSurvivesReopening(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()

	state, err := NewState(dir)
	require.NoError(err)
	require.NoError(state.PutAccount(addr1, adapter.Account{Balance: uint256.NewInt(42), Nonce: 7}))
	require.NoError(state.PutCode(addr1, []byte{0x60}))
	root, err := state.GetStateRoot()
	require.NoError(err)
	require.NoError(state.Close())

	state, err = NewState(dir)
	require.NoError(err)
	defer func() {
		require.NoError(state.Close())
	}()

	reopened, err := state.GetStateRoot()
	require.NoError(err)
	require.Equal(root, reopened)
	account, err := state.GetAccount(addr1)
	require.NoError(err)
	require.Equal(uint256.NewInt(42), account.Balance)
	require.Equal(uint64(7), account.Nonce)
}

func TestState_TracingHooksObserveBlockTransactions(t *testing.T) {
	require := require.New(t)
	state := testState(t)
	require.NoError(state.PutAccount(addr1, adapter.Account{Balance: uint256.NewInt(100_000)}))

	var started, ended int
	var steps []string
	require.NoError(state.EnableTracing(adapter.TraceHooks{
		OnTxStart: func(tx *adapter.Transaction) { started++ },
		OnStep:    func(step string) { steps = append(steps, step) },
		OnTxEnd:   func(result adapter.TransactionResult) { ended++ },
	}))

	require.NoError(state.StartBlock())
	tx := &adapter.Transaction{
		From:     addr1,
		To:       &addr2,
		GasLimit: 21_000,
		GasPrice: uint256.NewInt(1),
		Value:    uint256.NewInt(10),
	}
	_, _, err := state.RunTxInBlock(tx, testEnv())
	require.NoError(err)
	require.NoError(state.SealBlock())

	require.Equal(1, started)
	require.Equal(1, ended)
	require.NotEmpty(steps)
	require.NoError(state.DisableTracing())
}
