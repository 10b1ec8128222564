// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package memory provides an all-in-memory implementation of the adapter
// contract. State is held in flat maps, block checkpoints are full copies,
// and sealed states are archived by their digest for later restoration.
package memory

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/0xsoniclabs/fidelio/adapter"
	"github.com/0xsoniclabs/fidelio/exec"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"golang.org/x/exp/maps"
)

// State is an in-memory backend implementing the adapter contract. It is not
// safe for concurrent use.
type State struct {
	current *stateData

	// checkpoint holds the state captured by StartBlock while a block is
	// open, nil otherwise.
	checkpoint *stateData

	// archive maps sealed state roots to restorable copies.
	archive map[common.Hash]*stateData

	hooks   *adapter.TraceHooks
	tracing bool
}

type stateData struct {
	accounts map[common.Address]accountData
	storage  map[slotKey]common.Hash
	codes    map[common.Address][]byte
}

type accountData struct {
	balance  uint256.Int
	nonce    uint64
	codeHash common.Hash
}

type slotKey struct {
	address common.Address
	key     common.Hash
}

var _ adapter.Adapter = (*State)(nil)

// NewState creates a new, empty in-memory backend. The empty state is
// archived so that it can be restored after experiments.
func NewState() *State {
	s := &State{
		current: newStateData(),
		archive: map[common.Hash]*stateData{},
	}
	s.archive[s.current.digest()] = s.current.copy()
	return s
}

func newStateData() *stateData {
	return &stateData{
		accounts: map[common.Address]accountData{},
		storage:  map[slotKey]common.Hash{},
		codes:    map[common.Address][]byte{},
	}
}

// --- State Access ---

func (s *State) GetAccount(address common.Address) (adapter.Account, error) {
	return s.current.getAccount(address), nil
}

func (s *State) GetStorage(address common.Address, key common.Hash) (common.Hash, error) {
	return s.current.storage[slotKey{address, key}], nil
}

func (s *State) GetCode(address common.Address) ([]byte, error) {
	return s.current.codes[address], nil
}

func (s *State) GetStateRoot() (common.Hash, error) {
	return s.current.digest(), nil
}

func (s *State) PutAccount(address common.Address, account adapter.Account) error {
	return s.current.putAccount(address, account)
}

func (s *State) PutStorage(address common.Address, key common.Hash, value common.Hash) error {
	if value == (common.Hash{}) {
		delete(s.current.storage, slotKey{address, key})
		return nil
	}
	s.current.storage[slotKey{address, key}] = value
	return nil
}

func (s *State) PutCode(address common.Address, code []byte) error {
	if len(code) == 0 {
		delete(s.current.codes, address)
		return nil
	}
	s.current.codes[address] = append([]byte{}, code...)
	return nil
}

// --- Transaction Execution ---

func (s *State) DryRun(tx *adapter.Transaction, env *adapter.BlockEnvironment, forceZeroBaseFee bool) (adapter.TransactionResult, adapter.Trace, error) {
	scratch := &State{current: s.current.copy()}
	trace := &stepTrace{}
	result, err := exec.Apply(scratch, tx, env, forceZeroBaseFee, s.observer(trace))
	if err != nil {
		return adapter.TransactionResult{}, nil, err
	}
	return result, trace, nil
}

func (s *State) RunTxInBlock(tx *adapter.Transaction, env *adapter.BlockEnvironment) (adapter.TransactionResult, adapter.Trace, error) {
	if s.checkpoint == nil {
		return adapter.TransactionResult{}, nil, fmt.Errorf("no block in progress")
	}
	if s.tracing && s.hooks.OnTxStart != nil {
		s.hooks.OnTxStart(tx)
	}
	trace := &stepTrace{}
	result, err := exec.Apply(s, tx, env, false, s.observer(trace))
	if err != nil {
		return adapter.TransactionResult{}, nil, err
	}
	if s.tracing && s.hooks.OnTxEnd != nil {
		s.hooks.OnTxEnd(result)
	}
	return result, trace, nil
}

// observer returns the step callback recording into the given trace and
// forwarding to installed hooks.
func (s *State) observer(trace *stepTrace) exec.Observer {
	return func(step string) {
		trace.steps = append(trace.steps, step)
		if s.tracing && s.hooks.OnStep != nil {
			s.hooks.OnStep(step)
		}
	}
}

// --- Block Lifecycle ---

func (s *State) StartBlock() error {
	if s.checkpoint != nil {
		return fmt.Errorf("block already in progress")
	}
	s.checkpoint = s.current.copy()
	return nil
}

func (s *State) AddBlockRewards(rewards []adapter.Reward) error {
	if s.checkpoint == nil {
		return fmt.Errorf("no block in progress")
	}
	for _, reward := range rewards {
		account := s.current.getAccount(reward.Beneficiary)
		account.Balance = new(uint256.Int).Add(account.Balance, reward.Amount)
		if err := s.current.putAccount(reward.Beneficiary, account); err != nil {
			return err
		}
	}
	return nil
}

func (s *State) SealBlock() error {
	if s.checkpoint == nil {
		return fmt.Errorf("no block in progress")
	}
	s.checkpoint = nil
	s.archive[s.current.digest()] = s.current.copy()
	return nil
}

func (s *State) RevertBlock() error {
	if s.checkpoint == nil {
		return fmt.Errorf("no block in progress")
	}
	s.current = s.checkpoint
	s.checkpoint = nil
	return nil
}

// --- Context Control ---

func (s *State) SetBlockContext(header *types.Header, irregularRoot *common.Hash) error {
	root := header.Root
	if irregularRoot != nil {
		root = *irregularRoot
	}
	return s.RestoreContext(root)
}

func (s *State) RestoreContext(root common.Hash) error {
	// Any open block is discarded, its writes included, even if no further
	// rewind is needed.
	if s.checkpoint != nil {
		s.current = s.checkpoint
		s.checkpoint = nil
	}
	if root == s.current.digest() {
		return nil
	}
	archived, found := s.archive[root]
	if !found {
		return adapter.ErrStateNotFound
	}
	s.current = archived.copy()
	return nil
}

// --- Tracing ---

func (s *State) TraceTransaction(tx *adapter.Transaction, env *adapter.BlockEnvironment) (adapter.Trace, error) {
	_, trace, err := s.DryRun(tx, env, false)
	return trace, err
}

func (s *State) EnableTracing(hooks adapter.TraceHooks) error {
	s.hooks = &hooks
	s.tracing = true
	return nil
}

func (s *State) DisableTracing() error {
	s.hooks = nil
	s.tracing = false
	return nil
}

func (s *State) Close() error {
	return nil
}

// --- internal state representation ---

func (d *stateData) getAccount(address common.Address) adapter.Account {
	account := d.accounts[address]
	codeHash := account.codeHash
	if codeHash == (common.Hash{}) {
		codeHash = types.EmptyCodeHash
	}
	return adapter.Account{
		Balance:  new(uint256.Int).Set(&account.balance),
		Nonce:    account.nonce,
		CodeHash: codeHash,
	}
}

func (d *stateData) putAccount(address common.Address, account adapter.Account) error {
	data := accountData{nonce: account.Nonce, codeHash: account.CodeHash}
	if account.Balance != nil {
		data.balance = *account.Balance
	}
	d.accounts[address] = data
	return nil
}

func (d *stateData) copy() *stateData {
	res := newStateData()
	maps.Copy(res.accounts, d.accounts)
	maps.Copy(res.storage, d.storage)
	for address, code := range d.codes {
		res.codes[address] = append([]byte{}, code...)
	}
	return res
}

// digest folds the state content into the backend-independent state root.
func (d *stateData) digest() common.Hash {
	addresses := map[common.Address]struct{}{}
	for address := range d.accounts {
		addresses[address] = struct{}{}
	}
	for slot := range d.storage {
		addresses[slot.address] = struct{}{}
	}
	for address := range d.codes {
		addresses[address] = struct{}{}
	}
	sorted := maps.Keys(addresses)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Cmp(sorted[j]) < 0
	})

	list := make([]adapter.DigestAccount, 0, len(sorted))
	for _, address := range sorted {
		account := d.accounts[address]
		entry := adapter.DigestAccount{
			Address: address,
			Balance: new(uint256.Int).Set(&account.balance),
			Nonce:   account.nonce,
			Code:    d.codes[address],
		}
		for slot, value := range d.storage {
			if slot.address == address {
				entry.Slots = append(entry.Slots, adapter.DigestSlot{Key: slot.key, Value: value})
			}
		}
		sort.Slice(entry.Slots, func(i, j int) bool {
			return bytes.Compare(entry.Slots[i].Key[:], entry.Slots[j].Key[:]) < 0
		})
		list = append(list, entry)
	}
	return adapter.StateDigest(list)
}

// stepTrace is the execution trace produced by this backend, a plain list of
// rendered execution steps.
type stepTrace struct {
	steps []string
}

func (t *stepTrace) String() string {
	if len(t.steps) == 0 {
		return "(empty trace)"
	}
	return strings.Join(t.steps, "\n")
}
