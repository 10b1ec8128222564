// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package ldb provides a LevelDB-backed implementation of the adapter
// contract. Account, code, and storage records are persisted as RLP-encoded
// key-value entries; block checkpoints are write overlays flushed on seal;
// sealed states are archived as snappy-compressed snapshots keyed by their
// digest.
package ldb

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/0xsoniclabs/fidelio/adapter"
	"github.com/0xsoniclabs/fidelio/exec"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"
	"github.com/holiman/uint256"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	accountPrefix = byte('a')
	codePrefix    = byte('c')
	storagePrefix = byte('s')
	rootPrefix    = byte('r')
)

// State is a LevelDB-backed backend implementing the adapter contract. It is
// not safe for concurrent use.
type State struct {
	db *leveldb.DB

	// pending buffers the writes of the currently open block, nil while no
	// block is in progress.
	pending *overlay

	hooks   *adapter.TraceHooks
	tracing bool
}

// accountRecord is the persisted encoding of an account.
type accountRecord struct {
	Nonce    uint64
	Balance  *uint256.Int
	CodeHash common.Hash
}

type slotKey struct {
	address common.Address
	key     common.Hash
}

type overlay struct {
	accounts map[common.Address]accountRecord
	codes    map[common.Address][]byte // empty slice marks a deletion
	storage  map[slotKey]common.Hash   // zero value marks a deletion
}

func newOverlay() *overlay {
	return &overlay{
		accounts: map[common.Address]accountRecord{},
		codes:    map[common.Address][]byte{},
		storage:  map[slotKey]common.Hash{},
	}
}

var _ adapter.Adapter = (*State)(nil)

// NewState opens (or creates) a LevelDB-backed backend in the given
// directory.
func NewState(dir string) (*State, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open backend database: %w", err)
	}
	return initState(db)
}

// NewTransientState creates a backend on in-memory storage, mainly for tests
// and self-checks.
func NewTransientState() (*State, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open transient database: %w", err)
	}
	return initState(db)
}

func initState(db *leveldb.DB) (*State, error) {
	s := &State{db: db}
	// Make sure the empty state can always be restored.
	root, err := s.GetStateRoot()
	if err != nil {
		return nil, err
	}
	if has, err := db.Has(rootKey(root), nil); err != nil {
		return nil, err
	} else if !has {
		if err := s.archiveCurrent(root); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// --- State Access ---

func (s *State) GetAccount(address common.Address) (adapter.Account, error) {
	record, err := s.getAccountRecord(address)
	if err != nil {
		return adapter.Account{}, err
	}
	codeHash := record.CodeHash
	if codeHash == (common.Hash{}) {
		codeHash = types.EmptyCodeHash
	}
	balance := uint256.NewInt(0)
	if record.Balance != nil {
		balance.Set(record.Balance)
	}
	return adapter.Account{
		Balance:  balance,
		Nonce:    record.Nonce,
		CodeHash: codeHash,
	}, nil
}

func (s *State) getAccountRecord(address common.Address) (accountRecord, error) {
	if s.pending != nil {
		if record, found := s.pending.accounts[address]; found {
			return record, nil
		}
	}
	data, err := s.db.Get(accountKey(address), nil)
	if err == leveldb.ErrNotFound {
		return accountRecord{}, nil
	} else if err != nil {
		return accountRecord{}, err
	}
	var record accountRecord
	if err := rlp.DecodeBytes(data, &record); err != nil {
		return accountRecord{}, fmt.Errorf("corrupted account record for %s: %w", address, err)
	}
	return record, nil
}

func (s *State) GetStorage(address common.Address, key common.Hash) (common.Hash, error) {
	if s.pending != nil {
		if value, found := s.pending.storage[slotKey{address, key}]; found {
			return value, nil
		}
	}
	data, err := s.db.Get(storageKey(address, key), nil)
	if err == leveldb.ErrNotFound {
		return common.Hash{}, nil
	} else if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(data), nil
}

func (s *State) GetCode(address common.Address) ([]byte, error) {
	if s.pending != nil {
		if code, found := s.pending.codes[address]; found {
			return bytes.Clone(code), nil
		}
	}
	data, err := s.db.Get(codeKey(address), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *State) GetStateRoot() (common.Hash, error) {
	accounts, err := s.enumerate()
	if err != nil {
		return common.Hash{}, err
	}
	return adapter.StateDigest(accounts), nil
}

func (s *State) PutAccount(address common.Address, account adapter.Account) error {
	record := accountRecord{
		Nonce:    account.Nonce,
		Balance:  uint256.NewInt(0),
		CodeHash: account.CodeHash,
	}
	if account.Balance != nil {
		record.Balance.Set(account.Balance)
	}
	if s.pending != nil {
		s.pending.accounts[address] = record
		return nil
	}
	data, err := rlp.EncodeToBytes(&record)
	if err != nil {
		return err
	}
	return s.db.Put(accountKey(address), data, nil)
}

func (s *State) PutStorage(address common.Address, key common.Hash, value common.Hash) error {
	if s.pending != nil {
		s.pending.storage[slotKey{address, key}] = value
		return nil
	}
	if value == (common.Hash{}) {
		return s.db.Delete(storageKey(address, key), nil)
	}
	return s.db.Put(storageKey(address, key), value.Bytes(), nil)
}

func (s *State) PutCode(address common.Address, code []byte) error {
	if s.pending != nil {
		s.pending.codes[address] = bytes.Clone(code)
		return nil
	}
	if len(code) == 0 {
		return s.db.Delete(codeKey(address), nil)
	}
	return s.db.Put(codeKey(address), code, nil)
}

// --- Transaction Execution ---

func (s *State) DryRun(tx *adapter.Transaction, env *adapter.BlockEnvironment, forceZeroBaseFee bool) (adapter.TransactionResult, adapter.Trace, error) {
	scratch := s.scratch()
	trace := &execTrace{}
	result, err := exec.Apply(scratch, tx, env, forceZeroBaseFee, s.observer(trace))
	if err != nil {
		return adapter.TransactionResult{}, nil, err
	}
	return result, trace, nil
}

func (s *State) RunTxInBlock(tx *adapter.Transaction, env *adapter.BlockEnvironment) (adapter.TransactionResult, adapter.Trace, error) {
	if s.pending == nil {
		return adapter.TransactionResult{}, nil, fmt.Errorf("no block in progress")
	}
	if s.tracing && s.hooks.OnTxStart != nil {
		s.hooks.OnTxStart(tx)
	}
	trace := &execTrace{}
	result, err := exec.Apply(s, tx, env, false, s.observer(trace))
	if err != nil {
		return adapter.TransactionResult{}, nil, err
	}
	if s.tracing && s.hooks.OnTxEnd != nil {
		s.hooks.OnTxEnd(result)
	}
	return result, trace, nil
}

// scratch returns a view of the current state whose writes are buffered in a
// private overlay, leaving the database and any open block untouched.
func (s *State) scratch() *State {
	res := &State{db: s.db, pending: newOverlay()}
	if s.pending != nil {
		for address, record := range s.pending.accounts {
			res.pending.accounts[address] = record
		}
		for address, code := range s.pending.codes {
			res.pending.codes[address] = bytes.Clone(code)
		}
		for slot, value := range s.pending.storage {
			res.pending.storage[slot] = value
		}
	}
	return res
}

func (s *State) observer(trace *execTrace) exec.Observer {
	return func(step string) {
		trace.steps = append(trace.steps, step)
		if s.tracing && s.hooks.OnStep != nil {
			s.hooks.OnStep(step)
		}
	}
}

// --- Block Lifecycle ---

func (s *State) StartBlock() error {
	if s.pending != nil {
		return fmt.Errorf("block already in progress")
	}
	s.pending = newOverlay()
	return nil
}

func (s *State) AddBlockRewards(rewards []adapter.Reward) error {
	if s.pending == nil {
		return fmt.Errorf("no block in progress")
	}
	for _, reward := range rewards {
		account, err := s.GetAccount(reward.Beneficiary)
		if err != nil {
			return err
		}
		account.Balance = new(uint256.Int).Add(account.Balance, reward.Amount)
		if err := s.PutAccount(reward.Beneficiary, account); err != nil {
			return err
		}
	}
	return nil
}

func (s *State) SealBlock() error {
	if s.pending == nil {
		return fmt.Errorf("no block in progress")
	}
	batch := new(leveldb.Batch)
	for address, record := range s.pending.accounts {
		data, err := rlp.EncodeToBytes(&record)
		if err != nil {
			return err
		}
		batch.Put(accountKey(address), data)
	}
	for address, code := range s.pending.codes {
		if len(code) == 0 {
			batch.Delete(codeKey(address))
		} else {
			batch.Put(codeKey(address), code)
		}
	}
	for slot, value := range s.pending.storage {
		if value == (common.Hash{}) {
			batch.Delete(storageKey(slot.address, slot.key))
		} else {
			batch.Put(storageKey(slot.address, slot.key), value.Bytes())
		}
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to flush block: %w", err)
	}
	s.pending = nil

	root, err := s.GetStateRoot()
	if err != nil {
		return err
	}
	return s.archiveCurrent(root)
}

func (s *State) RevertBlock() error {
	if s.pending == nil {
		return fmt.Errorf("no block in progress")
	}
	s.pending = nil
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
	s.pending = nil
	current, err := s.GetStateRoot()
	if err != nil {
		return err
	}
	if root == current {
		return nil
	}

	blob, err := s.db.Get(rootKey(root), nil)
	if err == leveldb.ErrNotFound {
		return adapter.ErrStateNotFound
	} else if err != nil {
		return err
	}
	raw, err := snappy.Decode(nil, blob)
	if err != nil {
		return fmt.Errorf("corrupted state snapshot for %s: %w", root, err)
	}
	var snapshot []archivedAccount
	if err := rlp.DecodeBytes(raw, &snapshot); err != nil {
		return fmt.Errorf("corrupted state snapshot for %s: %w", root, err)
	}

	batch := new(leveldb.Batch)
	for _, prefix := range []byte{accountPrefix, codePrefix, storagePrefix} {
		iter := s.db.NewIterator(util.BytesPrefix([]byte{prefix}), nil)
		for iter.Next() {
			batch.Delete(bytes.Clone(iter.Key()))
		}
		iter.Release()
		if err := iter.Error(); err != nil {
			return err
		}
	}
	for _, account := range snapshot {
		record := accountRecord{
			Nonce:    account.Nonce,
			Balance:  account.Balance,
			CodeHash: account.CodeHash,
		}
		data, err := rlp.EncodeToBytes(&record)
		if err != nil {
			return err
		}
		batch.Put(accountKey(account.Address), data)
		if len(account.Code) > 0 {
			batch.Put(codeKey(account.Address), account.Code)
		}
		for _, slot := range account.Slots {
			batch.Put(storageKey(account.Address, slot.Key), slot.Value.Bytes())
		}
	}
	return s.db.Write(batch, nil)
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
	return s.db.Close()
}

// --- snapshot archive ---

// archivedAccount is the persisted encoding of one account in a state
// snapshot.
type archivedAccount struct {
	Address  common.Address
	Nonce    uint64
	Balance  *uint256.Int
	CodeHash common.Hash
	Code     []byte
	Slots    []archivedSlot
}

type archivedSlot struct {
	Key   common.Hash
	Value common.Hash
}

// archiveCurrent stores a restorable snapshot of the current state under the
// given root.
func (s *State) archiveCurrent(root common.Hash) error {
	accounts, err := s.enumerate()
	if err != nil {
		return err
	}
	snapshot := make([]archivedAccount, 0, len(accounts))
	for _, account := range accounts {
		record, err := s.getAccountRecord(account.Address)
		if err != nil {
			return err
		}
		archived := archivedAccount{
			Address:  account.Address,
			Nonce:    account.Nonce,
			Balance:  account.Balance,
			CodeHash: record.CodeHash,
			Code:     account.Code,
		}
		for _, slot := range account.Slots {
			archived.Slots = append(archived.Slots, archivedSlot{Key: slot.Key, Value: slot.Value})
		}
		snapshot = append(snapshot, archived)
	}
	raw, err := rlp.EncodeToBytes(snapshot)
	if err != nil {
		return err
	}
	return s.db.Put(rootKey(root), snappy.Encode(nil, raw), nil)
}

// enumerate collects the full current state, overlay included, sorted by
// address and slot key as required by the state digest.
func (s *State) enumerate() ([]adapter.DigestAccount, error) {
	type entry struct {
		record    accountRecord
		hasRecord bool
		code      []byte
		slots     map[common.Hash]common.Hash
	}
	entries := map[common.Address]*entry{}
	get := func(address common.Address) *entry {
		e, found := entries[address]
		if !found {
			e = &entry{slots: map[common.Hash]common.Hash{}}
			entries[address] = e
		}
		return e
	}

	iter := s.db.NewIterator(util.BytesPrefix([]byte{accountPrefix}), nil)
	for iter.Next() {
		address := common.BytesToAddress(iter.Key()[1:])
		var record accountRecord
		if err := rlp.DecodeBytes(iter.Value(), &record); err != nil {
			iter.Release()
			return nil, fmt.Errorf("corrupted account record for %s: %w", address, err)
		}
		e := get(address)
		e.record = record
		e.hasRecord = true
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, err
	}

	iter = s.db.NewIterator(util.BytesPrefix([]byte{codePrefix}), nil)
	for iter.Next() {
		address := common.BytesToAddress(iter.Key()[1:])
		get(address).code = bytes.Clone(iter.Value())
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, err
	}

	iter = s.db.NewIterator(util.BytesPrefix([]byte{storagePrefix}), nil)
	for iter.Next() {
		key := iter.Key()
		address := common.BytesToAddress(key[1 : 1+common.AddressLength])
		slot := common.BytesToHash(key[1+common.AddressLength:])
		get(address).slots[slot] = common.BytesToHash(iter.Value())
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, err
	}

	if s.pending != nil {
		for address, record := range s.pending.accounts {
			e := get(address)
			e.record = record
			e.hasRecord = true
		}
		for address, code := range s.pending.codes {
			if len(code) == 0 {
				if e, found := entries[address]; found {
					e.code = nil
				}
			} else {
				get(address).code = bytes.Clone(code)
			}
		}
		for slot, value := range s.pending.storage {
			if value == (common.Hash{}) {
				if e, found := entries[slot.address]; found {
					delete(e.slots, slot.key)
				}
			} else {
				get(slot.address).slots[slot.key] = value
			}
		}
	}

	// Overlay deletions may have emptied an entry that only existed for its
	// code or storage; such addresses are no longer part of the state.
	addresses := make([]common.Address, 0, len(entries))
	for address, e := range entries {
		if !e.hasRecord && len(e.code) == 0 && len(e.slots) == 0 {
			continue
		}
		addresses = append(addresses, address)
	}
	sort.Slice(addresses, func(i, j int) bool {
		return addresses[i].Cmp(addresses[j]) < 0
	})

	res := make([]adapter.DigestAccount, 0, len(addresses))
	for _, address := range addresses {
		e := entries[address]
		account := adapter.DigestAccount{
			Address: address,
			Balance: e.record.Balance,
			Nonce:   e.record.Nonce,
			Code:    e.code,
		}
		for key, value := range e.slots {
			account.Slots = append(account.Slots, adapter.DigestSlot{Key: key, Value: value})
		}
		sort.Slice(account.Slots, func(i, j int) bool {
			return bytes.Compare(account.Slots[i].Key[:], account.Slots[j].Key[:]) < 0
		})
		res = append(res, account)
	}
	return res, nil
}

func accountKey(address common.Address) []byte {
	return append([]byte{accountPrefix}, address[:]...)
}

func codeKey(address common.Address) []byte {
	return append([]byte{codePrefix}, address[:]...)
}

func storageKey(address common.Address, key common.Hash) []byte {
	res := append([]byte{storagePrefix}, address[:]...)
	return append(res, key[:]...)
}

func rootKey(root common.Hash) []byte {
	return append([]byte{rootPrefix}, root[:]...)
}

// execTrace is the execution trace produced by this backend, a plain list of
// rendered execution steps.
type execTrace struct {
	steps []string
}

func (t *execTrace) String() string {
	if len(t.steps) == 0 {
		return "(empty trace)"
	}
	return strings.Join(t.steps, "\n")
}
