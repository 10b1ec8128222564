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
	"encoding/binary"

	fcommon "github.com/0xsoniclabs/fidelio/common"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// DigestAccount is the normalized form of one account fed into StateDigest.
// Accounts must be enumerated in ascending address order, slots in ascending
// key order.
type DigestAccount struct {
	Address common.Address
	Balance *uint256.Int
	Nonce   uint64
	Code    []byte
	Slots   []DigestSlot
}

// DigestSlot is one storage slot of a DigestAccount.
type DigestSlot struct {
	Key   common.Hash
	Value common.Hash
}

// StateDigest computes the digest identifying a logical chain state from a
// flat, sorted enumeration of its contents. Backends store state in
// arbitrary encodings, but all report this digest as their state root, which
// makes roots directly comparable across backends.
func StateDigest(accounts []DigestAccount) common.Hash {
	data := make([]byte, 0, 1024)
	for _, account := range accounts {
		data = append(data, account.Address[:]...)
		balance := account.Balance
		if balance == nil {
			balance = uint256.NewInt(0)
		}
		b32 := balance.Bytes32()
		data = append(data, b32[:]...)
		data = binary.BigEndian.AppendUint64(data, account.Nonce)
		codeHash := fcommon.Keccak256(account.Code)
		data = append(data, codeHash[:]...)
		data = binary.BigEndian.AppendUint64(data, uint64(len(account.Slots)))
		for _, slot := range account.Slots {
			data = append(data, slot.Key[:]...)
			data = append(data, slot.Value[:]...)
		}
	}
	return fcommon.Keccak256(data)
}
