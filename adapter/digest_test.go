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
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestStateDigest_IsDeterministic(t *testing.T) {
	require := require.New(t)
	accounts := []DigestAccount{{
		Address: common.Address{0x01},
		Balance: uint256.NewInt(42),
		Nonce:   7,
		Code:    []byte{0x60},
		Slots: []DigestSlot{
			{Key: common.Hash{0x0a}, Value: common.Hash{0x0b}},
		},
	}}
	require.Equal(StateDigest(accounts), StateDigest(accounts))
}

func TestStateDigest_IsSensitiveToEveryComponent(t *testing.T) {
	base := func() []DigestAccount {
		return []DigestAccount{{
			Address: common.Address{0x01},
			Balance: uint256.NewInt(42),
			Nonce:   7,
			Code:    []byte{0x60},
			Slots: []DigestSlot{
				{Key: common.Hash{0x0a}, Value: common.Hash{0x0b}},
			},
		}}
	}
	reference := StateDigest(base())

	tests := map[string]func(accounts []DigestAccount){
		"address": func(a []DigestAccount) { a[0].Address = common.Address{0x02} },
		"balance": func(a []DigestAccount) { a[0].Balance = uint256.NewInt(43) },
		"nonce":   func(a []DigestAccount) { a[0].Nonce++ },
		"code":    func(a []DigestAccount) { a[0].Code = []byte{0x61} },
		"slot key": func(a []DigestAccount) {
			a[0].Slots[0].Key = common.Hash{0x0c}
		},
		"slot value": func(a []DigestAccount) {
			a[0].Slots[0].Value = common.Hash{0x0c}
		},
		"extra slot": func(a []DigestAccount) {
			a[0].Slots = append(a[0].Slots, DigestSlot{Key: common.Hash{0x0c}})
		},
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			accounts := base()
			mutate(accounts)
			require.NotEqual(t, reference, StateDigest(accounts))
		})
	}
}

func TestStateDigest_NilBalanceEqualsZeroBalance(t *testing.T) {
	require := require.New(t)
	withNil := []DigestAccount{{Address: common.Address{0x01}}}
	withZero := []DigestAccount{{Address: common.Address{0x01}, Balance: uint256.NewInt(0)}}
	require.Equal(StateDigest(withNil), StateDigest(withZero))
}

func TestStateDigest_AccountBoundariesAreUnambiguous(t *testing.T) {
	// Moving a slot from one account to the next changes the digest even
	// though the concatenated slot data would be identical.
	require := require.New(t)
	a := []DigestAccount{
		{Address: common.Address{0x01}, Slots: []DigestSlot{{Key: common.Hash{0x0a}, Value: common.Hash{0x0b}}}},
		{Address: common.Address{0x02}},
	}
	b := []DigestAccount{
		{Address: common.Address{0x01}},
		{Address: common.Address{0x02}, Slots: []DigestSlot{{Key: common.Hash{0x0a}, Value: common.Hash{0x0b}}}},
	}
	require.NotEqual(StateDigest(a), StateDigest(b))
}
