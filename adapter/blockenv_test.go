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
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestNewBlockEnvironment_CopiesHeaderFields(t *testing.T) {
	require := require.New(t)
	header := &types.Header{
		Number:     big.NewInt(12),
		Coinbase:   common.Address{0x0a},
		Time:       1_000,
		GasLimit:   30_000_000,
		Difficulty: big.NewInt(0),
	}
	env := NewBlockEnvironment(header, Frontier, nil)
	require.Equal(uint64(12), env.Number)
	require.Equal(common.Address{0x0a}, env.Coinbase)
	require.Equal(uint64(1_000), env.Timestamp)
	require.Equal(uint64(30_000_000), env.GasLimit)
}

func TestNewBlockEnvironment_BaseFeeDependsOnRevision(t *testing.T) {
	tests := map[string]struct {
		fork    Hardfork
		baseFee *big.Int
		want    *uint256.Int
	}{
		"pre-london ignores header base fee": {
			fork:    Berlin,
			baseFee: big.NewInt(7),
			want:    nil,
		},
		"london picks up header base fee": {
			fork:    London,
			baseFee: big.NewInt(7),
			want:    uint256.NewInt(7),
		},
		"london with missing base fee": {
			fork:    London,
			baseFee: nil,
			want:    nil,
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			header := &types.Header{
				Number:     big.NewInt(1),
				Difficulty: big.NewInt(0),
				BaseFee:    test.baseFee,
			}
			env := NewBlockEnvironment(header, test.fork, nil)
			if test.want == nil {
				require.Nil(t, env.BaseFee)
			} else {
				require.Equal(t, test.want, env.BaseFee)
			}
		})
	}
}

func TestNewBlockEnvironment_PostMergeUsesMixDigest(t *testing.T) {
	require := require.New(t)
	header := &types.Header{
		Number:     big.NewInt(1),
		Difficulty: big.NewInt(100),
		MixDigest:  common.Hash{0xab, 0xcd},
	}
	env := NewBlockEnvironment(header, Paris, nil)
	require.Equal(header.MixDigest, env.PrevRandao)
}

func TestNewBlockEnvironment_PreMergeEncodesDifficulty(t *testing.T) {
	require := require.New(t)
	header := &types.Header{
		Number:     big.NewInt(1),
		Difficulty: big.NewInt(0x01_02_03),
	}
	env := NewBlockEnvironment(header, Berlin, nil)
	want := common.Hash{}
	want[29], want[30], want[31] = 0x01, 0x02, 0x03
	require.Equal(want, env.PrevRandao)
}

func TestNewBlockEnvironment_OversizedDifficultyIsClamped(t *testing.T) {
	require := require.New(t)
	huge := new(big.Int).Lsh(big.NewInt(1), 200)
	header := &types.Header{
		Number:     big.NewInt(1),
		Difficulty: huge,
	}
	env := NewBlockEnvironment(header, Berlin, nil)
	want := common.Hash{}
	want[28], want[29], want[30], want[31] = 0xff, 0xff, 0xff, 0xff
	require.Equal(want, env.PrevRandao)

	// A value just above the limit clamps the same way.
	header.Difficulty = big.NewInt(math.MaxUint32 + 1)
	env = NewBlockEnvironment(header, Berlin, nil)
	require.Equal(want, env.PrevRandao)
}

func TestEffectiveBaseFee_ZeroOverride(t *testing.T) {
	require := require.New(t)
	env := &BlockEnvironment{BaseFee: uint256.NewInt(7)}
	require.Equal(uint256.NewInt(7), env.EffectiveBaseFee(false))
	require.Equal(uint256.NewInt(0), env.EffectiveBaseFee(true))

	env = &BlockEnvironment{}
	require.Equal(uint256.NewInt(0), env.EffectiveBaseFee(false))
}

func TestHardfork_RevisionProperties(t *testing.T) {
	require := require.New(t)
	require.False(Berlin.IsPostMerge())
	require.True(Paris.IsPostMerge())
	require.True(Cancun.IsPostMerge())
	require.False(Istanbul.HasBaseFee())
	require.True(London.HasBaseFee())

	require.Equal("frontier", Frontier.String())
	require.Equal("cancun", Cancun.String())
	require.Equal("unknown", Hardfork(99).String())
}
