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
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// Hardfork identifies the revision of the execution rules active for a given
// block.
type Hardfork int

const (
	Frontier Hardfork = iota
	Istanbul
	Berlin
	London
	Paris
	Shanghai
	Cancun
)

func (f Hardfork) String() string {
	switch f {
	case Frontier:
		return "frontier"
	case Istanbul:
		return "istanbul"
	case Berlin:
		return "berlin"
	case London:
		return "london"
	case Paris:
		return "paris"
	case Shanghai:
		return "shanghai"
	case Cancun:
		return "cancun"
	}
	return "unknown"
}

// IsPostMerge reports whether the revision uses the header's mix-hash as the
// randomness source instead of the difficulty.
func (f Hardfork) IsPostMerge() bool {
	return f >= Paris
}

// HasBaseFee reports whether blocks of this revision carry a base fee.
func (f Hardfork) HasBaseFee() bool {
	return f >= London
}

// HardforkSelector maps a block number to the hardfork active at that block.
type HardforkSelector func(block uint64) Hardfork

// BlockHashFunc resolves a block number to its hash. It returns
// ErrStateNotFound if no block with the given number is known.
type BlockHashFunc func(number uint64) (common.Hash, error)

// BlockEnvironment is the execution environment derived from a block header.
// It carries everything a backend needs to execute transactions in the
// context of that block.
type BlockEnvironment struct {
	Number    uint64
	Coinbase  common.Address
	Timestamp uint64
	GasLimit  uint64

	// BaseFee is nil for pre-London blocks.
	BaseFee *uint256.Int

	// PrevRandao holds the block's randomness source, populated from the
	// mix-hash for post-merge blocks and from the difficulty otherwise.
	PrevRandao common.Hash

	// GetHash resolves historic block hashes for the BLOCKHASH operation.
	GetHash BlockHashFunc
}

// maxDifficulty bounds the difficulty value carried into the execution
// environment for pre-merge blocks. Larger source values are clamped.
const maxDifficulty = math.MaxUint32

// NewBlockEnvironment derives the execution environment for the given header
// under the given hardfork. The block-hash lookup is injected by the caller.
func NewBlockEnvironment(header *types.Header, fork Hardfork, getHash BlockHashFunc) *BlockEnvironment {
	env := &BlockEnvironment{
		Number:    header.Number.Uint64(),
		Coinbase:  header.Coinbase,
		Timestamp: header.Time,
		GasLimit:  header.GasLimit,
		GetHash:   getHash,
	}

	if fork.HasBaseFee() && header.BaseFee != nil {
		env.BaseFee, _ = uint256.FromBig(header.BaseFee)
	}

	if fork.IsPostMerge() {
		env.PrevRandao = header.MixDigest
	} else {
		difficulty := header.Difficulty.Uint64()
		if !header.Difficulty.IsUint64() || difficulty > maxDifficulty {
			log.Warn("Block difficulty exceeds supported maximum, clamping",
				"block", env.Number, "difficulty", header.Difficulty)
			difficulty = maxDifficulty
		}
		binary.BigEndian.PutUint64(env.PrevRandao[24:], difficulty)
	}

	return env
}

// EffectiveBaseFee returns the base fee to apply for an execution, honoring
// the dry-run override forcing it to zero.
func (e *BlockEnvironment) EffectiveBaseFee(forceZero bool) *uint256.Int {
	if forceZero || e.BaseFee == nil {
		return uint256.NewInt(0)
	}
	return e.BaseFee
}
