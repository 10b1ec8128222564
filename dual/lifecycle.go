// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package dual

import (
	"fmt"

	fcommon "github.com/0xsoniclabs/fidelio/common"
)

// ErrSequencing is the sentinel for block-lifecycle operations invoked out of
// order. Such calls are programming errors; they are rejected before either
// backend is touched so that no partial state change can occur.
const ErrSequencing = fcommon.ConstError("block lifecycle operation out of order")

// blockPhase tracks the block-building state machine of a validation
// session: Idle -> Open -> {sealed, reverted} -> Idle. A block opened by
// StartBlock must be resolved by exactly one of SealBlock or RevertBlock
// before the next StartBlock.
type blockPhase int

const (
	phaseIdle blockPhase = iota
	phaseOpen
)

// requireIdle fails with a sequencing error if a block is currently open.
func (p blockPhase) requireIdle(op string) error {
	if p != phaseIdle {
		return fmt.Errorf("%w: %s while a block is open", ErrSequencing, op)
	}
	return nil
}

// requireOpen fails with a sequencing error if no block is currently open.
func (p blockPhase) requireOpen(op string) error {
	if p != phaseOpen {
		return fmt.Errorf("%w: %s without a started block", ErrSequencing, op)
	}
	return nil
}
