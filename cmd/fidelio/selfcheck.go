// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/0xsoniclabs/fidelio/adapter"
	"github.com/0xsoniclabs/fidelio/backend/ldb"
	"github.com/0xsoniclabs/fidelio/backend/memory"
	"github.com/0xsoniclabs/fidelio/dual"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"
)

var SelfCheck = cli.Command{
	Action: selfCheck,
	Name:   "selfcheck",
	Usage:  "replays a scripted block against a memory/LevelDB backend pair and cross-checks every step",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "data-dir",
			Usage: "directory for the LevelDB backend, transient storage if empty",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "print execution traces of the replayed transactions",
		},
	},
}

func selfCheck(context *cli.Context) error {
	reference := memory.NewState()

	var candidate *ldb.State
	var err error
	if dir := context.String("data-dir"); dir != "" {
		candidate, err = ldb.NewState(dir)
	} else {
		candidate, err = ldb.NewTransientState()
	}
	if err != nil {
		return err
	}

	session := dual.NewAdapter(reference, candidate, dual.NewWriterReporter(os.Stdout))
	defer session.Close()

	var (
		alice    = common.HexToAddress("0xA11ce00000000000000000000000000000000000")
		bob      = common.HexToAddress("0xB0b0000000000000000000000000000000000000")
		coinbase = common.HexToAddress("0xC01bbee000000000000000000000000000000000")
	)

	if err := session.PutAccount(alice, adapter.Account{
		Balance:  uint256.NewInt(1_000_000_000),
		CodeHash: types.EmptyCodeHash,
	}); err != nil {
		return err
	}

	header := &types.Header{
		Number:   big.NewInt(1),
		Coinbase: coinbase,
		GasLimit: 30_000_000,
		BaseFee:  big.NewInt(0),
	}
	env := adapter.NewBlockEnvironment(header, adapter.Paris, nil)

	if err := session.StartBlock(); err != nil {
		return err
	}

	transfer := &adapter.Transaction{
		From:     alice,
		To:       &bob,
		Nonce:    0,
		GasLimit: 21_000,
		GasPrice: uint256.NewInt(1),
		Value:    uint256.NewInt(1_000),
	}
	result, trace, err := session.RunTxInBlock(transfer, env)
	if err != nil {
		return errors.Join(fmt.Errorf("transfer failed"), err, session.RevertBlock())
	}
	printTrace(context, "transfer", trace)
	fmt.Printf("transfer: gas=%d\n", result.GasUsed)

	create := &adapter.Transaction{
		From:     alice,
		Nonce:    1,
		GasLimit: 100_000,
		GasPrice: uint256.NewInt(1),
		Value:    uint256.NewInt(0),
		Data:     []byte{0x60, 0x00, 0x60, 0x00, 0xf3},
	}
	result, trace, err = session.RunTxInBlock(create, env)
	if err != nil {
		return errors.Join(fmt.Errorf("contract creation failed"), err, session.RevertBlock())
	}
	printTrace(context, "create", trace)
	fmt.Printf("create: gas=%d contract=%s\n", result.GasUsed, result.CreatedContract)

	if err := session.AddBlockRewards([]adapter.Reward{
		{Beneficiary: coinbase, Amount: uint256.NewInt(0)},
	}); err != nil {
		return err
	}
	if err := session.SealBlock(); err != nil {
		return err
	}

	root, err := session.GetStateRoot()
	if err != nil {
		return err
	}
	fmt.Printf("sealed block 1 with state root %s\n", root)

	if _, err := session.GetAccount(alice); err != nil {
		return err
	}
	if _, err := session.GetCode(*result.CreatedContract); err != nil {
		return err
	}

	fmt.Printf("All checks passed!\n")
	return nil
}

func printTrace(context *cli.Context, label string, trace adapter.Trace) {
	if !context.Bool("verbose") || trace == nil {
		return
	}
	fmt.Printf("--- %s trace ---\n%s\n", label, trace)
}
