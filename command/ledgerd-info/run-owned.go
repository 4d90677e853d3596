// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/metolius/ledgerd/account"
	"github.com/metolius/ledgerd/fastquery"
)

func runOwned(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	argument := c.Args().Get(0)
	if "" == argument {
		return fmt.Errorf("missing owner account")
	}

	owner, err := account.AccountFromBase58(argument)
	if nil != err {
		return err
	}

	queries := fastquery.New(m.store)

	outputs, err := queries.GetOutputsByPublicKey(owner)
	if nil != err {
		return err
	}

	if c.Bool("unspent") {
		outputs, err = queries.FilterUnspentOutputs(outputs)
		if nil != err {
			return err
		}
	}

	for i, location := range outputs {
		fmt.Fprintf(m.w, "%d: %s\n", i, location)
	}
	if m.verbose {
		fmt.Fprintf(m.e, "total: %d\n", len(outputs))
	}
	return nil
}
