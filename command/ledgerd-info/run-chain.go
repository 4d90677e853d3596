// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/metolius/ledgerd/fault"
)

func runChain(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	latest, err := m.store.GetLatestBlock()
	if fault.ErrBlockNotFound == err {
		fmt.Fprintf(m.w, "empty chain\n")
		return nil
	}
	if nil != err {
		return err
	}

	fmt.Fprintf(m.w, "height:       %d\n", latest.Height)
	fmt.Fprintf(m.w, "app hash:     %s\n", latest.AppHash)
	fmt.Fprintf(m.w, "transactions: %d\n", len(latest.TxIds))
	if m.verbose {
		for i, txId := range latest.TxIds {
			fmt.Fprintf(m.w, "  %d: %s\n", i, txId)
		}
	}
	return nil
}
