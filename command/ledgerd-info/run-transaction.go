// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli"

	"github.com/metolius/ledgerd/digest"
)

func runTransaction(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	argument := c.Args().Get(0)
	if "" == argument {
		return fmt.Errorf("missing transaction id")
	}

	txId, err := digest.DigestFromHex(argument)
	if nil != err {
		return err
	}

	tx, err := m.store.GetTransaction(txId)
	if nil != err {
		return err
	}

	dump, err := json.MarshalIndent(tx, "", "  ")
	if nil != err {
		return err
	}
	fmt.Fprintf(m.w, "%s\n", dump)
	return nil
}
