// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/urfave/cli"

	"github.com/metolius/ledgerd/storage"
)

func runPool(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	tag := c.Args().Get(0)

	// this will be a struct type
	poolType := reflect.TypeOf(m.store.Pool)

	if "" == tag {
		fmt.Fprintf(m.w, "tags:\n")
		for i := 0; i < poolType.NumField(); i += 1 {
			fieldInfo := poolType.Field(i)
			fmt.Fprintf(m.w, "  %s  %s\n", fieldInfo.Tag.Get("prefix"), fieldInfo.Name)
		}
		return nil
	}

	count := 10
	if countArgument := c.Args().Get(1); "" != countArgument {
		n, err := strconv.Atoi(countArgument)
		if nil != err {
			return err
		}
		count = n
	}

	// read-only access
	poolValue := reflect.ValueOf(m.store.Pool)

	// the handle
	p := (*storage.PoolHandle)(nil)
	// write access to p as a Value
	pvalue := reflect.ValueOf(&p).Elem()

	// scan each field to locate tag
	for i := 0; i < poolType.NumField(); i += 1 {
		fieldInfo := poolType.Field(i)
		if tag == fieldInfo.Tag.Get("prefix") {
			pvalue.Set(poolValue.Field(i))
		}
	}
	if nil == p {
		return fmt.Errorf("no pool corresponding to: %q", tag)
	}

	// dump the items as hex; a zero count walks the whole pool
	cursor := p.NewFetchCursor()
	if count <= 0 {
		i := 0
		return cursor.Map(func(key []byte, value []byte) error {
			fmt.Fprintf(m.w, "%d: Key: %x\n", i, key)
			fmt.Fprintf(m.w, "%d: Val: %x\n", i, value)
			i += 1
			return nil
		})
	}
	data, err := cursor.Fetch(count)
	if nil != err {
		return err
	}
	for i, e := range data {
		fmt.Fprintf(m.w, "%d: Key: %x\n", i, e.Key)
		fmt.Fprintf(m.w, "%d: Val: %x\n", i, e.Value)
	}
	return nil
}
