// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fastquery - read-side index over committed ledger state
//
// every answer comes straight from the gateway pools the commit path
// maintains, so no scan ever touches transaction bodies except to
// resolve a spending transaction
package fastquery

import (
	"github.com/metolius/ledgerd/account"
	"github.com/metolius/ledgerd/storage"
	"github.com/metolius/ledgerd/transactionrecord"
)

// FastQuery - query interface for clients of the ledger
type FastQuery interface {
	GetOutputsByPublicKey(owner *account.Account) ([]transactionrecord.OutputLocation, error)
	GetSpent(location transactionrecord.OutputLocation) (*transactionrecord.Transaction, error)
	FilterSpentOutputs(outputs []transactionrecord.OutputLocation) ([]transactionrecord.OutputLocation, error)
	FilterUnspentOutputs(outputs []transactionrecord.OutputLocation) ([]transactionrecord.OutputLocation, error)
}

type fastQuery struct {
	store storage.Gateway
}

// New - attach the query layer to a gateway
func New(store storage.Gateway) FastQuery {
	return &fastQuery{
		store: store,
	}
}

// GetOutputsByPublicKey - every output ever assigned to an owning key,
// in insertion order
//
// spent outputs are included; apply a filter to partition them
func (f *fastQuery) GetOutputsByPublicKey(owner *account.Account) ([]transactionrecord.OutputLocation, error) {
	return f.store.GetOutputsByPublicKey(owner)
}

// GetSpent - the transaction that consumed an output
//
// nil with no error means the output is unspent
func (f *fastQuery) GetSpent(location transactionrecord.OutputLocation) (*transactionrecord.Transaction, error) {
	spender, err := f.store.GetSpent(location)
	if nil != err {
		return nil, err
	}
	if nil == spender {
		return nil, nil
	}
	return f.store.GetTransaction(*spender)
}

// FilterSpentOutputs - keep only outputs that have been consumed
func (f *fastQuery) FilterSpentOutputs(outputs []transactionrecord.OutputLocation) ([]transactionrecord.OutputLocation, error) {
	return f.filter(outputs, true)
}

// FilterUnspentOutputs - keep only outputs still available to spend
func (f *fastQuery) FilterUnspentOutputs(outputs []transactionrecord.OutputLocation) ([]transactionrecord.OutputLocation, error) {
	return f.filter(outputs, false)
}

func (f *fastQuery) filter(outputs []transactionrecord.OutputLocation, spent bool) ([]transactionrecord.OutputLocation, error) {
	filtered := make([]transactionrecord.OutputLocation, 0, len(outputs))
	for _, location := range outputs {
		spender, err := f.store.GetSpent(location)
		if nil != err {
			return nil, err
		}
		if spent == (nil != spender) {
			filtered = append(filtered, location)
		}
	}
	return filtered, nil
}
