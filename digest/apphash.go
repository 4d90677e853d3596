// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package digest

// AppHash - compute the application hash committing a block of
// transaction ids on top of the previous block's hash
//
// an empty block carries the previous hash forward unchanged so that
// heights without transactions do not perturb the commitment chain
func AppHash(previous Digest, txIds []Digest) Digest {
	if 0 == len(txIds) {
		return previous
	}

	buffer := make([]byte, 0, len(txIds)*Length)
	for _, id := range txIds {
		buffer = append(buffer, id[:]...)
	}
	batch := NewDigest(buffer)

	return NewDigest(append(previous[:], batch[:]...))
}
