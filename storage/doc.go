// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// maintain the on-disk ledger data store
//
// maintain separate pools of a number of elements in key->value form
//
// This maintains a LevelDB database split into a series of tables.
// Each table is defined by a prefix byte that is obtained from the
// prefix tag in the struct defining the available tables.
//
// Notes:
// 1. each separate pool has a single byte prefix (to spread the keys in LevelDB)
// 2. ++           = concatenation of byte data
// 3. height       = big endian uint64 (8 bytes)
// 4. txId         = transaction digest as 32 byte SHA3-256(canonical JSON)
// 5. asset id     = asset data digest as 32 byte SHA3-256(canonical JSON)
// 6. count        = successive index value as big endian uint64 (8 bytes)
// 7. owner        = account bytes (variant byte ++ 32 byte public key)
// 8. location     = txId ++ output index as big endian uint64 (40 bytes)
//
// Transactions:
//
//   T ++ txId                  - confirmed transaction
//                                data: canonical JSON of the full record
//
// Assets:
//
//   A ++ asset id              - registered asset
//                                data: canonical JSON of the asset payload
//
// Spends:
//
//   S ++ location              - spent output marker
//                                data: txId of the spending transaction
//
// Ownership index:
//
//   N ++ owner                 - next count value to use for appending to owner list
//                                data: count
//   L ++ owner ++ count        - list of outputs ever assigned to the owner
//                                data: location
//
// Blocks:
//
//   B ++ height                - block header
//                                data: canonical JSON of the header
//   P ++ "state"               - pre-commit record of the block being committed
//                                data: canonical JSON of height and transaction ids
//
// Validators:
//
//   V ++ height                - validator set effective from height
//                                data: canonical JSON of the set
//   E ++ election id           - election record
//                                data: canonical JSON of the election
//
// Testing:
//
//   Z ++ key                   - testing data
package storage
