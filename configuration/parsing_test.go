// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

const sampleConfiguration = `
local M = {}

M.data_directory = "."

M.database = {
    directory = "db",
    name = "test-ledger",
    read_only = false,
}

M.logging = {
    size = 262144,
    count = 5,
    console = false,
    levels = {
        DEFAULT = "error",
    },
}

return M
`

func TestGetConfiguration(t *testing.T) {
	dir, err := ioutil.TempDir("", "configuration-test")
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}
	defer os.RemoveAll(dir)

	fileName := filepath.Join(dir, "ledgerd.conf")
	err = ioutil.WriteFile(fileName, []byte(sampleConfiguration), 0600)
	if nil != err {
		t.Fatalf("write error: %s", err)
	}

	options, err := GetConfiguration(fileName)
	if nil != err {
		t.Fatalf("configuration error: %s", err)
	}

	if "test-ledger" != options.Database.Name {
		t.Errorf("database name mismatch, got: %q", options.Database.Name)
	}
	if !filepath.IsAbs(options.Database.Directory) {
		t.Errorf("database directory is not absolute: %q", options.Database.Directory)
	}
	expectedDatabase := filepath.Join(dir, "db")
	if expectedDatabase != options.Database.Directory {
		t.Errorf("database directory mismatch, got: %q  expected: %q", options.Database.Directory, expectedDatabase)
	}

	if 262144 != options.Logging.Size {
		t.Errorf("log size mismatch, got: %d", options.Logging.Size)
	}
	if 5 != options.Logging.Count {
		t.Errorf("log count mismatch, got: %d", options.Logging.Count)
	}
	if "error" != options.Logging.Levels["DEFAULT"] {
		t.Errorf("log levels mismatch, got: %v", options.Logging.Levels)
	}
	// file keeps its default when unset
	if "ledgerd.log" != options.Logging.File {
		t.Errorf("log file mismatch, got: %q", options.Logging.File)
	}

	storageConfig := options.StorageConfig()
	if filepath.Join(expectedDatabase, "test-ledger") != storageConfig.Database {
		t.Errorf("storage database mismatch, got: %q", storageConfig.Database)
	}
	if storageConfig.ReadOnly {
		t.Error("storage unexpectedly read only")
	}
}

func TestGetConfigurationRejectsMissingDataDirectory(t *testing.T) {
	dir, err := ioutil.TempDir("", "configuration-test")
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}
	defer os.RemoveAll(dir)

	fileName := filepath.Join(dir, "ledgerd.conf")
	err = ioutil.WriteFile(fileName, []byte("return { database = { name = \"x\" } }"), 0600)
	if nil != err {
		t.Fatalf("write error: %s", err)
	}

	_, err = GetConfiguration(fileName)
	if nil == err {
		t.Fatal("missing data directory was accepted")
	}
}
