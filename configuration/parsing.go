// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration - read the Lua configuration file
//
// the file is an executed Lua script whose last value is a table; this
// keeps deployments able to compute paths and levels instead of
// repeating them
package configuration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/metolius/ledgerd/storage"
)

// basic defaults (directories and files are relative to the "data_directory" from the configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultLevelDBDirectory = "data"
	defaultDatabaseName     = "ledger"

	defaultLogDirectory = "log"
	defaultLogFile      = "ledgerd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

var defaultLogLevels = LoglevelMap{
	"main":            "info",
	"config":          "info",
	logger.DefaultTag: "critical",
}

// DatabaseType - where the LevelDB files live
type DatabaseType struct {
	Directory string `gluamapper:"directory"`
	Name      string `gluamapper:"name"`
	ReadOnly  bool   `gluamapper:"read_only"`
}

// LoggerType - rotating log file settings
type LoggerType struct {
	Directory string            `gluamapper:"directory"`
	File      string            `gluamapper:"file"`
	Size      int               `gluamapper:"size"`
	Count     int               `gluamapper:"count"`
	Console   bool              `gluamapper:"console"`
	Levels    map[string]string `gluamapper:"levels"`
}

// Configuration - the top level of the configuration file
type Configuration struct {
	DataDirectory string       `gluamapper:"data_directory"`
	Database      DatabaseType `gluamapper:"database"`
	Logging       LoggerType   `gluamapper:"logging"`
}

// GetConfiguration - read, decode and verify the configuration
func GetConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultDatabaseName,
		},

		Logging: LoggerType{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := ParseConfigurationFile(configurationFileName, options); nil != err {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = ensureAbsolute(options.DataDirectory, *f)
	}

	return options, nil
}

// StorageConfig - the explicit settings the storage layer wants
func (configuration *Configuration) StorageConfig() storage.Config {
	return storage.Config{
		Database: filepath.Join(configuration.Database.Directory, configuration.Database.Name),
		ReadOnly: configuration.Database.ReadOnly,
	}
}

// LoggerConfig - the settings the logger wants
func (configuration *Configuration) LoggerConfig() logger.Configuration {
	return logger.Configuration{
		Directory: configuration.Logging.Directory,
		File:      configuration.Logging.File,
		Size:      configuration.Logging.Size,
		Count:     configuration.Logging.Count,
		Console:   configuration.Logging.Console,
		Levels:    configuration.Logging.Levels,
	}
}

// turn a string into an absolute path relative to a specific directory
func ensureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}
