// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// read-only inspection of a ledger database
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/logger"

	"github.com/metolius/ledgerd/configuration"
	"github.com/metolius/ledgerd/storage"
)

type metadata struct {
	store   *storage.Store
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	app := cli.NewApp()
	app.Name = "ledgerd-info"
	app.Usage = "inspect a ledger database"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "config-file, c",
			Value: "",
			Usage: "*configuration `FILE`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "chain",
			Usage:  "show the latest committed block",
			Action: runChain,
		},
		{
			Name:      "transaction",
			Usage:     "dump a transaction by id",
			ArgsUsage: "TXID",
			Action:    runTransaction,
		},
		{
			Name:      "owned",
			Usage:     "list outputs of an owner",
			ArgsUsage: "ACCOUNT",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "unspent, u",
					Usage: " only unspent outputs",
				},
			},
			Action: runOwned,
		},
		{
			Name:      "pool",
			Usage:     "raw dump of a storage pool",
			ArgsUsage: "TAG COUNT  (a COUNT of 0 dumps the whole pool)",
			Action:    runPool,
		},
	}

	app.Before = func(c *cli.Context) error {
		configFile := c.GlobalString("config-file")
		if "" == configFile {
			return fmt.Errorf("configuration file is required")
		}

		options, err := configuration.GetConfiguration(configFile)
		if nil != err {
			return err
		}

		err = logger.Initialise(options.LoggerConfig())
		if nil != err {
			return err
		}

		storageConfig := options.StorageConfig()
		storageConfig.ReadOnly = true

		store, err := storage.NewStore(storageConfig)
		if nil != err {
			return err
		}

		c.App.Metadata["config"] = &metadata{
			store:   store,
			verbose: c.GlobalBool("verbose"),
			e:       c.App.ErrWriter,
			w:       c.App.Writer,
		}
		return nil
	}

	app.After = func(c *cli.Context) error {
		if m, ok := c.App.Metadata["config"].(*metadata); ok {
			m.store.Close()
		}
		logger.Finalise()
		return nil
	}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(os.Stderr, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}
