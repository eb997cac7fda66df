// Copyright 2024 The go-rspow Authors
// This file is part of go-rspow.
//
// go-rspow is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-rspow is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-rspow. If not, see <http://www.gnu.org/licenses/>.

// rspow is the command line interface to the near-stateless proof-of-work
// service: a verifying server and a solving client.
package main

import (
	"fmt"
	"os"
	"time"

	log "github.com/inconshreveable/log15"
	cli "gopkg.in/urfave/cli.v1"
)

var app = cli.NewApp()

var (
	bitsFlag = cli.UintFlag{
		Name:  "bits",
		Usage: "Required leading zero bits on each solution digest",
		Value: 8,
	}
	proofsFlag = cli.IntFlag{
		Name:  "proofs",
		Usage: "Number of proofs per bundle",
		Value: 16,
	}
	threadsFlag = cli.IntFlag{
		Name:  "threads",
		Usage: "Number of solver threads (0 = one per spare CPU)",
	}
	windowFlag = cli.DurationFlag{
		Name:  "window",
		Usage: "Submission time window (whole seconds)",
		Value: 60 * time.Second,
	}
	secretFlag = cli.StringFlag{
		Name:  "secret",
		Usage: "Server secret as 32-byte hex",
	}
	addrFlag = cli.StringFlag{
		Name:  "addr",
		Usage: "HTTP listen address",
		Value: "localhost:8485",
	}
	serverFlag = cli.StringFlag{
		Name:  "server",
		Usage: "Base URL of the verifying server",
		Value: "http://localhost:8485",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug",
		Value: 3,
	}
)

func init() {
	app.Name = "rspow"
	app.Usage = "near-stateless Equi-X proof-of-work service"
	app.Flags = []cli.Flag{verbosityFlag}
	app.Commands = []cli.Command{
		serveCommand,
		solveCommand,
		verifyCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		lvl := log.Lvl(ctx.GlobalInt(verbosityFlag.Name))
		log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StderrHandler))
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
