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

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	log "github.com/inconshreveable/log15"
	"github.com/rspow/go-rspow/common"
	"github.com/rspow/go-rspow/consensus/equix"
	"github.com/rspow/go-rspow/pow"
	cli "gopkg.in/urfave/cli.v1"
)

var solveCommand = cli.Command{
	Action:    solve,
	Name:      "solve",
	Usage:     "Request parameters from a server, solve a bundle and submit it",
	ArgsUsage: " ",
	Flags: []cli.Flag{
		serverFlag,
		threadsFlag,
	},
}

var verifyCommand = cli.Command{
	Action:    verify,
	Name:      "verify",
	Usage:     "Verify a submission file against a secret, without a server",
	ArgsUsage: "<submission.json>",
	Flags: []cli.Flag{
		secretFlag,
		bitsFlag,
		proofsFlag,
		windowFlag,
	},
}

func solve(ctx *cli.Context) error {
	base := ctx.String(serverFlag.Name)

	resp, err := http.Get(base + "/pow/params")
	if err != nil {
		return err
	}
	var params pow.SolveParams
	err = json.NewDecoder(resp.Body).Decode(&params)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("bad params response: %v", err)
	}
	log.Info("Received solve parameters", "ts", params.Timestamp, "bits", params.Policy.MinDifficulty, "proofs", params.Policy.MinRequiredProofs)

	clientNonce, err := pow.NewClientNonce()
	if err != nil {
		return err
	}
	progress := new(uint64)
	engine, err := pow.EngineFromParams(&params, ctx.Int(threadsFlag.Name), progress)
	if err != nil {
		return err
	}

	watcher := time.NewTicker(time.Second)
	defer watcher.Stop()
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-watcher.C:
				log.Info("Solving", "proofs", atomic.LoadUint64(progress), "target", params.Policy.MinRequiredProofs, "hashrate", fmt.Sprintf("%.1f/s", engine.Hashrate()))
			case <-done:
				return
			}
		}
	}()

	start := time.Now()
	submission, err := pow.SolveSubmission(engine, &params, clientNonce)
	close(done)
	if err != nil {
		return err
	}
	log.Info("Bundle solved", "proofs", submission.ProofBundle.Len(), "elapsed", time.Since(start))

	body, err := json.Marshal(submission)
	if err != nil {
		return err
	}
	resp, err = http.Post(base+"/pow/submit", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	var reply submitReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return fmt.Errorf("bad submit response: %v", err)
	}
	if !reply.Accepted {
		return fmt.Errorf("submission rejected: %s", reply.Error)
	}
	log.Info("Submission accepted")
	return nil
}

func verify(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("expected one submission file argument")
	}
	data, err := os.ReadFile(ctx.Args().First())
	if err != nil {
		return err
	}
	var sub pow.Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		return err
	}
	var secret common.Hash
	if err := secret.UnmarshalText([]byte(ctx.String(secretFlag.Name))); err != nil {
		return fmt.Errorf("invalid secret: %v", err)
	}
	verifier, err := pow.NewVerifier(pow.VerifierConfig{
		TimeWindow:        ctx.Duration(windowFlag.Name),
		MinDifficulty:     uint32(ctx.Uint(bitsFlag.Name)),
		MinRequiredProofs: ctx.Int(proofsFlag.Name),
	}, secret, nil)
	if err != nil {
		return err
	}
	if err := verifier.VerifySubmission(&sub); err != nil {
		return err
	}
	// A second pass over the bundle alone, reported for operators debugging
	// difficulty settings.
	bundle := sub.ProofBundle
	if err := equix.VerifyBundle(equix.NativeBackend(), bundle, bundle.Config.Bits, bundle.Len()); err != nil {
		return err
	}
	log.Info("Submission verifies", "proofs", bundle.Len(), "bits", bundle.Config.Bits)
	return nil
}
