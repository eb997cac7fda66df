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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/inconshreveable/log15"
	"github.com/julienschmidt/httprouter"
	"github.com/naoina/toml"
	"github.com/rspow/go-rspow/common"
	"github.com/rspow/go-rspow/pow"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"
)

var serveCommand = cli.Command{
	Action:    serve,
	Name:      "serve",
	Usage:     "Run the verifying server",
	ArgsUsage: " ",
	Flags: []cli.Flag{
		addrFlag,
		secretFlag,
		bitsFlag,
		proofsFlag,
		windowFlag,
		configFlag,
	},
}

// serveConfig is the TOML file schema for the serve command. Flags overlay
// whatever the file sets. The window is given in whole seconds.
type serveConfig struct {
	Addr          string
	Secret        string
	WindowSeconds uint64
	Bits          uint32
	Proofs        int
	CacheEntries  int
}

func loadServeConfig(ctx *cli.Context) (*serveConfig, error) {
	cfg := &serveConfig{
		Addr:          addrFlag.Value,
		WindowSeconds: uint64(windowFlag.Value / time.Second),
		Bits:          uint32(bitsFlag.Value),
		Proofs:        proofsFlag.Value,
		CacheEntries:  pow.DefaultCacheEntries,
	}
	if path := ctx.String(configFlag.Name); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%s: %v", path, err)
		}
	}
	if ctx.IsSet(addrFlag.Name) {
		cfg.Addr = ctx.String(addrFlag.Name)
	}
	if ctx.IsSet(secretFlag.Name) {
		cfg.Secret = ctx.String(secretFlag.Name)
	}
	if ctx.IsSet(windowFlag.Name) {
		cfg.WindowSeconds = uint64(ctx.Duration(windowFlag.Name) / time.Second)
	}
	if ctx.IsSet(bitsFlag.Name) {
		cfg.Bits = uint32(ctx.Uint(bitsFlag.Name))
	}
	if ctx.IsSet(proofsFlag.Name) {
		cfg.Proofs = ctx.Int(proofsFlag.Name)
	}
	if cfg.Secret == "" {
		return nil, errors.New("a server secret is required (--secret or config file)")
	}
	return cfg, nil
}

func serve(ctx *cli.Context) error {
	cfg, err := loadServeConfig(ctx)
	if err != nil {
		return err
	}
	var secret common.Hash
	if err := secret.UnmarshalText([]byte(cfg.Secret)); err != nil {
		return fmt.Errorf("invalid secret: %v", err)
	}
	cache, err := pow.NewLRUReplayCache(cfg.CacheEntries)
	if err != nil {
		return err
	}
	verifier, err := pow.NewVerifier(pow.VerifierConfig{
		TimeWindow:        time.Duration(cfg.WindowSeconds) * time.Second,
		MinDifficulty:     cfg.Bits,
		MinRequiredProofs: cfg.Proofs,
	}, secret, &pow.VerifierOptions{Cache: cache, Log: log.New("module", "pow")})
	if err != nil {
		return err
	}

	router := httprouter.New()
	router.GET("/pow/params", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		writeJSON(w, http.StatusOK, verifier.IssueParams())
	})
	router.POST("/pow/submit", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var sub pow.Submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			writeJSON(w, http.StatusBadRequest, submitReply{Error: err.Error()})
			return
		}
		if err := verifier.VerifySubmission(&sub); err != nil {
			log.Debug("Submission rejected", "err", err)
			writeJSON(w, http.StatusForbidden, submitReply{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, submitReply{Accepted: true})
	})

	server := &http.Server{Addr: cfg.Addr, Handler: router}

	notify, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, gctx := errgroup.WithContext(notify)
	group.Go(func() error {
		log.Info("Verifier listening", "addr", cfg.Addr, "window", cfg.WindowSeconds, "bits", cfg.Bits, "proofs", cfg.Proofs)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdown)
	})
	err = group.Wait()
	log.Info("Verifier stopped", "accepted", verifier.Accepted(), "rejected", verifier.Rejected())
	return err
}

type submitReply struct {
	Accepted bool   `json:"accepted"`
	Error    string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("Failed to encode response", "err", err)
	}
}
