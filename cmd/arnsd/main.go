// Command arnsd replays an ordered action log against the name-registry
// ledger and serves the resulting state over a read-only HTTP API.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"arnsledger/config"
	"arnsledger/core"
	"arnsledger/core/genesis"
	"arnsledger/core/types"
	"arnsledger/observability/logging"
	"arnsledger/rpc"
	"arnsledger/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "./config.toml", "path to the node configuration file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	logger := logging.Setup("arnsd", cfg.LogEnv, logging.Options{FilePath: cfg.LogFile})

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "ledger"))
	if err != nil {
		return fmt.Errorf("open ledger database: %w", err)
	}
	defer db.Close()
	store := storage.NewSnapshotStore(db)

	ledger, height, err := store.Latest()
	switch {
	case err == nil:
		logger.Info("resuming from snapshot", "height", height)
	case errors.Is(err, storage.ErrKeyNotFound):
		ledger, err = genesis.LoadFile(cfg.GenesisFile)
		if err != nil {
			return err
		}
		logger.Info("starting from genesis", "file", cfg.GenesisFile)
	default:
		return fmt.Errorf("load snapshot: %w", err)
	}

	sp := core.NewStateProcessor(ledger)
	sp.SetHeight(height)

	var mu sync.RWMutex
	if cfg.ActionLogFile != "" {
		offset, err := store.LogOffset()
		if err != nil {
			return err
		}
		applied, err := replay(sp, &mu, logger, cfg.ActionLogFile, offset)
		if err != nil {
			return err
		}
		if applied > 0 {
			if err := store.Save(sp.Height(), sp.Ledger()); err != nil {
				return fmt.Errorf("save snapshot: %w", err)
			}
			if err := store.SaveLogOffset(offset + applied); err != nil {
				return err
			}
			logger.Info("replay complete", "entries", applied, "height", sp.Height())
		}
	}

	server := rpc.NewServer(sp, &mu)
	logger.Info("serving reads", "addr", cfg.ListenAddress, "network", cfg.NetworkName)
	return http.ListenAndServe(cfg.ListenAddress, server.Router())
}

// replay consumes the JSON-lines action log starting after offset entries.
// Rejected actions are part of the log's history: they are logged and
// counted but never halt replay.
func replay(sp *core.StateProcessor, mu *sync.RWMutex, logger *slog.Logger, path string, offset uint64) (uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open action log: %w", err)
	}
	defer file.Close()

	var consumed uint64
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		consumed++
		if consumed <= offset {
			continue
		}
		var action types.Action
		if err := json.Unmarshal(line, &action); err != nil {
			return 0, fmt.Errorf("decode action log entry %d: %w", consumed, err)
		}
		mu.Lock()
		_, err := sp.Apply(action)
		mu.Unlock()
		if err != nil {
			logger.Warn("action rejected", "kind", action.Kind, "caller", action.Caller, "reason", err.Error())
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read action log: %w", err)
	}
	if consumed < offset {
		return 0, fmt.Errorf("action log shorter than recorded offset %d", offset)
	}
	return consumed - offset, nil
}
