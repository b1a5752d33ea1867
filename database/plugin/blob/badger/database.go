// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package badger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ikubchain/clubledger/database/types"
)

// gcDiscardRatio is the share of stale data a value log file needs before GC
// rewrites it
const gcDiscardRatio = 0.5

// BlobStoreBadger keeps the action log in badger. Without a data directory
// the store lives in memory and nothing is persisted.
type BlobStoreBadger struct {
	promRegistry     prometheus.Registerer
	db               *badger.DB
	logger           *slog.Logger
	metrics          *blobMetrics
	gcStop           chan struct{}
	gcWg             sync.WaitGroup
	closeOnce        sync.Once
	dataDir          string
	gcInterval       time.Duration
	blockCacheSize   uint64
	indexCacheSize   uint64
	valueLogFileSize int64
	memTableSize     int64
	valueThreshold   int64
	gcEnabled        bool
}

// New opens the action log store
func New(opts ...BlobStoreBadgerOptionFunc) (*BlobStoreBadger, error) {
	d := &BlobStoreBadger{
		gcEnabled:        true,
		gcInterval:       DefaultGcInterval,
		blockCacheSize:   DefaultBlockCacheSize,
		indexCacheSize:   DefaultIndexCacheSize,
		valueLogFileSize: int64(DefaultValueLogFileSize),
		memTableSize:     int64(DefaultMemTableSize),
		valueThreshold:   int64(DefaultValueThreshold),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	badgerOpts, err := d.badgerOptions()
	if err != nil {
		return nil, err
	}
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	d.db = db
	if d.promRegistry != nil {
		d.registerBlobMetrics()
	}
	if d.gcEnabled {
		d.gcStop = make(chan struct{})
		d.gcWg.Add(1)
		go d.runGc()
	}
	return d, nil
}

func (d *BlobStoreBadger) badgerOptions() (badger.Options, error) {
	if d.dataDir == "" {
		// Nothing to collect in memory
		d.gcEnabled = false
		return badger.DefaultOptions("").
			WithLogger(NewBadgerLogger(d.logger)).
			// The default INFO logging is a bit verbose
			WithLoggingLevel(badger.WARNING).
			WithInMemory(true).
			WithValueThreshold(d.valueThreshold), nil
	}
	blobDir := filepath.Join(d.dataDir, "blob")
	if err := os.MkdirAll(blobDir, 0o755); err != nil {
		return badger.Options{}, fmt.Errorf("failed to create data dir: %w", err)
	}
	return badger.DefaultOptions(blobDir).
		WithLogger(NewBadgerLogger(d.logger)).
		WithLoggingLevel(badger.WARNING).
		WithBlockCacheSize(int64(d.blockCacheSize)). //nolint:gosec // bounded by config
		WithIndexCacheSize(int64(d.indexCacheSize)). //nolint:gosec // bounded by config
		WithValueLogFileSize(d.valueLogFileSize).
		WithMemTableSize(d.memTableSize).
		WithValueThreshold(d.valueThreshold).
		WithCompression(options.Snappy), nil
}

// runGc collects the value log on every tick until the store is closed
func (d *BlobStoreBadger) runGc() {
	defer d.gcWg.Done()
	ticker := time.NewTicker(d.gcInterval)
	defer ticker.Stop()
	for {
		select {
		case <-d.gcStop:
			return
		case <-ticker.C:
			d.collectValueLog()
		}
	}
}

// collectValueLog rewrites value log files until badger reports that
// nothing more can be reclaimed
func (d *BlobStoreBadger) collectValueLog() {
	for {
		err := d.db.RunValueLogGC(gcDiscardRatio)
		if err != nil {
			if !errors.Is(err, badger.ErrNoRewrite) {
				d.logger.Warn(
					fmt.Sprintf("blob DB: GC failure: %s", err),
					"component", "database",
				)
			}
			return
		}
		if d.metrics != nil {
			d.metrics.gcRuns.Inc()
		}
	}
}

// Close stops GC and closes the underlying database
func (d *BlobStoreBadger) Close() error {
	var err error
	d.closeOnce.Do(func() {
		if d.gcStop != nil {
			close(d.gcStop)
			d.gcWg.Wait()
		}
		err = d.db.Close()
	})
	return err
}

// DB returns the database handle
func (d *BlobStoreBadger) DB() *badger.DB {
	return d.db
}

func (d *BlobStoreBadger) NewTransaction(update bool) types.Txn {
	return &badgerTxn{store: d, tx: d.db.NewTransaction(update)}
}

func (d *BlobStoreBadger) Get(txn types.Txn, key []byte) ([]byte, error) {
	tx, err := d.unwrap(txn)
	if err != nil {
		return nil, err
	}
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, types.ErrBlobKeyNotFound
	} else if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (d *BlobStoreBadger) Set(txn types.Txn, key, val []byte) error {
	tx, err := d.unwrap(txn)
	if err != nil {
		return err
	}
	if err := tx.Set(key, val); err != nil {
		return err
	}
	if d.metrics != nil {
		d.metrics.bytesWritten.Add(float64(len(val)))
	}
	return nil
}

func (d *BlobStoreBadger) Delete(txn types.Txn, key []byte) error {
	tx, err := d.unwrap(txn)
	if err != nil {
		return err
	}
	return tx.Delete(key)
}

// NewIterator iterates keys within a transaction. Items are only valid while
// that transaction is open.
func (d *BlobStoreBadger) NewIterator(
	txn types.Txn,
	opts types.BlobIteratorOptions,
) types.BlobIterator {
	tx, err := d.unwrap(txn)
	if err != nil {
		return &badgerIterator{err: err}
	}
	return &badgerIterator{
		Iterator: tx.NewIterator(badger.IteratorOptions{
			Prefix:  opts.Prefix,
			Reverse: opts.Reverse,
		}),
	}
}
