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
package database

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ikubchain/clubledger/database/plugin/blob"
	"github.com/ikubchain/clubledger/database/plugin/blob/badger"
	"github.com/ikubchain/clubledger/database/plugin/metadata"
	"github.com/ikubchain/clubledger/database/plugin/metadata/sqlite"
)

// Config holds the storage settings. An empty DataDir keeps both stores in
// memory.
type Config struct {
	PromRegistry       prometheus.Registerer
	Logger             *slog.Logger
	DataDir            string
	VacuumSchedule     string
	CheckpointSchedule string
	BlobGcInterval     time.Duration
	BlobCacheSize      uint64
}

type Database struct {
	logger   *slog.Logger
	blob     blob.BlobStore
	metadata metadata.MetadataStore
	dataDir  string
}

// Blob returns the underling blob store instance
func (d *Database) Blob() blob.BlobStore {
	return d.blob
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.dataDir
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// Metadata returns the underlying metadata store instance
func (d *Database) Metadata() metadata.MetadataStore {
	return d.metadata
}

// Transaction starts a new database transaction and returns a handle to it
func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	// Close metadata
	if d.metadata != nil {
		err = errors.Join(err, d.metadata.Close())
	}
	// Close blob
	if d.blob != nil {
		err = errors.Join(err, d.blob.Close())
	}
	return err
}

func (d *Database) init() error {
	// Check commit markers
	if err := d.checkCommitMarker(); err != nil {
		return err
	}
	return nil
}

// New opens the blob and metadata stores. A CommitMarkerError is returned
// together with a usable Database so the caller can rebuild the projection.
func New(config *Config) (*Database, error) {
	if config == nil {
		config = &Config{}
	}
	logger := config.Logger
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	metadataOpts := []sqlite.SqliteOptionFunc{
		sqlite.WithLogger(logger),
		sqlite.WithDataDir(config.DataDir),
		sqlite.WithPromRegistry(config.PromRegistry),
	}
	if config.VacuumSchedule != "" {
		metadataOpts = append(metadataOpts, sqlite.WithVacuumSchedule(config.VacuumSchedule))
	}
	if config.CheckpointSchedule != "" {
		metadataOpts = append(metadataOpts, sqlite.WithCheckpointSchedule(config.CheckpointSchedule))
	}
	metadataDb, err := metadata.New(metadataOpts...)
	if err != nil {
		if metadataDb != nil {
			_ = metadataDb.Close()
		}
		return nil, err
	}
	blobOpts := []badger.BlobStoreBadgerOptionFunc{
		badger.WithLogger(logger),
		badger.WithDataDir(config.DataDir),
		badger.WithPromRegistry(config.PromRegistry),
		badger.WithGcInterval(config.BlobGcInterval),
	}
	if config.BlobCacheSize > 0 {
		blobOpts = append(blobOpts, badger.WithBlockCacheSize(config.BlobCacheSize))
	}
	blobDb, err := blob.New(blobOpts...)
	if err != nil {
		_ = metadataDb.Close()
		return nil, err
	}
	db := &Database{
		logger:   logger,
		blob:     blobDb,
		metadata: metadataDb,
		dataDir:  config.DataDir,
	}
	if err := db.init(); err != nil {
		// Database is available for recovery, so return it with error
		return db, err
	}
	return db, nil
}
