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
package sqlite

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/ikubchain/clubledger/database/models"
)

const (
	DefaultVacuumSchedule     = "@daily"
	DefaultCheckpointSchedule = "@every 15m"
)

// MetadataStoreSqlite is a SQLite-based implementation of the metadata store.
// It holds the queryable projection of ledger state and a copy of the
// action log.
type MetadataStoreSqlite struct {
	promRegistry       prometheus.Registerer
	db                 *gorm.DB
	logger             *slog.Logger
	metrics            *metadataMetrics
	cron               *cron.Cron
	dataDir            string
	vacuumSchedule     string
	checkpointSchedule string
	closeMutex         sync.Mutex
	closed             bool
}

// New creates a SQLite metadata store. Uses in-memory database if no data
// directory is configured.
func New(opts ...SqliteOptionFunc) (*MetadataStoreSqlite, error) {
	db := &MetadataStoreSqlite{
		vacuumSchedule:     DefaultVacuumSchedule,
		checkpointSchedule: DefaultCheckpointSchedule,
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	gormConfig := &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	}
	var metadataDb *gorm.DB
	var err error
	if db.dataDir == "" {
		// Every in-memory store gets its own database so tests and replays
		// in one process do not share state
		metadataDb, err = gorm.Open(
			sqlite.Open("file::memory:"),
			gormConfig,
		)
		if err != nil {
			return nil, err
		}
		// An in-memory database only lives as long as its connection
		sqlDb, err := metadataDb.DB()
		if err != nil {
			return nil, err
		}
		sqlDb.SetMaxOpenConns(1)
	} else {
		// Make sure that we can read data dir, and create if it doesn't exist
		if _, err := os.Stat(db.dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			// Create data directory
			if err := os.MkdirAll(db.dataDir, fs.ModePerm); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		// Open sqlite DB
		metadataDbPath := filepath.Join(
			db.dataDir,
			"metadata.sqlite",
		)
		// WAL journal mode, disable sync on write, increase cache size to 50MB (from 2MB)
		metadataConnOpts := "_pragma=journal_mode(WAL)&_pragma=sync(OFF)&_pragma=cache_size(-50000)"
		metadataDb, err = gorm.Open(
			sqlite.Open(
				fmt.Sprintf("file:%s?%s", metadataDbPath, metadataConnOpts),
			),
			gormConfig,
		)
		if err != nil {
			return nil, err
		}
	}
	db.db = metadataDb
	if err := db.init(); err != nil {
		// MetadataStoreSqlite is available for recovery, so return it with error
		return db, err
	}
	// Create table schemas
	db.logger.Debug(
		fmt.Sprintf("creating table: %#v", &CommitMarker{}),
		"component", "database",
	)
	if err := db.db.AutoMigrate(&CommitMarker{}); err != nil {
		return db, err
	}
	for _, model := range models.MigrateModels {
		db.logger.Debug(
			fmt.Sprintf("creating table: %#v", model),
			"component", "database",
		)
		if err := db.db.AutoMigrate(model); err != nil {
			return db, err
		}
	}
	return db, nil
}

func (d *MetadataStoreSqlite) init() error {
	// Configure tracing for GORM
	if err := d.db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return err
	}
	if d.promRegistry != nil {
		d.registerMetadataMetrics()
	}
	// Maintenance only applies to on-disk databases
	if d.dataDir == "" {
		return nil
	}
	return d.scheduleMaintenance()
}

// scheduleMaintenance registers the vacuum and WAL checkpoint jobs
func (d *MetadataStoreSqlite) scheduleMaintenance() error {
	logger := &cronLogger{logger: d.logger}
	d.cron = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		),
	)
	jobs := []struct {
		name     string
		schedule string
		stmt     string
	}{
		{name: "vacuum", schedule: d.vacuumSchedule, stmt: "VACUUM"},
		{name: "checkpoint", schedule: d.checkpointSchedule, stmt: "PRAGMA wal_checkpoint(TRUNCATE)"},
	}
	for _, job := range jobs {
		if job.schedule == "" {
			continue
		}
		if _, err := d.cron.AddFunc(job.schedule, func() {
			d.runMaintenance(job.name, job.stmt)
		}); err != nil {
			return fmt.Errorf("schedule %s: %w", job.name, err)
		}
	}
	d.cron.Start()
	return nil
}

func (d *MetadataStoreSqlite) runMaintenance(name string, stmt string) {
	d.closeMutex.Lock()
	closed := d.closed
	d.closeMutex.Unlock()
	if closed {
		return
	}
	d.logger.Debug(
		"running "+name+" on sqlite metadata database",
		"component", "database",
	)
	if result := d.DB().Exec(stmt); result.Error != nil {
		d.logger.Error(
			"metadata store maintenance failed",
			"component", "database",
			"job", name,
			"error", result.Error,
		)
		if d.metrics != nil {
			d.metrics.maintenanceErrors.WithLabelValues(name).Inc()
		}
		return
	}
	if d.metrics != nil {
		d.metrics.maintenanceRuns.WithLabelValues(name).Inc()
	}
}

// Close shuts down the database connection and stops background processes.
func (d *MetadataStoreSqlite) Close() error {
	d.closeMutex.Lock()
	if d.closed {
		d.closeMutex.Unlock()
		return nil
	}
	d.closed = true
	d.closeMutex.Unlock()
	// Wait for any in-flight maintenance job to complete
	if d.cron != nil {
		<-d.cron.Stop().Done()
	}
	// get DB handle from gorm.DB
	db, err := d.DB().DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}
	return db.Close()
}

// DB returns the underlying GORM database handle.
func (d *MetadataStoreSqlite) DB() *gorm.DB {
	return d.db
}

// cronLogger adapts slog to the cron.Logger interface
type cronLogger struct {
	logger *slog.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, append([]any{"component", "database"}, keysAndValues...)...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(
		msg,
		append([]any{"component", "database", "error", err}, keysAndValues...)...,
	)
}
