// Copyright 2025 Arcentra Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package checkpoint persists the sequencer's restart-survival state — the
// last-committed Lamport timestamp and the cursor's head/tail — in a
// single-row SQLite table. The journal itself is an mmap'd file and
// survives restart for free; what does not survive is in-memory state
// (the atomic Lamport counter, the cursor object), so this store exists
// purely to let a restarted sequencer resume instead of rewinding to zero.
package checkpoint

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// State is the single persisted row.
type State struct {
	ID        uint `gorm:"primaryKey"`
	LamportTS uint64
	Head      int64
	Tail      int64
	UpdatedAt time.Time
}

// TableName pins the table name regardless of gorm's pluralization rules.
func (State) TableName() string { return "checkpoint_state" }

// rowID is the fixed primary key of the one row this store ever holds.
const rowID = 1

// Store is a gorm-backed single-row checkpoint store.
type Store struct {
	db *gorm.DB
	mu sync.Mutex
}

// Open opens (or creates) a SQLite-backed checkpoint store at path.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&State{}); err != nil {
		return nil, fmt.Errorf("checkpoint: migrate %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Load returns the persisted state, or the zero value with found=false if
// no checkpoint has ever been written.
func (s *Store) Load() (state State, found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var row State
	result := s.db.First(&row, rowID)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return State{}, false, nil
		}
		return State{}, false, fmt.Errorf("checkpoint: load: %w", result.Error)
	}
	return row, true, nil
}

// Save upserts the current state, replacing the previous checkpoint.
func (s *Store) Save(lamportTS uint64, head, tail int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := State{
		ID:        rowID,
		LamportTS: lamportTS,
		Head:      head,
		Tail:      tail,
		UpdatedAt: time.Now(),
	}
	result := s.db.Save(&row)
	if result.Error != nil {
		return fmt.Errorf("checkpoint: save: %w", result.Error)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("checkpoint: close: %w", err)
	}
	return sqlDB.Close()
}
