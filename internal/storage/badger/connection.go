package badger

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
	"github.com/ternarybob/arbor"

	"github.com/balma1115/marketingplatformproject-sub003/internal/common"
	"github.com/balma1115/marketingplatformproject-sub003/internal/interfaces"
)

// gcInterval paces value-log garbage collection on the long-running store
const gcInterval = 10 * time.Minute

// Manager owns the BadgerDB connection and hands out the typed storage
// surfaces built on it.
type Manager struct {
	store  *badgerhold.Store
	logger arbor.ILogger

	keywords *keywordStore
	ranks    *rankStore

	stopGC    chan struct{}
	closeOnce sync.Once
}

// NewManager opens (or creates) the database at the configured path
func NewManager(config common.BadgerConfig, logger arbor.ILogger) (*Manager, error) {
	if config.ResetOnStartup {
		logger.Warn().Str("path", config.Path).Msg("Resetting database on startup")
		if err := os.RemoveAll(config.Path); err != nil {
			return nil, fmt.Errorf("failed to reset database directory: %w", err)
		}
	}

	if err := os.MkdirAll(config.Path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = config.Path
	options.ValueDir = config.Path
	options.Logger = nil // Badger's own logger is noisy; arbor covers our logging

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store at %s: %w", config.Path, err)
	}

	logger.Info().Str("path", config.Path).Msg("Badger store opened")

	manager := &Manager{
		store:    store,
		logger:   logger,
		keywords: &keywordStore{store: store, logger: logger},
		ranks:    &rankStore{store: store, logger: logger},
		stopGC:   make(chan struct{}),
	}
	go manager.gcLoop()

	return manager, nil
}

// gcLoop reclaims value-log space on a long-running store. Badger only
// rewrites a log file when enough of it is stale, so ErrNoRewrite is the
// common, quiet outcome.
func (m *Manager) gcLoop() {
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopGC:
			return
		case <-ticker.C:
			if err := m.store.Badger().RunValueLogGC(0.7); err != nil && !errors.Is(err, badgerdb.ErrNoRewrite) {
				m.logger.Warn().Err(err).Msg("Value log GC failed")
			}
		}
	}
}

func (m *Manager) KeywordStorage() interfaces.KeywordStorage {
	return m.keywords
}

func (m *Manager) RankStorage() interfaces.RankStorage {
	return m.ranks
}

// Close flushes and closes the underlying store. Safe to call more than once.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.stopGC)
		m.logger.Debug().Msg("Closing badger store")
		err = m.store.Close()
	})
	return err
}
