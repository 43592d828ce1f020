// Package store persists the transaction ledger as a JSON file. The store
// assigns identifiers and bookkeeping timestamps; the import pipeline never
// sees them.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"trade-ledger-service/internal/models"
	"trade-ledger-service/pkg/errors"
	"trade-ledger-service/pkg/logger"
)

// Store is the persistence port for the transaction ledger.
type Store interface {
	// Load returns every stored transaction in insertion order. A missing
	// ledger file is an empty ledger, not an error.
	Load() ([]models.StoredTransaction, error)

	// Append adds new transactions to the ledger, assigning each an ID and
	// timestamps, and returns the stored forms.
	Append(txs []*models.Transaction) ([]models.StoredTransaction, error)

	// ReplaceAll overwrites the ledger with the given transactions.
	ReplaceAll(txs []*models.Transaction) ([]models.StoredTransaction, error)

	// Clear removes every transaction from the ledger.
	Clear() error
}

// ledgerFile is the on-disk shape, versioned so the layout can evolve.
type ledgerFile struct {
	Version      int                        `json:"version"`
	UpdatedAt    time.Time                  `json:"updated_at"`
	Transactions []models.StoredTransaction `json:"transactions"`
}

const ledgerVersion = 1

// FileStore is a Store backed by one JSON file. Writes go through a
// temporary file and rename, so a crash mid-write never corrupts the
// ledger. A mutex serializes access within the process.
type FileStore struct {
	path   string
	logger logger.Logger
	mu     sync.Mutex
	now    func() time.Time
	newID  func() string
}

// NewFileStore creates a FileStore at the given path. The file is created
// lazily on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger.GetGlobalLogger().WithComponent("file_store"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Load implements Store.
func (fs *FileStore) Load() ([]models.StoredTransaction, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.load()
}

func (fs *FileStore) load() ([]models.StoredTransaction, error) {
	content, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.StoredTransaction{}, nil
		}
		return nil, errors.StorageError(errors.CodeStoreReadFailed, fs.path, err)
	}

	var file ledgerFile
	if err := json.Unmarshal(content, &file); err != nil {
		return nil, errors.StorageError(errors.CodeStoreReadFailed, fs.path, err).
			WithSuggestion("the ledger file is not valid JSON; restore it from a backup or clear it")
	}

	if file.Transactions == nil {
		file.Transactions = []models.StoredTransaction{}
	}
	return file.Transactions, nil
}

// Append implements Store.
func (fs *FileStore) Append(txs []*models.Transaction) ([]models.StoredTransaction, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	existing, err := fs.load()
	if err != nil {
		return nil, err
	}

	added := fs.wrap(txs)
	if err := fs.write(append(existing, added...)); err != nil {
		return nil, err
	}

	fs.logger.WithFields(logger.Fields{
		"ledger": fs.path,
		"added":  len(added),
		"total":  len(existing) + len(added),
	}).Info("Appended transactions to ledger")

	return added, nil
}

// ReplaceAll implements Store.
func (fs *FileStore) ReplaceAll(txs []*models.Transaction) ([]models.StoredTransaction, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	stored := fs.wrap(txs)
	if err := fs.write(stored); err != nil {
		return nil, err
	}

	fs.logger.WithFields(logger.Fields{
		"ledger": fs.path,
		"total":  len(stored),
	}).Info("Replaced ledger contents")

	return stored, nil
}

// Clear implements Store.
func (fs *FileStore) Clear() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.write([]models.StoredTransaction{})
}

// wrap assigns identity and timestamps to pipeline output.
func (fs *FileStore) wrap(txs []*models.Transaction) []models.StoredTransaction {
	now := fs.now().UTC()
	stored := make([]models.StoredTransaction, 0, len(txs))
	for _, tx := range txs {
		stored = append(stored, models.StoredTransaction{
			ID:          fs.newID(),
			Transaction: *tx,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return stored
}

func (fs *FileStore) write(txs []models.StoredTransaction) error {
	file := ledgerFile{
		Version:      ledgerVersion,
		UpdatedAt:    fs.now().UTC(),
		Transactions: txs,
	}

	content, err := json.MarshalIndent(&file, "", "  ")
	if err != nil {
		return errors.StorageError(errors.CodeStoreWriteFailed, fs.path, err)
	}

	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.StorageError(errors.CodeStoreWriteFailed, fs.path, err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger_*.json")
	if err != nil {
		return errors.StorageError(errors.CodeStoreWriteFailed, fs.path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.StorageError(errors.CodeStoreWriteFailed, fs.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.StorageError(errors.CodeStoreWriteFailed, fs.path, err)
	}

	if err := os.Rename(tmpName, fs.path); err != nil {
		os.Remove(tmpName)
		return errors.StorageError(errors.CodeStoreWriteFailed, fs.path, err)
	}

	return nil
}
