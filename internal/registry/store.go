package registry

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"studiosync/internal/models"
	"studiosync/internal/persistence"
	"studiosync/internal/providers"
	"studiosync/internal/structures"
	"sync"

	"github.com/google/uuid"
	"github.com/gookit/validate"
)

const storeFileName = "registry.json.zst"

var ErrNotFound = errors.New("registry record not found")

type StoreInterface interface {
	List() []models.RegistryRecord
	Get(id string) (models.RegistryRecord, bool)
	Create(rec models.RegistryRecord) (models.RegistryRecord, error)
	Update(id string, rec models.RegistryRecord) (models.RegistryRecord, error)
	Delete(id string) error
	DeleteBulk(ids []string) int
	Count() int
}

// FileStore keeps the registry in memory and mirrors every mutation to disk.
// The registry is small (tens to low hundreds of records), so whole-file
// writes per mutation are cheaper than anything smarter.
type FileStore struct {
	mu      sync.RWMutex
	records map[string]models.RegistryRecord
	files   *persistence.FileManager
	logger  providers.Logger
	path    string
}

func NewFileStore(conf *structures.Config, files *persistence.FileManager, logger providers.Logger) (StoreInterface, error) {
	fs := &FileStore{
		records: make(map[string]models.RegistryRecord),
		files:   files,
		logger:  logger,
		path:    filepath.Join(conf.Persistence.Dir, storeFileName),
	}

	var stored []models.RegistryRecord
	found, err := files.Load(fs.path, &stored)
	if err != nil {
		return nil, fmt.Errorf("cannot load registry: %w", err)
	}
	if found {
		for _, rec := range stored {
			fs.records[rec.ID] = rec
		}
		logger.Infof(providers.TypeApp, "Registry loaded: %d records", len(stored))
	}

	return fs, nil
}

func validateRecord(rec *models.RegistryRecord) error {
	v := validate.Struct(rec)
	if !v.Validate() {
		return v.Errors
	}
	return nil
}

func (fs *FileStore) List() []models.RegistryRecord {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	out := make([]models.RegistryRecord, 0, len(fs.records))
	for _, rec := range fs.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (fs *FileStore) Get(id string) (models.RegistryRecord, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	rec, ok := fs.records[id]
	return rec, ok
}

func (fs *FileStore) Create(rec models.RegistryRecord) (models.RegistryRecord, error) {
	if err := validateRecord(&rec); err != nil {
		return models.RegistryRecord{}, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	rec.ID = uuid.NewString()
	fs.records[rec.ID] = rec
	if err := fs.persistLocked(); err != nil {
		delete(fs.records, rec.ID)
		return models.RegistryRecord{}, err
	}
	return rec, nil
}

func (fs *FileStore) Update(id string, rec models.RegistryRecord) (models.RegistryRecord, error) {
	if err := validateRecord(&rec); err != nil {
		return models.RegistryRecord{}, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev, ok := fs.records[id]
	if !ok {
		return models.RegistryRecord{}, ErrNotFound
	}

	rec.ID = id
	fs.records[id] = rec
	if err := fs.persistLocked(); err != nil {
		fs.records[id] = prev
		return models.RegistryRecord{}, err
	}
	return rec, nil
}

func (fs *FileStore) Delete(id string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev, ok := fs.records[id]
	if !ok {
		return ErrNotFound
	}

	delete(fs.records, id)
	if err := fs.persistLocked(); err != nil {
		fs.records[id] = prev
		return err
	}
	return nil
}

// DeleteBulk removes every listed id that exists and reports how many were
// deleted. Unknown ids are skipped rather than failing the batch.
func (fs *FileStore) DeleteBulk(ids []string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := fs.records[id]; ok {
			delete(fs.records, id)
			deleted++
		}
	}
	if deleted > 0 {
		if err := fs.persistLocked(); err != nil {
			fs.logger.Errorf(providers.TypeApp, "Error while persisting registry: %s", err)
		}
	}
	return deleted
}

func (fs *FileStore) Count() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.records)
}

func (fs *FileStore) persistLocked() error {
	out := make([]models.RegistryRecord, 0, len(fs.records))
	for _, rec := range fs.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return fs.files.Save(fs.path, out)
}
