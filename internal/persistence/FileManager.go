package persistence

import (
	"os"
	"studiosync/internal/providers"

	json "github.com/goccy/go-json"
)

// FileManager persists JSON-serializable snapshots, zstd-compressed, with a
// tmp-file + fsync + rename sequence so readers never observe a torn write.
type FileManager struct {
	compressor CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor CompressorInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		logger:     logger,
	}
}

func (f *FileManager) Save(fileName string, v any) error {
	jsonData, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

// Load reads a snapshot into v. A missing file is not an error: it reports
// found=false and leaves v untouched (cold start).
func (f *FileManager) Load(fileName string, v any) (bool, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	decompressed, err := f.compressor.Decompress(data)
	if err != nil {
		// Uncompressed files from before compression was introduced.
		f.logger.Warnf(providers.TypeApp, "Snapshot %s is not compressed, trying plain JSON", fileName)
		decompressed = data
	}

	if err := json.Unmarshal(decompressed, v); err != nil {
		return false, err
	}
	return true, nil
}

func (f *FileManager) Close() {
	f.compressor.Close()
}
