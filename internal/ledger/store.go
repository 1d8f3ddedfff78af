package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"fin-extract/internal/models"

	"go.uber.org/zap"
)

// Store reads and writes the ledger JSON file.
type Store struct {
	path   string
	logger *zap.Logger
}

func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the ledger. A missing file yields an empty ledger. A file that is
// not valid JSON or does not look like a ledger is copied to a fresh backup
// (<path>.bak, then <path>.bak.1, ...) and an empty ledger is returned.
func (s *Store) Load() (models.Ledger, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("Ledger file not found, starting empty", zap.String("path", s.path))
		return Clear(), nil
	}
	if err != nil {
		return models.Ledger{}, fmt.Errorf("failed to read ledger: %w", err)
	}

	if err := validateDocument(data); err != nil {
		s.logger.Warn("Ledger file is malformed, treating it as empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
		backup, werr := writeBackup(s.path, data)
		if werr != nil {
			s.logger.Warn("Failed to back up malformed ledger", zap.String("path", s.path), zap.Error(werr))
		} else {
			s.logger.Info("Malformed ledger backed up", zap.String("backup", backup))
		}
		return Clear(), nil
	}

	var l models.Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return Clear(), nil
	}
	l = clone(l)

	if ids := Dangling(l); len(ids) > 0 {
		s.logger.Warn("Ledger sessions reference unknown file ids", zap.Strings("ids", ids))
	}
	return l, nil
}

// Save writes the ledger to a temp file in the same directory and renames it
// over the target, so an interrupted write leaves the previous file intact.
func (s *Store) Save(l models.Ledger) error {
	data, err := json.MarshalIndent(clone(l), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp ledger: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to chmod temp ledger: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace ledger: %w", err)
	}

	s.logger.Debug("Ledger saved",
		zap.String("path", s.path),
		zap.Int("files", len(l.Files)),
		zap.Int("sessions", len(l.UploadSessions)),
	)
	return nil
}

const maxBackups = 1000

// writeBackup stores data under the first backup name that does not exist yet.
func writeBackup(path string, data []byte) (string, error) {
	for n := 0; n < maxBackups; n++ {
		name := path + ".bak"
		if n > 0 {
			name = fmt.Sprintf("%s.bak.%d", path, n)
		}
		f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", err
		}
		return name, f.Close()
	}
	return "", fmt.Errorf("no free backup name for %s", path)
}
