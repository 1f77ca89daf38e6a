package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ReferenceExt is the extension of files recognized as reference lists.
const ReferenceExt = ".csv"

var ErrInvalidReferenceFile = errors.New("reference file must have a .csv extension")

// ReferenceStore reads the known account identifiers from every CSV file in
// a directory. Nothing is cached: each Load rescans the directory so an
// upload is visible on the very next lookup.
type ReferenceStore struct {
	dir    string
	logger *zap.Logger
}

func NewReferenceStore(dir string, logger *zap.Logger) (*ReferenceStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create reference directory %s: %w", dir, err)
	}
	return &ReferenceStore{dir: dir, logger: logger.Named("reference")}, nil
}

// Dir returns the directory scanned for reference files.
func (s *ReferenceStore) Dir() string {
	return s.dir
}

// Load returns the union of first-column values of all reference files.
// Files that fail to parse are skipped with a warning.
func (s *ReferenceStore) Load() map[string]struct{} {
	accounts := make(map[string]struct{})

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Error("failed to list reference directory", zap.String("dir", s.dir), zap.Error(err))
		return accounts
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ReferenceExt) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		ids, err := readFirstColumn(path)
		if err != nil {
			s.logger.Warn("skipping reference file", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		for _, id := range ids {
			accounts[id] = struct{}{}
		}
	}
	return accounts
}

// Contains reloads the store and reports whether id is a known account.
func (s *ReferenceStore) Contains(id string) bool {
	_, ok := s.Load()[strings.TrimSpace(id)]
	return ok
}

// Save writes an uploaded reference file, replacing any file of the same name.
func (s *ReferenceStore) Save(fileName string, data []byte) error {
	name := filepath.Base(fileName)
	if !strings.HasSuffix(name, ReferenceExt) || name == ReferenceExt {
		return ErrInvalidReferenceFile
	}

	path := filepath.Join(s.dir, name)
	err := writeAtomic(path, 0o644, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save reference file %s: %w", name, err)
	}
	s.logger.Info("reference file saved", zap.String("file", name), zap.Int("bytes", len(data)))
	return nil
}

func readFirstColumn(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var ids []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		if id := strings.TrimSpace(record[0]); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
