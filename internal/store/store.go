package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrInvalidID is returned for an export id that does not name a single
// entry directly under the base directory.
var ErrInvalidID = errors.New("store: invalid export id")

// Store keeps exported selections under a base directory, one
// subdirectory per export.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type ExportMetadata struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	Timestamp     time.Time `json:"timestamp"`
	Format        string    `json:"format"`
	Leaves        int       `json:"leaves"`
	CheckedLeaves int       `json:"checked_leaves"`
	File          string    `json:"file"`
}

// Save writes payload and its metadata and returns the new export id. ID,
// Timestamp and File are filled in by Save.
func (s *Store) Save(meta ExportMetadata, payload []byte) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", slug(meta.Source), now.UnixNano())
	meta.Timestamp = now
	meta.File = "export." + extension(meta.Format)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := os.WriteFile(filepath.Join(runDir, meta.File), payload, 0644); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns the metadata of every saved export, oldest first.
// Directories without readable metadata are skipped.
func (s *Store) List() ([]ExportMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ExportMetadata{}, nil
		}
		return nil, err
	}

	exports := make([]ExportMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.loadMeta(entry.Name())
		if err != nil {
			continue
		}
		exports = append(exports, *meta)
	}

	sort.Slice(exports, func(i, j int) bool {
		return exports[i].Timestamp.Before(exports[j].Timestamp)
	})
	return exports, nil
}

// Load returns the metadata and payload of a saved export.
func (s *Store) Load(id string) (*ExportMetadata, []byte, error) {
	if err := checkID(id); err != nil {
		return nil, nil, err
	}
	meta, err := s.loadMeta(id)
	if err != nil {
		return nil, nil, err
	}
	if err := checkID(meta.File); err != nil {
		return nil, nil, fmt.Errorf("export %s: payload file: %w", id, err)
	}
	payload, err := os.ReadFile(filepath.Join(s.baseDir, id, meta.File))
	if err != nil {
		return nil, nil, err
	}
	return meta, payload, nil
}

func checkID(id string) error {
	if id == "" || id == "." || strings.Contains(id, "..") ||
		strings.ContainsAny(id, `/\`) || filepath.IsAbs(id) || filepath.VolumeName(id) != "" {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func (s *Store) loadMeta(id string) (*ExportMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta ExportMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func extension(format string) string {
	if format == "yaml" {
		return "yaml"
	}
	return "json"
}

func slug(source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if base == "" || base == "." || base == "-" || base == string(filepath.Separator) {
		return "export"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return '_'
	}, base)
}
