// Package checkpoint persists the pipeline's stage boundaries as flat
// files. Each stage exclusively owns its artifact; later stages only
// ever read what an earlier stage wrote. The filesystem is abstracted
// behind afero so stage round-trips are testable in memory.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/spf13/afero"
)

// Checkpoint artifacts, named after the original dataset exports.
const (
	FileRawList   = "cartoons_trakt.csv"
	FileOverrides = "tmdb_overrides.csv"
	FileFixedList = "cartoons_trakt_fixed.csv"
	FileEnriched  = "cartoons_enriched.csv"
	FileProblems  = "tmdb_problems.csv"
	FileClean     = "cartoons_clean.csv"
)

// ErrMissing marks a read of a checkpoint that no earlier stage has
// produced yet. Callers surface it with the stage to run first.
var ErrMissing = errors.New("checkpoint file not found")

type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore returns a store rooted at dir on the real filesystem.
func NewStore(dir string) *Store {
	return &Store{fs: afero.NewOsFs(), dir: dir}
}

// NewMemStore returns a store over an in-memory filesystem, for tests.
func NewMemStore() *Store {
	return &Store{fs: afero.NewMemMapFs(), dir: ""}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// Exists reports whether the named checkpoint has been written.
func (s *Store) Exists(name string) bool {
	ok, err := afero.Exists(s.fs, s.path(name))
	return err == nil && ok
}

// WriteCSV writes rows as a headered UTF-8 CSV checkpoint.
func WriteCSV[T any](s *Store, name string, rows []T) error {
	if s.dir != "" {
		if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	f, err := s.fs.Create(s.path(name))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()

	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// WriteJSON mirrors rows as an indented JSON array next to the CSV.
// The JSON artifact takes the CSV name with the extension swapped.
func WriteJSON[T any](s *Store, csvName string, rows []T) error {
	name := strings.TrimSuffix(csvName, filepath.Ext(csvName)) + ".json"
	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := afero.WriteFile(s.fs, s.path(name), b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// ReadCSV loads a checkpoint written by an earlier stage. A missing
// file is reported as ErrMissing so callers can name the stage to run.
func ReadCSV[T any](s *Store, name string) ([]T, error) {
	f, err := s.fs.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, name)
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	var rows []T
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return rows, nil
}
