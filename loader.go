package taxlot

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FindLedger returns the unique ledger matching the query under path.
// If the query is empty and no ledger exists, an empty default ledger is
// returned. In any other ambiguous case it returns an error.
func FindLedger(path, query string) (*Ledger, error) {
	ledgerPaths, err := findLedgerPaths(path, query)
	if err != nil {
		return nil, err
	}
	switch len(ledgerPaths) {
	case 0:
		if query == "" {
			l := NewLedger()
			l.name = "transactions"
			return l, nil
		}
		return nil, fmt.Errorf("could not find ledger %q", query)
	case 1:
		return loadLedgerFile(path, ledgerPaths[0])
	default:
		return nil, fmt.Errorf("multiple ledgers found for %q", query)
	}
}

// findLedgerPaths lists the .jsonl files under path. A ledger name is its
// relative path without the .jsonl extension; a non-empty query selects one.
func findLedgerPaths(path, query string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".jsonl") {
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(rel, ".jsonl")
		if query == "" || name == query {
			found = append(found, p)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not scan %q for ledgers: %w", path, err)
	}
	return found, nil
}

// loadLedgerFile opens, decodes, and names a ledger from a file path.
func loadLedgerFile(rootPath, fullPath string) (*Ledger, error) {
	relPath, err := filepath.Rel(rootPath, fullPath)
	if err != nil {
		return nil, fmt.Errorf("could not determine relative path for %q: %w", fullPath, err)
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("could not open ledger file %q: %w", fullPath, err)
	}
	defer f.Close()

	ledger, err := DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode ledger file %q: %w", fullPath, err)
	}
	ledger.name = strings.TrimSuffix(relPath, ".jsonl")
	return ledger, nil
}

// FileStore persists a ledger to one JSONL file, written atomically via a
// temporary sibling and rename.
type FileStore struct {
	Path string
}

// Save implements Store.
func (s FileStore) Save(l *Ledger) error {
	tmp := s.Path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", tmp, err)
	}
	if err := EncodeLedger(f, l); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("could not encode ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not replace %q: %w", s.Path, err)
	}
	return nil
}
