package index

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	vectorFile = "index.gob"
	docFile    = "docs.json"
)

// persist writes both halves of the on-disk pair atomically via rename.
// Caller must hold the write lock.
func (idx *Index) persist() error {
	if err := os.MkdirAll(idx.dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	if err := writeAtomic(filepath.Join(idx.dir, vectorFile), func(f *os.File) error {
		return gob.NewEncoder(f).Encode(idx.vectors)
	}); err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}

	if err := writeAtomic(filepath.Join(idx.dir, docFile), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(idx.docs)
	}); err != nil {
		return fmt.Errorf("write documents: %w", err)
	}

	return nil
}

// load reads both halves of the pair. Any failure, including a count
// mismatch between vectors and documents, is reported so the caller can
// discard the partial state.
func (idx *Index) load() error {
	vf, err := os.Open(filepath.Join(idx.dir, vectorFile))
	if err != nil {
		return fmt.Errorf("open vectors: %w", err)
	}
	defer vf.Close()

	if err := gob.NewDecoder(vf).Decode(&idx.vectors); err != nil {
		return fmt.Errorf("decode vectors: %w", err)
	}

	df, err := os.Open(filepath.Join(idx.dir, docFile))
	if err != nil {
		return fmt.Errorf("open documents: %w", err)
	}
	defer df.Close()

	if err := json.NewDecoder(df).Decode(&idx.docs); err != nil {
		return fmt.Errorf("decode documents: %w", err)
	}

	if len(idx.vectors) != len(idx.docs) {
		return fmt.Errorf("state mismatch: %d vectors, %d documents", len(idx.vectors), len(idx.docs))
	}

	idx.logger.Info("loaded index state", "dir", idx.dir, "chunks", len(idx.docs))
	return nil
}

func writeAtomic(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
