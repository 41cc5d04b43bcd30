// Package hash computes content checksums of plugin artifacts.
//
// An installed artifact records the checksum of the copy made from the
// catalog. Status compares it with the copy on disk to report drift. Artifacts
// are either single files or bundle directories; a directory hashes as the
// ordered list of its relative paths and file contents.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Hasher provides an abstraction for artifact hashing.
type Hasher interface {
	// HashPath computes the checksum of the file or directory at path.
	HashPath(path string) (string, error)
}

// SHA256Hasher implements Hasher using SHA-256.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// HashPath computes the SHA-256 checksum of a file or a directory tree.
func (h *SHA256Hasher) HashPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	hasher := sha256.New()
	if !info.IsDir() {
		if err := writeFile(hasher, path); err != nil {
			return "", err
		}
		return hex.EncodeToString(hasher.Sum(nil)), nil
	}

	// WalkDir visits entries in lexical order, which keeps the sum stable.
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		if d.IsDir() {
			_, _ = fmt.Fprintf(hasher, "d %s\n", filepath.ToSlash(rel))
			return nil
		}
		_, _ = fmt.Fprintf(hasher, "f %s\n", filepath.ToSlash(rel))
		return writeFile(hasher, p)
	})
	if err != nil {
		return "", fmt.Errorf("failed to hash directory %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func writeFile(w io.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if _, err := io.Copy(w, file); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	return nil
}

// FakeHasher implements Hasher with deterministic hashes for testing.
type FakeHasher struct {
	hashes map[string]string
	errs   map[string]error
}

// NewFakeHasher creates a new FakeHasher.
func NewFakeHasher() *FakeHasher {
	return &FakeHasher{
		hashes: make(map[string]string),
		errs:   make(map[string]error),
	}
}

// SetHash sets the hash for a specific path.
func (h *FakeHasher) SetHash(path, hash string) {
	h.hashes[path] = hash
}

// SetError makes HashPath fail for path.
func (h *FakeHasher) SetError(path string, err error) {
	h.errs[path] = err
}

// HashPath returns the predetermined hash for the given path.
func (h *FakeHasher) HashPath(path string) (string, error) {
	if err, ok := h.errs[path]; ok {
		return "", err
	}
	if hash, ok := h.hashes[path]; ok {
		return hash, nil
	}
	return "fakehash", nil
}
