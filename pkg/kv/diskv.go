package kv

import (
	"encoding/base64"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/peterbourgon/diskv/v3"
)

// Diskv is a Store keeping one file per key under a base directory.
type Diskv struct {
	typed

	d        *diskv.Diskv
	basePath string
	log      *slog.Logger
}

// OpenDiskv creates (if needed) and opens a diskv-backed store rooted at
// basePath.
func OpenDiskv(basePath string, log *slog.Logger) (*Diskv, error) {
	if basePath == "" {
		return nil, errors.New("kv: base path required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Diskv{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		basePath: basePath,
		log:      log,
	}
	s.typed = newTyped(s, log)
	return s, nil
}

// BasePath is the directory holding the key files.
func (s *Diskv) BasePath() string {
	return s.basePath
}

func (s *Diskv) read(key string) ([]byte, error) {
	val, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errNotFound
		}
		return nil, err
	}
	return val, nil
}

func (s *Diskv) write(key string, value []byte) error {
	return s.d.Write(key, value)
}

func (s *Diskv) erase(key string) error {
	if err := s.d.Erase(key); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errNotFound
		}
		return err
	}
	return nil
}

func (s *Diskv) eraseAll() error {
	var errs []error
	for key := range s.d.Keys(nil) {
		if err := s.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close is a no-op; diskv holds no open descriptors between calls.
func (s *Diskv) Close() error { return nil }

// keyToPathTransform stores every key as a single flat file. Keys carry book
// names, so they are base64 encoded to stay filesystem safe.
func keyToPathTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{},
		FileName: base64.RawURLEncoding.EncodeToString([]byte(key)),
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return keyForFile(pathKey.FileName)
}

func keyForFile(name string) string {
	key, err := base64.RawURLEncoding.DecodeString(name)
	if err != nil {
		return name
	}
	return string(key)
}
