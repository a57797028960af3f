package frame

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var ErrLogRootMissing = errors.New("log root does not exist")

// DefaultLogRoot is used when no log root is configured.
const DefaultLogRoot = "/var/log/"

// LocalStore writes one JSON document per frame at <root>/<id>/<key>.
type LocalStore struct {
	fs   afero.Fs
	root string
}

type StoreOption func(*LocalStore)

func WithFs(fs afero.Fs) StoreOption {
	return func(s *LocalStore) {
		s.fs = fs
	}
}

func NewLocalStore(root string, opts ...StoreOption) *LocalStore {
	if root == "" {
		root = DefaultLogRoot
	}
	s := &LocalStore{fs: afero.NewOsFs(), root: root}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LocalStore) Root() string {
	return s.root
}

// Path is the file a frame is written to. Path separators inside the id or
// key are replaced so a record never escapes its directory.
func (s *LocalStore) Path(f Frame) string {
	return filepath.Join(s.root, pathComponent(f.ID), pathComponent(f.Key))
}

func (s *LocalStore) Save(f Frame) error {
	info, err := s.fs.Stat(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrLogRootMissing, s.root)
		}
		return fmt.Errorf("stat log root %s: %w", s.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrLogRootMissing, s.root)
	}

	dir := filepath.Join(s.root, pathComponent(f.ID))
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create frame dir %s: %w", dir, err)
	}

	data, err := f.Marshal()
	if err != nil {
		return err
	}

	path := s.Path(f)
	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write frame %s: %w", path, err)
	}
	return nil
}

func pathComponent(s string) string {
	s = strings.NewReplacer("/", "_", `\`, "_").Replace(s)
	switch s {
	case "", ".", "..":
		return "_" + s
	}
	return s
}
