// Package staging manages the ephemeral local area where inbound documents
// are written before being forwarded to object storage. Contents do not
// survive a process restart and are not expected to.
package staging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/homeworkbot/internal/common"
	"github.com/google/uuid"
)

// Area is the staging root directory.
type Area struct {
	root string
}

// NewArea ensures the staging directory exists and returns the area.
// A relative dir is resolved against the current working directory.
func NewArea(dir string) (*Area, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return &Area{root: dir}, nil
}

// Root returns the absolute staging root path.
func (a *Area) Root() string {
	return a.root
}

// Slot is a per-request staging location. Each slot lives in its own
// random subdirectory, so two concurrent submissions with identical file
// names never collide on a path.
type Slot struct {
	dir  string
	path string
}

// NewSlot allocates a fresh slot for fileName. Only the base of fileName is
// used, so a crafted name cannot escape the staging area.
func (a *Area) NewSlot(fileName string) (*Slot, error) {
	dir := filepath.Join(a.root, uuid.NewString())
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, fmt.Errorf("%w: mkdir %s: %v", common.ErrorStaging, dir, err)
	}
	return &Slot{dir: dir, path: filepath.Join(dir, filepath.Base(fileName))}, nil
}

// Path is the local file path the document should be written to.
func (s *Slot) Path() string {
	return s.path
}

// Cleanup removes the slot and everything in it. Safe to call whether or not
// the file was ever written.
func (s *Slot) Cleanup() error {
	return os.RemoveAll(s.dir)
}
