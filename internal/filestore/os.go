package filestore

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const defaultBufSize = 64 * 1024

// OS is a Store backed by the local filesystem.
type OS struct {
	// Atomic writes go to a temp file in the target directory which is then
	// renamed over the destination, so readers never see a partial artifact.
	Atomic   bool
	PermFile os.FileMode
	PermDir  os.FileMode
}

var _ Store = (*OS)(nil)

// NewOS returns an OS store with 0644/0755 permissions.
func NewOS(atomic bool) *OS {
	return &OS{Atomic: atomic, PermFile: 0o644, PermDir: 0o755}
}

func (s *OS) IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

func (s *OS) MkdirAll(path string) error {
	return os.MkdirAll(path, s.permDir())
}

// List returns entries sorted by name, as os.ReadDir does. Symlinks are
// resolved so a link to a file counts as a regular file.
func (s *OS) List(dir string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		info, err := os.Stat(filepath.Join(dir, de.Name()))
		if err != nil {
			// Dangling link or entry removed since ReadDir.
			entries = append(entries, Entry{Name: de.Name()})
			continue
		}
		e := Entry{
			Name:      de.Name(),
			IsDir:     info.IsDir(),
			IsRegular: info.Mode().IsRegular(),
		}
		if e.IsRegular {
			e.Size = info.Size()
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *OS) ReadBytes(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (s *OS) WriteText(path, text string) error {
	if s.Atomic {
		return s.writeAtomic(path, text)
	}
	return s.writeOverwrite(path, text)
}

func (s *OS) writeOverwrite(path, text string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, s.permFile())
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(f, defaultBufSize)
	if _, err := bw.WriteString(text); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *OS) writeAtomic(path, text string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-"+strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+"-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, s.permFile())

	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	bw := bufio.NewWriterSize(tmp, defaultBufSize)
	if _, err := bw.WriteString(text); err != nil {
		return fail(err)
	}
	if err := bw.Flush(); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func (s *OS) permFile() os.FileMode {
	if s.PermFile == 0 {
		return 0o644
	}
	return s.PermFile
}

func (s *OS) permDir() os.FileMode {
	if s.PermDir == 0 {
		return 0o755
	}
	return s.PermDir
}
