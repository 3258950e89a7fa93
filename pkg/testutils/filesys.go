package testutils

import (
	"path"

	"github.com/mandelsoft/vfs/pkg/layerfs"
	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/readonlyfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
)

// SeededFileSystem provides an in-memory filesystem with the
// given file content. Directories are created as required.
func SeededFileSystem(files map[string]string) (vfs.FileSystem, error) {
	fs := memoryfs.New()
	for p, content := range files {
		err := fs.MkdirAll(path.Dir(p), 0o700)
		if err != nil {
			return nil, err
		}
		err = vfs.WriteFile(fs, p, []byte(content), 0o600)
		if err != nil {
			return nil, err
		}
	}
	return fs, nil
}

// OverlayFileSystem protects a prepared filesystem. Modifications
// are kept in a separate in-memory layer, or rejected for a
// read-only overlay.
func OverlayFileSystem(base vfs.FileSystem, readonly bool) vfs.FileSystem {
	if readonly {
		return readonlyfs.New(base)
	}
	return layerfs.New(memoryfs.New(), base)
}
