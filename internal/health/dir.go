package health

import (
	"context"
	"fmt"

	"github.com/onnwee/tagqa/internal/fsutil"
)

// DirChecker verifies that a directory the server reads or writes exists.
type DirChecker struct {
	fsys fsutil.FileSystem
	path string
}

// NewDirChecker creates a checker for path on fsys.
func NewDirChecker(fsys fsutil.FileSystem, path string) *DirChecker {
	return &DirChecker{fsys: fsys, path: path}
}

// HealthCheck stats the directory.
func (d *DirChecker) HealthCheck(ctx context.Context) error {
	info, err := d.fsys.Stat(d.path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", d.path)
	}
	return nil
}
