package headers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MirrorPath returns absPath relative to baseDir, keeping its directory
// structure. Paths outside baseDir are returned cleaned but otherwise unchanged.
func MirrorPath(baseDir, absPath string) string {
	baseDir = filepath.Clean(baseDir)
	absPath = filepath.Clean(absPath)

	rel := strings.TrimPrefix(absPath, baseDir+string(filepath.Separator))
	return rel
}

// CopyFile copies src to dst, creating dst's parent directories and
// overwriting dst if it already exists. When dst already is src, for example
// because the output tree is the source tree, nothing is written.
// A src that cannot be opened is reported as a *FatalOpenError.
func CopyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return &FatalOpenError{Path: src, Err: err}
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(srcInfo, dstInfo) {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}

	dstFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	return dstFile.Close()
}
