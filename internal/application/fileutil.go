package application

import (
	"io"

	"github.com/spf13/afero"
)

// partSuffix marks an artifact that is still being written
const partSuffix = ".part"

// copyFile copies a file from src to dst
func copyFile(fs afero.Fs, src, dst string) error {
	if src == dst {
		return nil
	}

	sourceFile, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := fs.Create(dst)
	if err != nil {
		return err
	}

	_, err = io.Copy(destFile, sourceFile)
	if closeErr := destFile.Close(); err == nil {
		err = closeErr
	}
	return err
}

// writeFileAtomic writes data next to path and renames it into place,
// so a reader never sees a partially written artifact.
func writeFileAtomic(fs afero.Fs, path string, data []byte) error {
	tmp := path + partSuffix
	if err := afero.WriteFile(fs, tmp, data, 0644); err != nil {
		_ = fs.Remove(tmp)
		return err
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return err
	}
	return nil
}
