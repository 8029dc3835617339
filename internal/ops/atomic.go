package ops

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hpungsan/skuloc/internal/errors"
)

// writeFileAtomic writes a file by streaming into a sibling temp file and
// renaming it over path. An existing file at path survives any failure.
func writeFileAtomic(path string, write func(w io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Errorf("failed to generate temp file name: %w", err)
	}
	tempPath := path + "." + hex.EncodeToString(suffix) + ".tmp"

	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	defer func() {
		if file != nil {
			file.Close()
		}
		if err != nil {
			os.Remove(tempPath)
		}
	}()

	bw := bufio.NewWriter(file)
	if err := write(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := file.Sync(); err != nil {
		return err
	}

	// Windows cannot rename an open file.
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	file = nil

	if info, lerr := os.Lstat(path); lerr == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("destination is a symlink: " + path)
	}

	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("destination already exists; overwriting is not supported on Windows")
			}
		}
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return nil
}
