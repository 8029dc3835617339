package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hpungsan/skuloc/internal/config"
	"github.com/hpungsan/skuloc/internal/errors"
)

// PathCheckMode indicates whether the path check is for reading or writing.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // transcripts and imports
	PathCheckWrite                      // sinks and exports
)

// Accepted file extensions.
const (
	ExtJSON       = ".json"
	ExtCSV        = ".csv"
	ExtTranscript = ".txt"
)

// ValidatePath performs path validation for every file skuloc reads or writes.
// It checks:
// 1. Path traversal (.. sequences)
// 2. Extension (one of exts; .json or .csv when none given)
// 3. Directory restrictions (file must be DIRECTLY in ~/.skuloc/exports or allowed_paths)
// 4. Symlink safety (parent dir must not be a symlink, file must not be a symlink)
//
// Requiring files to sit directly in an allowed directory removes races on
// intermediate directory components. O_NOFOLLOW at open time covers the last one.
func ValidatePath(path string, mode PathCheckMode, cfg *config.Config, exts ...string) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}
	if len(exts) == 0 {
		exts = []string{ExtJSON, ExtCSV}
	}

	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if !slices.Contains(exts, strings.ToLower(filepath.Ext(cleaned))) {
		return errors.NewInvalidRequest(fmt.Sprintf("path must have one of these extensions: %s", strings.Join(exts, ", ")))
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	// Unsafe mode skips directory checks but never symlink checks.
	if cfg != nil && cfg.AllowUnsafePaths {
		return checkFile(path, absPath, mode)
	}

	allowedDirs, err := getAllowedDirs(cfg)
	if err != nil {
		return err
	}

	parentDir := filepath.Dir(absPath)
	if !isDirectlyInAllowedDir(parentDir, allowedDirs) {
		return errors.NewInvalidRequest(
			fmt.Sprintf("file must be directly in an allowed directory (no subdirectories); allowed: %v",
				allowedDirs))
	}

	if info, err := os.Lstat(parentDir); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("parent directory must not be a symlink")
		}
	}

	return checkFile(path, absPath, mode)
}

// checkFile verifies a read target exists and rejects symlinked files.
func checkFile(path, absPath string, mode PathCheckMode) error {
	info, err := os.Lstat(absPath)
	if err != nil {
		if mode == PathCheckRead {
			return errors.NewInputUnavailable(path, nil)
		}
		return nil
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("path must not be a symlink")
	}
	if mode == PathCheckRead && info.IsDir() {
		return errors.NewInputUnavailable(path, fmt.Errorf("is a directory"))
	}
	return nil
}

// getAllowedDirs returns the list of allowed directories (absolute, cleaned).
// Symlinked entries are resolved so they match their real target.
func getAllowedDirs(cfg *config.Config) ([]string, error) {
	defaultDir, err := DefaultExportsDir()
	if err != nil {
		return nil, err
	}
	dirs := []string{defaultDir}

	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				dirs = append(dirs, filepath.Clean(p))
			}
		}
	}

	result := make([]string, 0, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(filepath.Clean(d))
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid allowed path: %v", err))
		}

		if info, err := os.Lstat(abs); err == nil && info.Mode()&os.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(abs)
			if err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
			}
			abs = resolved
		}
		result = append(result, abs)
	}

	return result, nil
}

// isDirectlyInAllowedDir checks if parentDir exactly matches one of the allowed directories.
func isDirectlyInAllowedDir(parentDir string, allowedDirs []string) bool {
	parentDir = filepath.Clean(parentDir)
	for _, dir := range allowedDirs {
		if parentDir == filepath.Clean(dir) {
			return true
		}
	}
	return false
}

// DefaultExportsDir returns the default exports directory (~/.skuloc/exports).
func DefaultExportsDir() (string, error) {
	base, err := config.DefaultBaseDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(base, "exports"), nil
}

// containsTraversal checks if path contains ".." directory traversal.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}
