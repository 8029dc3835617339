//go:build !windows

package ops

import (
	stderrors "errors"
	"os"
	"syscall"

	"github.com/hpungsan/skuloc/internal/errors"
)

// noFollowFlags refuse a symlink as the last path component and keep the
// descriptor out of child processes. Earlier components are covered by
// ValidatePath's one-level directory rule.
const noFollowFlags = syscall.O_NOFOLLOW | syscall.O_CLOEXEC

// openFileNoFollow opens path for writing without following a final symlink.
func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	fd, err := syscall.Open(path, flag|noFollowFlags, uint32(perm))
	if err != nil {
		if stderrors.Is(err, syscall.ELOOP) {
			return nil, errors.NewInvalidRequest("refusing to write through symlink: " + path)
		}
		return nil, err
	}
	return os.NewFile(uintptr(fd), path), nil
}

// openFileNoFollowRead opens path for reading without following a final symlink.
// A missing file is reported as INPUT_UNAVAILABLE.
func openFileNoFollowRead(path string) (*os.File, error) {
	fd, err := syscall.Open(path, syscall.O_RDONLY|noFollowFlags, 0)
	switch {
	case err == nil:
		return os.NewFile(uintptr(fd), path), nil
	case stderrors.Is(err, syscall.ELOOP):
		return nil, errors.NewInvalidRequest("refusing to read through symlink: " + path)
	case stderrors.Is(err, syscall.ENOENT):
		return nil, errors.NewInputUnavailable(path, nil)
	default:
		return nil, errors.NewInputUnavailable(path, err)
	}
}
