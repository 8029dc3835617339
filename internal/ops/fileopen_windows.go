//go:build windows

package ops

import (
	"os"

	"github.com/hpungsan/skuloc/internal/errors"
)

// openFileNoFollow opens path for writing. Windows has no O_NOFOLLOW;
// ValidatePath has already rejected a symlinked target.
func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}

// openFileNoFollowRead opens path for reading.
func openFileNoFollowRead(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewInputUnavailable(path, err)
	}
	return f, nil
}
