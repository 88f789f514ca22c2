package utils

import (
	"errors"
	"io/fs"
	"os"
)

// ReadFileIfExists reads path, reporting false instead of an error when it does not exist.
func ReadFileIfExists(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}
