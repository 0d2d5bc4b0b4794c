package common

import (
	"fmt"
	"io"
	"os"
)

// ReadFileLimited reads a file of at most maxBytes. Larger files fail with
// ErrInvalidRequest before their content is loaded.
func ReadFileLimited(path string, maxBytes int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrInvalidRequest, info.Name(), info.Size(), maxBytes)
	}

	reader := io.Reader(file)
	if maxBytes > 0 {
		reader = io.LimitReader(file, maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	// The file may have grown after Stat
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds the %d byte limit", ErrInvalidRequest, info.Name(), maxBytes)
	}
	return data, nil
}
