package keypool

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads newline-delimited keys from r, skipping blank lines.
func Load(r io.Reader) ([]string, error) {
	var keys []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			keys = append(keys, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read keys: %w", err)
	}

	if len(keys) == 0 {
		return nil, ErrNoCredentials
	}
	return keys, nil
}

// LoadFile reads keys from the file at path.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not found", ErrNoCredentials, path)
		}
		return nil, fmt.Errorf("open keys file: %w", err)
	}
	defer f.Close()

	keys, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return keys, nil
}
