// Package credentials selects this worker's API key from the shared pool.
//
// The pool is a newline-separated secret shared by every worker instance;
// each instance picks one key by its numeric worker index.
package credentials

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const maskedPrefixLen = 8

var (
	// ErrEmptyPool is returned when the secret blob holds no usable key
	ErrEmptyPool = errors.New("credential pool is empty")

	// ErrInvalidIndex is returned when the worker index is not an integer
	ErrInvalidIndex = errors.New("worker index is not a valid integer")

	// ErrIndexOutOfRange is returned when the worker index does not address a key
	ErrIndexOutOfRange = errors.New("worker index out of range")
)

// Pool is the ordered list of keys parsed from the secret blob
type Pool []string

// ParsePool splits the blob into one key per non-blank line
func ParsePool(blob string) (Pool, error) {
	var pool Pool
	for _, line := range strings.Split(strings.TrimSpace(blob), "\n") {
		if key := strings.TrimSpace(line); key != "" {
			pool = append(pool, key)
		}
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	return pool, nil
}

// Selection is the key picked for this worker
type Selection struct {
	Key      string
	Index    int
	PoolSize int
}

// Masked returns a log-safe prefix of the key
func (s Selection) Masked() string {
	if len(s.Key) <= maskedPrefixLen {
		return strings.Repeat("*", len(s.Key))
	}
	return s.Key[:maskedPrefixLen] + "..."
}

// Select parses the blob and the raw worker index and returns the addressed key.
func Select(blob, rawIndex string) (Selection, error) {
	index, err := strconv.Atoi(strings.TrimSpace(rawIndex))
	if err != nil {
		return Selection{}, fmt.Errorf("%w: %q", ErrInvalidIndex, rawIndex)
	}

	pool, err := ParsePool(blob)
	if err != nil {
		return Selection{}, err
	}

	if index < 0 || index >= len(pool) {
		return Selection{}, fmt.Errorf("%w: index %d, %d key(s) available", ErrIndexOutOfRange, index, len(pool))
	}

	return Selection{Key: pool[index], Index: index, PoolSize: len(pool)}, nil
}
