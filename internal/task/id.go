package task

import (
	"strconv"

	"github.com/google/uuid"
)

// IDFunc returns an ID unique among all IDs it has produced in this process.
type IDFunc func() string

// NewID is the default IDFunc: a random (version 4) UUID.
func NewID() string {
	return uuid.NewString()
}

// Sequence returns an IDFunc yielding prefix-1, prefix-2, ... Useful where
// deterministic IDs are wanted.
func Sequence(prefix string) IDFunc {
	n := 0
	return func() string {
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}
