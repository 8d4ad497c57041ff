package documents

import (
	"errors"
	"strings"
	"time"
)

// Document is the last value written to a path. Every write replaces Value
// as a whole and bumps Version by one.
type Document struct {
	Path      string
	Value     []byte
	Version   int64
	UpdatedBy string
	UpdatedAt time.Time
}

var ErrInvalidPath = errors.New("invalid document path")

const maxPathLength = 200

// ValidatePath accepts slash separated segments of letters, digits, '-' and
// '_'. The last segment may not be "watch", which names the change stream.
func ValidatePath(path string) error {
	if path == "" || len(path) > maxPathLength {
		return ErrInvalidPath
	}

	segments := strings.Split(path, "/")
	for _, seg := range segments {
		if seg == "" {
			return ErrInvalidPath
		}
		for _, r := range seg {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			default:
				return ErrInvalidPath
			}
		}
	}

	if segments[len(segments)-1] == "watch" {
		return ErrInvalidPath
	}
	return nil
}
