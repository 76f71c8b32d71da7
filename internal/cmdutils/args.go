package cmdutils

import (
	"fmt"
	"strconv"

	"github.com/openkcm/taskmanager-client/internal/serviceerr"
)

// ParseID parses a positional identifier argument.
func ParseID(name, value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive number, got %q", serviceerr.ErrInvalidInput, name, value)
	}

	return id, nil
}

// ParseIDs parses the positional identifier arguments named by names, in
// order.
func ParseIDs(args []string, names ...string) ([]int64, error) {
	if len(args) < len(names) {
		return nil, fmt.Errorf("%w: expected %d arguments, got %d", serviceerr.ErrInvalidInput, len(names), len(args))
	}

	ids := make([]int64, 0, len(names))
	for i, name := range names {
		id, err := ParseID(name, args[i])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}
