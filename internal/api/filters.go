package api

import (
	"strconv"
	"strings"

	domainerrors "github.com/recipeapp/recipe-server/internal/errors"
)

// parseIDList parses a comma-separated id list such as "1,2,3". Empty
// entries are skipped, so "" and "1,," are accepted.
func parseIDList(field, raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			return nil, domainerrors.FieldError(field, "expected a comma-separated list of ids, got "+strconv.Quote(p))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parsePathID parses a path id. Anything that is not a positive integer is
// reported as a missing label, the same as an id that does not exist.
func parsePathID(raw, label string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domainerrors.NotFoundf("%s not found", label)
	}
	return id, nil
}
