package tasklist

import (
	"fmt"
	"strconv"
	"strings"

	"tugestor-cli/internal/api"
	"tugestor-cli/internal/statusutil"
)

// NormalizeFilterValue canonicalizes user input for a filter kind so "vencida" or "high" work.
// Category ids and times must be numeric.
func NormalizeFilterValue(kind api.FilterKind, v string) (string, error) {
	v = strings.TrimSpace(v)
	switch kind {
	case api.FilterByPriority:
		p, err := statusutil.NormalizePriority(v)
		return string(p), err
	case api.FilterByState:
		s, err := statusutil.NormalizeState(v)
		return string(s), err
	case api.FilterByCategory, api.FilterByMaxTime:
		if _, err := strconv.Atoi(v); err != nil {
			return "", fmt.Errorf("invalid %s value %q: want a number", kind, v)
		}
	case api.FilterByKeyword:
		if v == "" {
			return "", fmt.Errorf("invalid %s value: empty", kind)
		}
	default:
		return "", fmt.Errorf("unknown filter kind %q", kind)
	}
	return v, nil
}
