package device

import (
	"fmt"
	"strings"
)

// Pre-computed validation set for O(1) status lookups.
var validStatuses map[Status]struct{}

func init() {
	validStatuses = make(map[Status]struct{}, len(AllStatuses()))
	for _, s := range AllStatuses() {
		validStatuses[s] = struct{}{}
	}
}

// ValidStatus reports whether s is a recognised status value.
func ValidStatus(s Status) bool {
	_, ok := validStatuses[s]
	return ok
}

// ParseStatus converts a wire value to a Status.
// Matching is case-insensitive; unknown values return ErrInvalidStatus.
func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(value)))
	if !ValidStatus(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
	}
	return s, nil
}
