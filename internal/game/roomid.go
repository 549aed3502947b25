package game

import (
	"fmt"
	"strings"
)

// IDFormat selects the room id scheme of a deployment.
type IDFormat string

const (
	FormatCode    = IDFormat("code")
	FormatNumeric = IDFormat("numeric")
)

const (
	codeLength       = 5
	maxNumericLength = 9
)

func ParseIDFormat(s string) (IDFormat, error) {
	switch f := IDFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCode, FormatNumeric:
		return f, nil
	case "":
		return FormatCode, nil
	default:
		return "", fmt.Errorf("unknown room id format %q", s)
	}
}

// NormalizeRoomID trims raw and validates it against format. Code ids are
// uppercased and must be five characters of A-Z or 0-9; numeric ids must
// be a non-negative run of digits.
func NormalizeRoomID(format IDFormat, raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", fmt.Errorf("%w: room code is required", ErrInvalidRoomID)
	}

	if format == FormatNumeric {
		if strings.HasPrefix(id, "-") {
			return "", fmt.Errorf("%w: room number cannot be negative", ErrInvalidRoomID)
		}
		if len(id) > maxNumericLength || !allDigits(id) {
			return "", fmt.Errorf("%w: room number must be digits only, got %q", ErrInvalidRoomID, id)
		}
		return id, nil
	}

	id = strings.ToUpper(id)
	if len(id) != codeLength || !allAlnum(id) {
		return "", fmt.Errorf("%w: room code must be exactly %d letters or digits, got %q", ErrInvalidRoomID, codeLength, id)
	}
	return id, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func allAlnum(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
