// SPDX-License-Identifier: MPL-2.0

package gather

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidPattern is returned when a file glob does not translate to a valid expression.
var ErrInvalidPattern = errors.New("invalid file pattern")

// Regexp translates a file glob into an anchored regular expression. '.' and '\' are
// escaped, '?' matches one character and '*' any run of characters; every other character
// is copied as is. An empty glob matches everything.
func Regexp(pattern string) string {
	if pattern == "" {
		return "^.*$"
	}
	var sb strings.Builder
	sb.WriteByte('^')
	for _, c := range pattern {
		switch c {
		case '.':
			sb.WriteString(`\.`)
		case '\\':
			sb.WriteString(`\\`)
		case '?':
			sb.WriteByte('.')
		case '*':
			sb.WriteString(".*")
		default:
			sb.WriteRune(c)
		}
	}
	sb.WriteByte('$')
	return sb.String()
}

// Compile translates and compiles a file glob.
func Compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(Regexp(pattern))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, err)
	}
	return re, nil
}
