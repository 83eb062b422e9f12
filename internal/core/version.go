package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Version is a parsed Debian package version of the form
// [epoch:]upstream-version[-debian-revision]. A missing epoch is "0"; a
// missing revision is the empty string and compares as such, so "1.0" and
// "1.0-" are equal while "1.0-1" sorts above both.
type Version struct {
	Raw      string
	Epoch    string
	Upstream string
	Revision string
}

const versionChars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ.+~:-"

// ParseVersion validates and splits a Debian version string. Malformed
// input is rejected rather than falling back to lexical comparison.
func ParseVersion(value string) (Version, error) {
	if value == "" {
		return Version{}, invalidVersionErr(value, "version is empty")
	}
	for i := 0; i < len(value); i++ {
		if !strings.ContainsRune(versionChars, rune(value[i])) {
			return Version{}, invalidVersionErr(value, fmt.Sprintf("illegal character %q at position %d", value[i], i))
		}
	}
	epoch := "0"
	rest := value
	if idx := strings.Index(value, ":"); idx >= 0 {
		epoch = value[:idx]
		rest = value[idx+1:]
		if epoch == "" || !allDigits(epoch) {
			return Version{}, invalidVersionErr(value, fmt.Sprintf("epoch %q is not numeric", epoch))
		}
	}
	upstream := rest
	revision := ""
	if idx := strings.LastIndex(rest, "-"); idx >= 0 {
		upstream = rest[:idx]
		revision = rest[idx+1:]
	}
	if upstream == "" {
		return Version{}, invalidVersionErr(value, "upstream version is empty")
	}
	return Version{Raw: value, Epoch: epoch, Upstream: upstream, Revision: revision}, nil
}

// Compare returns -1, 0, or 1 ordering v against other by Debian version
// semantics: epoch first, then upstream version, then revision.
func (v Version) Compare(other Version) int {
	if diff := compareDigitRun(v.Epoch, other.Epoch); diff != 0 {
		return diff
	}
	if diff := compareComponent(v.Upstream, other.Upstream); diff != 0 {
		return diff
	}
	return compareComponent(v.Revision, other.Revision)
}

func (v Version) String() string {
	return v.Raw
}

// CompareVersions parses both strings and compares them, returning -1, 0,
// or 1. Either side failing to parse yields an invalid-version error.
func CompareVersions(a string, b string) (int, error) {
	left, err := ParseVersion(a)
	if err != nil {
		return 0, err
	}
	right, err := ParseVersion(b)
	if err != nil {
		return 0, err
	}
	return left.Compare(right), nil
}

// compareComponent walks both strings left to right, alternately taking a
// maximal non-digit run and a maximal digit run from each side.
func compareComponent(a string, b string) int {
	for a != "" || b != "" {
		var runA, runB string
		runA, a = takeRun(a, false)
		runB, b = takeRun(b, false)
		if diff := compareNonDigitRun(runA, runB); diff != 0 {
			return diff
		}
		runA, a = takeRun(a, true)
		runB, b = takeRun(b, true)
		if diff := compareDigitRun(runA, runB); diff != 0 {
			return diff
		}
	}
	return 0
}

// takeRun splits off the leading run of digit or non-digit characters.
func takeRun(s string, digits bool) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) == digits {
		i++
	}
	return s[:i], s[i:]
}

// compareNonDigitRun compares character by character, one position past
// the shorter run, so "~" sorts below end of string while every other
// character sorts above it.
func compareNonDigitRun(a string, b string) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		diff := charOrder(a, i) - charOrder(b, i)
		if diff < 0 {
			return -1
		}
		if diff > 0 {
			return 1
		}
	}
	return 0
}

// charOrder ranks one character: "~" before end of string, end of string
// before letters, letters before all other symbols.
func charOrder(s string, i int) int {
	if i >= len(s) {
		return 0
	}
	c := s[i]
	switch {
	case c == '~':
		return -1
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return int(c)
	default:
		return int(c) + 256
	}
}

// compareDigitRun compares two digit runs as unsigned integers of
// arbitrary size. An empty run counts as zero.
func compareDigitRun(a string, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ErrInvalidVersion marks every version parse failure. Callers classify
// with errors.Is instead of inspecting the message.
var ErrInvalidVersion = errors.New("invalid version")

type invalidVersionError struct {
	err error
}

func (e invalidVersionError) Error() string { return e.err.Error() }

func (e invalidVersionError) Unwrap() error { return e.err }

func (e invalidVersionError) Is(target error) bool { return target == ErrInvalidVersion }

func invalidVersionErr(value string, reason string) error {
	return invalidVersionError{err: errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid version %q: %s", value, reason))}
}
