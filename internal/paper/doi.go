package paper

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// doiPrefixes are stripped by NormalizeDOI, compared case-insensitively.
var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi.org/",
	"doi:",
}

// doiPattern matches the registrant/suffix shape of a DOI.
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// NormalizeDOI normalizes a DOI to a consistent format for comparison and keys.
// It removes URL and "doi:" prefixes and converts to lowercase (DOIs are
// case-insensitive).
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, prefix := range doiPrefixes {
		if len(doi) >= len(prefix) && strings.EqualFold(doi[:len(prefix)], prefix) {
			doi = doi[len(prefix):]
			break
		}
	}
	return strings.ToLower(doi)
}

// ValidDOI reports whether s looks like a DOI after normalization.
func ValidDOI(s string) bool {
	return doiPattern.MatchString(NormalizeDOI(s))
}

// DocumentKey returns the store key for a DOI: the normalized DOI with every
// byte outside [A-Za-z0-9_.~-] percent-encoded, so "/" becomes "%2F".
func DocumentKey(doi string) string {
	doi = NormalizeDOI(doi)
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(doi) + 8)
	for i := 0; i < len(doi); i++ {
		c := doi[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

// DOIFromKey reverses DocumentKey.
func DOIFromKey(key string) (string, error) {
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(key) {
			return "", fmt.Errorf("truncated escape in key %q", key)
		}
		hi, ok1 := unhex(key[i+1])
		lo, ok2 := unhex(key[i+2])
		if !ok1 || !ok2 {
			return "", fmt.Errorf("invalid escape %q in key %q", key[i:i+3], key)
		}
		b.WriteByte(hi<<4 | lo)
		i += 2
	}
	return b.String(), nil
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '~':
		return true
	}
	return false
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// DateLayout is the ISO date format used for publication windows.
const DateLayout = "2006-01-02"

// ValidateDateRange checks that start and end are YYYY-MM-DD and start <= end.
func ValidateDateRange(start, end string) error {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return fmt.Errorf("invalid start date %q (want YYYY-MM-DD)", start)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return fmt.Errorf("invalid end date %q (want YYYY-MM-DD)", end)
	}
	if e.Before(s) {
		return fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return nil
}
