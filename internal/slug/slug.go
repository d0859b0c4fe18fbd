// Package slug builds the URL identifiers used by profiles, organisations
// and listings: a slugified base name plus a short random suffix, e.g.
// "ingenieur-logiciel-x7r2p9".
package slug

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode"
)

const suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// New returns a unique-ish slug for base. Callers still retry on unique
// constraint violations; the 6-char suffix just makes collisions rare.
func New(base string) (string, error) {
	suffix, err := randomSuffix(6)
	if err != nil {
		return "", err
	}
	s := Slugify(base)
	if s == "" {
		return suffix, nil
	}
	return s + "-" + suffix, nil
}

// Slugify lowercases, strips diacritic-free non-alphanumerics and collapses
// separators into single dashes.
func Slugify(s string) string {
	var b strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func randomSuffix(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(suffixAlphabet)))
	for i := range out {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = suffixAlphabet[v.Int64()]
	}
	return string(out), nil
}
