// Package patch performs minimal, format-preserving edits of single YAML
// scalar values.
//
// The source documents are hand-authored: comments, key order, and quoting
// style all carry meaning. Re-serializing a parsed structure would silently
// destroy them, so this package never parses and dumps; it performs a
// single-occurrence text substitution on the raw document.
package patch

import (
	"regexp"
	"strings"
)

// Scalar replaces the first occurrence of "key: oldValue" in text with
// "key: newValue", preserving indentation, the quote style around the value,
// and everything after it on the line (trailing comments included). It
// returns the resulting text and the number of replacements (0 or 1).
//
// A count of 0 means no qualifying line was found; callers treat that as a
// warning and leave the file untouched. When oldValue equals newValue a found
// line still counts as one match, so callers can distinguish "key located"
// from "key missing" independent of whether the value changed.
func Scalar(text, key, oldValue, newValue string) (string, int) {
	// Anchored form: optional indentation, the key, a colon, optional
	// whitespace, an optionally quoted value, rest of line. Open and close
	// quotes are captured separately and re-emitted as written.
	pattern := regexp.MustCompile(
		`(?m)^(\s*` + regexp.QuoteMeta(key) + `\s*:\s*)(["']?)` +
			regexp.QuoteMeta(oldValue) + `(["']?)(.*)$`,
	)

	if loc := pattern.FindStringSubmatchIndex(text); loc != nil {
		prefix := text[loc[2]:loc[3]]
		openQuote := text[loc[4]:loc[5]]
		closeQuote := text[loc[6]:loc[7]]
		rest := text[loc[8]:loc[9]]
		// The quotes are captured independently (Go regexp has no
		// backreferences); only a balanced pair is a real quoted scalar.
		if openQuote == closeQuote {
			return text[:loc[0]] + prefix + openQuote + newValue + closeQuote + rest + text[loc[1]:], 1
		}
	}

	// Narrower literal fallback for occurrences the anchored form misses,
	// such as list items ("- image: nginx:1.25.0").
	for _, quote := range []string{"", `"`, "'"} {
		needle := key + ": " + quote + oldValue + quote
		if strings.Contains(text, needle) {
			replacement := key + ": " + quote + newValue + quote
			return strings.Replace(text, needle, replacement, 1), 1
		}
	}

	return text, 0
}
