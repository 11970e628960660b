package crinex

import "strings"

// ampersand is the truncation sentinel: it marks the position in a text-diff
// mask at which the new string ends, shorter than the reference it was
// diffed against (spec §4.5(b)).
const ampersand = '&'

// diffText produces a text-differencing mask of s against ref: unchanged
// characters become a space, changed characters carry the new glyph, and a
// single '&' marks the point where s is shorter than ref. If s is longer
// than ref, the extra trailing characters are carried verbatim.
func diffText(s, ref string) string {
	var b strings.Builder
	n := len(s)
	if len(ref) < n {
		n = len(ref)
	}
	for i := 0; i < n; i++ {
		if s[i] == ref[i] {
			b.WriteByte(' ')
		} else {
			b.WriteByte(s[i])
		}
	}
	switch {
	case len(s) < len(ref):
		b.WriteByte(ampersand)
	case len(s) > len(ref):
		b.WriteString(s[len(ref):])
	}
	return b.String()
}

// undiffText overlays a text-diff mask produced by diffText back onto ref,
// reconstructing the original string.
func undiffText(mask, ref string) string {
	var b strings.Builder
	for i := 0; i < len(mask); i++ {
		c := mask[i]
		switch {
		case c == ampersand:
			return b.String()
		case c == ' ':
			if i < len(ref) {
				b.WriteByte(ref[i])
			} else {
				b.WriteByte(' ')
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
