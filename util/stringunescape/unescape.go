// Package stringunescape provides Unescaper(s) for escaped strings
package stringunescape

import (
	"fmt"
	"strings"

	"github.com/relex/syslog-rfc5424/util"
)

// Unescaper searches for and unescapes characters behind an escape char, e.g. `\"` or `\]`.
//
// Unescaper instances contain no buffer and may be copied or concurrently used.
type Unescaper struct {
	escapeChar       byte
	escapableCharMap []byte
}

// NewUnescaper creates an Unescaper for the given escape char and escapable characters
//
// The escape char itself is always escapable.
func NewUnescaper(escapeChar byte, escapableChars ...byte) Unescaper {
	cmap := make([]byte, 256)
	for _, c := range escapableChars {
		cmap[c] = c
	}
	cmap[escapeChar] = escapeChar
	return Unescaper{escapeChar, cmap}
}

// IsEscapable tells whether the given character may follow the escape char
func (e Unescaper) IsEscapable(c byte) bool {
	return e.escapableCharMap[c] != 0
}

// FindFirstUnescaped finds the index of the first unescaped target, or -1
//
// This can be used to find, e.g. the closing quote in `va\"lue"`.
func (e Unescaper) FindFirstUnescaped(str string, target byte) int {
	if e.escapableCharMap[target] == 0 {
		panic(fmt.Sprintf("target '%c' is not escapable", target))
	}
	pos := 0
	for pos < len(str) {
		c := str[pos]
		switch c {
		case e.escapeChar:
			pos += 2
		case target:
			return pos
		default:
			pos++
		}
	}
	return -1
}

// Run unescapes the given string
//
// Escape sequences not covered by the escapable set are kept as-is.
func (e Unescaper) Run(src string) string {
	first := strings.IndexByte(src, e.escapeChar)
	if first == -1 {
		return src
	}

	dst := make([]byte, 0, len(src))
	dst = append(dst, src[:first]...)
	si := first
	for si < len(src) {
		c := src[si]
		if c != e.escapeChar {
			dst = append(dst, c)
			si++
			continue
		}
		if si+1 >= len(src) {
			// trailing escape char, keep it
			dst = append(dst, c)
			break
		}
		next := src[si+1]
		if unescaped := e.escapableCharMap[next]; unescaped != 0 {
			dst = append(dst, unescaped)
		} else {
			dst = append(dst, c, next)
		}
		si += 2
	}
	return util.StringFromBytes(dst)
}
