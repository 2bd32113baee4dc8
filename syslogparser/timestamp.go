package syslogparser

import (
	"time"

	"github.com/relex/syslog-rfc5424/defs"
)

// decodeTimestamp decodes a full RFC 5424 TIMESTAMP token (never NILVALUE) into UTC
// epoch seconds plus an optional nanosecond fraction. The local wall-clock time and
// its numeric offset are normalized into an absolute instant; timezone names are not
// supported by the wire format and therefore not here either.
//
// offset is the position of the token in the original input, used for error reporting.
func decodeTimestamp(token string, offset int) (int64, *uint32, *ParseError) {
	// shortest valid form: "2006-01-02T15:04:05Z", 20 bytes
	if len(token) < 20 {
		return 0, nil, newError(BadTimestamp, offset, "timestamp too short: %q", token)
	}

	year, ok := atoiFixed(token, 0, 4)
	if !ok || token[4] != '-' {
		return 0, nil, newError(BadTimestamp, offset, "malformed date in %q", token)
	}
	month, ok := atoiFixed(token, 5, 7)
	if !ok || token[7] != '-' || month < 1 || month > 12 {
		return 0, nil, newError(BadTimestamp, offset, "malformed month in %q", token)
	}
	day, ok := atoiFixed(token, 8, 10)
	if !ok || token[10] != 'T' || day < 1 || day > 31 {
		return 0, nil, newError(BadTimestamp, offset, "malformed day in %q", token)
	}
	hour, ok := atoiFixed(token, 11, 13)
	if !ok || token[13] != ':' || hour > 23 {
		return 0, nil, newError(BadTimestamp, offset, "malformed hour in %q", token)
	}
	minute, ok := atoiFixed(token, 14, 16)
	if !ok || token[16] != ':' || minute > 59 {
		return 0, nil, newError(BadTimestamp, offset, "malformed minute in %q", token)
	}
	second, ok := atoiFixed(token, 17, 19)
	if !ok || second > 59 {
		return 0, nil, newError(BadTimestamp, offset, "malformed second in %q", token)
	}

	pos := 19
	var nanos *uint32
	if token[pos] == '.' {
		pos++
		fracStart := pos
		for pos < len(token) && isDigit(token[pos]) {
			pos++
		}
		numDigits := pos - fracStart
		if numDigits < 1 || numDigits > defs.MaxTimestampFractionDigits {
			return 0, nil, newError(BadTimestamp, offset, "fraction must have 1 to %d digits in %q",
				defs.MaxTimestampFractionDigits, token)
		}
		frac, _ := atoiFixed(token, fracStart, pos)
		// scale to nanoseconds, e.g. ".52" = 520000000
		scaled := uint32(frac)
		for i := numDigits; i < 9; i++ {
			scaled *= 10
		}
		nanos = &scaled
	}

	if pos >= len(token) {
		return 0, nil, newError(BadTimestamp, offset, "missing timezone offset in %q", token)
	}
	var location *time.Location
	switch token[pos] {
	case 'Z':
		if pos+1 != len(token) {
			return 0, nil, newError(BadTimestamp, offset, "trailing data after timezone in %q", token)
		}
		location = time.UTC
	case '+', '-':
		if pos+6 != len(token) {
			return 0, nil, newError(BadTimestamp, offset, "malformed timezone offset in %q", token)
		}
		offsetHour, ok := atoiFixed(token, pos+1, pos+3)
		if !ok || token[pos+3] != ':' || offsetHour > 23 {
			return 0, nil, newError(BadTimestamp, offset, "malformed timezone hour in %q", token)
		}
		offsetMinute, ok := atoiFixed(token, pos+4, pos+6)
		if !ok || offsetMinute > 59 {
			return 0, nil, newError(BadTimestamp, offset, "malformed timezone minute in %q", token)
		}
		offsetSeconds := offsetHour*3600 + offsetMinute*60
		if token[pos] == '-' {
			offsetSeconds = -offsetSeconds
		}
		location = time.FixedZone("", offsetSeconds)
	default:
		return 0, nil, newError(BadTimestamp, offset, "malformed timezone offset in %q", token)
	}

	instant := time.Date(year, time.Month(month), day, hour, minute, second, 0, location)
	// time.Date normalizes out-of-range days, e.g. Feb 30 becomes Mar 2; reject those
	if instant.Day() != day || instant.Month() != time.Month(month) || instant.Year() != year {
		return 0, nil, newError(BadTimestamp, offset, "no such date in %q", token)
	}
	return instant.Unix(), nanos, nil
}

// atoiFixed decodes the decimal digits of s[start:end], ok is false on any non-digit
func atoiFixed(s string, start int, end int) (int, bool) {
	if end > len(s) {
		return 0, false
	}
	value := 0
	for i := start; i < end; i++ {
		if !isDigit(s[i]) {
			return 0, false
		}
		value = value*10 + int(s[i]-'0')
	}
	return value, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
