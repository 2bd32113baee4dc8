package syslogparser

import (
	"fmt"
)

// ErrorKind classifies the grammar position where parsing failed
type ErrorKind int

// One kind per grammar violation site. The set is not exhaustive for future grammar
// extensions; callers should treat unknown kinds as "message could not be decoded".
const (
	// BadPriority is a malformed or out-of-range PRI, e.g. missing brackets or a value over 191
	BadPriority ErrorKind = iota
	// BadSeverityInPri is a PRI whose decoded severity part is not a known severity
	BadSeverityInPri
	// BadFacilityInPri is a PRI whose decoded facility part is not a known facility
	BadFacilityInPri
	// BadVersion is a malformed VERSION field
	BadVersion
	// BadTimestamp is a malformed date/time, offset or fraction
	BadTimestamp
	// BadField is a malformed header token, e.g. an empty HOSTNAME
	BadField
	// FieldTooLong is a header token or SD name over its RFC 5424 length limit
	FieldTooLong
	// BadStructuredData is an unterminated bracket, illegal escape or malformed parameter
	BadStructuredData
	// BadUTF8 is input that is not valid UTF-8 text
	BadUTF8
	// UnexpectedEndOfInput is input truncated before a mandatory field or separator
	UnexpectedEndOfInput
)

var errorKindNames = []string{
	"bad priority",
	"bad severity in priority",
	"bad facility in priority",
	"bad version",
	"bad timestamp",
	"bad field",
	"field too long",
	"bad structured data",
	"bad UTF-8",
	"unexpected end of input",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorKindNames) {
		return fmt.Sprintf("error kind %d", int(k))
	}
	return errorKindNames[k]
}

// ParseError describes the first grammar violation found in a message. Parsing stops
// there; no partial message is ever returned alongside a ParseError.
type ParseError struct {
	Kind   ErrorKind // which grammar position was violated
	Pos    int       // byte offset of the violation in the input
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at byte %d: %s", e.Kind, e.Pos, e.Detail)
}

func newError(kind ErrorKind, pos int, format string, args ...interface{}) *ParseError {
	return &ParseError{Kind: kind, Pos: pos, Detail: fmt.Sprintf(format, args...)}
}
