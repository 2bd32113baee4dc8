package defs

import (
	"time"
)

// Limits from the RFC 5424 grammar. A message violating any of them fails to parse.
const (
	// MaxPriValue is the highest valid PRIVAL, 23 (local7) * 8 + 7 (debug)
	MaxPriValue = 191

	// MaxVersionDigits limits VERSION to the grammar's NONZERO-DIGIT 0*2DIGIT
	MaxVersionDigits = 3

	// MaxTimestampFractionDigits limits TIME-SECFRAC after the decimal point
	MaxTimestampFractionDigits = 6

	// MaxHostnameLength is the maximum length of the HOSTNAME field
	MaxHostnameLength = 255

	// MaxAppNameLength is the maximum length of the APP-NAME field
	MaxAppNameLength = 48

	// MaxProcIDLength is the maximum length of the PROCID field
	MaxProcIDLength = 128

	// MaxMsgIDLength is the maximum length of the MSGID field
	MaxMsgIDLength = 32

	// MaxSDNameLength is the maximum length of SD-ID and SD-PARAM names
	MaxSDNameLength = 32
)

var (
	// InputLogMaxMessageBytes defines the maximum length of one framed message from a stream transport
	//
	// If the limit is exceeded, the connection is dropped; there is no way to resynchronize reliably.
	InputLogMaxMessageBytes = 1 * 1024 * 1024

	// ListenerMaxOctetCountDigits defines how many digits of an octet-counting frame header to accept
	//
	// 9 digits cover any length below InputLogMaxMessageBytes with a wide margin.
	ListenerMaxOctetCountDigits = 9

	// ListenerStopTimeout defines how long to wait for open connections after a stop request
	ListenerStopTimeout = 10 * time.Second

	// TestReadTimeout defines the timeout to receive something in tests
	TestReadTimeout = 5 * time.Second
)
