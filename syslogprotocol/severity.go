// Package syslogprotocol defines the typed in-memory model of RFC 5424 syslog messages:
// severity and facility codes, process identifiers, structured data and the message record itself.
//
// All values serialize to the generic document form via JSON and msgpack: severities and
// facilities as their lowercase names, process identifiers as a raw number or raw text.
package syslogprotocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v4"
)

// Severity is a syslog severity code, 0 (emerg) to 7 (debug)
type Severity int32

// Severity codes from RFC 5424
const (
	SevEmerg Severity = iota
	SevAlert
	SevCrit
	SevErr
	SevWarning
	SevNotice
	SevInfo
	SevDebug
)

// ErrInvalidSeverityInt is returned for severity numbers outside of 0-7
var ErrInvalidSeverityInt = errors.New("integer does not correspond to a known severity")

// SeverityNames contains the mapping of severity numbers to canonical lowercase names
var SeverityNames = []string{
	"emerg",   // 0
	"alert",   // 1
	"crit",    // 2
	"err",     // 3
	"warning", // 4
	"notice",  // 5
	"info",    // 6
	"debug",   // 7
}

// SeverityFromInt converts a severity number as used in the wire format
func SeverityFromInt(i int32) (Severity, error) {
	if i < 0 || i > int32(SevDebug) {
		return 0, ErrInvalidSeverityInt
	}
	return Severity(i), nil
}

// SeverityFromName converts a canonical lowercase name back to a Severity
func SeverityFromName(name string) (Severity, error) {
	for i, n := range SeverityNames {
		if n == name {
			return Severity(i), nil
		}
	}
	return 0, fmt.Errorf("unknown severity name %q", name)
}

// Int returns the numeric wire value
func (s Severity) Int() int32 {
	return int32(s)
}

// String returns the canonical lowercase name
func (s Severity) String() string {
	if s < 0 || int(s) >= len(SeverityNames) {
		return fmt.Sprintf("severity(%d)", int32(s))
	}
	return SeverityNames[s]
}

// MarshalJSON encodes the severity as its name
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity name
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	sev, err := SeverityFromName(name)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// EncodeMsgpack encodes the severity as its name
func (s Severity) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeString(s.String())
}

// DecodeMsgpack decodes a severity name
func (s *Severity) DecodeMsgpack(dec *msgpack.Decoder) error {
	name, err := dec.DecodeString()
	if err != nil {
		return err
	}
	sev, serr := SeverityFromName(name)
	if serr != nil {
		return serr
	}
	*s = sev
	return nil
}
