package syslogprotocol

import (
	"strings"
)

// BOM is the byte-order-mark codepoint used by RFC 5424 to tag a MSG as UTF-8
const BOM = "\uFEFF"

// SyslogMessage is one parsed RFC 5424 message.
//
// A SyslogMessage is created whole by a successful parse and treated as immutable
// afterwards; optional header fields are nil when the wire carried NILVALUE ("-").
// Timestamp is the absolute instant in UTC epoch seconds with the sub-second part
// kept separately in TimestampNanos.
//
// JSON and msgpack tags define the generic document form: severity and facility as
// lowercase names, procid as number-or-text, absent fields as explicit nulls.
type SyslogMessage struct {
	Severity       Severity       `json:"severity" msgpack:"severity"`
	Facility       Facility       `json:"facility" msgpack:"facility"`
	Version        int32          `json:"version" msgpack:"version"`
	Timestamp      *int64         `json:"timestamp" msgpack:"timestamp"`
	TimestampNanos *uint32        `json:"timestamp_nanos" msgpack:"timestamp_nanos"`
	Hostname       *string        `json:"hostname" msgpack:"hostname"`
	AppName        *string        `json:"appname" msgpack:"appname"`
	ProcID         *ProcID        `json:"procid" msgpack:"procid"`
	MsgID          *string        `json:"msgid" msgpack:"msgid"`
	StructuredData StructuredData `json:"sd" msgpack:"sd"`
	Message        string         `json:"msg" msgpack:"msg"`
}

// PriValue re-derives the PRI integer, facility * 8 + severity
func (m *SyslogMessage) PriValue() int32 {
	return m.Facility.Int()*8 + m.Severity.Int()
}

// HasBOM tells whether MSG starts with the UTF-8 byte-order mark, the protocol's
// explicit encoding indicator. The mark is kept in Message, never stripped.
func (m *SyslogMessage) HasBOM() bool {
	return strings.HasPrefix(m.Message, BOM)
}

// Equal compares two messages field by field, following optional-field pointers
func (m *SyslogMessage) Equal(other *SyslogMessage) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.Severity != other.Severity || m.Facility != other.Facility || m.Version != other.Version {
		return false
	}
	if !equalInt64Ptr(m.Timestamp, other.Timestamp) || !equalUint32Ptr(m.TimestampNanos, other.TimestampNanos) {
		return false
	}
	if !equalStringPtr(m.Hostname, other.Hostname) || !equalStringPtr(m.AppName, other.AppName) || !equalStringPtr(m.MsgID, other.MsgID) {
		return false
	}
	if (m.ProcID == nil) != (other.ProcID == nil) {
		return false
	}
	if m.ProcID != nil && !m.ProcID.Equal(*other.ProcID) {
		return false
	}
	if m.Message != other.Message {
		return false
	}
	return equalStructuredData(m.StructuredData, other.StructuredData)
}

func equalStructuredData(a StructuredData, b StructuredData) bool {
	if len(a) != len(b) {
		return false
	}
	for sdID, aParams := range a {
		bParams, ok := b[sdID]
		if !ok || len(aParams) != len(bParams) {
			return false
		}
		for name, aValue := range aParams {
			if bValue, ok := bParams[name]; !ok || aValue != bValue {
				return false
			}
		}
	}
	return true
}

func equalInt64Ptr(a *int64, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalUint32Ptr(a *uint32, b *uint32) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalStringPtr(a *string, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
