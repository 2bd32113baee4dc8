package syslogprotocol

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v4"
)

// ProcID is the PROCID field of a syslog message: usually a numeric process ID,
// but some systems put other text there, so it is either a PID or a free-form name.
//
// The two variants never compare against each other; see Compare.
type ProcID struct {
	pid   int32
	name  string
	isPID bool
}

// PIDProcID makes a numeric ProcID
func PIDProcID(pid int32) ProcID {
	return ProcID{pid: pid, isPID: true}
}

// NameProcID makes a textual ProcID
func NameProcID(name string) ProcID {
	return ProcID{name: name}
}

// ProcIDFromToken classifies one whitespace-free PROCID token: a token that parses
// as a signed 32-bit integer becomes a PID, anything else (including digit strings
// overflowing int32) becomes a name.
func ProcIDFromToken(token string) ProcID {
	if pid, err := strconv.ParseInt(token, 10, 32); err == nil {
		return PIDProcID(int32(pid))
	}
	return NameProcID(token)
}

// PID returns the numeric process ID, ok is false for the name variant
func (p ProcID) PID() (int32, bool) {
	return p.pid, p.isPID
}

// Name returns the textual process name, ok is false for the PID variant
func (p ProcID) Name() (string, bool) {
	return p.name, !p.isPID
}

// String formats the value the way it appeared on the wire
func (p ProcID) String() string {
	if p.isPID {
		return strconv.FormatInt(int64(p.pid), 10)
	}
	return p.name
}

// Equal reports structural equality: same variant and same value
func (p ProcID) Equal(other ProcID) bool {
	return p == other
}

// Compare orders two ProcIDs of the same variant, returning the usual -1/0/1.
// ok is false when the variants differ: a PID and a name are incomparable, not equal.
func (p ProcID) Compare(other ProcID) (int, bool) {
	if p.isPID != other.isPID {
		return 0, false
	}
	if p.isPID {
		switch {
		case p.pid < other.pid:
			return -1, true
		case p.pid > other.pid:
			return 1, true
		default:
			return 0, true
		}
	}
	return strings.Compare(p.name, other.name), true
}

// MarshalJSON encodes a PID as a raw number and a name as a raw string
func (p ProcID) MarshalJSON() ([]byte, error) {
	if p.isPID {
		return json.Marshal(p.pid)
	}
	return json.Marshal(p.name)
}

// UnmarshalJSON re-classifies the variant from the JSON type tag
func (p *ProcID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) == 0 {
		return fmt.Errorf("empty procid value")
	}
	if trimmed[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*p = NameProcID(name)
		return nil
	}
	var pid int32
	if err := json.Unmarshal(data, &pid); err != nil {
		return fmt.Errorf("procid is neither an int32 nor a string: %w", err)
	}
	*p = PIDProcID(pid)
	return nil
}

// EncodeMsgpack encodes a PID as a raw number and a name as a raw string
func (p ProcID) EncodeMsgpack(enc *msgpack.Encoder) error {
	if p.isPID {
		return enc.EncodeInt(int64(p.pid))
	}
	return enc.EncodeString(p.name)
}

// DecodeMsgpack re-classifies the variant from the msgpack type tag
func (p *ProcID) DecodeMsgpack(dec *msgpack.Decoder) error {
	value, err := dec.DecodeInterface()
	if err != nil {
		return err
	}
	switch v := value.(type) {
	case int:
		if v > 2147483647 || v < -2147483648 {
			return fmt.Errorf("procid out of int32 range: %d", v)
		}
		*p = PIDProcID(int32(v))
	case int8:
		*p = PIDProcID(int32(v))
	case int16:
		*p = PIDProcID(int32(v))
	case int32:
		*p = PIDProcID(v)
	case int64:
		if v > 2147483647 || v < -2147483648 {
			return fmt.Errorf("procid out of int32 range: %d", v)
		}
		*p = PIDProcID(int32(v))
	case uint8:
		*p = PIDProcID(int32(v))
	case uint16:
		*p = PIDProcID(int32(v))
	case uint32:
		if v > 2147483647 {
			return fmt.Errorf("procid out of int32 range: %d", v)
		}
		*p = PIDProcID(int32(v))
	case uint64:
		if v > 2147483647 {
			return fmt.Errorf("procid out of int32 range: %d", v)
		}
		*p = PIDProcID(int32(v))
	case string:
		*p = NameProcID(v)
	default:
		return fmt.Errorf("procid is neither an integer nor a string: %T", value)
	}
	return nil
}
