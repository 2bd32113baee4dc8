package syslogprotocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v4"
)

// Facility is a syslog facility code, 0 (kern) to 23 (local7)
type Facility int32

// Facility codes from RFC 5424. Names follow Linux where the RFC leaves them open.
const (
	FacKern Facility = iota
	FacUser
	FacMail
	FacDaemon
	FacAuth
	FacSyslog
	FacLpr
	FacNews
	FacUucp
	FacCron
	FacAuthpriv
	FacFtp
	FacNtp
	FacAudit
	FacAlert
	FacClockd
	FacLocal0
	FacLocal1
	FacLocal2
	FacLocal3
	FacLocal4
	FacLocal5
	FacLocal6
	FacLocal7
)

// ErrInvalidFacilityInt is returned for facility numbers outside of 0-23
var ErrInvalidFacilityInt = errors.New("integer does not correspond to a known facility")

// FacilityNames contains the mapping of facility numbers to canonical lowercase names
var FacilityNames = []string{
	"kern",     // 0
	"user",     // 1
	"mail",     // 2
	"daemon",   // 3
	"auth",     // 4
	"syslog",   // 5
	"lpr",      // 6
	"news",     // 7
	"uucp",     // 8
	"cron",     // 9
	"authpriv", // 10
	"ftp",      // 11
	"ntp",      // 12
	"audit",    // 13
	"alert",    // 14
	"clockd",   // 15
	"local0",   // 16
	"local1",   // 17
	"local2",   // 18
	"local3",   // 19
	"local4",   // 20
	"local5",   // 21
	"local6",   // 22
	"local7",   // 23
}

// FacilityFromInt converts a facility number as used in the wire format
func FacilityFromInt(i int32) (Facility, error) {
	if i < 0 || i > int32(FacLocal7) {
		return 0, ErrInvalidFacilityInt
	}
	return Facility(i), nil
}

// FacilityFromName converts a canonical lowercase name back to a Facility
func FacilityFromName(name string) (Facility, error) {
	for i, n := range FacilityNames {
		if n == name {
			return Facility(i), nil
		}
	}
	return 0, fmt.Errorf("unknown facility name %q", name)
}

// Int returns the numeric wire value
func (f Facility) Int() int32 {
	return int32(f)
}

// String returns the canonical lowercase name
func (f Facility) String() string {
	if f < 0 || int(f) >= len(FacilityNames) {
		return fmt.Sprintf("facility(%d)", int32(f))
	}
	return FacilityNames[f]
}

// MarshalJSON encodes the facility as its name
func (f Facility) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON decodes a facility name
func (f *Facility) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	fac, err := FacilityFromName(name)
	if err != nil {
		return err
	}
	*f = fac
	return nil
}

// EncodeMsgpack encodes the facility as its name
func (f Facility) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeString(f.String())
}

// DecodeMsgpack decodes a facility name
func (f *Facility) DecodeMsgpack(dec *msgpack.Decoder) error {
	name, err := dec.DecodeString()
	if err != nil {
		return err
	}
	fac, ferr := FacilityFromName(name)
	if ferr != nil {
		return ferr
	}
	*f = fac
	return nil
}
