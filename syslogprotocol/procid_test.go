package syslogprotocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vmihailenco/msgpack/v4"
)

func TestProcIDClassification(t *testing.T) {
	pid, isPID := ProcIDFromToken("5678").PID()
	assert.True(t, isPID)
	assert.Equal(t, int32(5678), pid)

	pid, isPID = ProcIDFromToken("-99").PID()
	assert.True(t, isPID)
	assert.Equal(t, int32(-99), pid)

	name, isName := ProcIDFromToken("postfix/smtpd").Name()
	assert.True(t, isName)
	assert.Equal(t, "postfix/smtpd", name)

	// int32 overflow falls back to the name variant
	name, isName = ProcIDFromToken("99999999999").Name()
	assert.True(t, isName)
	assert.Equal(t, "99999999999", name)

	_, isName = ProcIDFromToken("007a").Name()
	assert.True(t, isName)
}

func TestProcIDCompare(t *testing.T) {
	cmp, ok := PIDProcID(1).Compare(PIDProcID(2))
	assert.True(t, ok)
	assert.Equal(t, -1, cmp)

	cmp, ok = NameProcID("b").Compare(NameProcID("a"))
	assert.True(t, ok)
	assert.Equal(t, 1, cmp)

	cmp, ok = PIDProcID(1).Compare(PIDProcID(1))
	assert.True(t, ok)
	assert.Equal(t, 0, cmp)

	// a PID and a name are incomparable, never equal
	_, ok = PIDProcID(1).Compare(NameProcID("1x"))
	assert.False(t, ok)
	assert.False(t, PIDProcID(1).Equal(NameProcID("1")))
}

func TestProcIDJSONRoundTrip(t *testing.T) {
	encoded, err := json.Marshal(PIDProcID(1234))
	assert.NoError(t, err)
	assert.Equal(t, "1234", string(encoded))

	var decodedPID ProcID
	assert.NoError(t, json.Unmarshal(encoded, &decodedPID))
	assert.True(t, decodedPID.Equal(PIDProcID(1234)))

	encoded, err = json.Marshal(NameProcID("su"))
	assert.NoError(t, err)
	assert.Equal(t, `"su"`, string(encoded))

	var decodedName ProcID
	assert.NoError(t, json.Unmarshal(encoded, &decodedName))
	assert.True(t, decodedName.Equal(NameProcID("su")))
}

func TestProcIDMsgpackRoundTrip(t *testing.T) {
	for _, original := range []ProcID{PIDProcID(1234), PIDProcID(-1), NameProcID("su"), NameProcID("1234567890123")} {
		encoded, err := msgpack.Marshal(original)
		assert.NoError(t, err)

		var decoded ProcID
		assert.NoError(t, msgpack.Unmarshal(encoded, &decoded))
		assert.True(t, decoded.Equal(original), "round trip of %s", original.String())
	}
}
