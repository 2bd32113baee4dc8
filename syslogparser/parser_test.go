package syslogparser

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/relex/syslog-rfc5424/syslogprotocol"
	"github.com/stretchr/testify/assert"
)

func assertParseFails(t *testing.T, input string, kind ErrorKind) {
	msg, err := Parse(input)
	assert.Nil(t, msg, "no partial message for %q", input)
	var parseErr *ParseError
	if assert.ErrorAs(t, err, &parseErr, "input %q", input) {
		assert.Equal(t, kind, parseErr.Kind, "input %q: %s", input, err)
	}
}

func TestParseAllPriValues(t *testing.T) {
	for facility := int32(0); facility <= 23; facility++ {
		for severity := int32(0); severity <= 7; severity++ {
			pri := facility*8 + severity
			msg, err := Parse(fmt.Sprintf("<%d>1 - - - - - -", pri))
			if assert.NoError(t, err, "PRI %d", pri) {
				assert.Equal(t, facility, msg.Facility.Int(), "PRI %d", pri)
				assert.Equal(t, severity, msg.Severity.Int(), "PRI %d", pri)
				assert.Equal(t, pri, msg.PriValue(), "PRI %d", pri)
			}
		}
	}
}

func TestParseFullExample(t *testing.T) {
	msg, err := Parse("<14>1 2017-07-26T14:47:35.869952+05:30 my_hostname custom_appname 5678 some_unique_msgid - " +
		syslogprotocol.BOM + "Some other message")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, syslogprotocol.FacUser, msg.Facility)
	assert.Equal(t, syslogprotocol.SevInfo, msg.Severity)
	assert.Equal(t, int32(1), msg.Version)
	if assert.NotNil(t, msg.Timestamp) {
		assert.Equal(t, int64(1501060655), *msg.Timestamp)
	}
	if assert.NotNil(t, msg.TimestampNanos) {
		assert.Equal(t, uint32(869952000), *msg.TimestampNanos)
	}
	if assert.NotNil(t, msg.Hostname) {
		assert.Equal(t, "my_hostname", *msg.Hostname)
	}
	if assert.NotNil(t, msg.AppName) {
		assert.Equal(t, "custom_appname", *msg.AppName)
	}
	if assert.NotNil(t, msg.ProcID) {
		pid, isPID := msg.ProcID.PID()
		assert.True(t, isPID)
		assert.Equal(t, int32(5678), pid)
	}
	if assert.NotNil(t, msg.MsgID) {
		assert.Equal(t, "some_unique_msgid", *msg.MsgID)
	}
	assert.True(t, msg.StructuredData.IsEmpty())
	assert.True(t, msg.HasBOM())
	assert.Equal(t, syslogprotocol.BOM+"Some other message", msg.Message)
}

func TestParseMinimalExample(t *testing.T) {
	msg, err := Parse("<1>1 1985-04-12T23:20:50.52Z host - - - -")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, syslogprotocol.FacKern, msg.Facility)
	assert.Equal(t, syslogprotocol.SevAlert, msg.Severity)
	if assert.NotNil(t, msg.Timestamp) {
		assert.Equal(t, int64(482196050), *msg.Timestamp)
	}
	if assert.NotNil(t, msg.TimestampNanos) {
		assert.Equal(t, uint32(520000000), *msg.TimestampNanos)
	}
	if assert.NotNil(t, msg.Hostname) {
		assert.Equal(t, "host", *msg.Hostname)
	}
	assert.Nil(t, msg.AppName)
	assert.Nil(t, msg.ProcID)
	assert.Nil(t, msg.MsgID)
	assert.True(t, msg.StructuredData.IsEmpty())
	assert.Equal(t, "", msg.Message)
	assert.False(t, msg.HasBOM())
}

func TestParseNilTimestamp(t *testing.T) {
	msg, err := Parse("<34>1 - mymachine su - ID47 - 'su root' failed")
	if !assert.NoError(t, err) {
		return
	}
	assert.Nil(t, msg.Timestamp)
	assert.Nil(t, msg.TimestampNanos)
	assert.Nil(t, msg.ProcID)
	if assert.NotNil(t, msg.MsgID) {
		assert.Equal(t, "ID47", *msg.MsgID)
	}
	assert.Equal(t, "'su root' failed", msg.Message)
}

func TestParseProcIDName(t *testing.T) {
	msg, err := Parse("<165>1 2003-10-11T22:14:15.003Z mymachine.example.com evntslog postfix/smtpd ID47 - message")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, syslogprotocol.FacLocal4, msg.Facility)
	assert.Equal(t, syslogprotocol.SevNotice, msg.Severity)
	if assert.NotNil(t, msg.ProcID) {
		name, isName := msg.ProcID.Name()
		assert.True(t, isName)
		assert.Equal(t, "postfix/smtpd", name)
	}
}

func TestParseStructuredData(t *testing.T) {
	msg, err := Parse(`<165>1 2003-10-11T22:14:15.003Z mymachine evntslog - ID47 ` +
		`[exampleSDID@32473 iut="3" eventSource="Application" eventID="1011"][examplePriority@32473 class="high"] ` +
		`An application event log entry`)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, 2, msg.StructuredData.Len())
	value, found := msg.StructuredData.FindTuple("exampleSDID@32473", "eventSource")
	assert.True(t, found)
	assert.Equal(t, "Application", value)
	value, found = msg.StructuredData.FindTuple("examplePriority@32473", "class")
	assert.True(t, found)
	assert.Equal(t, "high", value)
	assert.Equal(t, "An application event log entry", msg.Message)
}

func TestParseStructuredDataWithoutMessage(t *testing.T) {
	msg, err := Parse(`<165>1 2003-10-11T22:14:15.003Z mymachine evntslog - ID47 [exampleSDID@32473 iut="3"]`)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, 1, msg.StructuredData.Len())
	assert.Equal(t, "", msg.Message)
}

func TestParseStructuredDataMerge(t *testing.T) {
	// same SD-ID with different params merges into one element
	msg, err := Parse(`<14>1 - - - - - [foo bar="baz"][foo baz="bar"]`)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, 1, msg.StructuredData.Len())
	params, _ := msg.StructuredData.FindSDID("foo")
	assert.Equal(t, syslogprotocol.SDParams{"bar": "baz", "baz": "bar"}, params)

	// same SD-ID and same param: the later value wins
	msg, err = Parse(`<14>1 - - - - - [foo bar="baz"][foo bar="qux"]`)
	if !assert.NoError(t, err) {
		return
	}
	value, _ := msg.StructuredData.FindTuple("foo", "bar")
	assert.Equal(t, "qux", value)
}

func TestParseStructuredDataEscapes(t *testing.T) {
	msg, err := Parse(`<14>1 - - - - - [ex quoted="a \"b\" c" bracket="x\]y" slash="m\\n"] done`)
	if !assert.NoError(t, err) {
		return
	}
	value, _ := msg.StructuredData.FindTuple("ex", "quoted")
	assert.Equal(t, `a "b" c`, value)
	value, _ = msg.StructuredData.FindTuple("ex", "bracket")
	assert.Equal(t, "x]y", value)
	value, _ = msg.StructuredData.FindTuple("ex", "slash")
	assert.Equal(t, `m\n`, value)
	assert.Equal(t, "done", msg.Message)
}

func TestParseStructuredDataEmptyValue(t *testing.T) {
	msg, err := Parse(`<14>1 - - - - - [ex empty=""]`)
	if !assert.NoError(t, err) {
		return
	}
	value, found := msg.StructuredData.FindTuple("ex", "empty")
	assert.True(t, found)
	assert.Equal(t, "", value)
}

func TestParseBadPriority(t *testing.T) {
	assertParseFails(t, "14>1 - - - - - -", BadPriority)
	assertParseFails(t, "<>1 - - - - - -", BadPriority)
	assertParseFails(t, "<abc>1 - - - - - -", BadPriority)
	assertParseFails(t, "<14 1 - - - - - -", BadPriority)
	assertParseFails(t, "<1411>1 - - - - - -", BadPriority)
	assertParseFails(t, "<192>1 - - - - - -", BadPriority)
	assertParseFails(t, "<999>1 - - - - - -", BadPriority)
}

func TestParseBadVersion(t *testing.T) {
	assertParseFails(t, "<14> - - - - - -", BadVersion)
	assertParseFails(t, "<14>0 - - - - - -", BadVersion)
	assertParseFails(t, "<14>a - - - - - -", BadVersion)
	assertParseFails(t, "<14>1234 - - - - - -", BadVersion)
	assertParseFails(t, "<14>1x - - - - - -", BadVersion)
}

func TestParseBadTimestamp(t *testing.T) {
	assertParseFails(t, "<14>1 2017-13-26T14:47:35Z - - - - -", BadTimestamp)
	assertParseFails(t, "<14>1 2017-02-30T14:47:35Z - - - - -", BadTimestamp)
	assertParseFails(t, "<14>1 2017-07-26T24:47:35Z - - - - -", BadTimestamp)
	assertParseFails(t, "<14>1 2017-07-26T14:47:35 - - - - -", BadTimestamp)
	assertParseFails(t, "<14>1 2017-07-26T14:47:35.1234567Z - - - - -", BadTimestamp)
	assertParseFails(t, "<14>1 2017-07-26T14:47:35.Z - - - - -", BadTimestamp)
	assertParseFails(t, "<14>1 2017-07-26T14:47:35+25:00 - - - - -", BadTimestamp)
	assertParseFails(t, "<14>1 2017-07-26T14:47:35+05:70 - - - - -", BadTimestamp)
	assertParseFails(t, "<14>1 2017-07-26 14:47:35Z - - - - -", BadTimestamp)
	assertParseFails(t, "<14>1 not-a-date - - - - -", BadTimestamp)
}

func TestParseBadStructuredData(t *testing.T) {
	assertParseFails(t, `<14>1 - - - - - [foo`, BadStructuredData)
	assertParseFails(t, `<14>1 - - - - - [foo bar="baz"`, BadStructuredData)
	assertParseFails(t, `<14>1 - - - - - [foo bar=baz]`, BadStructuredData)
	assertParseFails(t, `<14>1 - - - - - [foo bar]`, BadStructuredData)
	assertParseFails(t, `<14>1 - - - - - [foo bar="b\az"]`, BadStructuredData)
	assertParseFails(t, `<14>1 - - - - - [foo bar="baz\"]`, BadStructuredData)
	assertParseFails(t, `<14>1 - - - - - []`, BadStructuredData)
	assertParseFails(t, `<14>1 - - - - - x`, BadStructuredData)
	assertParseFails(t, `<14>1 - - - - - -extra`, BadStructuredData)
	assertParseFails(t, `<14>1 - - - - - [foo]extra`, BadStructuredData)
}

func TestParseTruncatedInput(t *testing.T) {
	assertParseFails(t, "", UnexpectedEndOfInput)
	assertParseFails(t, "<14", UnexpectedEndOfInput)
	assertParseFails(t, "<14>1", UnexpectedEndOfInput)
	assertParseFails(t, "<14>1 ", UnexpectedEndOfInput)
	assertParseFails(t, "<14>1 - host", UnexpectedEndOfInput)
	assertParseFails(t, "<14>1 - host app 123 msgid", UnexpectedEndOfInput)
	assertParseFails(t, "<14>1 - host app 123 msgid ", UnexpectedEndOfInput)
}

func TestParseEmptyField(t *testing.T) {
	assertParseFails(t, "<14>1 -  - - - -", BadField)
}

func TestParseFieldTooLong(t *testing.T) {
	longHostname := strings.Repeat("h", 256)
	assertParseFails(t, "<14>1 - "+longHostname+" - - - -", FieldTooLong)

	longAppName := strings.Repeat("a", 49)
	assertParseFails(t, "<14>1 - host "+longAppName+" - - -", FieldTooLong)

	longSDName := strings.Repeat("s", 33)
	assertParseFails(t, "<14>1 - - - - - ["+longSDName+`]`, FieldTooLong)

	longParamName := strings.Repeat("p", 33)
	assertParseFails(t, "<14>1 - - - - - [id "+longParamName+`="v"]`, FieldTooLong)
}

func TestParseBytesRejectsBadUTF8(t *testing.T) {
	msg, err := ParseBytes([]byte{'<', '1', '>', '1', ' ', 0xff, 0xfe})
	assert.Nil(t, msg)
	var parseErr *ParseError
	if assert.ErrorAs(t, err, &parseErr) {
		assert.Equal(t, BadUTF8, parseErr.Kind)
	}
}

func TestParseErrorMessage(t *testing.T) {
	_, err := Parse("<192>1 - - - - - -")
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "bad priority")
		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr))
	}
}
