// Package syslogparser decodes single RFC 5424 messages into typed syslogprotocol records.
//
// The parser walks the grammar once, strictly left to right with no backtracking:
// PRI VERSION SP TIMESTAMP SP HOSTNAME SP APP-NAME SP PROCID SP MSGID SP STRUCTURED-DATA [SP MSG].
// The first violation aborts the whole parse with a classified ParseError; a partial
// message is never returned. Parsing touches no shared state, so any number of calls
// may run concurrently.
package syslogparser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/relex/syslog-rfc5424/defs"
	"github.com/relex/syslog-rfc5424/syslogprotocol"
	"github.com/relex/syslog-rfc5424/util"
	"github.com/relex/syslog-rfc5424/util/stringunescape"
)

// sdValueUnescaper handles the three legal PARAM-VALUE escapes: \" \\ \]
var sdValueUnescaper = stringunescape.NewUnescaper('\\', '"', ']')

// Parse decodes one complete RFC 5424 message, without any framing delimiter.
//
// On failure the returned error is always a *ParseError telling which grammar
// position was violated.
func Parse(input string) (*syslogprotocol.SyslogMessage, error) {
	if !utf8.ValidString(input) {
		return nil, newError(BadUTF8, 0, "input is not valid UTF-8")
	}
	p := &parser{input: input}
	msg, err := p.run()
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ParseBytes decodes a message from a raw buffer, e.g. one frame off a stream transport.
// The buffer is copied; the result does not reference it.
func ParseBytes(buf []byte) (*syslogprotocol.SyslogMessage, error) {
	return Parse(string(buf))
}

type parser struct {
	input string
	pos   int
}

func (p *parser) run() (*syslogprotocol.SyslogMessage, *ParseError) {
	msg := &syslogprotocol.SyslogMessage{}

	if err := p.parsePri(msg); err != nil {
		return nil, err
	}
	if err := p.parseVersion(msg); err != nil {
		return nil, err
	}
	if err := p.parseTimestamp(msg); err != nil {
		return nil, err
	}

	hostname, err := p.parseHeaderField("HOSTNAME", defs.MaxHostnameLength)
	if err != nil {
		return nil, err
	}
	msg.Hostname = hostname

	appName, err := p.parseHeaderField("APP-NAME", defs.MaxAppNameLength)
	if err != nil {
		return nil, err
	}
	msg.AppName = appName

	procIDToken, err := p.parseHeaderField("PROCID", defs.MaxProcIDLength)
	if err != nil {
		return nil, err
	}
	if procIDToken != nil {
		procID := syslogprotocol.ProcIDFromToken(*procIDToken)
		msg.ProcID = &procID
	}

	msgID, err := p.parseHeaderField("MSGID", defs.MaxMsgIDLength)
	if err != nil {
		return nil, err
	}
	msg.MsgID = msgID

	if err := p.parseStructuredData(msg); err != nil {
		return nil, err
	}
	return msg, p.parseMsg(msg)
}

// parsePri decodes "<" 1*3DIGIT ">" and splits the value into facility and severity
func (p *parser) parsePri(msg *syslogprotocol.SyslogMessage) *ParseError {
	if len(p.input) == 0 {
		return newError(UnexpectedEndOfInput, 0, "empty input")
	}
	if p.input[0] != '<' {
		return newError(BadPriority, 0, "PRI must start with '<'")
	}
	p.pos = 1

	digitStart := p.pos
	for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
		p.pos++
	}
	numDigits := p.pos - digitStart
	if numDigits < 1 || numDigits > 3 {
		return newError(BadPriority, digitStart, "PRI must contain 1 to 3 digits")
	}
	if p.pos >= len(p.input) {
		return newError(UnexpectedEndOfInput, p.pos, "input ends inside PRI")
	}
	if p.input[p.pos] != '>' {
		return newError(BadPriority, p.pos, "PRI must end with '>'")
	}

	priValue, _ := strconv.Atoi(p.input[digitStart:p.pos])
	p.pos++
	if priValue > defs.MaxPriValue {
		return newError(BadPriority, digitStart, "PRI value %d out of range 0-%d", priValue, defs.MaxPriValue)
	}

	severity, serr := syslogprotocol.SeverityFromInt(int32(priValue % 8))
	if serr != nil {
		return newError(BadSeverityInPri, digitStart, "%s", serr.Error())
	}
	facility, ferr := syslogprotocol.FacilityFromInt(int32(priValue / 8))
	if ferr != nil {
		return newError(BadFacilityInPri, digitStart, "%s", ferr.Error())
	}
	msg.Severity = severity
	msg.Facility = facility
	return nil
}

// parseVersion decodes NONZERO-DIGIT 0*2DIGIT and the mandatory space after it
func (p *parser) parseVersion(msg *syslogprotocol.SyslogMessage) *ParseError {
	digitStart := p.pos
	for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
		p.pos++
	}
	numDigits := p.pos - digitStart
	if numDigits < 1 || numDigits > defs.MaxVersionDigits {
		return newError(BadVersion, digitStart, "VERSION must contain 1 to %d digits", defs.MaxVersionDigits)
	}
	if p.input[digitStart] == '0' {
		return newError(BadVersion, digitStart, "VERSION must not start with zero")
	}
	value, _ := strconv.Atoi(p.input[digitStart:p.pos])
	if p.pos >= len(p.input) {
		return newError(UnexpectedEndOfInput, p.pos, "input ends after VERSION")
	}
	if p.input[p.pos] != ' ' {
		return newError(BadVersion, p.pos, "VERSION must be followed by a single SP")
	}
	p.pos++
	msg.Version = int32(value)
	return nil
}

// parseTimestamp decodes NILVALUE or a full date-time with numeric offset
func (p *parser) parseTimestamp(msg *syslogprotocol.SyslogMessage) *ParseError {
	token, err := p.takeToken("TIMESTAMP")
	if err != nil {
		return err
	}
	if token == "-" {
		return nil
	}
	seconds, nanos, terr := decodeTimestamp(token, p.pos-len(token)-1)
	if terr != nil {
		return terr
	}
	msg.Timestamp = &seconds
	msg.TimestampNanos = nanos
	return nil
}

// parseHeaderField decodes one of HOSTNAME / APP-NAME / PROCID / MSGID: NILVALUE or a
// whitespace-free token up to maxLength bytes. Tokens are copied out of the input so
// the message never pins a large network buffer.
func (p *parser) parseHeaderField(name string, maxLength int) (*string, *ParseError) {
	token, err := p.takeToken(name)
	if err != nil {
		return nil, err
	}
	if token == "-" {
		return nil, nil
	}
	if len(token) > maxLength {
		return nil, newError(FieldTooLong, p.pos-len(token)-1, "%s over %d bytes", name, maxLength)
	}
	value := util.DeepCopyString(token)
	return &value, nil
}

// parseStructuredData decodes NILVALUE or one or more bracketed elements
func (p *parser) parseStructuredData(msg *syslogprotocol.SyslogMessage) *ParseError {
	msg.StructuredData = syslogprotocol.NewStructuredData()
	if p.pos >= len(p.input) {
		return newError(UnexpectedEndOfInput, p.pos, "input ends before STRUCTURED-DATA")
	}
	if p.input[p.pos] == '-' {
		p.pos++
		return nil
	}
	if p.input[p.pos] != '[' {
		return newError(BadStructuredData, p.pos, "STRUCTURED-DATA must be '-' or start with '['")
	}
	for p.pos < len(p.input) && p.input[p.pos] == '[' {
		if err := p.parseSDElement(msg.StructuredData); err != nil {
			return err
		}
	}
	return nil
}

// parseSDElement decodes "[" SD-ID *(SP SD-PARAM) "]", merging into earlier elements
// with the same SD-ID (last write wins)
func (p *parser) parseSDElement(sd syslogprotocol.StructuredData) *ParseError {
	p.pos++ // consume '['
	sdID, err := p.parseSDName("SD-ID")
	if err != nil {
		return err
	}
	element := sd.Entry(sdID)

	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
		name, err := p.parseSDName("PARAM-NAME")
		if err != nil {
			return err
		}
		if p.pos >= len(p.input) || p.input[p.pos] != '=' {
			return newError(BadStructuredData, p.pos, "expected '=' after PARAM-NAME %q", name)
		}
		p.pos++
		value, err := p.parseSDParamValue(name)
		if err != nil {
			return err
		}
		element[name] = value
	}

	if p.pos >= len(p.input) || p.input[p.pos] != ']' {
		return newError(BadStructuredData, p.pos, "unterminated SD element %q", sdID)
	}
	p.pos++
	return nil
}

// parseSDName decodes an SD-NAME: 1 to 32 bytes, anything but '=', SP, ']' and '"'
func (p *parser) parseSDName(role string) (string, *ParseError) {
	start := p.pos
	if end := strings.IndexAny(p.input[p.pos:], "= ]\""); end == -1 {
		p.pos = len(p.input)
	} else {
		p.pos += end
	}
	if p.pos == start {
		return "", newError(BadStructuredData, start, "empty %s", role)
	}
	if p.pos-start > defs.MaxSDNameLength {
		return "", newError(FieldTooLong, start, "%s over %d bytes", role, defs.MaxSDNameLength)
	}
	return util.DeepCopyString(p.input[start:p.pos]), nil
}

// parseSDParamValue decodes a double-quoted PARAM-VALUE, validating that every escape
// is one of \" \\ \] and unescaping them to the literal character
func (p *parser) parseSDParamValue(name string) (string, *ParseError) {
	if p.pos >= len(p.input) || p.input[p.pos] != '"' {
		return "", newError(BadStructuredData, p.pos, "expected '\"' to open value of %q", name)
	}
	p.pos++
	start := p.pos
	for {
		if p.pos >= len(p.input) {
			return "", newError(BadStructuredData, start, "unterminated value of %q", name)
		}
		c := p.input[p.pos]
		if c == '"' {
			break
		}
		if c == '\\' {
			if p.pos+1 >= len(p.input) {
				return "", newError(BadStructuredData, p.pos, "dangling escape in value of %q", name)
			}
			if !sdValueUnescaper.IsEscapable(p.input[p.pos+1]) {
				return "", newError(BadStructuredData, p.pos, "illegal escape '\\%c' in value of %q",
					p.input[p.pos+1], name)
			}
			p.pos += 2
			continue
		}
		if c == ']' {
			// ']' inside a value must be escaped or it would close the element
			return "", newError(BadStructuredData, p.pos, "unescaped ']' in value of %q", name)
		}
		p.pos++
	}
	raw := p.input[start:p.pos]
	p.pos++ // consume closing '"'
	return util.DeepCopyString(sdValueUnescaper.Run(raw)), nil
}

// parseMsg consumes the optional free-text body after structured data. A leading BOM
// codepoint is the protocol's explicit UTF-8 indicator; it stays part of the body.
func (p *parser) parseMsg(msg *syslogprotocol.SyslogMessage) *ParseError {
	if p.pos >= len(p.input) {
		msg.Message = ""
		return nil
	}
	if p.input[p.pos] != ' ' {
		return newError(BadStructuredData, p.pos, "expected SP or end of input after STRUCTURED-DATA")
	}
	p.pos++
	msg.Message = util.DeepCopyString(p.input[p.pos:])
	return nil
}

// takeToken consumes the next space-terminated token plus its trailing space.
// All header fields before STRUCTURED-DATA have mandatory fields after them, so the
// space itself is mandatory.
func (p *parser) takeToken(name string) (string, *ParseError) {
	if p.pos >= len(p.input) {
		return "", newError(UnexpectedEndOfInput, p.pos, "input ends before %s", name)
	}
	end := strings.IndexByte(p.input[p.pos:], ' ')
	if end == -1 {
		return "", newError(UnexpectedEndOfInput, len(p.input), "input ends inside %s", name)
	}
	if end == 0 {
		return "", newError(BadField, p.pos, "empty %s", name)
	}
	token := p.input[p.pos : p.pos+end]
	p.pos += end + 1
	return token, nil
}
