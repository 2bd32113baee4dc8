package sysloginput

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/relex/syslog-rfc5424/defs"
	"github.com/relex/syslog-rfc5424/util"
	"gopkg.in/yaml.v3"
)

// Framing selects how message boundaries are marked on a TCP stream (RFC 6587)
type Framing int

const (
	// FramingNewline terminates each message with a LF; messages must not contain LF themselves
	FramingNewline Framing = iota
	// FramingOctetCounting prefixes each message with its byte length and a space
	FramingOctetCounting
)

var framingNames = []string{
	"newline",
	"octet-counting",
}

// ErrMessageTooLong marks a frame exceeding the configured size limit; the connection
// is dropped since the remaining stream position would be unreliable.
var ErrMessageTooLong = errors.New("message exceeds size limit")

// ErrBadFrame marks a malformed octet-counting header
var ErrBadFrame = errors.New("malformed frame header")

func (f Framing) String() string {
	if f < 0 || int(f) >= len(framingNames) {
		return fmt.Sprintf("framing %d", int(f))
	}
	return framingNames[f]
}

// FramingFromName resolves a configuration value to a Framing
func FramingFromName(name string) (Framing, error) {
	for i, n := range framingNames {
		if n == name {
			return Framing(i), nil
		}
	}
	return 0, fmt.Errorf("unknown framing %q", name)
}

// UnmarshalYAML implements yaml.Unmarshaler with the names in framingNames
func (f *Framing) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	framing, err := FramingFromName(name)
	if err != nil {
		return util.NewYamlError(value, err.Error())
	}
	*f = framing
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (f Framing) MarshalYAML() (interface{}, error) {
	return f.String(), nil
}

// MessageReader extracts framed messages from a byte stream. It is not safe for
// concurrent use; each connection owns one reader.
type MessageReader struct {
	reader  *bufio.Reader
	framing Framing
	maxSize int
	buffer  []byte
}

// NewMessageReader wraps src with framing-aware buffered reading. maxSize caps the
// length of a single message in bytes.
func NewMessageReader(src io.Reader, framing Framing, maxSize int) *MessageReader {
	return &MessageReader{
		reader:  bufio.NewReaderSize(src, minInt(maxSize+1, 64*1024)),
		framing: framing,
		maxSize: maxSize,
	}
}

// Read returns the next message without its frame delimiters. The returned slice is
// only valid until the next Read call. io.EOF is returned at a clean end of stream;
// a frame truncated by connection close yields io.ErrUnexpectedEOF.
func (r *MessageReader) Read() ([]byte, error) {
	switch r.framing {
	case FramingOctetCounting:
		return r.readCounted()
	default:
		return r.readLine()
	}
}

func (r *MessageReader) readLine() ([]byte, error) {
	length := 0
	for {
		chunk, err := r.reader.ReadSlice('\n')
		if len(chunk) > 0 {
			if length+len(chunk) > r.maxSize+1 {
				return nil, fmt.Errorf("%w: line over %d bytes", ErrMessageTooLong, r.maxSize)
			}
			r.buffer = append(r.buffer[:length], chunk...)
			length += len(chunk)
		}
		switch {
		case err == nil:
			return trimLineEnd(r.buffer[:length]), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && length > 0:
			// final message may lack the trailing LF
			return trimLineEnd(r.buffer[:length]), nil
		default:
			return nil, err
		}
	}
}

func (r *MessageReader) readCounted() ([]byte, error) {
	count := 0
	numDigits := 0
	for {
		c, err := r.reader.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && numDigits > 0 {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if c == ' ' && numDigits > 0 {
			break
		}
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("%w: unexpected byte %q in octet count", ErrBadFrame, c)
		}
		numDigits++
		if numDigits > defs.ListenerMaxOctetCountDigits {
			return nil, fmt.Errorf("%w: octet count over %d digits", ErrBadFrame, defs.ListenerMaxOctetCountDigits)
		}
		count = count*10 + int(c-'0')
	}
	if count > r.maxSize {
		return nil, fmt.Errorf("%w: frame of %d bytes", ErrMessageTooLong, count)
	}
	if cap(r.buffer) < count {
		r.buffer = make([]byte, count)
	}
	frame := r.buffer[:count]
	if _, err := io.ReadFull(r.reader, frame); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return frame, nil
}

func trimLineEnd(line []byte) []byte {
	if len(line) > 0 && line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
	}
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	return line
}

func minInt(x, y int) int {
	if x < y {
		return x
	}
	return y
}
