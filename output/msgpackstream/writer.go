// Package msgpackstream writes decoded messages as a MessagePack stream, optionally
// gzip compressed. The stream is a plain concatenation of message objects, readable
// back one by one with a msgpack decoder.
package msgpackstream

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promext"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/relex/syslog-rfc5424/defs"
	"github.com/relex/syslog-rfc5424/syslogprotocol"
	"github.com/vmihailenco/msgpack/v4"
)

// gzipCompressionLevel for the output stream
// BestSpeed uses 30% more space and roughly same percentage in time saving
const gzipCompressionLevel = gzip.BestSpeed

// Config provides configuration for Writer
type Config struct {
	Path     string `yaml:"path"`     // destination file path; empty or "-" means stdout
	Compress bool   `yaml:"compress"` // gzip the stream
}

// VerifyConfig checks configuration
func (cfg *Config) VerifyConfig() error {
	// any path is acceptable; creation errors surface in NewWriter
	return nil
}

// NewWriter opens the configured destination and creates a Writer on it
func (cfg *Config) NewWriter(parentLogger logger.Logger, metricCreator promreg.MetricCreator) (*Writer, error) {
	if cfg.Path == "" || cfg.Path == "-" {
		return NewWriter(parentLogger, os.Stdout, cfg.Compress, metricCreator), nil
	}
	file, err := os.Create(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	writer := NewWriter(parentLogger, file, cfg.Compress, metricCreator)
	writer.closer = file
	return writer, nil
}

// Writer encodes messages onto a destination stream. Not safe for concurrent use;
// callers serialize Write calls themselves.
type Writer struct {
	logger          logger.Logger
	gzipWriter      *gzip.Writer // nil if compression is off
	encoder         *msgpack.Encoder
	closer          io.Closer // underlying file if Writer owns one
	writtenMessages promext.RWCounter
}

// NewWriter creates a Writer on an already open destination; the destination is not
// closed by Close unless the Writer opened it itself.
func NewWriter(parentLogger logger.Logger, dst io.Writer, compress bool, metricCreator promreg.MetricCreator) *Writer {
	outputMetricCreator := metricCreator.AddOrGetPrefix("output_", []string{"output"}, []string{"msgpack"})
	wlogger := parentLogger.WithField(defs.LabelComponent, "MsgpackStreamWriter")

	var gzipWriter *gzip.Writer
	encoderDst := dst
	if compress {
		gzWriter, gzErr := gzip.NewWriterLevel(dst, gzipCompressionLevel)
		if gzErr != nil {
			wlogger.Errorf("failed to create GzipWriter: %s", gzErr.Error())
		} else {
			gzipWriter = gzWriter
			encoderDst = gzWriter
		}
	}

	return &Writer{
		logger:          wlogger,
		gzipWriter:      gzipWriter,
		encoder:         msgpack.NewEncoder(encoderDst),
		closer:          nil,
		writtenMessages: outputMetricCreator.AddOrGetCounter("written_messages_total", "Numbers of written messages", nil, nil),
	}
}

// Write appends one message to the stream
func (w *Writer) Write(msg *syslogprotocol.SyslogMessage) error {
	if err := w.encoder.Encode(msg); err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	w.writtenMessages.Inc()
	return nil
}

// Flush pushes buffered compressed data to the destination without ending the stream
func (w *Writer) Flush() error {
	if w.gzipWriter != nil {
		return w.gzipWriter.Flush()
	}
	return nil
}

// Close ends the stream and closes the destination if the Writer owns it
func (w *Writer) Close() error {
	if w.gzipWriter != nil {
		if err := w.gzipWriter.Close(); err != nil {
			return fmt.Errorf("close gzip stream: %w", err)
		}
	}
	if w.closer != nil {
		if err := w.closer.Close(); err != nil {
			return fmt.Errorf("close output: %w", err)
		}
	}
	return nil
}
