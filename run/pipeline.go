package run

import (
	"sync"

	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promext"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/relex/syslog-rfc5424/defs"
	"github.com/relex/syslog-rfc5424/output/msgpackstream"
	"github.com/relex/syslog-rfc5424/syslogprotocol"
	"github.com/relex/syslog-rfc5424/sysloginput"
)

// Pipeline connects the TCP listener, the message filter and the stream writer
//
// Decoded messages flow from connection goroutines into the shared writer; the writer
// is serialized by mutex since the msgpack encoder keeps internal state.
type Pipeline struct {
	logger           logger.Logger
	listener         *sysloginput.Listener
	address          string
	writer           *msgpackstream.Writer
	writeMutex       sync.Mutex
	stopRequest      *channels.SignalAwaitable
	excludedMessages promext.RWCounter
}

// NewPipeline builds a Pipeline from verified configuration. The listener socket is
// opened here; message flow starts on Launch.
func NewPipeline(parentLogger logger.Logger, cfg *Config, metricCreator promreg.MetricCreator) (*Pipeline, error) {
	filter, err := cfg.Filter.NewFilter(parentLogger)
	if err != nil {
		return nil, err
	}

	writer, err := cfg.Output.NewWriter(parentLogger, metricCreator)
	if err != nil {
		return nil, err
	}

	pipeline := &Pipeline{
		logger:           parentLogger.WithField(defs.LabelComponent, "Pipeline"),
		writer:           writer,
		stopRequest:      channels.NewSignalAwaitable(),
		excludedMessages: metricCreator.AddOrGetCounter("filter_excluded_messages_total", "Numbers of messages dropped by filter rules", nil, nil),
	}

	receive := func(msg *syslogprotocol.SyslogMessage) {
		if filter.Exclude(msg) {
			pipeline.excludedMessages.Inc()
			return
		}
		pipeline.writeMutex.Lock()
		defer pipeline.writeMutex.Unlock()
		if werr := pipeline.writer.Write(msg); werr != nil {
			pipeline.logger.Errorf("error writing message: %s", werr.Error())
		}
	}

	listener, address, err := sysloginput.NewListener(parentLogger, cfg.Input, receive, metricCreator, pipeline.stopRequest)
	if err != nil {
		writer.Close()
		return nil, err
	}
	pipeline.listener = listener
	pipeline.address = address
	return pipeline, nil
}

// Launch starts accepting connections in background
func (p *Pipeline) Launch() {
	p.listener.Launch()
}

// Address returns the actual listener address including the final port
func (p *Pipeline) Address() string {
	return p.address
}

// Shutdown stops the listener, waits for open connections and closes the output
func (p *Pipeline) Shutdown() {
	p.stopRequest.Signal()
	if !p.listener.Stopped().Wait(defs.ListenerStopTimeout) {
		p.logger.Warn("timeout waiting for open connections to stop")
	}
	p.writeMutex.Lock()
	defer p.writeMutex.Unlock()
	if err := p.writer.Close(); err != nil {
		p.logger.Errorf("error closing output: %s", err.Error())
	}
}
