// Package sysloginput receives RFC 5424 messages over TCP, decodes them and hands the
// decoded messages to a receiver callback.
//
// Both framings of RFC 6587 are supported. Messages failing to decode are counted and
// logged but never abort the connection; framing errors do, since the stream position
// is unreliable afterwards.
package sysloginput

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/c2h5oh/datasize"
	"github.com/puzpuzpuz/xsync/v2"
	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promext"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/relex/syslog-rfc5424/defs"
	"github.com/relex/syslog-rfc5424/syslogparser"
	"github.com/relex/syslog-rfc5424/syslogprotocol"
	"github.com/relex/syslog-rfc5424/util"
)

const maxLoggedMessageSize = 200

// Config provides configuration for a TCP syslog listener
type Config struct {
	Address        string            `yaml:"address"`        // network address, e.g. "localhost:514". Empty host or port means any.
	Framing        Framing           `yaml:"framing"`        // "newline" or "octet-counting"
	MaxMessageSize datasize.ByteSize `yaml:"maxMessageSize"` // frame size limit, e.g. "1mb"; zero selects the default
}

// VerifyConfig checks configuration
func (cfg *Config) VerifyConfig() error {
	if _, _, err := net.SplitHostPort(cfg.Address); err != nil {
		return fmt.Errorf(".address has invalid format: %w", err)
	}
	return nil
}

// MessageReceiver consumes decoded messages, called from connection goroutines. The
// message is owned by the receiver and never reused by the listener.
type MessageReceiver func(msg *syslogprotocol.SyslogMessage)

// Listener accepts TCP connections and decodes framed syslog messages from each
type Listener struct {
	logger          logger.Logger
	socket          *net.TCPListener
	framing         Framing
	maxMessageSize  int
	receiver        MessageReceiver
	stopRequest     channels.Awaitable
	taskCounter     *sync.WaitGroup    // tracks connection tasks and the listener task itself
	stopped         channels.Awaitable // signaled when both listener and all child connections have come to stop
	passedMessages  promext.RWCounter
	passedBytes     promext.RWCounter
	droppedMessages promext.RWCounter
	droppedBytes    promext.RWCounter
	severityCounts  [8]*xsync.Counter
}

// NewListener creates a socket listening on the configured TCP address and returns a
// new Listener if successful
//
// The given address may use port zero, which would cause the port to be assigned by OS
//
// Returns the listener, actual address including final port, and error if failed
func NewListener(parentLogger logger.Logger, cfg Config, receiver MessageReceiver,
	metricCreator promreg.MetricCreator, stopRequest channels.Awaitable) (*Listener, string, error) {

	socket, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, "", err
	}
	boundAddr := socket.Addr().String()

	lsnrLogger := parentLogger.WithFields(logger.Fields{
		defs.LabelComponent: "SyslogListener",
		defs.LabelAddress:   boundAddr,
	})
	lsnrLogger.Info("start listening")

	maxMessageSize := int(cfg.MaxMessageSize.Bytes())
	if maxMessageSize == 0 {
		maxMessageSize = defs.InputLogMaxMessageBytes
	}

	inputMetricCreator := metricCreator.AddOrGetPrefix("input_", []string{"protocol"}, []string{"syslog"})

	// init taskCounter with 1 for the listener; Can't wait for Launch() because WaitGroupAwaitable below would quit immediately if it's zero.
	taskCounter := &sync.WaitGroup{}
	taskCounter.Add(1)

	lsnr := &Listener{
		logger:          lsnrLogger,
		socket:          socket.(*net.TCPListener),
		framing:         cfg.Framing,
		maxMessageSize:  maxMessageSize,
		receiver:        receiver,
		stopRequest:     stopRequest,
		taskCounter:     taskCounter,
		stopped:         channels.NewWaitGroupAwaitable(taskCounter),
		passedMessages:  inputMetricCreator.AddOrGetCounter("passed_messages_total", "Numbers of decoded messages", nil, nil),
		passedBytes:     inputMetricCreator.AddOrGetCounter("passed_message_bytes_total", "Total length in bytes of decoded messages", nil, nil),
		droppedMessages: inputMetricCreator.AddOrGetCounter("dropped_messages_total", "Numbers of messages failing to decode", nil, nil),
		droppedBytes:    inputMetricCreator.AddOrGetCounter("dropped_message_bytes_total", "Total length in bytes of messages failing to decode", nil, nil),
	}
	for i := range lsnr.severityCounts {
		lsnr.severityCounts[i] = xsync.NewCounter()
	}
	return lsnr, boundAddr, nil
}

// Launch starts the accept loop in background
func (lsnr *Listener) Launch() {
	go lsnr.run()
}

// Stopped returns an Awaitable signaled after the listener and all its connections end
func (lsnr *Listener) Stopped() channels.Awaitable {
	return lsnr.stopped
}

// SeverityCount returns how many decoded messages carried the given severity
func (lsnr *Listener) SeverityCount(severity syslogprotocol.Severity) int64 {
	return lsnr.severityCounts[severity.Int()].Value()
}

func (lsnr *Listener) run() {
	// background goroutine to wait and close listener socket on request
	abortListener := channels.NewSignalAwaitable()
	go func() {
		channels.AnyAwaitables(lsnr.stopRequest, abortListener).Next(func() {
			if abortListener.Peek() {
				lsnr.logger.Info("abort listener")
			} else {
				lsnr.logger.Info("close listener on stop request")
			}
		}).WaitForever()
		lsnr.socket.Close()
	}()

	lsnr.logger.Info("start accept loop")
	for {
		conn, err := lsnr.socket.AcceptTCP()
		if err != nil {
			if lsnr.stopRequest.Peek() && util.IsNetworkClosed(err) {
				// closed on stop request
			} else {
				lsnr.logger.Error("accept() error: ", err)
				abortListener.Signal()
			}
			break
		}

		connLogger := lsnr.logger.WithFields(logger.Fields{
			defs.LabelPart:   "connection",
			defs.LabelClient: conn.RemoteAddr().String(),
		})
		connLogger.Info("accepted connection")
		lsnr.taskCounter.Add(1)
		go lsnr.runConnection(connLogger, conn)
	}
	lsnr.logger.Info("end accept loop")

	// mark the listener itself as done, note there could still be established connections
	lsnr.taskCounter.Done()
}

func (lsnr *Listener) runConnection(connLogger logger.Logger, conn *net.TCPConn) {
	defer lsnr.taskCounter.Done()
	connLogger.Info("started")

	if err := conn.SetKeepAlive(true); err != nil {
		connLogger.Warnf("error enabling keep-alive: %s", err.Error())
	}

	connAborter := lsnr.launchConnectionCloser(connLogger, conn)

	reader := NewMessageReader(conn, lsnr.framing, lsnr.maxMessageSize)
	for {
		frame, err := reader.Read()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				connLogger.Info("closed by client")
			case util.IsNetworkClosed(err) && lsnr.stopRequest.Peek():
				// already closed by connAborter
				connLogger.Info("closed by stop request")
			default:
				if !util.IsNetworkClosed(err) {
					connLogger.Warn("read() error: ", err)
				}
				connAborter.Signal()
			}
			break
		}
		if len(frame) == 0 {
			continue
		}
		lsnr.decodeFrame(connLogger, frame)
	}
	connLogger.Info("ended")
}

func (lsnr *Listener) decodeFrame(connLogger logger.Logger, frame []byte) {
	msg, err := syslogparser.ParseBytes(frame)
	if err != nil {
		lsnr.droppedMessages.Inc()
		lsnr.droppedBytes.Add(uint64(len(frame)))
		connLogger.Warnf("drop undecodable message: %s: %s", err.Error(), previewFrame(frame))
		return
	}
	lsnr.passedMessages.Inc()
	lsnr.passedBytes.Add(uint64(len(frame)))
	lsnr.severityCounts[msg.Severity.Int()].Inc()
	lsnr.receiver(msg)
}

func (lsnr *Listener) launchConnectionCloser(connLogger logger.Logger, conn *net.TCPConn) *channels.SignalAwaitable {
	abortConn := channels.NewSignalAwaitable()
	// background goroutine to wait and close the connection on request
	go func() {
		channels.AnyAwaitables(lsnr.stopRequest, abortConn).Next(func() {
			if abortConn.Peek() {
				connLogger.Info("abort connection")
			} else {
				connLogger.Info("close connection on stop request")
			}
		}).WaitForever()
		conn.Close()
	}()
	return abortConn
}

func previewFrame(frame []byte) string {
	if len(frame) > maxLoggedMessageSize {
		return string(frame[:maxLoggedMessageSize]) + "..."
	}
	return string(frame)
}
