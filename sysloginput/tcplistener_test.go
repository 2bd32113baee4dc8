package sysloginput

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/relex/syslog-rfc5424/defs"
	"github.com/relex/syslog-rfc5424/syslogprotocol"
	"github.com/relex/syslog-rfc5424/util"
	"github.com/stretchr/testify/assert"
)

func TestListenerNewlineFraming(t *testing.T) {
	const line1 = "<163>1 2019-08-15T15:50:46.866915+03:00 local my-app 123 fn - Something"
	const line2 = "<165>1 2019-08-15T15:51:46.866915+03:00 local my-app 123 fn - Something else"
	const addrParam = "localhost:0"
	rlogger := logger.WithField("test", t.Name())
	stop := channels.NewSignalAwaitable()
	mfactory := promreg.NewMetricFactory("testinput_", nil, nil)
	out := make(chan *syslogprotocol.SyslogMessage, 10)
	receive := func(msg *syslogprotocol.SyslogMessage) {
		out <- msg
	}

	lsnr, addr, err := NewListener(rlogger, Config{Address: addrParam}, receive, mfactory, stop)
	assert.Nil(t, err)
	assert.NotEqual(t, addrParam, addr)
	lsnr.Launch()

	conn, err := net.Dial("tcp", addr)
	assert.Nil(t, err)
	_, err = conn.Write([]byte(line1 + "\n" + line2 + "\n"))
	assert.Nil(t, err)

	msg1 := readCh(t, out)
	assert.Equal(t, syslogprotocol.SevErr, msg1.Severity)
	assert.Equal(t, syslogprotocol.FacLocal4, msg1.Facility)
	assert.Equal(t, "Something", msg1.Message)

	msg2 := readCh(t, out)
	assert.Equal(t, syslogprotocol.SevNotice, msg2.Severity)
	assert.Equal(t, "Something else", msg2.Message)

	assert.Equal(t, int64(1), lsnr.SeverityCount(syslogprotocol.SevErr))
	assert.Equal(t, int64(1), lsnr.SeverityCount(syslogprotocol.SevNotice))
	assert.Equal(t, int64(0), lsnr.SeverityCount(syslogprotocol.SevDebug))

	assert.Nil(t, conn.Close())
	stop.Signal()
	assert.True(t, lsnr.Stopped().Wait(defs.TestReadTimeout))
}

func TestListenerOctetCountingFraming(t *testing.T) {
	const record = "<34>1 2003-10-11T22:14:15.003Z mymachine.example.com su - ID47 - 'su root' failed"
	rlogger := logger.WithField("test", t.Name())
	stop := channels.NewSignalAwaitable()
	mfactory := promreg.NewMetricFactory("testinput_", nil, nil)
	out := make(chan *syslogprotocol.SyslogMessage, 10)
	receive := func(msg *syslogprotocol.SyslogMessage) {
		out <- msg
	}

	lsnr, addr, err := NewListener(rlogger, Config{Address: "localhost:0", Framing: FramingOctetCounting}, receive, mfactory, stop)
	assert.Nil(t, err)
	lsnr.Launch()

	conn, err := net.Dial("tcp", addr)
	assert.Nil(t, err)
	_, err = fmt.Fprintf(conn, "%d %s", len(record), record)
	assert.Nil(t, err)

	msg := readCh(t, out)
	assert.Equal(t, syslogprotocol.SevCrit, msg.Severity)
	assert.Equal(t, syslogprotocol.FacAuth, msg.Facility)
	if assert.NotNil(t, msg.Hostname) {
		assert.Equal(t, "mymachine.example.com", *msg.Hostname)
	}
	assert.Equal(t, "'su root' failed", msg.Message)

	assert.Nil(t, conn.Close())
	stop.Signal()
	assert.True(t, lsnr.Stopped().Wait(defs.TestReadTimeout))
}

func TestListenerDropsUndecodable(t *testing.T) {
	rlogger := logger.WithField("test", t.Name())
	stop := channels.NewSignalAwaitable()
	mfactory := promreg.NewMetricFactory("testinput_", nil, nil)
	out := make(chan *syslogprotocol.SyslogMessage, 10)
	receive := func(msg *syslogprotocol.SyslogMessage) {
		out <- msg
	}

	lsnr, addr, err := NewListener(rlogger, Config{Address: "localhost:0"}, receive, mfactory, stop)
	assert.Nil(t, err)
	lsnr.Launch()

	conn, err := net.Dial("tcp", addr)
	assert.Nil(t, err)
	_, err = conn.Write([]byte("not a syslog message\n<14>1 - - - - - - ok\n"))
	assert.Nil(t, err)

	msg := readCh(t, out)
	assert.Equal(t, "ok", msg.Message, "bad message is dropped, connection continues")

	inputMetrics := mfactory.AddOrGetPrefix("input_", []string{"protocol"}, []string{"syslog"})
	assert.Equal(t, 1.0, util.SumMetricValues(inputMetrics.AddOrGetCounterVec("passed_messages_total", "", nil, nil)))
	assert.Equal(t, 1.0, util.SumMetricValues(inputMetrics.AddOrGetCounterVec("dropped_messages_total", "", nil, nil)))

	assert.Nil(t, conn.Close())
	stop.Signal()
	assert.True(t, lsnr.Stopped().Wait(defs.TestReadTimeout))
}

func TestListenerConfigVerification(t *testing.T) {
	cfg := Config{Address: "localhost:514"}
	assert.Nil(t, cfg.VerifyConfig())

	cfg = Config{Address: "localhost"}
	assert.NotNil(t, cfg.VerifyConfig())
}

func readCh(t *testing.T, ch <-chan *syslogprotocol.SyslogMessage) *syslogprotocol.SyslogMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(defs.TestReadTimeout):
		t.Fatal("timeout waiting for message")
		return nil
	}
}
