package cmd

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"github.com/relex/gotils/logger"
	"github.com/relex/syslog-rfc5424/defs"
	"github.com/relex/syslog-rfc5424/syslogparser"
	"github.com/relex/syslog-rfc5424/syslogprotocol"
	"github.com/vmihailenco/msgpack/v4"
)

type parseCommandState struct {
	Format string `help:"Output format: json or msgpack"`
	Output string `help:"Output file path, - for stdout"`
}

var parseCmd = parseCommandState{
	Format: "json",
	Output: "-",
}

func (cmd *parseCommandState) run(args []string) {
	plogger := logger.WithField(defs.LabelComponent, "ParseCommand")

	out := os.Stdout
	if cmd.Output != "" && cmd.Output != "-" {
		file, err := os.Create(cmd.Output)
		if err != nil {
			plogger.Fatalf("failed to create output %s: %s", cmd.Output, err.Error())
		}
		defer file.Close()
		out = file
	}

	encode := makeEncoder(plogger, cmd.Format, out)

	numTotal := 0
	numFailed := 0
	decodeLines := func(name string, reader io.Reader) {
		scanner := bufio.NewScanner(reader)
		scanner.Buffer(nil, defs.InputLogMaxMessageBytes)
		lineNumber := 0
		for scanner.Scan() {
			lineNumber++
			line := scanner.Text()
			if len(line) == 0 {
				continue
			}
			numTotal++
			msg, err := syslogparser.Parse(line)
			if err != nil {
				numFailed++
				plogger.Warnf("%s line %d: %s", name, lineNumber, err.Error())
				continue
			}
			if err := encode(msg); err != nil {
				plogger.Fatalf("failed to write output: %s", err.Error())
			}
		}
		if err := scanner.Err(); err != nil {
			plogger.Errorf("failed to read %s: %s", name, err.Error())
		}
	}

	if len(args) == 0 {
		decodeLines("stdin", os.Stdin)
	} else {
		for _, path := range args {
			file, err := os.Open(path)
			if err != nil {
				plogger.Errorf("failed to open %s: %s", path, err.Error())
				numFailed++
				continue
			}
			decodeLines(path, file)
			file.Close()
		}
	}

	if numFailed > 0 {
		plogger.Warnf("failed to decode %d of %d messages", numFailed, numTotal)
		os.Exit(1)
	}
}

func makeEncoder(plogger logger.Logger, format string, out io.Writer) func(*syslogprotocol.SyslogMessage) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(out)
		return func(msg *syslogprotocol.SyslogMessage) error {
			return encoder.Encode(msg)
		}
	case "msgpack":
		encoder := msgpack.NewEncoder(out)
		return func(msg *syslogprotocol.SyslogMessage) error {
			return encoder.Encode(msg)
		}
	default:
		plogger.Fatalf("unknown format %q, expecting json or msgpack", format)
		return nil
	}
}
