// Package cmd provides the command line of the syslog server and decoding tools
package cmd

import (
	"github.com/relex/gotils/config"
)

func init() {
	config.AddParentCmdWithArgs("", "syslog-rfc5424 receives, decodes and re-serializes RFC 5424 syslog messages", &rootCmd, rootCmd.preRun, rootCmd.postRun)
	config.AddCmdWithArgs("serve ...", "Run the TCP server", &serveCmd, serveCmd.run)
	config.AddCmdWithArgs("parse <file> ...", "Decode messages from files or stdin and print them", &parseCmd, parseCmd.run)
}

// Execute parses the command line and runs the specified command
func Execute() {
	// trigger init

	config.Execute()
}
