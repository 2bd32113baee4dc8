package cmd

import (
	"context"

	"github.com/relex/gotils/logger"
	"github.com/relex/syslog-rfc5424/run"
	"github.com/relex/syslog-rfc5424/util"
)

type serveCommandState struct {
	Config      string `help:"Configuration file path"`
	MetricsAddr string `help:"The listener address to expose Prometheus metrics and debug information"`
}

var serveCmd = serveCommandState{
	Config:      "config.yml",
	MetricsAddr: ":9335",
}

func (cmd *serveCommandState) run(args []string) {
	msrv := util.LaunchMetricsListener(cmd.MetricsAddr)

	run.Run(cmd.Config)

	if err := msrv.Shutdown(context.Background()); err != nil {
		logger.Errorf("error shutting down metrics listener: %v", err)
	}
}
