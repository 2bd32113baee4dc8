// Package run runs the syslog server until stopped
package run

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/relex/syslog-rfc5424/defs"
)

// Run runs the server until stopped by signals
func Run(configFile string) {
	cfg, cfgErr := LoadConfigFile(configFile)
	if cfgErr != nil {
		logger.Fatal(cfgErr)
	}

	mfactory := promreg.NewMetricFactory("syslog_rfc5424_", nil, nil)

	pipeline, pipeErr := NewPipeline(logger.Root(), cfg, mfactory)
	if pipeErr != nil {
		logger.Fatal(pipeErr)
	}
	pipeline.Launch()

	runLogger := logger.WithField(defs.LabelComponent, "Launcher")
	runLogger.Infof("listening on %s", pipeline.Address())

	// wait for shutdown signal
	{
		sigChan := make(chan os.Signal, 10)
		signal.Notify(sigChan, syscall.SIGINT)
		signal.Notify(sigChan, syscall.SIGTERM)
		s := <-sigChan
		runLogger.Infof("received %s, shutting down", s)
	}

	pipeline.Shutdown()
	runLogger.Info("clean exit")
}
