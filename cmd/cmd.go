// Package cmd provides the demo and self-benchmark commands
package cmd

import (
	"github.com/relex/gotils/config"
)

func init() {
	config.AddParentCmdWithArgs("", "ringlog is a garbage-free low-latency logging library; the binary hosts its demo and benchmarks", &rootCmd, rootCmd.preRun, rootCmd.postRun)
	config.AddCmdWithArgs("demo ...", "Emit sample records through a configured service", &demoCmd, demoCmd.run)
	config.AddCmdWithArgs("benchmark ...", "Drive N producers through the ring and report rates", &benchCmd, benchCmd.run)
}

// Execute parses the command line and runs the specified command
func Execute() {
	// trigger init

	config.Execute()
}
