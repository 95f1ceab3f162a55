package cmd

import (
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/relex/gotils/logger"
)

// rootCommandState holds the profiling flags shared by all subcommands
type rootCommandState struct {
	CPUProfile string `name:"cpuprofile" help:"Write CPU profile to file."`
	MemProfile string `name:"memprofile" help:"Write memory profile to file."`
	Trace      string `help:"Write trace to file."`

	openFiles []*os.File
	onStop    []func()
}

var rootCmd rootCommandState

func (cmd *rootCommandState) preRun() {
	if cmd.CPUProfile != "" {
		f := cmd.create(cmd.CPUProfile, "CPU profile")
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Fatalf("failed to start CPU profiling: %s", err.Error())
		}
		cmd.onStop = append(cmd.onStop, pprof.StopCPUProfile)
	}

	if cmd.MemProfile != "" {
		f := cmd.create(cmd.MemProfile, "memory profile")
		cmd.onStop = append(cmd.onStop, func() {
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				logger.Errorf("failed to write memory profile: %s", err.Error())
			}
		})
	}

	if cmd.Trace != "" {
		f := cmd.create(cmd.Trace, "trace")
		if err := trace.Start(f); err != nil {
			logger.Fatalf("failed to start tracing: %s", err.Error())
		}
		cmd.onStop = append(cmd.onStop, trace.Stop)
	}
}

func (cmd *rootCommandState) postRun() {
	for _, stop := range cmd.onStop {
		stop()
	}
	for _, f := range cmd.openFiles {
		f.Close()
	}
}

func (cmd *rootCommandState) create(path string, title string) *os.File {
	f, err := os.Create(path)
	if err != nil {
		logger.Fatalf("failed to create %s %s: %s", title, path, err.Error())
	}
	logger.Infof("start writing %s %s", title, path)
	cmd.openFiles = append(cmd.openFiles, f)
	return f
}
