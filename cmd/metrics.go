package cmd

import (
	"net/http"

	"github.com/relex/ringlog/util"
)

// startMetricsListener launches the Prometheus/pprof listener unless the
// address is empty
func startMetricsListener(address string) *http.Server {
	if address == "" {
		return nil
	}
	return util.LaunchMetricsListener(address)
}
