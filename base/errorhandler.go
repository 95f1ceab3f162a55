package base

import (
	"github.com/relex/gotils/logger"
	"github.com/relex/ringlog/defs"
)

// ErrorHandler receives failures that must not propagate into application
// threads or halt the consumer: sink I/O errors, discarded tails on shutdown
// timeout, records dropped for not fitting the output buffer
type ErrorHandler interface {
	HandleError(component string, err error)
}

// NewLogErrorHandler creates the default fallback handler reporting through
// the diagnostic logger
func NewLogErrorHandler(parentLogger logger.Logger) ErrorHandler {
	return &logErrorHandler{parentLogger}
}

type logErrorHandler struct {
	logger logger.Logger
}

func (h *logErrorHandler) HandleError(component string, err error) {
	h.logger.WithField(defs.LabelComponent, component).Errorf("error: %s", err.Error())
}
