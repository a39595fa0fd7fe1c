package lheutils

type Logger interface {
	Info(message string, module string)
	Error(string)
}

var logger Logger

func SetLogger(l Logger) {
	logger = l
}

// logInfo logs through the registered logger, gated by verbosity so library
// code stays quiet under tests and quiet runs.
func logInfo(message string, module string) {
	if logger == nil || configuration.Verbosity == 0 {
		return
	}
	logger.Info(message, module)
}

func logError(message string) {
	if logger == nil {
		return
	}
	logger.Error(message)
}
