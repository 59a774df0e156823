package logging

func Log(level LogLevel, msg string, args ...any) {
	if logger == nil {
		return
	}
	switch level {
	case LogLevelDebug:
		logger.Debug(msg, args...)
	case LogLevelInfo:
		logger.Info(msg, args...)
	default:
		panic("log with Debug/Info only; silence logging with -lnone or --loglevel=none")
	}
}

func LogErr(err error, msg string) {
	if err == nil || logger == nil {
		return
	}

	logger.Error(msg, "error", err.Error())
}
