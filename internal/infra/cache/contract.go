package cache

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// MetricsRecorder учет попаданий в кеш
type MetricsRecorder interface {
	RecordCache(result string)
}
