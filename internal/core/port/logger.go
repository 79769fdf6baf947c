package port

// Fields - тип для структурированных полей лога
type Fields map[string]interface{}

// LoggerPort - контракт логгера для всех слоев приложения
type LoggerPort interface {
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	Error(msg string, err error, fields Fields)
	Debug(msg string, fields Fields)
	WithFields(fields Fields) LoggerPort
}
