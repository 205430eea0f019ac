package logger

// NopLogger discards everything. Handy for tests and optional wiring.
type NopLogger struct{}

func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (n *NopLogger) Debug(module, message string, details map[string]interface{}) {}
func (n *NopLogger) Info(module, message string, details map[string]interface{})  {}
func (n *NopLogger) Warn(module, message string, details map[string]interface{})  {}
func (n *NopLogger) Error(module, message string, details map[string]interface{}) {}
func (n *NopLogger) Sync() error {
	return nil
}
