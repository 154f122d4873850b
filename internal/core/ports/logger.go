package ports

// Logger defines the interface for logging.
//
//go:generate mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	// Info logs an informational message.
	Info(msg string)

	// Warn logs a warning. In GitHub Actions this surfaces as an annotation.
	Warn(msg string)

	// Error logs an error and its cause chain.
	Error(err error)
}
