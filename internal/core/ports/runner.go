package ports

// Runner is the CI runtime the routines execute in.
//
//go:generate mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type Runner interface {
	// Input returns the raw value of a declared input, or "" when unset.
	Input(name string) string

	// SetOutput publishes a step output for downstream steps.
	SetOutput(name, value string)

	// EventName returns the type of event that triggered the run.
	EventName() string

	// Ref returns the branch or tag ref of the run.
	Ref() string
}
