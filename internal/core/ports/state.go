package ports

// StateStore persists values between the restore and save steps of one job.
//
//go:generate mockgen -source=state.go -destination=mocks/mock_state.go -package=mocks
type StateStore interface {
	// Save stores value under name, replacing any previous value.
	Save(name, value string) error

	// Read returns the value stored under name, or "" when absent.
	Read(name string) (string, error)
}
