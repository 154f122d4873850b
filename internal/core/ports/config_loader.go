package ports

import "go.trai.ch/carry/internal/core/domain"

// ConfigLoader defines the interface for loading the runtime configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds carry.yaml by walking up from cwd, applies environment overrides
	// and returns the resolved configuration. A missing file yields defaults.
	Load(cwd string) (*domain.Config, error)
}
