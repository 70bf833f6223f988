// internal/workers/profile/track-profile-view/config.go
package trackprofileview

import (
	"time"

	"devtogether/internal/common/camunda"
	"devtogether/internal/common/config"
	"devtogether/internal/common/validation"
	"devtogether/pkg/registry"
)

type Config struct {
	Timeout time.Duration
	Schema  *validation.SchemaValidator
}

func LoadConfig(appCfg *config.Config, reg *registry.ActivityRegistry) (*Config, error) {
	schema, err := camunda.InputValidator(reg, TaskType)
	if err != nil {
		return nil, err
	}
	return &Config{
		Timeout: config.GetDuration(config.GetWorkerConfig(appCfg, TaskType).Timeout),
		Schema:  schema,
	}, nil
}
