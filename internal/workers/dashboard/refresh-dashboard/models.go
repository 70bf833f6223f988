// internal/workers/dashboard/refresh-dashboard/models.go
package refreshdashboard

import "devtogether/internal/models"

type Input struct {
	DeveloperID string `json:"developerId"`
}

type Output struct {
	Dashboard *models.DashboardSnapshot `json:"dashboard"`
}
