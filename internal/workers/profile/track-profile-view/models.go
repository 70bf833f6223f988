// internal/workers/profile/track-profile-view/models.go
package trackprofileview

type Input struct {
	ProfileID string `json:"profileId"`
	ViewerID  string `json:"viewerId,omitempty"`
}

type Output struct {
	ViewTracked bool `json:"viewTracked"`
}
