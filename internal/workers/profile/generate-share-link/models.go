// internal/workers/profile/generate-share-link/models.go
package generatesharelink

type Input struct {
	UserID string `json:"userId"`
}

// Output is written back as process variables. Fallback is true when the link points
// at the plain profile page because the share token could not be stored.
type Output struct {
	ShareURL   string `json:"shareUrl"`
	ShareToken string `json:"shareToken"`
	QRCodeURL  string `json:"qrCodeUrl"`
	IsPublic   bool   `json:"isPublic"`
	Fallback   bool   `json:"shareLinkFallback"`
}
