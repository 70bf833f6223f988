package profile

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	apperrors "devtogether/internal/common/errors"
	"devtogether/internal/models"
	"devtogether/internal/store"
)

// GenerateShareableProfile issues a new share link for the user. It never fails: when
// the token cannot be stored the link falls back to the plain profile URL and the
// token carries models.FallbackTokenPrefix.
func (a *Aggregator) GenerateShareableProfile(ctx context.Context, userID string) models.ShareableProfile {
	const op = "profile.share"
	ctx, done := a.observe(ctx, op, userID)
	defer done(nil)

	base := a.cfg.Sharing.PublicBaseURL
	out := models.ShareableProfile{UserID: userID, IsPublic: true}

	token := a.newToken()
	if err := a.reader.SetShareToken(ctx, userID, token); err != nil {
		a.degraded(op, "share_token", userID, err)
		out.ShareToken = fmt.Sprintf("%s%s-%d", models.FallbackTokenPrefix, userID, a.now().Unix())
		out.ShareURL = fmt.Sprintf("%s/profile/%s", base, url.PathEscape(userID))
	} else {
		out.ShareToken = token
		out.ShareURL = fmt.Sprintf("%s/profile/share/%s", base, token)
	}

	isPublic, err := a.reader.GetIsPublic(ctx, userID)
	if err != nil {
		a.degraded(op, "is_public", userID, err)
	} else {
		out.IsPublic = isPublic
	}

	out.QRCodeURL = a.qrCodeURL(out.ShareURL)
	return out
}

func (a *Aggregator) qrCodeURL(target string) string {
	size := a.cfg.Sharing.QRCodeSize
	if size <= 0 {
		size = 200
	}
	return fmt.Sprintf("%s?size=%dx%d&data=%s", a.cfg.Sharing.QRCodeBaseURL, size, size, url.QueryEscape(target))
}

// UpdatePrivacySettings stores the visibility flag. A missing is_public column is
// logged and ignored.
func (a *Aggregator) UpdatePrivacySettings(ctx context.Context, userID string, settings models.PrivacySettings) (err error) {
	const op = "profile.privacy"
	ctx, done := a.observe(ctx, op, userID)
	defer func() { done(err) }()

	err = a.reader.UpdateIsPublic(ctx, userID, settings.IsPublic)
	switch {
	case err == nil:
		return nil
	case store.IsSchemaMissing(err):
		a.degraded(op, "is_public", userID, err)
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperrors.NewProfileNotFoundError(userID)
	default:
		return apperrors.NewPrivacyUpdateFailedError(userID, err)
	}
}

// GetProfileByShareToken resolves a share link. It returns nil without an error when
// the token is unknown, the profile is private or sharing is not provisioned.
func (a *Aggregator) GetProfileByShareToken(ctx context.Context, token string) (p *models.Profile, err error) {
	const op = "profile.share_lookup"
	ctx, done := a.observe(ctx, op, "")
	defer func() { done(err) }()

	if token == "" || models.IsFallbackToken(token) {
		return nil, nil
	}

	p, err = a.reader.GetProfileByShareToken(ctx, token)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		return nil, nil
	case store.IsSchemaMissing(err):
		a.degraded(op, "share_token", "", err)
		return nil, nil
	default:
		return nil, apperrors.NewShareTokenLookupFailedError(err)
	}

	if !p.IsPublic {
		return nil, nil
	}
	p.Email = ""
	return p, nil
}
