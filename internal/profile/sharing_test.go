package profile

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	apperrors "devtogether/internal/common/errors"
	"devtogether/internal/models"
	"devtogether/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================================
// GenerateShareableProfile
// ==========================================

func TestGenerateShareableProfile(t *testing.T) {
	s := &fakeStore{isPublic: false}
	agg := newTestAggregator(t, s, nil, WithTokenGenerator(func() string { return "tok-123" }))

	got := agg.GenerateShareableProfile(context.Background(), "dev-1")

	assert.Equal(t, "dev-1", got.UserID)
	assert.Equal(t, "tok-123", got.ShareToken)
	assert.Equal(t, "https://devtogether.example/profile/share/tok-123", got.ShareURL)
	assert.Equal(t,
		"https://api.qrserver.com/v1/create-qr-code/?size=200x200&data="+url.QueryEscape(got.ShareURL),
		got.QRCodeURL)
	assert.False(t, got.IsPublic)
	assert.False(t, got.IsFallback())
	assert.Equal(t, "tok-123", s.tokens["dev-1"])
}

func TestGenerateShareableProfile_DefaultTokenIsUUID(t *testing.T) {
	agg := newTestAggregator(t, &fakeStore{isPublic: true}, nil)

	got := agg.GenerateShareableProfile(context.Background(), "dev-1")
	_, err := uuid.Parse(got.ShareToken)
	assert.NoError(t, err)
	assert.True(t, got.IsPublic)
}

func TestGenerateShareableProfile_FallbackWhenTokenCannotBeStored(t *testing.T) {
	s := &fakeStore{errs: map[string]error{
		"SetShareToken": schemaMissing("share_token"),
		"GetIsPublic":   schemaMissing("is_public"),
	}}
	agg := newTestAggregator(t, s, nil)

	got := agg.GenerateShareableProfile(context.Background(), "dev-1")

	assert.True(t, got.IsFallback())
	assert.Equal(t, fmt.Sprintf("fallback-dev-1-%d", now.Unix()), got.ShareToken)
	assert.Equal(t, "https://devtogether.example/profile/dev-1", got.ShareURL)
	assert.True(t, strings.HasSuffix(got.QRCodeURL, url.QueryEscape(got.ShareURL)))
	assert.True(t, got.IsPublic, "visibility defaults to public when unreadable")
}

// ==========================================
// UpdatePrivacySettings
// ==========================================

func TestUpdatePrivacySettings(t *testing.T) {
	s := &fakeStore{}
	agg := newTestAggregator(t, s, nil)

	require.NoError(t, agg.UpdatePrivacySettings(context.Background(), "dev-1", models.PrivacySettings{IsPublic: false}))
	require.NotNil(t, s.publicSet)
	assert.False(t, *s.publicSet)
}

func TestUpdatePrivacySettings_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode apperrors.ErrorCode
	}{
		{"missing column is swallowed", schemaMissing("is_public"), ""},
		{"unknown profile", fmt.Errorf("update is_public: %w", store.ErrNotFound), apperrors.ErrCodeProfileNotFound},
		{"other failures are returned", errors.New("connection refused"), apperrors.ErrCodePrivacyUpdateFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeStore{errs: map[string]error{"UpdateIsPublic": tt.err}}
			agg := newTestAggregator(t, s, nil)

			err := agg.UpdatePrivacySettings(context.Background(), "dev-1", models.PrivacySettings{IsPublic: true})
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.AsStandardError(err).Code)
		})
	}
}

// ==========================================
// GetProfileByShareToken
// ==========================================

func TestGetProfileByShareToken(t *testing.T) {
	s := &fakeStore{shared: map[string]*models.Profile{
		"public":  {ID: "dev-1", FirstName: "Grace", IsPublic: true, Email: "grace@example.com"},
		"private": {ID: "dev-2", IsPublic: false},
	}}
	agg := newTestAggregator(t, s, nil)
	ctx := context.Background()

	p, err := agg.GetProfileByShareToken(ctx, "public")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "dev-1", p.ID)
	assert.Empty(t, p.Email)

	p, err = agg.GetProfileByShareToken(ctx, "private")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = agg.GetProfileByShareToken(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = agg.GetProfileByShareToken(ctx, "fallback-dev-1-1710504000")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestGetProfileByShareToken_SchemaMissingIsUnknown(t *testing.T) {
	s := &fakeStore{errs: map[string]error{"GetProfileByShareToken": schemaMissing("share_token")}}
	agg := newTestAggregator(t, s, nil)

	p, err := agg.GetProfileByShareToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestGetProfileByShareToken_LookupFails(t *testing.T) {
	s := &fakeStore{errs: map[string]error{"GetProfileByShareToken": errors.New("too many connections")}}
	agg := newTestAggregator(t, s, nil)

	p, err := agg.GetProfileByShareToken(context.Background(), "tok")
	require.Error(t, err)
	assert.Nil(t, p)
	assert.Equal(t, apperrors.ErrCodeShareTokenLookupFailed, apperrors.AsStandardError(err).Code)
}
