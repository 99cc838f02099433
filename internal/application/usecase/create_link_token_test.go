package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/K4nnonn/FlowSightFi/internal/application/apperr"
	"github.com/K4nnonn/FlowSightFi/internal/application/dto"
	"github.com/K4nnonn/FlowSightFi/internal/application/usecase"
	"github.com/K4nnonn/FlowSightFi/pkg/auth"
	"github.com/K4nnonn/FlowSightFi/pkg/openbanking"
	"github.com/K4nnonn/FlowSightFi/pkg/testutil"
)

func TestCreateLinkTokenUseCase_Execute(t *testing.T) {
	t.Run("returns the provider token with the configured scope", func(t *testing.T) {
		provider := newMockProvider()
		uc := usecase.NewCreateLinkTokenUseCase(provider, openbanking.DefaultPlaidConfig(), nil, fixedClock, testLogger())

		resp, err := uc.Execute(context.Background(), dto.CreateLinkTokenRequest{UserID: testutil.TestOwnerID})
		require.NoError(t, err)

		assert.Equal(t, testutil.TestLinkToken, resp.LinkToken)
		assert.Equal(t, testutil.TestRequestID, resp.RequestID)
		assert.Equal(t, testutil.TestOwnerID, resp.UserID)
		assert.False(t, resp.Expiration.IsZero())

		assert.Equal(t, 1, provider.linkCalls)
		assert.Equal(t, testutil.TestOwnerID, provider.lastLinkRequest.ClientUserID)
		assert.Equal(t, "FlowSightFI", provider.lastLinkRequest.ClientName)
		assert.Equal(t, []string{"transactions"}, provider.lastLinkRequest.Products)
		assert.Equal(t, []string{"US"}, provider.lastLinkRequest.CountryCodes)
		assert.Equal(t, "en", provider.lastLinkRequest.Language)
	})

	t.Run("provider failure is ProviderUnavailable and not retried", func(t *testing.T) {
		provider := newMockProvider()
		provider.linkErr = errProviderDown
		uc := usecase.NewCreateLinkTokenUseCase(provider, openbanking.DefaultPlaidConfig(), nil, fixedClock, testLogger())

		_, err := uc.Execute(context.Background(), dto.CreateLinkTokenRequest{})
		require.Error(t, err)
		assert.Equal(t, apperr.KindProviderUnavailable, apperr.KindOf(err))
		assert.Equal(t, 1, provider.linkCalls)
	})

	t.Run("anonymous callers get distinct owners", func(t *testing.T) {
		provider := newMockProvider()
		uc := usecase.NewCreateLinkTokenUseCase(provider, openbanking.DefaultPlaidConfig(), nil, fixedClock, testLogger())

		first, err := uc.Execute(context.Background(), dto.CreateLinkTokenRequest{})
		require.NoError(t, err)
		second, err := uc.Execute(context.Background(), dto.CreateLinkTokenRequest{})
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(first.UserID, "anon-"))
		assert.True(t, strings.HasPrefix(second.UserID, "anon-"))
		assert.NotEqual(t, first.UserID, second.UserID)
	})

	t.Run("authenticated subject wins over body user_id", func(t *testing.T) {
		provider := newMockProvider()
		uc := usecase.NewCreateLinkTokenUseCase(provider, openbanking.DefaultPlaidConfig(), nil, fixedClock, testLogger())

		ctx := auth.ContextWithClaims(context.Background(), &auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "jwt-subject"},
		})
		resp, err := uc.Execute(ctx, dto.CreateLinkTokenRequest{UserID: "body-user"})
		require.NoError(t, err)
		assert.Equal(t, "jwt-subject", resp.UserID)
		assert.Equal(t, "jwt-subject", provider.lastLinkRequest.ClientUserID)
	})
}
