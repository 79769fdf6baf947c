package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"bds-price-service/internal/core/domain"
	"bds-price-service/internal/core/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPageTitle(t *testing.T) {
	rec := &recorder{}
	page := newFakePage(rec)
	launcher := &fakeLauncher{session: &fakeSession{rec: rec, page: page}}
	uc := usecase.NewFetchPageTitleUseCase(launcher, time.Second)

	title, err := uc.Execute(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "제목", title)
	assertCleanedUp(t, rec.list())
}

func TestFetchPageTitle_Errors(t *testing.T) {
	t.Run("empty url", func(t *testing.T) {
		uc := usecase.NewFetchPageTitleUseCase(&fakeLauncher{}, time.Second)
		_, err := uc.Execute(context.Background(), "  ")
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("session init keeps cause", func(t *testing.T) {
		cause := errors.New("no chromium")
		launcher := &fakeLauncher{err: errors.Join(domain.ErrSessionInit, cause)}
		uc := usecase.NewFetchPageTitleUseCase(launcher, time.Second)

		_, err := uc.Execute(context.Background(), "https://example.com")
		assert.ErrorIs(t, err, domain.ErrSessionInit)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("navigation failure closes session", func(t *testing.T) {
		rec := &recorder{}
		page := newFakePage(rec)
		page.navErrors["https://example.com"] = domain.ErrNavigationTimeout
		uc := usecase.NewFetchPageTitleUseCase(&fakeLauncher{session: &fakeSession{rec: rec, page: page}}, time.Second)

		_, err := uc.Execute(context.Background(), "https://example.com")
		assert.ErrorIs(t, err, domain.ErrNavigationTimeout)
		assertCleanedUp(t, rec.list())
	})
}

func TestResolveTabURLs(t *testing.T) {
	uc := usecase.NewResolveTabURLsUseCase(testBase)

	info, err := uc.Execute(context.Background(), "/map/realprice_map/7IOd7Jew66GcMTA=/N/A/2/price.ytp")
	require.NoError(t, err)
	assert.Equal(t, saleURL, info.Pair.SaleURL)
	assert.Equal(t, rentURL, info.Pair.RentURL)
	assert.Equal(t, domain.TabLease, info.CurrentTab)
	assert.Equal(t, saleURL, info.OppositeURL)
	assert.Equal(t, "생연로10", info.DecodedAddress)

	_, err = uc.Execute(context.Background(), "https://www.bdsplanet.com/main.ytp")
	assert.ErrorIs(t, err, domain.ErrURLPatternMismatch)

	_, err = uc.Execute(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestProbeSite(t *testing.T) {
	probe := &fakeProbe{result: &domain.SiteProbe{StatusCode: 200, Title: "부동산플래닛"}}
	uc := usecase.NewProbeSiteUseCase(probe, testSettings())

	got, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testBase+"/main.ytp", probe.gotURL)
	assert.Equal(t, 200, got.StatusCode)

	probe.err = errors.New("dial tcp: refused")
	_, err = uc.Execute(context.Background())
	assert.Error(t, err)
}
