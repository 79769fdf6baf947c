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

func TestSessionPool_LimitsOpenSessions(t *testing.T) {
	rec := &recorder{}
	launcher := &fakeLauncher{session: &fakeSession{rec: rec, page: newFakePage(rec)}}
	pool := usecase.NewSessionPool(launcher, 1)

	first, err := pool.Open(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = pool.Open(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, launcher.opened)

	first.Close()
	first.Close()

	second, err := pool.Open(context.Background())
	require.NoError(t, err)
	second.Close()
	assert.Equal(t, 2, launcher.opened)
}

func TestSessionPool_ReleasesSlotOnLaunchFailure(t *testing.T) {
	launcher := &fakeLauncher{err: errors.Join(domain.ErrSessionInit, errors.New("no chromium"))}
	pool := usecase.NewSessionPool(launcher, 1)

	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_, err := pool.Open(ctx)
		cancel()
		assert.ErrorIs(t, err, domain.ErrSessionInit)
	}
	assert.Equal(t, 2, launcher.opened)
}

// Диагностика заголовка и поиск цены делят один лимит
func TestSessionPool_SharedByPageTitle(t *testing.T) {
	rec := &recorder{}
	launcher := &fakeLauncher{session: &fakeSession{rec: rec, page: newFakePage(rec)}}
	pool := usecase.NewSessionPool(launcher, 1)

	held, err := pool.Open(context.Background())
	require.NoError(t, err)

	title := usecase.NewFetchPageTitleUseCase(pool, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = title.Execute(ctx, "https://example.com")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	held.Close()
	got, err := title.Execute(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "제목", got)
}
