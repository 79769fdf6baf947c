package usecase

import (
	"context"
	"sync"

	"bds-price-service/internal/core/port"

	"golang.org/x/sync/semaphore"
)

// SessionPool ограничивает число одновременно открытых браузерных сессий.
// Один пул делят все сценарии, которым нужен браузер.
type SessionPool struct {
	launcher port.BrowserLauncherPort
	slots    *semaphore.Weighted
}

func NewSessionPool(launcher port.BrowserLauncherPort, maxSessions int64) *SessionPool {
	if maxSessions < 1 {
		maxSessions = 1
	}
	return &SessionPool{
		launcher: launcher,
		slots:    semaphore.NewWeighted(maxSessions),
	}
}

// Open ждет свободный слот и открывает сессию. Слот возвращается при Close сессии.
func (p *SessionPool) Open(ctx context.Context) (port.BrowserSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	session, err := p.launcher.Open(ctx)
	if err != nil {
		p.slots.Release(1)
		return nil, err
	}
	return &pooledSession{BrowserSession: session, release: func() { p.slots.Release(1) }}, nil
}

type pooledSession struct {
	port.BrowserSession
	release   func()
	closeOnce sync.Once
}

func (s *pooledSession) Close() {
	s.closeOnce.Do(func() {
		s.BrowserSession.Close()
		s.release()
	})
}
