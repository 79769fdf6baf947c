package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bds-price-service/internal/contextkeys"
	"bds-price-service/internal/core/domain"
	"bds-price-service/internal/core/port"
)

// FetchPageTitleUseCase - диагностика: открывает страницу и читает заголовок.
// В отличие от поиска цены, ошибки возвращаются вызывающему.
type FetchPageTitleUseCase struct {
	launcher          port.BrowserLauncherPort
	navigationTimeout time.Duration
}

func NewFetchPageTitleUseCase(launcher port.BrowserLauncherPort, navigationTimeout time.Duration) *FetchPageTitleUseCase {
	return &FetchPageTitleUseCase{
		launcher:          launcher,
		navigationTimeout: navigationTimeout,
	}
}

func (uc *FetchPageTitleUseCase) Execute(ctx context.Context, url string) (string, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "FetchPageTitle",
		"url":      url,
	})

	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("%w: url is required", domain.ErrInvalidArgument)
	}

	session, err := uc.launcher.Open(ctx)
	if err != nil {
		ucLogger.Error("Failed to open browser session", err, nil)
		return "", fmt.Errorf("could not fetch title: %w", err)
	}
	defer session.Close()

	page, err := session.NewPage(ctx)
	if err != nil {
		ucLogger.Error("Failed to open page", err, nil)
		return "", fmt.Errorf("could not fetch title: %w", err)
	}
	defer page.Close()

	err = page.Navigate(ctx, url, port.NavigateOptions{
		WaitUntil: port.WaitDOMContentLoaded,
		Timeout:   uc.navigationTimeout,
	})
	if err != nil {
		ucLogger.Error("Failed to navigate", err, nil)
		return "", fmt.Errorf("could not fetch title: %w", err)
	}

	title, err := page.Title(ctx)
	if err != nil {
		ucLogger.Error("Failed to read title", err, nil)
		return "", fmt.Errorf("could not fetch title: %w", err)
	}

	ucLogger.Info("Page title fetched", port.Fields{"title": title})
	return title, nil
}
