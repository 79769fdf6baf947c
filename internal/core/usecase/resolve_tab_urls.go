package usecase

import (
	"context"
	"fmt"
	"strings"

	"bds-price-service/internal/contextkeys"
	"bds-price-service/internal/core/domain"
	"bds-price-service/internal/core/port"
	"bds-price-service/internal/core/urlpattern"
)

// ResolveTabURLsUseCase разбирает адрес страницы объекта без браузера
type ResolveTabURLsUseCase struct {
	baseURL string
}

func NewResolveTabURLsUseCase(baseURL string) *ResolveTabURLsUseCase {
	return &ResolveTabURLsUseCase{baseURL: baseURL}
}

func (uc *ResolveTabURLsUseCase) Execute(ctx context.Context, currentURL string) (*domain.ListingURLInfo, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "ResolveTabURLs",
	})

	if strings.TrimSpace(currentURL) == "" {
		return nil, fmt.Errorf("%w: currentUrl is required", domain.ErrInvalidArgument)
	}

	info, err := urlpattern.Analyze(currentURL, uc.baseURL)
	if err != nil {
		logger.Debug("URL does not match listing pattern", port.Fields{"url": currentURL})
		return nil, err
	}
	return info, nil
}
