package usecase

import (
	"context"

	"bds-price-service/internal/contextkeys"
	"bds-price-service/internal/core/domain"
	"bds-price-service/internal/core/port"
)

// ProbeSiteUseCase проверяет доступность стартовой страницы без браузера
type ProbeSiteUseCase struct {
	probe    port.SiteProbePort
	entryURL string
}

func NewProbeSiteUseCase(probe port.SiteProbePort, settings CrawlSettings) *ProbeSiteUseCase {
	return &ProbeSiteUseCase{probe: probe, entryURL: settings.EntryURL()}
}

func (uc *ProbeSiteUseCase) Execute(ctx context.Context) (*domain.SiteProbe, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "ProbeSite",
		"url":      uc.entryURL,
	})

	result, err := uc.probe.Probe(ctx, uc.entryURL)
	if err != nil {
		logger.Error("Site probe failed", err, nil)
		return nil, err
	}

	logger.Info("Site probe finished", port.Fields{
		"status_code": result.StatusCode,
		"elapsed_ms":  result.ElapsedMs,
	})
	return result, nil
}
