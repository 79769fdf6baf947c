package extraction

import (
	"context"

	"bds-price-service/internal/contextkeys"
	"bds-price-service/internal/core/domain"
	"bds-price-service/internal/core/port"
)

// DOMSource лениво отдает DOM страницы. Вызывается не больше одного раза
// и только если JSON-стратегия ничего не нашла.
type DOMSource func(ctx context.Context) (port.DOM, error)

// Input - все, что видит одна стратегия
type Input struct {
	Responses []domain.CapturedResponse
	Tab       domain.TabKind
	Profile   Profile

	source  DOMSource
	dom     port.DOM
	domErr  error
	domDone bool
}

// DOM возвращает nil, если DOM недоступен
func (in *Input) DOM(ctx context.Context) port.DOM {
	if !in.domDone {
		in.domDone = true
		if in.source != nil {
			in.dom, in.domErr = in.source(ctx)
		}
	}
	if in.domErr != nil {
		return nil
	}
	return in.dom
}

// Strategy - одна ступень каскада. Ошибки внутри стратегии
// превращаются в ok == false и дальше не идут.
type Strategy struct {
	Name string
	Run  func(ctx context.Context, in *Input) (won int64, ok bool)
}

// DefaultStrategies - порядок каскада: JSON, подпись, блок цены, общие селекторы
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "json", Run: jsonStrategy},
		{Name: "label", Run: labelStrategy},
		{Name: "price_area", Run: priceAreaStrategy},
		{Name: "generic", Run: genericStrategy},
	}
}

// Engine применяет стратегии по порядку до первой положительной суммы
type Engine struct {
	profile    Profile
	strategies []Strategy
}

func NewEngine(profile Profile, strategies ...Strategy) *Engine {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Engine{profile: profile, strategies: strategies}
}

// Extract никогда не возвращает ошибку: "не нашли" - это ExtractedPrice{Found: false}
func (e *Engine) Extract(ctx context.Context, responses []domain.CapturedResponse, tab domain.TabKind, dom DOMSource) domain.ExtractedPrice {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PriceExtractionEngine",
		"tab":       tab.String(),
	})

	in := &Input{
		Responses: responses,
		Tab:       tab,
		Profile:   e.profile,
		source:    dom,
	}

	for _, s := range e.strategies {
		if ctx.Err() != nil {
			logger.Warn("Extraction interrupted by context", port.Fields{"strategy": s.Name})
			break
		}

		won, ok := s.Run(ctx, in)
		if ok && won > 0 {
			logger.Info("Price extracted", port.Fields{"strategy": s.Name, "won": won})
			return domain.ExtractedPrice{Won: won, Found: true, Strategy: s.Name}
		}
		logger.Debug("Strategy found nothing", port.Fields{"strategy": s.Name})
	}

	if in.domErr != nil {
		logger.Warn("DOM was not available for extraction", port.Fields{"error": in.domErr.Error()})
	}
	return domain.NotFound()
}
