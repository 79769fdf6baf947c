package extraction

import (
	"context"
	"strings"

	"bds-price-service/internal/core/money"
	"bds-price-service/internal/core/port"
)

// labelStrategy ищет подпись "매물 최저가" и поднимается от нее
// не выше LabelAncestorDepth уровней до блока с ценой
func labelStrategy(ctx context.Context, in *Input) (int64, bool) {
	dom := in.DOM(ctx)
	if dom == nil {
		return 0, false
	}

	labels, err := dom.QueryText(ctx, in.Profile.LowestPriceLabel)
	if err != nil || len(labels) == 0 {
		return 0, false
	}

	current := labels[0]
	for depth := 0; depth < in.Profile.LabelAncestorDepth; depth++ {
		parent, err := current.Parent(ctx)
		if err != nil || parent == nil {
			return 0, false
		}

		prices, err := parent.Query(ctx, in.Profile.PriceAreaSelector)
		if err == nil && len(prices) > 0 {
			text := nodeText(ctx, prices[0])
			if text == "" || !money.HasUnitMarker(text) {
				return 0, false
			}
			return parsePositive(text)
		}
		current = parent
	}
	return 0, false
}

// priceAreaStrategy - первый видимый блок цены с 억 или 만
func priceAreaStrategy(ctx context.Context, in *Input) (int64, bool) {
	dom := in.DOM(ctx)
	if dom == nil {
		return 0, false
	}

	nodes, err := dom.Query(ctx, in.Profile.PriceAreaSelector)
	if err != nil {
		return 0, false
	}

	for _, n := range nodes {
		if visible, err := n.IsVisible(ctx); err != nil || !visible {
			continue
		}
		text := nodeText(ctx, n)
		if text == "" || !money.HasUnitMarker(text) {
			continue
		}
		if won, ok := parsePositive(text); ok {
			return won, true
		}
	}
	return 0, false
}

// genericStrategy перебирает запасные селекторы, не больше GenericLimit
// элементов на каждый. Текст с маркером 조 отбрасывается.
func genericStrategy(ctx context.Context, in *Input) (int64, bool) {
	dom := in.DOM(ctx)
	if dom == nil {
		return 0, false
	}

	for _, probe := range in.Profile.GenericProbes {
		nodes, err := queryProbe(ctx, dom, probe)
		if err != nil {
			continue
		}
		if len(nodes) > in.Profile.GenericLimit {
			nodes = nodes[:in.Profile.GenericLimit]
		}

		for _, n := range nodes {
			text := nodeText(ctx, n)
			if !strings.Contains(text, "억") || excluded(text, in.Profile.ExcludeMarker) {
				continue
			}
			if won, ok := parsePositive(text); ok {
				return won, true
			}
		}
	}
	return 0, false
}

func queryProbe(ctx context.Context, dom port.DOM, probe Probe) ([]port.Node, error) {
	if probe.Contains != "" {
		return dom.QueryContaining(ctx, probe.Selector, probe.Contains)
	}
	return dom.Query(ctx, probe.Selector)
}

func excluded(text, marker string) bool {
	return marker != "" && strings.Contains(text, marker)
}

func nodeText(ctx context.Context, n port.Node) string {
	text, err := n.Text(ctx)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func parsePositive(text string) (int64, bool) {
	won, err := money.ParseAmount(text)
	if err != nil || won <= 0 {
		return 0, false
	}
	return won, true
}
