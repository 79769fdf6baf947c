package playwright_adapter

import (
	"context"

	"bds-price-service/internal/core/port"

	"github.com/playwright-community/playwright-go"
)

// liveDOM выполняет запросы к живой странице через локаторы
type liveDOM struct {
	page playwright.Page
}

func (d *liveDOM) Query(ctx context.Context, selector string) ([]port.Node, error) {
	return nodesOf(ctx, d.page.Locator(selector))
}

func (d *liveDOM) QueryContaining(ctx context.Context, selector, text string) ([]port.Node, error) {
	return nodesOf(ctx, d.page.Locator(selector, playwright.PageLocatorOptions{HasText: text}))
}

func (d *liveDOM) QueryText(ctx context.Context, text string) ([]port.Node, error) {
	return nodesOf(ctx, d.page.GetByText(text))
}

type liveNode struct {
	loc playwright.Locator
}

func nodesOf(ctx context.Context, loc playwright.Locator) ([]port.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all, err := loc.All()
	if err != nil {
		return nil, err
	}
	out := make([]port.Node, 0, len(all))
	for _, l := range all {
		out = append(out, &liveNode{loc: l})
	}
	return out, nil
}

func (n *liveNode) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return n.loc.TextContent()
}

func (n *liveNode) IsVisible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return n.loc.IsVisible()
}

func (n *liveNode) Parent(ctx context.Context) (port.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hasParent, err := n.loc.Evaluate("el => el.parentElement !== null", nil)
	if err != nil {
		return nil, err
	}
	if ok, _ := hasParent.(bool); !ok {
		return nil, nil
	}
	return &liveNode{loc: n.loc.Locator("xpath=..")}, nil
}

func (n *liveNode) Query(ctx context.Context, selector string) ([]port.Node, error) {
	return nodesOf(ctx, n.loc.Locator(selector))
}
