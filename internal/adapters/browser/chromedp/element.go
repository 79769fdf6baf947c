package chromedp_adapter

import (
	"context"
	"regexp"
	"strings"
	"time"

	"bds-price-service/internal/core/port"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// Селекторы неявных ARIA-ролей, которые нужны поиску поля ввода
var roleSelectors = map[string]string{
	"textbox": `input:not([type]), input[type="text"], input[type="search"], input[type="email"], textarea, [role="textbox"]`,
	"button":  `button, input[type="button"], input[type="submit"], [role="button"]`,
}

var keyCodes = map[string]string{
	"Enter":     kb.Enter,
	"ArrowDown": kb.ArrowDown,
	"ArrowUp":   kb.ArrowUp,
	"Escape":    kb.Escape,
	"Tab":       kb.Tab,
}

type element struct {
	page *page
	node *cdp.Node
}

func (e *element) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

func (e *element) Text(ctx context.Context) (string, error) {
	var text string
	if err := e.page.run(ctx, chromedp.TextContent(e.ids(), &text, chromedp.ByNodeID)); err != nil {
		return "", err
	}
	return text, nil
}

func (e *element) Fill(ctx context.Context, value string) error {
	actions := []chromedp.Action{
		chromedp.Focus(e.ids(), chromedp.ByNodeID),
		chromedp.SetValue(e.ids(), "", chromedp.ByNodeID),
	}
	if value != "" {
		actions = append(actions, chromedp.SendKeys(e.ids(), value, chromedp.ByNodeID))
	}
	return e.page.run(ctx, actions...)
}

func (e *element) Press(ctx context.Context, key string) error {
	code, ok := keyCodes[key]
	if !ok {
		code = key
	}
	return e.page.run(ctx, chromedp.SendKeys(e.ids(), code, chromedp.ByNodeID))
}

// WaitFor: узел уже получен из документа, поэтому attached выполняется сразу
func (e *element) WaitFor(ctx context.Context, state port.ElementState, timeout time.Duration) error {
	if state != port.StateVisible {
		return ctx.Err()
	}
	return e.page.runWithTimeout(ctx, timeout, chromedp.WaitVisible(e.ids(), chromedp.ByNodeID))
}

// IsVisible считает элемент видимым, если у него есть блочная модель
func (e *element) IsVisible(ctx context.Context) (bool, error) {
	visible := false
	err := e.page.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		model, err := dom.GetBoxModel().WithNodeID(e.node.NodeID).Do(ctx)
		if err != nil {
			return nil
		}
		visible = model != nil && model.Width > 0 && model.Height > 0
		return nil
	}))
	return visible, err
}

func filterByPlaceholder(nodes []*cdp.Node, pattern *regexp.Regexp) []*cdp.Node {
	var out []*cdp.Node
	for _, n := range nodes {
		if pattern == nil || pattern.MatchString(n.AttributeValue("placeholder")) {
			out = append(out, n)
		}
	}
	return out
}

// accessibleName - упрощенное вычисление имени: aria-label, placeholder, title
func accessibleName(n *cdp.Node) string {
	for _, attr := range []string{"aria-label", "placeholder", "title"} {
		if v := strings.TrimSpace(n.AttributeValue(attr)); v != "" {
			return v
		}
	}
	return ""
}

func filterByAccessibleName(nodes []*cdp.Node, name *regexp.Regexp) []*cdp.Node {
	var out []*cdp.Node
	for _, n := range nodes {
		if name == nil || name.MatchString(accessibleName(n)) {
			out = append(out, n)
		}
	}
	return out
}
