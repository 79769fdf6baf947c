package htmldom

import (
	"context"
	"fmt"
	"io"
	"strings"

	"bds-price-service/internal/core/port"

	"github.com/PuerkitoBio/goquery"
)

// Document - снимок HTML-документа, реализующий port.DOM поверх goquery.
// Используется драйвером chromedp для чтения и тестами стратегий.
type Document struct {
	doc *goquery.Document
}

// NewDocument разбирает HTML из потока
func NewDocument(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("htmldom: failed to parse document: %w", err)
	}
	return &Document{doc: doc}, nil
}

// NewDocumentFromString - удобная обертка для готового HTML
func NewDocumentFromString(html string) (*Document, error) {
	return NewDocument(strings.NewReader(html))
}

// Title возвращает содержимое <title>
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

func (d *Document) Query(ctx context.Context, selector string) ([]port.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return toNodes(d.doc.Find(selector)), nil
}

func (d *Document) QueryContaining(ctx context.Context, selector, text string) ([]port.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return toNodes(d.doc.Find(selector).FilterFunction(containsText(text))), nil
}

// QueryText оставляет только те элементы, ни один потомок которых не содержит text
func (d *Document) QueryText(ctx context.Context, text string) ([]port.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches := containsText(text)
	innermost := d.doc.Find("body *").FilterFunction(func(i int, s *goquery.Selection) bool {
		return matches(i, s) && s.Children().FilterFunction(matches).Length() == 0
	})
	return toNodes(innermost), nil
}

func containsText(text string) func(int, *goquery.Selection) bool {
	return func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), text)
	}
}

func toNodes(sel *goquery.Selection) []port.Node {
	nodes := make([]port.Node, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, &Node{sel: s})
	})
	return nodes
}

// Node - один элемент снимка
type Node struct {
	sel *goquery.Selection
}

func (n *Node) Text(ctx context.Context) (string, error) {
	return n.sel.Text(), nil
}

// IsVisible - эвристика для статического снимка: элемент скрыт,
// если он или его предок скрыт атрибутом или inline-стилем
func (n *Node) IsVisible(ctx context.Context) (bool, error) {
	for s := n.sel; s.Length() > 0; s = s.Parent() {
		if hidden(s) {
			return false, nil
		}
	}
	return true, nil
}

func (n *Node) Parent(ctx context.Context) (port.Node, error) {
	parent := n.sel.Parent()
	if parent.Length() == 0 {
		return nil, nil
	}
	return &Node{sel: parent}, nil
}

func (n *Node) Query(ctx context.Context, selector string) ([]port.Node, error) {
	return toNodes(n.sel.Find(selector)), nil
}

var invisibleTags = map[string]bool{
	"head": true, "script": true, "style": true, "template": true, "noscript": true,
}

func hidden(s *goquery.Selection) bool {
	if invisibleTags[goquery.NodeName(s)] {
		return true
	}
	if _, ok := s.Attr("hidden"); ok {
		return true
	}
	if v, _ := s.Attr("aria-hidden"); v == "true" {
		return true
	}
	if v, _ := s.Attr("type"); goquery.NodeName(s) == "input" && v == "hidden" {
		return true
	}

	style, _ := s.Attr("style")
	style = strings.ReplaceAll(strings.ToLower(style), " ", "")
	return strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden")
}
