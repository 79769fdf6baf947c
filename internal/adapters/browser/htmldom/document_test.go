package htmldom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `<html><head><title> 부동산플래닛 </title></head><body>
<div class="card">
  <div class="label-row"><span class="label">매물 최저가</span></div>
  <div class="price-info-area"><div class="price-area"><span class="txt">3억8000만원</span></div></div>
</div>
<div class="price-info-area" style="display: none"><div class="price-area"><span class="txt">1억</span></div></div>
<p hidden>숨김 5억</p>
</body></html>`

func TestDocumentQueries(t *testing.T) {
	ctx := context.Background()
	doc, err := NewDocumentFromString(fixture)
	require.NoError(t, err)
	assert.Equal(t, "부동산플래닛", doc.Title())

	nodes, err := doc.Query(ctx, ".price-info-area .price-area .txt")
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	visible, _ := nodes[0].IsVisible(ctx)
	assert.True(t, visible)
	visible, _ = nodes[1].IsVisible(ctx)
	assert.False(t, visible)

	withEok, err := doc.QueryContaining(ctx, "p", "억")
	require.NoError(t, err)
	require.Len(t, withEok, 1)
	visible, _ = withEok[0].IsVisible(ctx)
	assert.False(t, visible)
}

func TestDocumentQueryTextReturnsInnermost(t *testing.T) {
	ctx := context.Background()
	doc, err := NewDocumentFromString(fixture)
	require.NoError(t, err)

	labels, err := doc.QueryText(ctx, "매물 최저가")
	require.NoError(t, err)
	require.Len(t, labels, 1)

	text, _ := labels[0].Text(ctx)
	assert.Equal(t, "매물 최저가", text)

	row, err := labels[0].Parent(ctx)
	require.NoError(t, err)
	card, err := row.Parent(ctx)
	require.NoError(t, err)

	prices, err := card.Query(ctx, ".price-info-area .price-area .txt")
	require.NoError(t, err)
	require.Len(t, prices, 1)
	text, _ = prices[0].Text(ctx)
	assert.Equal(t, "3억8000만원", text)
}

func TestDocumentCancelledContext(t *testing.T) {
	doc, err := NewDocumentFromString(fixture)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = doc.Query(ctx, "div")
	assert.Error(t, err)
}
