package capture

import (
	"sort"
	"strings"
	"sync"

	"bds-price-service/internal/core/domain"
	"bds-price-service/internal/core/port"
)

// DefaultURLMarkers - подстроки URL, по которым ответ считается ответом с данными
var DefaultURLMarkers = []string{"realprice", "api", "data"}

// Filter решает, стоит ли сохранять сетевой ответ
type Filter struct {
	URLMarkers []string
}

// MatchURL проверяет URL ответа до чтения тела
func (f Filter) MatchURL(url string) bool {
	for _, marker := range f.URLMarkers {
		if marker != "" && strings.Contains(url, marker) {
			return true
		}
	}
	return false
}

// LooksJSON - тело похоже на JSON-объект или массив
func LooksJSON(body string) bool {
	trimmed := strings.TrimSpace(body)
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}

// Buffer - упорядоченный буфер перехваченных ответов одной сессии.
// Handle вызывается из горутин драйвера, Snapshot - из основного потока.
// Ответы хранятся в порядке получения (Seq), а не в порядке чтения тел.
type Buffer struct {
	mu     sync.Mutex
	items  []entry
	filter Filter
}

type entry struct {
	seq  uint64
	resp domain.CapturedResponse
}

func NewBuffer(filter Filter) *Buffer {
	if len(filter.URLMarkers) == 0 {
		filter.URLMarkers = DefaultURLMarkers
	}
	return &Buffer{filter: filter}
}

// Handle подходит как port.ResponseHandler
func (b *Buffer) Handle(resp port.NetworkResponse) {
	if resp == nil || !b.filter.MatchURL(resp.URL()) {
		return
	}

	body, err := resp.Body()
	if err != nil || !LooksJSON(body) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	seq := resp.Seq()
	i := sort.Search(len(b.items), func(i int) bool { return b.items[i].seq > seq })
	b.items = append(b.items, entry{})
	copy(b.items[i+1:], b.items[i:])
	b.items[i] = entry{seq: seq, resp: domain.CapturedResponse{URL: resp.URL(), Body: body}}
}

// Snapshot возвращает копию накопленного на текущий момент
func (b *Buffer) Snapshot() []domain.CapturedResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.CapturedResponse, 0, len(b.items))
	for _, e := range b.items {
		out = append(out, e.resp)
	}
	return out
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
