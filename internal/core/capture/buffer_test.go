package capture

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResponse struct {
	seq     uint64
	url     string
	body    string
	err     error
	touched bool
}

func (r *fakeResponse) Seq() uint64 { return r.seq }

func (r *fakeResponse) URL() string { return r.url }

func (r *fakeResponse) Body() (string, error) {
	r.touched = true
	return r.body, r.err
}

func TestBufferFiltersByURLAndBody(t *testing.T) {
	buf := NewBuffer(Filter{})

	image := &fakeResponse{url: "https://cdn.example.com/logo.png", body: "{}"}
	buf.Handle(image)
	assert.False(t, image.touched, "body must not be read for non data urls")

	buf.Handle(&fakeResponse{seq: 1, url: "https://www.bdsplanet.com/api/realprice/list", body: `  {"a":1}`})
	buf.Handle(&fakeResponse{seq: 2, url: "https://www.bdsplanet.com/data/x", body: `<html></html>`})
	buf.Handle(&fakeResponse{seq: 3, url: "https://www.bdsplanet.com/api/y", body: `[1,2]`})
	buf.Handle(&fakeResponse{seq: 4, url: "https://www.bdsplanet.com/api/z", err: errors.New("gone")})
	buf.Handle(nil)

	got := buf.Snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, "https://www.bdsplanet.com/api/realprice/list", got[0].URL)
	assert.Equal(t, `[1,2]`, got[1].Body)
}

func TestBufferCustomMarkers(t *testing.T) {
	buf := NewBuffer(Filter{URLMarkers: []string{"ytp"}})
	buf.Handle(&fakeResponse{url: "https://x/api/list", body: "{}"})
	buf.Handle(&fakeResponse{url: "https://x/main.ytp", body: "{}"})
	assert.Equal(t, 1, buf.Len())
}

func TestBufferConcurrentAppend(t *testing.T) {
	buf := NewBuffer(Filter{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			buf.Handle(&fakeResponse{seq: uint64(i), url: fmt.Sprintf("https://x/api/%d", i), body: "{}"})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, buf.Len())
	snap := buf.Snapshot()
	snap[0].Body = "changed"
	assert.Equal(t, "{}", buf.Snapshot()[0].Body)
}

// Тело раннего ответа может дочитаться позже тела следующего
func TestBufferKeepsArrivalOrder(t *testing.T) {
	buf := NewBuffer(Filter{})

	buf.Handle(&fakeResponse{seq: 3, url: "https://x/api/third", body: "{}"})
	buf.Handle(&fakeResponse{seq: 1, url: "https://x/api/first", body: "{}"})
	buf.Handle(&fakeResponse{seq: 2, url: "https://x/api/second", body: "[]"})

	got := buf.Snapshot()
	require.Len(t, got, 3)
	assert.Equal(t, "https://x/api/first", got[0].URL)
	assert.Equal(t, "https://x/api/second", got[1].URL)
	assert.Equal(t, "https://x/api/third", got[2].URL)
}

func TestBufferConcurrentArrivalOrder(t *testing.T) {
	buf := NewBuffer(Filter{})

	var wg sync.WaitGroup
	for i := 20; i > 0; i-- {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			buf.Handle(&fakeResponse{seq: uint64(i), url: fmt.Sprintf("https://x/api/%02d", i), body: "{}"})
		}(i)
	}
	wg.Wait()

	got := buf.Snapshot()
	require.Len(t, got, 20)
	for i, r := range got {
		assert.Equal(t, fmt.Sprintf("https://x/api/%02d", i+1), r.URL)
	}
}
