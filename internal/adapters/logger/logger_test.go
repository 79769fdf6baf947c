package logger_adapter

import (
	"bds-price-service/internal/core/port"
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedPost struct {
	tag  string
	data port.Fields
}

type fakeFluent struct {
	posts []recordedPost
}

func (f *fakeFluent) Post(tag string, message interface{}) error {
	f.posts = append(f.posts, recordedPost{tag: tag, data: message.(port.Fields)})
	return nil
}

func TestSlogAdapterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelDebug, IsJSON: true})

	logger.WithFields(port.Fields{"component": "test"}).Error("boom", errors.New("bad"), port.Fields{"tab": "sale"})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "boom", line["msg"])
	assert.Equal(t, "test", line["component"])
	assert.Equal(t, "sale", line["tab"])
	assert.Equal(t, "bad", line["error"])
}

func TestFluentAdapterRespectsLevel(t *testing.T) {
	client := &fakeFluent{}
	adapter, err := NewFluentLoggerAdapter(client, slog.LevelWarn)
	require.NoError(t, err)

	logger := adapter.WithFields(port.Fields{"service_name": "bds"})
	logger.Debug("skip", nil)
	logger.Info("skip", nil)
	logger.Warn("keep", port.Fields{"n": 1})
	logger.Error("keep too", errors.New("x"), nil)

	require.Len(t, client.posts, 2)
	assert.Equal(t, "warn", client.posts[0].tag)
	assert.Equal(t, "bds", client.posts[0].data["service_name"])
	assert.Equal(t, 1, client.posts[0].data["n"])
	assert.Equal(t, "x", client.posts[1].data["error"])
}

func TestFluentAdapterNilClient(t *testing.T) {
	_, err := NewFluentLoggerAdapter(nil, nil)
	assert.Error(t, err)
}

func TestMultiLoggerFansOut(t *testing.T) {
	a, b := &fakeFluent{}, &fakeFluent{}
	la, _ := NewFluentLoggerAdapter(a, slog.LevelDebug)
	lb, _ := NewFluentLoggerAdapter(b, slog.LevelDebug)

	multi, err := NewMultiloggerAdapter(la, nil, lb)
	require.NoError(t, err)

	multi.WithFields(port.Fields{"trace_id": "t1"}).Info("hello", nil)

	require.Len(t, a.posts, 1)
	require.Len(t, b.posts, 1)
	assert.Equal(t, "t1", b.posts[0].data["trace_id"])

	_, err = NewMultiloggerAdapter()
	assert.Error(t, err)
}
