package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	l := New("test-svc", &buf, time.UTC)

	ctx := WithRequestID(context.Background(), "rid-1")
	l.Error(ctx, "commit failed", errors.New("boom"), Fields{"file_index": 2})

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "error", got["level"])
	assert.Equal(t, "test-svc", got["service"])
	assert.Equal(t, "rid-1", got["request_id"])
	assert.Equal(t, "commit failed", got["msg"])
	assert.Equal(t, "boom", got["error"])
	assert.NotEmpty(t, got["ts"])
	assert.Equal(t, float64(2), got["fields"].(map[string]any)["file_index"])
}

func TestLogger_OmitsEmptyOptionalFields(t *testing.T) {
	var buf bytes.Buffer
	l := New("test-svc", &buf, nil)

	l.Info(context.Background(), "started")

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.NotContains(t, got, "request_id")
	assert.NotContains(t, got, "error")
	assert.NotContains(t, got, "fields")
}

func TestInit_ReplacesDefault(t *testing.T) {
	orig := Default()
	defer func() { defaultLogger = orig }()

	var buf bytes.Buffer
	Init("svc", &buf, time.UTC)
	Warn(context.Background(), "careful")

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"msg":"careful"`)
}

func TestRequestIDFrom(t *testing.T) {
	assert.Equal(t, "abc", RequestIDFrom(WithRequestID(context.Background(), "abc")))
	assert.Equal(t, "", RequestIDFrom(context.Background()))
	//nolint:staticcheck // nil context is tolerated
	assert.Equal(t, "", RequestIDFrom(nil))
}
