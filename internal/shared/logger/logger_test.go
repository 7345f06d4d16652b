package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"clubportal/internal/shared/contextkeys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoggerInterface_Contract(t *testing.T) {
	var _ Logger = NewLoggerWithBackend("logrus", "debug", "text")
	var _ Logger = NewLoggerWithConfig("info", "json")
	var _ Logger = NewZapLogger("debug", "console")
	var _ Logger = NewNopLogger()
}

func TestNewLoggerWithBackend(t *testing.T) {
	assert.IsType(t, &ZapLogger{}, NewLoggerWithBackend("zap", "info", "json"))
	assert.IsType(t, &ZapLogger{}, NewLoggerWithBackend("ZAP", "info", "json"))
	assert.IsType(t, &LogrusLogger{}, NewLoggerWithBackend("logrus", "info", "text"))
	assert.IsType(t, &LogrusLogger{}, NewLoggerWithBackend("unknown", "info", "text"))
}

func TestLogrusLogger_ContextFieldsInJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogrusLogger("debug", "json", &buf)

	ctx := context.WithValue(context.Background(), contextkeys.ProfileIDKey, "profile-1")
	ctx = context.WithValue(ctx, contextkeys.RequestIDKey, "req-9")
	log.WithContext(ctx).WithComponent("session").Info("hello")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "profile-1", line["profile_id"])
	assert.Equal(t, "req-9", line["request_id"])
	assert.Equal(t, "session", line["component"])
}

func TestZapLogger_FieldsInJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newZapLogger("info", "json", zapcore.AddSync(&buf))

	log.WithFields(map[string]interface{}{"event": "e1"}).Infof("posted %d", 3)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "posted 3", line["message"])
	assert.Equal(t, "e1", line["event"])
}

func TestZapLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := newZapLogger("warn", "json", zapcore.AddSync(&buf))
	log.Info("dropped")
	assert.Empty(t, buf.String())
	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestContextFields_IgnoresEmptyAndNonString(t *testing.T) {
	ctx := context.WithValue(context.Background(), contextkeys.ProfileIDKey, "")
	ctx = context.WithValue(ctx, contextkeys.UserIDKey, 12)
	assert.Empty(t, contextFields(ctx))
}
