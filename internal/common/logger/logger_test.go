package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMapToZapFields_SortedByKey(t *testing.T) {
	fields := mapToZapFields(map[string]interface{}{
		"score":       712,
		"applicantId": "app-1",
		"decision":    "APPROVED",
	})

	require.Len(t, fields, 3)
	assert.Equal(t, "applicantId", fields[0].Key)
	assert.Equal(t, "decision", fields[1].Key)
	assert.Equal(t, "score", fields[2].Key)
	assert.Nil(t, mapToZapFields(nil))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestZapAdapter_CarriesContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).
		With(map[string]interface{}{"taskType": "analyze-loan-application"}).
		WithError(errors.New("boom"))

	log.Warn("job failed", map[string]interface{}{"jobKey": int64(42)})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "job failed", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "analyze-loan-application", ctx["taskType"])
	assert.Equal(t, "boom", ctx["error"])
	assert.Equal(t, int64(42), ctx["jobKey"])
}
