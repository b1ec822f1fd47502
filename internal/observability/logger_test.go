// internal/observability/logger_test.go
package observability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/semact-dev/semact-cli/internal/config"
)

// memSink is a WriteSyncer backed by a string builder.
type memSink struct {
	strings.Builder
}

func (s *memSink) Sync() error { return nil }

func TestInitialize_WritesThroughConsoleSink(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &memSink{}
	Initialize(config.LoggerConfig{Level: "debug", Format: "console", ServiceName: "semact-test"}, zapcore.AddSync(sink))

	logger := GetLogger()
	require.NotNil(t, logger)
	logger.Info("pipeline ready")

	out := sink.String()
	assert.Contains(t, out, "pipeline ready")
	assert.Contains(t, out, "semact-test")
}

func TestInitialize_RespectsLevel(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &memSink{}
	Initialize(config.LoggerConfig{Level: "warn", Format: "json", ServiceName: "semact-test"}, zapcore.AddSync(sink))

	logger := GetLogger()
	logger.Info("quiet please")
	logger.Warn("heard this one")

	out := sink.String()
	assert.NotContains(t, out, "quiet please")
	assert.Contains(t, out, "heard this one")
}

// TestInitialize_IsIdempotent: the second initialization is ignored, the
// first sink keeps receiving output.
func TestInitialize_IsIdempotent(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	first := &memSink{}
	second := &memSink{}
	Initialize(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "one"}, zapcore.AddSync(first))
	Initialize(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "two"}, zapcore.AddSync(second))

	GetLogger().Info("routed")

	assert.Contains(t, first.String(), "routed")
	assert.Empty(t, second.String())
}

func TestGetLogger_FallbackBeforeInit(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	require.NotNil(t, logger)
	// Must be safe to use without initialization.
	logger.Debug("no panic")
}

func TestInitialize_BadLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &memSink{}
	Initialize(config.LoggerConfig{Level: "shouty", Format: "console", ServiceName: "semact-test"}, zapcore.AddSync(sink))

	GetLogger().Debug("below info")
	GetLogger().Info("at info")

	out := sink.String()
	assert.NotContains(t, out, "below info")
	assert.Contains(t, out, "at info")
}
