package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, WarnLevel, ParseLevel("warn"))
	assert.Equal(t, InfoLevel, ParseLevel("verbose"))
}

func TestComponentAndRequestLoggers(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: DebugLevel, Output: &buf})
	defer Configure(Config{Level: InfoLevel, Pretty: true})

	ledger := Component("ledger")
	ledger.Info().Msg("credited")
	Ctx(WithRequestID(context.Background(), "req-1")).Warn().Msg("slow")
	Ctx(context.Background()).Debug().Msg("plain")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)

	var first, second, third map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))
	require.NoError(t, json.Unmarshal(lines[2], &third))

	assert.Equal(t, "ledger", first["component"])
	assert.Equal(t, "req-1", second["request_id"])
	assert.Equal(t, "warn", second["level"])
	assert.NotContains(t, third, "request_id")
}
