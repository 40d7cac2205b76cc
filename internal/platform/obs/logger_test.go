package obs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewLogger(&buf, "warn", "json")
	require.NoError(t, err)

	logger.Info().Msg("dropped")
	logger.Warn().Str("k", "v").Msg("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["message"])
	assert.Equal(t, "v", line["k"])
}

func TestNewLoggerRejectsUnknownInput(t *testing.T) {
	_, err := NewLogger(nil, "loud", "json")
	assert.Error(t, err)

	_, err = NewLogger(nil, "info", "xml")
	assert.Error(t, err)
}

func TestTimeLogsRequestIDAndError(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "debug", "json")
	require.NoError(t, err)

	ctx := logger.WithContext(WithRequestID(context.Background(), "abc"))

	opErr := errors.New("boom")
	Time(ctx, "packages.repo.Get")(&opErr)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "abc", line["req_id"])
	assert.Equal(t, "packages.repo.Get", line["op"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "warn", line["level"])
}
