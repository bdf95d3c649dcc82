package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("golf-api", "production", &buf)

	log.Info().Str("k", "v").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "golf-api", line["service"])
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "v", line["k"])
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("golf-api", "production", &buf)

	assert.Equal(t, &log.Logger, FromContext(context.Background()))

	scoped := zerolog.New(&buf).With().Str("request_id", "r1").Logger()
	ctx := scoped.WithContext(context.Background())
	FromContext(ctx).Info().Msg("scoped")

	assert.Contains(t, buf.String(), `"request_id":"r1"`)
}
