package annolog

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestDefaultIsSilent(t *testing.T) {
	assert.Equal(t, zerolog.Disabled, Logger().GetLevel())
}

func TestSetLogger(t *testing.T) {
	defer SetLogger(zerolog.Nop())

	var buf bytes.Buffer
	SetLogger(New(&buf, "warn"))
	Logger().Info().Msg("hidden")
	Logger().Warn().Str("typeName", "FooMarker").Msg("skipped")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"typeName":"FooMarker"`)
	assert.Contains(t, out, `"level":"warn"`)
}

func TestNewUnknownLevel(t *testing.T) {
	l := New(&bytes.Buffer{}, "loud")
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
}
