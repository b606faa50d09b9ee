package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetTraceID(t *testing.T) {
	t.Parallel()

	ctx := SetTraceID(context.Background())
	traceID := GetTraceID(ctx)

	require.Len(t, traceID, TraceIDLength*2)

	// Each request gets its own ID.
	other := GetTraceID(SetTraceID(context.Background()))
	assert.NotEqual(t, traceID, other)
}

func TestGetTraceIDMissing(t *testing.T) {
	t.Parallel()

	assert.Empty(t, GetTraceID(context.Background()))
}

func TestGenerateFallbackTraceID(t *testing.T) {
	t.Parallel()

	id := generateFallbackTraceID()
	assert.Len(t, id, TraceIDLength*2)
}

type selfValidating struct {
	ok bool
}

func (s selfValidating) Validate() error {
	if !s.ok {
		return assert.AnError
	}
	return nil
}

func TestValidateRequestPrefersValidateMethod(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateRequest(selfValidating{ok: true}))
	require.Error(t, ValidateRequest(selfValidating{ok: false}))
}

func TestValidateRequestFallsBackToTags(t *testing.T) {
	t.Parallel()

	type tagged struct {
		Email string `validate:"required,email"`
	}

	require.NoError(t, ValidateRequest(tagged{Email: "a@b.co"}))
	require.Error(t, ValidateRequest(tagged{Email: "nope"}))
}
