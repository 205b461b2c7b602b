package fingerprint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRerunContext(t *testing.T) {
	t.Run("Should default to false when nothing was stored", func(t *testing.T) {
		assert.False(t, RerunFromContext(context.Background()))
	})

	t.Run("Should round-trip a forced rerun through the context", func(t *testing.T) {
		ctx := ContextWithRerun(context.Background(), true)
		assert.True(t, RerunFromContext(ctx))
	})
}
