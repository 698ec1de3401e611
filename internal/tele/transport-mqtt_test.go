package tele

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCtxTimeout(t *testing.T) {
	t.Parallel()

	now := time.Now()
	assert.Equal(t, 30*time.Second, ctxTimeout(context.Background(), 30*time.Second, now))

	ctx, cancel := context.WithDeadline(context.Background(), now.Add(10*time.Second))
	defer cancel()
	assert.Equal(t, 10*time.Second, ctxTimeout(ctx, 30*time.Second, now))
	assert.Equal(t, 5*time.Second, ctxTimeout(ctx, 5*time.Second, now))
	assert.True(t, ctxTimeout(ctx, 30*time.Second, now.Add(11*time.Second)) < 0)
}
