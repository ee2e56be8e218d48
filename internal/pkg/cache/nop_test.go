package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gomembros/internal/pkg/cache"
)

func TestNopClient_AlwaysMisses(t *testing.T) {
	ctx := context.Background()
	c := cache.NewNop()

	assert.NoError(t, c.Set(ctx, "member:1", "{}", time.Minute))

	_, err := c.Get(ctx, "member:1")
	assert.Equal(t, cache.ErrCacheMiss, err)

	_, err = c.GetInt(ctx, "rate-limit:1.2.3.4")
	assert.Equal(t, cache.ErrCacheMiss, err)

	n, err := c.Incr(ctx, "rate-limit:1.2.3.4")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.NoError(t, c.Delete(ctx, "member:1"))
}
