package cache

import (
	"context"
	"time"
)

// NopClient é um Client sem armazenamento: toda leitura é miss e toda escrita é descartada.
// Serve a quem acessa o repositório sem Redis (a CLI, por exemplo).
type NopClient struct{}

// NewNop devolve um Client que nunca guarda nada.
func NewNop() Client {
	return NopClient{}
}

func (NopClient) Get(ctx context.Context, key string) (string, error) {
	return "", ErrCacheMiss
}

func (NopClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

func (NopClient) Delete(ctx context.Context, key string) error {
	return nil
}

func (NopClient) GetInt(ctx context.Context, key string) (int, error) {
	return 0, ErrCacheMiss
}

// Incr devolve 1, como um contador recém-criado.
func (NopClient) Incr(ctx context.Context, key string) (int64, error) {
	return 1, nil
}
