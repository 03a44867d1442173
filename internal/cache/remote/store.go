// Package remote holds the shared external cache tier. The pipeline treats
// any get/set-with-TTL key/value service identically through the Store
// contract; Redis is the shipped implementation.
package remote

import (
	"context"
	"errors"
	"time"
)

// ErrMiss reports an absent key. Absence is a normal outcome, not a failure.
var ErrMiss = errors.New("shared cache: key absent")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
