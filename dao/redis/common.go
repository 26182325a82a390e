package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// keys
// 规范：
// Key + KeyName + Type + (PF)前缀
const (
	KeyLocalStorageHashPF = "eum:localstorage:" // parma: session_id, field: key, val: value
)

// 一个会话的 local storage 空闲这么久后被清除
const localStorageIdleExpire = 30 * 24 * time.Hour

var Nil = redis.Nil

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, redisTimeout)
}
