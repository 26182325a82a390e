package utils

import (
	"context"
	eum "eum/errors"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// SfDoWithTimeout runs fn once per key among concurrent callers and waits for the
// shared result until timeout or ctx is done. shared reports whether the result
// was produced for another caller as well.
//
// key 在 fn 返回前一直有效，之后到达的相同请求都会加入同一次调用；
// 只有等待超时的调用方才 forget key，避免后来者继续等待一个卡住的调用
func SfDoWithTimeout(ctx context.Context, sfGrp *singleflight.Group, key string, timeout time.Duration, fn func() (any, error)) (v any, shared bool, err error) {
	ch := sfGrp.DoChan(key, fn)

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case res := <-ch:
		return res.Val, res.Shared, errors.Wrap(res.Err, "utils:SfDoWithTimeout: fn")
	case <-timer.C:
		sfGrp.Forget(key)
		return nil, false, errors.Wrap(eum.ErrTimeout, "utils:SfDoWithTimeout: fn")
	case <-ctx.Done():
		return nil, false, errors.Wrap(eum.ErrTimeout, "utils:SfDoWithTimeout: "+ctx.Err().Error())
	}
}
