package middleware

import (
	controller "eum/controller/Common"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// 限流中间件，如果没有可用令牌，直接拒绝请求
//
// rate：每秒生成的令牌数
//
// capacity：令牌桶大小
func RateLimit(rate float64, capacity int64) gin.HandlerFunc {
	bucket := ratelimit.NewBucketWithRate(rate, capacity)
	return func(ctx *gin.Context) {
		// 如果取得的令牌数量与总的令牌数不相等，说明令牌数不够，限流
		if bucket.TakeAvailable(1) != 1 {
			controller.ResponseError(ctx, controller.CodeServerBusy)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
