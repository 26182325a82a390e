package middleware

import (
	controller "eum/controller/Common"
	eum "eum/errors"
	"eum/logic"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// RequireAuth 需要登录的接口。必须放在 Session 之后
func RequireAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		value, exists := ctx.Get(logic.ContextSessionKey)
		sess, ok := value.(*logic.Session)
		if !exists || !ok {
			controller.ResponseError(ctx, controller.CodeNoSuchSession)
			ctx.Abort()
			return
		}
		if sess.Auth.State().Authenticated {
			ctx.Next()
			return
		}

		code := controller.CodeNeedLogin
		if v, exists := ctx.Get(logic.ContextAuthErrorKey); exists {
			if err, ok := v.(error); ok {
				switch {
				case errors.Is(err, eum.ErrExpiredToken):
					code = controller.CodeExpiredToken
				case errors.Is(err, eum.ErrInvalidToken):
					code = controller.CodeInvalidToken
				}
			}
		}
		controller.ResponseError(ctx, code)
		ctx.Abort()
	}
}
