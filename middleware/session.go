package middleware

import (
	controller "eum/controller/Common"
	"eum/dao/api"
	"eum/logger"
	"eum/logic"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	HeaderSessionID = "X-Session-ID"
	CookieSessionID = "eum_sid"

	cookieMaxAge = 365 * 24 * 3600
)

// Session attaches the browser's session to the request, creating one on first
// use, and resolves who is logged in.
func Session(m *logic.SessionManager) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(HeaderSessionID)
		if id == "" {
			id, _ = ctx.Cookie(CookieSessionID)
		}

		sess, created, err := m.Obtain(id)
		if err != nil {
			controller.ResponseError(ctx, controller.CodeInternalErr)
			logger.ErrorWithStack(err)
			ctx.Abort()
			return
		}
		if created || sess.ID != id {
			ctx.SetSameSite(http.SameSiteLaxMode)
			ctx.SetCookie(CookieSessionID, sess.ID, cookieMaxAge, "/", "", false, true)
		}
		ctx.Header(HeaderSessionID, sess.ID)

		st, err := sess.Auth.Resolve(ctx.Request.Context(), ctx.GetHeader("Authorization"))
		if err != nil {
			logger.Debugf("middleware.Session: resolve auth of %s: %v", sess.ID, err)
			ctx.Set(logic.ContextAuthErrorKey, err)
		}
		// token 只跟随本次请求，同一会话的并发请求互不影响
		ctx.Request = ctx.Request.WithContext(api.ContextWithToken(ctx.Request.Context(), st.Token))

		ctx.Set(logic.ContextSessionKey, sess)
		ctx.Set(logic.ContextUserIDKey, st.UserID)
		ctx.Next()
	}
}
