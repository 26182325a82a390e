package controller

import (
	common "eum/controller/Common"
	eum "eum/errors"
	"eum/logger"
	"eum/logic"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

func getSession(ctx *gin.Context) (*logic.Session, bool) {
	value, exists := ctx.Get(logic.ContextSessionKey)
	if !exists {
		common.ResponseError(ctx, common.CodeNoSuchSession)
		logger.Errorf("controller.getSession: no session in context for %s", ctx.Request.URL.Path)
		return nil, false
	}
	sess, ok := value.(*logic.Session)
	if !ok {
		common.ResponseError(ctx, common.CodeInternalErr)
		logger.Errorf("controller.getSession: convert session from context failed")
		return nil, false
	}
	return sess, true
}

func parseID(ctx *gin.Context, name string) (int64, bool) {
	value, exists := ctx.Params.Get(name)
	if !exists {
		common.ResponseError(ctx, common.CodeInvalidParam)
		return 0, false
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		common.ResponseError(ctx, common.CodeInvalidParam)
		return 0, false
	}
	return id, true
}

// responseErr maps the error of a logic call onto a business code.
func responseErr(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, eum.ErrNoSuchPost), errors.Is(err, eum.ErrNotFound):
		common.ResponseError(ctx, common.CodeNoSuchPost)
	case errors.Is(err, eum.ErrTimeout):
		common.ResponseError(ctx, common.CodeTimeOut)
	case errors.Is(err, eum.ErrUnauthorized):
		common.ResponseError(ctx, common.CodeForbidden)
	case errors.Is(err, eum.ErrInvalidParam):
		common.ResponseError(ctx, common.CodeInvalidParam)
	case errors.Is(err, eum.ErrBackend):
		common.ResponseError(ctx, common.CodeBackendErr)
		logger.Warnf("%v", err)
	default:
		common.ResponseError(ctx, common.CodeInternalErr)
		logger.ErrorWithStack(err)
	}
}
