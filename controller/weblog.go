package controller

import (
	common "eum/controller/Common"
	"eum/internal/utils"
	"eum/models"

	"github.com/gin-gonic/gin"
)

// WebLogHandler 埋点上报接口
//
//	@Summary		埋点上报接口
//	@Tags			统计相关接口
//	@Accept			application/json
//	@Produce		application/json
//	@Param			object	body	models.ParamWebLog	true	"事件"
//	@Success		200	{object}	common.Response{data=common.ResponseWebLog}
//	@Router			/logs [post]
func WebLogHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}
	var params models.ParamWebLog
	if err := ctx.ShouldBindJSON(&params); err != nil {
		common.ResponseErrorWithMsg(ctx, common.CodeInvalidParam, utils.ParseToValidationError(err))
		return
	}
	l := sess.RecordWebLog(&params)
	common.ResponseSuccess(ctx, &common.ResponseWebLog{LogID: l.LogID})
}
