package controller

import (
	common "eum/controller/Common"
	eum "eum/errors"
	"eum/internal/utils"
	"eum/logger"
	"eum/models"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// InfoListHandler 信息帖列表接口
//
//	@Summary		信息帖列表接口
//	@Tags			信息相关接口
//	@Produce		application/json
//	@Param			object	query	models.ParamInfoList	false	"查询参数"
//	@Success		200	{object}	common.Response{data=models.InformationPage}
//	@Router			/info [get]
func InfoListHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}

	params := models.ParamInfoList{Page: DefaultPageNum}
	if err := ctx.ShouldBindQuery(&params); err != nil {
		common.ResponseErrorWithMsg(ctx, common.CodeInvalidParam, utils.ParseToValidationError(err))
		return
	}

	page, err := sess.Info.FetchList(ctx.Request.Context(), params.Category, params.Page, params.Size)
	if err != nil {
		common.ResponseErrorWithMsg(ctx, common.CodeBackendErr, eum.MsgFetchInfoFailed)
		logger.Warnf("controller.InfoListHandler: %v", err)
		return
	}
	common.ResponseSuccess(ctx, page)
}

// InfoDetailHandler 信息帖详情接口
//
//	@Summary		信息帖详情接口
//	@Tags			信息相关接口
//	@Produce		application/json
//	@Param			id	path	int	true	"信息帖 id"
//	@Success		200	{object}	common.Response{data=models.InformationPost}
//	@Router			/info/{id} [get]
func InfoDetailHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	post, err := sess.Info.Get(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, eum.ErrNoSuchPost) {
			common.ResponseError(ctx, common.CodeNoSuchPost)
			return
		}
		common.ResponseErrorWithMsg(ctx, common.CodeBackendErr, eum.MsgFetchInfoFailed)
		logger.Warnf("controller.InfoDetailHandler: %v", err)
		return
	}
	common.ResponseSuccess(ctx, post)
}

// BookmarkToggleHandler 收藏/取消收藏接口
//
//	@Summary		收藏/取消收藏接口
//	@Description	后端失败时恢复原来的收藏状态
//	@Tags			信息相关接口
//	@Produce		application/json
//	@Param			Authorization	header	string	true	"Bearer 用户令牌"
//	@Param			id				path	int		true	"信息帖 id"
//	@Success		200	{object}	common.Response{data=common.ResponseBookmark}
//	@Router			/info/{id}/bookmark [post]
func BookmarkToggleHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	bookmarked, err := sess.Info.ToggleBookmark(ctx.Request.Context(), id)
	if err != nil {
		responseErr(ctx, err)
		return
	}
	common.ResponseSuccess(ctx, &common.ResponseBookmark{
		InformationID: id,
		Bookmarked:    bookmarked,
		BookmarkedIDs: sess.Info.Bookmarks(),
	})
}

// BookmarkListHandler 收藏列表接口
//
//	@Summary		收藏列表接口
//	@Tags			信息相关接口
//	@Produce		application/json
//	@Success		200	{object}	common.Response{data=[]int64}
//	@Router			/info/bookmarks [get]
func BookmarkListHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}
	ids, err := sess.Info.LoadBookmarks(ctx.Request.Context())
	if err != nil {
		responseErr(ctx, err)
		return
	}
	common.ResponseSuccess(ctx, ids)
}
