package controller

import (
	common "eum/controller/Common"
	eum "eum/errors"
	"eum/internal/utils"
	"eum/models"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// SessionHandler 会话信息接口
//
//	@Summary		会话信息接口
//	@Description	季节主题、登录状态和收藏
//	@Tags			会话相关接口
//	@Produce		application/json
//	@Success		200	{object}	common.Response{data=models.SessionDTO}
//	@Router			/session [get]
func SessionHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}
	dto, err := sess.DTO(ctx.Request.Context())
	if err != nil {
		responseErr(ctx, err)
		return
	}
	common.ResponseSuccess(ctx, dto)
}

// SeasonHandler 修改季节主题接口
//
//	@Summary		修改季节主题接口
//	@Tags			会话相关接口
//	@Accept			application/json
//	@Produce		application/json
//	@Param			object	body	models.ParamSeason	true	"spring | hanji | professional"
//	@Success		200	{object}	common.Response
//	@Router			/session/season [put]
func SeasonHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}
	var params models.ParamSeason
	if err := ctx.ShouldBindJSON(&params); err != nil {
		common.ResponseErrorWithMsg(ctx, common.CodeInvalidParam, utils.ParseToValidationError(err))
		return
	}
	if err := sess.SetSeason(ctx.Request.Context(), params.Season); err != nil {
		responseErr(ctx, err)
		return
	}
	common.ResponseSuccess(ctx, nil)
}

// LoginHandler 保存登录令牌接口
//
//	@Summary		保存登录令牌接口
//	@Description	保存后端签发的令牌，之后的请求不带 Authorization 也能识别用户
//	@Tags			会话相关接口
//	@Accept			application/json
//	@Produce		application/json
//	@Param			object	body	models.ParamLogin	true	"令牌"
//	@Success		200	{object}	common.Response{data=models.AuthState}
//	@Router			/session/auth [put]
func LoginHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}
	var params models.ParamLogin
	if err := ctx.ShouldBindJSON(&params); err != nil {
		common.ResponseErrorWithMsg(ctx, common.CodeInvalidParam, utils.ParseToValidationError(err))
		return
	}
	st, err := sess.Auth.Login(ctx.Request.Context(), params.Token)
	if err != nil {
		switch {
		case errors.Is(err, eum.ErrExpiredToken):
			common.ResponseError(ctx, common.CodeExpiredToken)
		case errors.Is(err, eum.ErrInvalidToken):
			common.ResponseError(ctx, common.CodeInvalidToken)
		default:
			responseErr(ctx, err)
		}
		return
	}
	common.ResponseSuccess(ctx, st)
}

// LogoutHandler 退出登录接口
//
//	@Summary		退出登录接口
//	@Tags			会话相关接口
//	@Produce		application/json
//	@Success		200	{object}	common.Response
//	@Router			/session/auth [delete]
func LogoutHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}
	if err := sess.Auth.Logout(ctx.Request.Context()); err != nil {
		responseErr(ctx, err)
		return
	}
	common.ResponseSuccess(ctx, nil)
}

func parseScope(ctx *gin.Context) (models.SearchScope, bool) {
	scope := models.SearchScope(ctx.Param("scope"))
	if scope != models.ScopeProBoard && scope != models.ScopeProGroup {
		common.ResponseError(ctx, common.CodeInvalidParam)
		return "", false
	}
	return scope, true
}

// SearchStateHandler 读取保存的搜索条件接口
//
//	@Summary		读取保存的搜索条件接口
//	@Tags			会话相关接口
//	@Produce		application/json
//	@Param			scope	path	string	true	"proBoardSearch | proGroupSearch"
//	@Success		200	{object}	common.Response{data=models.SearchState}
//	@Router			/session/search/{scope} [get]
func SearchStateHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}
	scope, ok := parseScope(ctx)
	if !ok {
		return
	}
	st, err := sess.Posts.LoadSearchState(ctx.Request.Context(), scope)
	if err != nil {
		responseErr(ctx, err)
		return
	}
	common.ResponseSuccess(ctx, st)
}

// SaveSearchStateHandler 保存搜索条件接口
//
//	@Summary		保存搜索条件接口
//	@Tags			会话相关接口
//	@Accept			application/json
//	@Produce		application/json
//	@Param			scope	path	string				true	"proBoardSearch | proGroupSearch"
//	@Param			object	body	models.SearchState	true	"搜索条件"
//	@Success		200	{object}	common.Response
//	@Router			/session/search/{scope} [put]
func SaveSearchStateHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}
	scope, ok := parseScope(ctx)
	if !ok {
		return
	}
	var st models.SearchState
	if err := ctx.ShouldBindJSON(&st); err != nil {
		common.ResponseErrorWithMsg(ctx, common.CodeInvalidParam, utils.ParseToValidationError(err))
		return
	}
	if err := sess.Posts.PutSearchState(ctx.Request.Context(), scope, &st); err != nil {
		responseErr(ctx, err)
		return
	}
	common.ResponseSuccess(ctx, nil)
}
