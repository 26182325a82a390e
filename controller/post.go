package controller

import (
	"encoding/json"
	common "eum/controller/Common"
	"eum/dao/api"
	eum "eum/errors"
	"eum/internal/utils"
	"eum/logger"
	"eum/logic"
	"eum/models"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/pkg/errors"
)

const (
	DefaultPageNum = 1
	DefaultHotSize = 10

	refreshLanguage = "language"
)

// PostListHandler 帖子列表接口
//
//	@Summary		帖子列表接口
//	@Description	按分类、类型、地区、标签筛选帖子列表；5 秒内相同的请求直接走缓存
//	@Tags			帖子相关接口
//	@Produce		application/json
//	@Param			X-Session-ID	header	string				false	"会话 id"
//	@Param			object			query	models.PostFilter	false	"查询参数"
//	@Param			refresh			query	string				false	"language 表示切换语言后的刷新"
//	@Success		200	{object}	common.Response{data=common.ResponsePostList}
//	@Router			/posts [get]
func PostListHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}

	filter := models.PostFilter{Page: DefaultPageNum}
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		common.ResponseErrorWithMsg(ctx, common.CodeInvalidParam, utils.ParseToValidationError(err))
		return
	}
	opts := logic.FetchOptions{LanguageRefresh: ctx.Query("refresh") == refreshLanguage}

	page, err := sess.Posts.FetchPosts(ctx.Request.Context(), filter, opts)
	if err != nil {
		// 列表清空，页面显示通用的错误提示
		common.ResponseErrorWithData(ctx, common.CodeBackendErr, eum.MsgFetchPostsFailed, sess.Posts.State())
		logger.Warnf("controller.PostListHandler: %v", err)
		return
	}
	common.ResponseSuccess(ctx, &common.ResponsePostList{PostPage: page, State: sess.Posts.State()})
}

// PostStateHandler 当前列表状态接口
//
//	@Summary		当前列表状态接口
//	@Tags			帖子相关接口
//	@Produce		application/json
//	@Success		200	{object}	common.Response{data=models.StoreState}
//	@Router			/posts/state [get]
func PostStateHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}
	common.ResponseSuccess(ctx, sess.Posts.State())
}

// PostSearchHandler 帖子搜索接口
//
//	@Summary		帖子搜索接口
//	@Description	关键字为空时等同于列表接口；后端不可用时用已经看过的帖子检索
//	@Tags			帖子相关接口
//	@Produce		application/json
//	@Param			object	query	models.ParamSearch	false	"查询参数"
//	@Success		200	{object}	common.Response{data=common.ResponsePostList}
//	@Router			/posts/search [get]
func PostSearchHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}

	params := &models.ParamSearch{PostFilter: models.PostFilter{Page: DefaultPageNum}}
	if err := ctx.ShouldBindQuery(params); err != nil {
		common.ResponseErrorWithMsg(ctx, common.CodeInvalidParam, utils.ParseToValidationError(err))
		return
	}
	// 拒绝服务
	if params.Page*params.Size >= 1e4 {
		common.ResponseErrorWithMsg(ctx, common.CodeInvalidParam, "Too much data requested")
		return
	}

	page, err := sess.Posts.SearchPosts(ctx.Request.Context(), params.Keyword, params.SearchType, params.PostFilter)
	if err != nil {
		msg := eum.MsgSearchPostsFailed
		if utils.IsBlank(params.Keyword) {
			msg = eum.MsgFetchPostsFailed
		}
		common.ResponseErrorWithData(ctx, common.CodeBackendErr, msg, sess.Posts.State())
		logger.Warnf("controller.PostSearchHandler: %v", err)
		return
	}

	if !utils.IsBlank(params.Keyword) {
		scope := logic.SearchScopeOf(params.PostType)
		if err := sess.Posts.SaveSearchState(ctx.Request.Context(), scope); err != nil {
			logger.Warnf("controller.PostSearchHandler: SaveSearchState: %v", err)
		}
	}
	common.ResponseSuccess(ctx, &common.ResponsePostList{PostPage: page, State: sess.Posts.State()})
}

// PostClearSearchHandler 退出搜索接口
//
//	@Summary		退出搜索接口
//	@Tags			帖子相关接口
//	@Produce		application/json
//	@Success		200	{object}	common.Response{data=models.StoreState}
//	@Router			/posts/search [delete]
func PostClearSearchHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}
	sess.Posts.ClearSearch()
	common.ResponseSuccess(ctx, sess.Posts.State())
}

// PostDetailHandler 获取帖子详情接口
//
//	@Summary		获取帖子详情接口
//	@Tags			帖子相关接口
//	@Produce		application/json
//	@Param			Authorization	header	string	false	"Bearer 用户令牌"
//	@Param			id				path	int		true	"帖子 id"
//	@Success		200	{object}	common.Response{data=common.ResponsePostDetail}
//	@Router			/posts/{id} [get]
func PostDetailHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}
	postID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	post, err := sess.Community.GetPost(ctx.Request.Context(), postID)
	if err != nil {
		responseErr(ctx, err)
		return
	}
	needRefresh, err := sess.Community.ConsumeNeedRefresh(ctx.Request.Context())
	if err != nil {
		logger.Warnf("controller.PostDetailHandler: ConsumeNeedRefresh: %v", err)
	}
	common.ResponseSuccess(ctx, &common.ResponsePostDetail{Post: post, NeedRefreshMenu: needRefresh})
}

// PostRecommendationHandler 推荐帖子接口
//
//	@Summary		推荐帖子接口
//	@Tags			帖子相关接口
//	@Produce		application/json
//	@Param			id	path	int	true	"帖子 id"
//	@Success		200	{object}	common.Response{data=[]models.PostSummary}
//	@Router			/posts/{id}/recommendations [get]
func PostRecommendationHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}
	postID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	list, err := sess.Community.GetRecommendations(ctx.Request.Context(), postID)
	if err != nil {
		responseErr(ctx, err)
		return
	}
	common.ResponseSuccess(ctx, list)
}

// bindPostForm reads the post either from a JSON body or from a multipart form
// with a JSON "post" part next to the attachments.
func bindPostForm(ctx *gin.Context, params any) ([]api.FileUpload, func(), error) {
	if !strings.HasPrefix(ctx.ContentType(), "multipart/") {
		return nil, func() {}, ctx.ShouldBindJSON(params)
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		return nil, func() {}, errors.Wrap(eum.ErrInvalidParam, err.Error())
	}
	raw, err := postPart(form)
	if err != nil {
		return nil, func() {}, err
	}
	if err := json.Unmarshal(raw, params); err != nil {
		return nil, func() {}, errors.Wrap(eum.ErrInvalidParam, err.Error())
	}
	if err := binding.Validator.ValidateStruct(params); err != nil {
		return nil, func() {}, err
	}

	files := make([]api.FileUpload, 0, len(form.File["files"]))
	closers := make([]io.Closer, 0, len(form.File["files"]))
	release := func() {
		for _, c := range closers {
			c.Close()
		}
	}
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			release()
			return nil, func() {}, errors.Wrap(err, "controller:bindPostForm: Open")
		}
		closers = append(closers, f)
		files = append(files, api.FileUpload{Name: fh.Filename, Reader: f})
	}
	return files, release, nil
}

func postPart(form *multipart.Form) ([]byte, error) {
	if v := form.Value["post"]; len(v) > 0 {
		return []byte(v[0]), nil
	}
	// 前端用 Blob 发送时 post 是一个文件
	if fhs := form.File["post"]; len(fhs) > 0 {
		f, err := fhs[0].Open()
		if err != nil {
			return nil, errors.Wrap(err, "controller:postPart: Open")
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return nil, errors.Wrap(eum.ErrInvalidParam, "missing post part")
}

func responseBindErr(ctx *gin.Context, err error) {
	if errors.Is(err, eum.ErrInvalidParam) {
		common.ResponseErrorWithMsg(ctx, common.CodeInvalidParam, errors.Cause(err).Error())
		return
	}
	common.ResponseErrorWithMsg(ctx, common.CodeInvalidParam, utils.ParseToValidationError(err))
}

// CreatePostHandler 创建帖子接口
//
//	@Summary		创建帖子接口
//	@Description	JSON 或 multipart(post + files)
//	@Tags			帖子相关接口
//	@Accept			application/json
//	@Produce		application/json
//	@Param			Authorization	header	string					true	"Bearer 用户令牌"
//	@Param			object			body	models.ParamCreatePost	true	"帖子的详细信息"
//	@Success		200	{object}	common.Response{data=common.ResponsePostCreate}
//	@Router			/posts [post]
func CreatePostHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}

	params := new(models.ParamCreatePost)
	files, release, err := bindPostForm(ctx, params)
	if err != nil {
		responseBindErr(ctx, err)
		return
	}
	defer release()

	post, err := sess.Community.CreatePost(ctx.Request.Context(), params, files)
	if err != nil {
		responseErr(ctx, err)
		return
	}
	common.ResponseSuccess(ctx, &common.ResponsePostCreate{PostID: post.PostID})
}

// UpdatePostHandler 修改帖子接口
//
//	@Summary		修改帖子接口
//	@Tags			帖子相关接口
//	@Accept			application/json
//	@Produce		application/json
//	@Param			Authorization	header	string					true	"Bearer 用户令牌"
//	@Param			id				path	int						true	"帖子 id"
//	@Param			object			body	models.ParamUpdatePost	true	"修改的字段"
//	@Success		200	{object}	common.Response{data=models.Post}
//	@Router			/posts/{id} [patch]
func UpdatePostHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}
	postID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	params := new(models.ParamUpdatePost)
	files, release, err := bindPostForm(ctx, params)
	if err != nil {
		responseBindErr(ctx, err)
		return
	}
	defer release()

	post, err := sess.Community.UpdatePost(ctx.Request.Context(), postID, params, files)
	if err != nil {
		responseErr(ctx, err)
		return
	}
	common.ResponseSuccess(ctx, post)
}

// DeletePostHandler 删除帖子接口
//
//	@Summary		删除帖子接口
//	@Tags			帖子相关接口
//	@Produce		application/json
//	@Param			Authorization	header	string	true	"Bearer 用户令牌"
//	@Param			id				path	int		true	"帖子 id"
//	@Success		200	{object}	common.Response
//	@Router			/posts/{id} [delete]
func DeletePostHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}
	postID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := sess.Community.DeletePost(ctx.Request.Context(), postID); err != nil {
		responseErr(ctx, err)
		return
	}
	common.ResponseSuccess(ctx, nil)
}

// PostEmotionHandler 帖子点赞/点踩接口
//
//	@Summary		帖子点赞/点踩接口
//	@Tags			帖子相关接口
//	@Accept			application/json
//	@Produce		application/json
//	@Param			Authorization	header	string				true	"Bearer 用户令牌"
//	@Param			id				path	int					true	"帖子 id"
//	@Param			object			body	models.ParamEmotion	true	"LIKE 或 DISLIKE"
//	@Success		200	{object}	common.Response{data=models.EmotionResult}
//	@Router			/posts/{id}/emotion [post]
func PostEmotionHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}
	postID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var params models.ParamEmotion
	if err := ctx.ShouldBindJSON(&params); err != nil {
		common.ResponseErrorWithMsg(ctx, common.CodeInvalidParam, utils.ParseToValidationError(err))
		return
	}

	res, err := sess.Community.React(ctx.Request.Context(), postID, params.Emotion)
	if err != nil {
		responseErr(ctx, err)
		return
	}
	common.ResponseSuccess(ctx, res)
}

// WrittenPostsHandler 我写的帖子接口
//
//	@Summary		我写的帖子接口
//	@Tags			帖子相关接口
//	@Produce		application/json
//	@Param			Authorization	header	string				true	"Bearer 用户令牌"
//	@Param			object			query	models.ParamWritten	false	"分页参数"
//	@Success		200	{object}	common.Response{data=models.PostPage}
//	@Router			/posts/written [get]
func WrittenPostsHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}

	params := models.ParamWritten{Page: DefaultPageNum}
	if err := ctx.ShouldBindQuery(&params); err != nil {
		common.ResponseErrorWithMsg(ctx, common.CodeInvalidParam, utils.ParseToValidationError(err))
		return
	}

	page, err := sess.Community.GetWrittenPosts(ctx.Request.Context(), params.Page, params.Size)
	if err != nil {
		responseErr(ctx, err)
		return
	}
	common.ResponseSuccess(ctx, page)
}

// PostHotHandler 热门帖子接口
//
//	@Summary		热门帖子接口
//	@Description	当前会话看过的帖子中浏览量最高的 k 个
//	@Tags			帖子相关接口
//	@Produce		application/json
//	@Param			k	query	int	false	"数量，默认 10"
//	@Success		200	{object}	common.Response{data=[]models.PostSummary}
//	@Router			/posts/hot [get]
func PostHotHandler(ctx *gin.Context) {
	sess, ok := getSession(ctx)
	if !ok {
		return
	}

	k := DefaultHotSize
	if v, exists := ctx.GetQuery("k"); exists {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			common.ResponseError(ctx, common.CodeInvalidParam)
			return
		}
		k = n
	}
	common.ResponseSuccess(ctx, sess.Community.TopViewed(k))
}
