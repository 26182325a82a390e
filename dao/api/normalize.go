package api

import (
	"bytes"
	"encoding/json"
	eum "eum/errors"
	"eum/models"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultTitle    = "[제목 없음]"
	DefaultNickname = "알 수 없음"
	DefaultCategory = "기타"
)

var (
	postListKeys = []string{"postList", "posts", "content", "list", "items"}
	infoListKeys = []string{"informationList", "content", "list", "items"}
)

// object is a decoded JSON object whose fields may arrive under several names
// depending on which backend endpoint produced it.
type object map[string]any

func decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(eum.ErrBackend, "api:decode: "+err.Error())
	}
	return v, nil
}

func asObject(v any) (object, bool) {
	m, ok := v.(map[string]any)
	return object(m), ok
}

func (o object) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := o[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (o object) str(keys ...string) string {
	v, ok := o.lookup(keys...)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

func (o object) num(keys ...string) int64 {
	v, ok := o.lookup(keys...)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return int64(f)
		}
	case string:
		i, _ := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i
	}
	return 0
}

func (o object) flag(keys ...string) bool {
	v, ok := o.lookup(keys...)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		r, _ := strconv.ParseBool(b)
		return r
	case json.Number:
		return b.String() != "0"
	}
	return false
}

func (o object) obj(keys ...string) (object, bool) {
	v, ok := o.lookup(keys...)
	if !ok {
		return nil, false
	}
	return asObject(v)
}

func (o object) list(keys ...string) ([]any, bool) {
	v, ok := o.lookup(keys...)
	if !ok {
		return nil, false
	}
	l, ok := v.([]any)
	return l, ok
}

// strs accepts ["a","b"], [{"name":"a"}] or "a,b".
func (o object) strs(keys ...string) []string {
	res := make([]string, 0)
	v, ok := o.lookup(keys...)
	if !ok {
		return res
	}
	switch l := v.(type) {
	case string:
		for _, s := range strings.Split(l, ",") {
			if s = strings.TrimSpace(s); s != "" {
				res = append(res, s)
			}
		}
	case []any:
		for _, item := range l {
			switch t := item.(type) {
			case string:
				res = append(res, t)
			case map[string]any:
				if name := object(t).str("name", "tagName", "value"); name != "" {
					res = append(res, name)
				}
			}
		}
	}
	return res
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// unwrap strips a {"data": ...} envelope unless the object itself already
// carries one of the list keys.
func unwrap(v any, listKeys []string) any {
	for i := 0; i < 2; i++ {
		o, ok := asObject(v)
		if !ok {
			return v
		}
		if _, has := o.lookup(listKeys...); has {
			return v
		}
		inner, has := o["data"]
		if !has || inner == nil {
			return v
		}
		v = inner
	}
	return v
}

func normalizeWriter(o object) models.Writer {
	w := models.Writer{Nickname: DefaultNickname}

	// writer 可能只是一个名字，也可能是对象；逐个 key 查找字符串形式
	for _, k := range []string{"writer", "author", "userName"} {
		if name := o.str(k); name != "" {
			w.Nickname = name
			break
		}
	}
	if wo, ok := o.obj("writer", "user", "author"); ok {
		w.UserID = wo.num("userId", "id")
		w.Nickname = orDefault(wo.str("nickname", "userName", "name"), w.Nickname)
		w.ProfileImage = wo.str("profileImagePath", "profileImage", "picture")
		w.Role = wo.str("role")
	}
	if w.UserID == 0 {
		w.UserID = o.num("userId", "writerId")
	}
	return w
}

func normalizePostSummary(o object) *models.PostSummary {
	return &models.PostSummary{
		PostID:    o.num("postId", "id"),
		Title:     orDefault(o.str("title"), DefaultTitle),
		Content:   o.str("content", "preview"),
		Category:  orDefault(o.str("category"), DefaultCategory),
		Tags:      o.strs("tags", "tagList"),
		Writer:    normalizeWriter(o),
		Views:     o.num("views", "viewCount"),
		Likes:     o.num("like", "likeCount", "likes"),
		Dislikes:  o.num("dislike", "dislikeCount", "dislikes"),
		Comments:  o.num("commentCnt", "commentCount", "comments"),
		PostType:  models.PostType(orDefault(o.str("postType"), string(models.PostTypeFree))),
		Address:   o.str("address", "region", "location"),
		CreatedAt: o.str("createdAt", "created_at"),
		UpdatedAt: o.str("updatedAt", "updated_at"),
	}
}

func normalizePost(o object) *models.Post {
	post := &models.Post{
		PostSummary: *normalizePostSummary(o),
		Files:       make([]models.Attachment, 0),
		IsLiked:     o.flag("isLiked", "liked"),
		IsDisliked:  o.flag("isDisliked", "disliked"),
	}
	switch o.str("emotion", "myEmotion") {
	case string(models.EmotionLike):
		post.IsLiked = true
	case string(models.EmotionDislike):
		post.IsDisliked = true
	}

	files, _ := o.list("files", "fileList", "attachments")
	for _, f := range files {
		switch t := f.(type) {
		case string:
			post.Files = append(post.Files, models.Attachment{Name: t[strings.LastIndex(t, "/")+1:], URL: t})
		case map[string]any:
			fo := object(t)
			post.Files = append(post.Files, models.Attachment{
				ID:   fo.num("fileId", "id"),
				Name: fo.str("name", "fileName", "originalName"),
				URL:  fo.str("url", "fileUrl", "filePath"),
			})
		}
	}
	return post
}

func normalizeInformation(o object) *models.InformationPost {
	author := o.str("userName", "author")
	if wo, ok := o.obj("writer", "user"); ok {
		author = wo.str("nickname", "userName", "name")
	}
	return &models.InformationPost{
		InformationID: o.num("informationId", "id"),
		Title:         orDefault(o.str("title"), DefaultTitle),
		Content:       o.str("content"),
		Category:      orDefault(o.str("category"), DefaultCategory),
		Author:        orDefault(author, DefaultNickname),
		Views:         o.num("views", "viewCount"),
		Bookmarked:    o.flag("isBookmarked", "bookmarked"),
		CreatedAt:     o.str("createdAt", "created_at"),
	}
}

type rawPage struct {
	items      []object
	total      int64
	totalPages int
}

// parsePage accepts a bare array or an object holding the list under one of
// listKeys, optionally wrapped in {"data": ...}.
func parsePage(data []byte, listKeys []string, size int) (*rawPage, error) {
	v, err := decode(data)
	if err != nil {
		return nil, err
	}
	v = unwrap(v, listKeys)

	page := &rawPage{}
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
		page.total = int64(len(t))
	case map[string]any:
		o := object(t)
		l, ok := o.list(listKeys...)
		if !ok {
			if _, has := o.lookup(listKeys...); has {
				return nil, errors.Wrap(eum.ErrBackend, "api:parsePage: list field is not an array")
			}
			l = []any{} // 空结果可能不带列表字段
		}
		items = l
		page.total = o.num("totalElements", "total", "totalCount")
		if page.total == 0 {
			page.total = int64(len(l))
		}
		page.totalPages = int(o.num("totalPages", "pageCount"))
	default:
		return nil, errors.Wrapf(eum.ErrBackend, "api:parsePage: unexpected body %s", snippet(data))
	}

	page.items = make([]object, 0, len(items))
	for _, item := range items {
		if o, ok := asObject(item); ok {
			page.items = append(page.items, o)
		}
	}
	if page.totalPages == 0 && page.total > 0 {
		if size <= 0 {
			size = len(page.items)
		}
		page.totalPages = int(math.Ceil(float64(page.total) / float64(size)))
	}
	return page, nil
}

func normalizePostPage(data []byte, page, size int) (*models.PostPage, error) {
	raw, err := parsePage(data, postListKeys, size)
	if err != nil {
		return nil, err
	}
	res := &models.PostPage{
		Posts:      make([]*models.PostSummary, 0, len(raw.items)),
		Total:      raw.total,
		TotalPages: raw.totalPages,
		Page:       page,
		Size:       size,
	}
	for _, o := range raw.items {
		res.Posts = append(res.Posts, normalizePostSummary(o))
	}
	return res, nil
}

func normalizeInformationPage(data []byte, page, size int) (*models.InformationPage, error) {
	raw, err := parsePage(data, infoListKeys, size)
	if err != nil {
		return nil, err
	}
	res := &models.InformationPage{
		List:       make([]*models.InformationPost, 0, len(raw.items)),
		Total:      raw.total,
		TotalPages: raw.totalPages,
		Page:       page,
		Size:       size,
	}
	for _, o := range raw.items {
		res.List = append(res.List, normalizeInformation(o))
	}
	return res, nil
}

// decodeObject decodes a single resource, stripping a {"data": ...} envelope.
func decodeObject(data []byte) (object, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return object{}, nil
	}
	v, err := decode(data)
	if err != nil {
		return nil, err
	}
	o, ok := asObject(v)
	if !ok {
		return nil, errors.Wrapf(eum.ErrBackend, "api:decodeObject: unexpected body %s", snippet(data))
	}
	if inner, ok := o.obj("data"); ok {
		return inner, nil
	}
	return o, nil
}
