package bleve

import (
	"encoding/json"
	"eum/internal/utils"
	"eum/models"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/pkg/errors"
)

// IndexPosts adds or replaces the given posts in one batch.
func IndexPosts(index bleve.Index, posts []*models.PostSummary) error {
	if len(posts) == 0 {
		return nil
	}
	batch := index.NewBatch()
	for _, post := range posts {
		raw, err := json.Marshal(post)
		if err != nil {
			return errors.Wrap(err, "bleve:IndexPosts: Marshal")
		}
		doc := models.PostDoc{
			PostID:    post.PostID,
			Title:     utils.Substr(post.Title, 0, 64),    // 只索引前 64 个字符
			Content:   utils.Substr(post.Content, 0, 256), // 只索引前 256 个字符
			Category:  post.Category,
			Tags:      strings.Join(post.Tags, " "),
			TagList:   post.Tags,
			Region:    post.Address,
			PostType:  string(post.PostType),
			CreatedAt: post.CreatedAt,
			Raw:       string(raw),
		}
		if err := batch.Index(strconv.FormatInt(post.PostID, 10), doc); err != nil {
			return errors.Wrap(err, "bleve:IndexPosts: batch.Index")
		}
	}
	return errors.Wrap(index.Batch(batch), "bleve:IndexPosts: Batch")
}

func DeletePost(index bleve.Index, postID int64) error {
	return errors.Wrap(index.Delete(strconv.FormatInt(postID, 10)), "bleve:DeletePost: Delete")
}

// SearchPosts matches keyword against title, content and tags, narrowed by the
// category, post type, location and tag of the filter. ids limits the search to
// those posts; nil searches every indexed post.
func SearchPosts(index bleve.Index, keyword string, f models.PostFilter, ids []int64) ([]*models.PostSummary, int, error) {
	if ids != nil && len(ids) == 0 {
		return []*models.PostSummary{}, 0, nil
	}
	page, size := f.Page, f.Size
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	fields := []string{"title", "content", "tags"}
	matches := make([]query.Query, 0, len(fields))
	for _, field := range fields {
		mq := bleve.NewMatchQuery(keyword)
		mq.SetField(field)
		matches = append(matches, mq)
	}
	conjuncts := []query.Query{bleve.NewDisjunctionQuery(matches...)}

	if f.Category != "" && f.Category != models.AllValue {
		tq := bleve.NewTermQuery(f.Category)
		tq.SetField("category")
		conjuncts = append(conjuncts, tq)
	}
	if f.PostType != "" {
		tq := bleve.NewTermQuery(string(f.PostType))
		tq.SetField("post_type")
		conjuncts = append(conjuncts, tq)
	}
	if f.Location != "" && f.Location != models.AllValue {
		pq := bleve.NewPrefixQuery(f.Location) // "서울" 匹配 "서울 마포구"
		pq.SetField("region")
		conjuncts = append(conjuncts, pq)
	}
	if f.Tag != "" && f.Tag != models.AllValue {
		tq := bleve.NewTermQuery(f.Tag)
		tq.SetField("tag_list")
		conjuncts = append(conjuncts, tq)
	}
	if ids != nil {
		conjuncts = append(conjuncts, bleve.NewDocIDQuery(utils.ConvertInt64SliceToStringSlice(ids)))
	}

	req := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(conjuncts...), size, (page-1)*size, false)
	req.Fields = []string{"raw"}
	if f.SortBy == models.SortLatest {
		req.SortBy([]string{"-created_time", "-_score"})
	}

	res, err := index.Search(req)
	if err != nil {
		return nil, 0, errors.Wrap(err, "bleve:SearchPosts: Search")
	}

	posts := make([]*models.PostSummary, 0, len(res.Hits))
	for _, hit := range res.Hits {
		raw, _ := hit.Fields["raw"].(string)
		var post models.PostSummary
		if err := json.Unmarshal([]byte(raw), &post); err != nil {
			continue
		}
		posts = append(posts, &post)
	}
	return posts, int(res.Total), nil
}
