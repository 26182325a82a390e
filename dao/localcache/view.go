package localcache

import (
	"eum/models"

	priorityqueue "github.com/emirpasic/gods/queues/priorityqueue"
)

// TopKByViews returns the k most viewed posts, most viewed first. Posts are
// deduplicated by id.
func TopKByViews(posts []*models.PostSummary, k int) []*models.PostSummary {
	if k <= 0 {
		return []*models.PostSummary{}
	}
	pq := priorityqueue.NewWith(cmp) // 小根堆
	seen := make(map[int64]bool, len(posts))

	for _, post := range posts {
		if post == nil || seen[post.PostID] {
			continue
		}
		seen[post.PostID] = true

		if pq.Size() == k {
			t, _ := pq.Peek()
			if post.Views > t.(*models.PostSummary).Views {
				pq.Dequeue()
				pq.Enqueue(post)
			}
		} else {
			pq.Enqueue(post)
		}
	}

	res := make([]*models.PostSummary, pq.Size())
	for i := len(res) - 1; i >= 0; i-- {
		v, _ := pq.Dequeue()
		res[i] = v.(*models.PostSummary)
	}
	return res
}

func cmp(a, b interface{}) int {
	aPost := a.(*models.PostSummary)
	bPost := b.(*models.PostSummary)
	switch {
	case aPost.Views > bPost.Views:
		return 1
	case aPost.Views < bPost.Views:
		return -1
	// 浏览量相同时 id 大的（较新的）优先保留
	case aPost.PostID > bPost.PostID:
		return 1
	case aPost.PostID < bPost.PostID:
		return -1
	default:
		return 0
	}
}
