package services

import (
	"testing"
	"time"

	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/models"
)

func mustUpsert(t *testing.T, rec *models.UnifiedRecord, source models.Source) {
	t.Helper()
	if _, err := UpsertDiscussion(rec, source); err != nil {
		t.Fatalf("upsert %s: %v", rec.PlatformID, err)
	}
}

// 联合投影：每个平台的扩展字段出现在自己的列上，其余为 null
func TestListDiscussionsProjection(t *testing.T) {
	setupTestDB(t)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	mustUpsert(t, redditPost("rp1", base, base), models.SourceAPI)
	mustUpsert(t, hfDiscussionRecord("hf1", "meta-llama/Llama-3", base.Add(time.Hour)), models.SourceAPI)
	mustUpsert(t, twitterPost("tw1", base.Add(2*time.Hour)), models.SourceCSVImport)

	rows, err := ListDiscussions(ListFilter{})
	if err != nil {
		t.Fatalf("ListDiscussions: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	// 按 created_at 倒序：twitter、hf、reddit
	if rows[0].Platform != "twitter" || rows[2].Platform != "reddit" {
		t.Errorf("unexpected order: %s, %s, %s", rows[0].Platform, rows[1].Platform, rows[2].Platform)
	}

	for _, row := range rows {
		if row.Author == nil || *row.Author == "" {
			t.Errorf("%s: author should be projected", row.Platform)
		}
		switch row.Platform {
		case "reddit":
			if row.Subreddit == nil || *row.Subreddit != "LocalLLaMA" {
				t.Errorf("reddit row missing subreddit: %+v", row.Subreddit)
			}
			if row.ModelID != nil || row.Likes != nil {
				t.Error("reddit row must not carry hf/twitter columns")
			}
		case "huggingface":
			if row.ModelID == nil || *row.ModelID != "meta-llama/Llama-3" {
				t.Errorf("hf row missing model_id: %+v", row.ModelID)
			}
			if row.Subreddit != nil {
				t.Error("hf row must not carry reddit columns")
			}
		case "twitter":
			if row.Likes == nil || *row.Likes != 10 {
				t.Errorf("twitter row missing likes: %+v", row.Likes)
			}
			if row.Title != nil {
				t.Error("twitter has no title column, expected null")
			}
		}
	}
}

func TestListDiscussionsFilters(t *testing.T) {
	setupTestDB(t)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	tagged := redditPost("rp1", base, base)
	kw := "llama"
	tagged.SearchKeywords = &kw
	mustUpsert(t, tagged, models.SourceAPI)
	mustUpsert(t, redditPost("rp2", base.Add(time.Hour), base), models.SourceAPI)
	mustUpsert(t, twitterPost("tw1", base), models.SourceCSVImport)

	rows, err := ListDiscussions(ListFilter{Platform: "reddit"})
	if err != nil {
		t.Fatalf("filter platform: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("platform filter: expected 2 rows, got %d", len(rows))
	}

	rows, err = ListDiscussions(ListFilter{SearchKeywords: "llama"})
	if err != nil {
		t.Fatalf("filter keywords: %v", err)
	}
	if len(rows) != 1 || rows[0].PlatformID != "rp1" {
		t.Errorf("keyword filter: expected only rp1, got %d rows", len(rows))
	}

	rows, err = ListDiscussions(ListFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("pagination: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("pagination: expected 1 row, got %d", len(rows))
	}
}

// 搜索覆盖内容、标题、关键词标签、模型 ID、板块名；空关键词报错
func TestSearchDiscussions(t *testing.T) {
	setupTestDB(t)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	mustUpsert(t, redditPost("rp1", base, base), models.SourceAPI)
	mustUpsert(t, hfDiscussionRecord("hf1", "meta-llama/Llama-3", base), models.SourceAPI)

	// 板块名命中 reddit 记录
	rows, err := SearchDiscussions("LocalLLaMA", "", 0)
	if err != nil {
		t.Fatalf("search subreddit: %v", err)
	}
	if len(rows) != 1 || rows[0].Platform != "reddit" {
		t.Errorf("subreddit search: expected 1 reddit row, got %d", len(rows))
	}

	// 模型 ID 命中 hf 记录
	rows, err = SearchDiscussions("meta-llama", "", 0)
	if err != nil {
		t.Fatalf("search model id: %v", err)
	}
	if len(rows) != 1 || rows[0].Platform != "huggingface" {
		t.Errorf("model search: expected 1 hf row, got %d", len(rows))
	}

	// 内容命中全部
	rows, err = SearchDiscussions("content", "", 0)
	if err != nil {
		t.Fatalf("search content: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("content search: expected 2 rows, got %d", len(rows))
	}

	// 平台过滤叠加
	rows, err = SearchDiscussions("content", "reddit", 0)
	if err != nil {
		t.Fatalf("search with platform: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("platform-scoped search: expected 1 row, got %d", len(rows))
	}

	if _, err := SearchDiscussions("", "", 0); err == nil {
		t.Error("empty keyword must be rejected")
	}
}

// 平台统计：数量、时间范围；平均分只有 Reddit 有
func TestPlatformStats(t *testing.T) {
	setupTestDB(t)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	mustUpsert(t, redditPost("rp1", base, base), models.SourceAPI)
	mustUpsert(t, redditPost("rp2", base.Add(time.Hour), base), models.SourceAPI)
	mustUpsert(t, twitterPost("tw1", base), models.SourceCSVImport)

	stats, total, err := PlatformStats()
	if err != nil {
		t.Fatalf("PlatformStats: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total=3, got %d", total)
	}
	reddit := stats["reddit"]
	if reddit.Count != 2 {
		t.Errorf("reddit count: expected 2, got %d", reddit.Count)
	}
	if reddit.AvgScore == nil || *reddit.AvgScore != 42 {
		t.Errorf("reddit avg score: expected 42, got %+v", reddit.AvgScore)
	}
	if tw := stats["twitter"]; tw.AvgScore != nil {
		t.Errorf("twitter must not report avg score, got %+v", tw.AvgScore)
	}
}

// 帖子列表：评论统计与"有新评论"标记，按最新活动排序
func TestPostsWithActivity(t *testing.T) {
	setupTestDB(t)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	// 旧帖子 + 两条更晚的评论
	mustUpsert(t, redditPost("oldpost", base, base), models.SourceAPI)
	mustUpsert(t, redditComment("c1", "oldpost", base.Add(1*time.Hour)), models.SourceAPI)
	mustUpsert(t, redditComment("c2", "oldpost", base.Add(5*time.Hour)), models.SourceAPI)

	// 新帖子，无评论
	mustUpsert(t, redditPost("newpost", base.Add(2*time.Hour), base), models.SourceAPI)

	rows, err := PostsWithActivity(ListFilter{})
	if err != nil {
		t.Fatalf("PostsWithActivity: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 posts (comments excluded), got %d", len(rows))
	}

	// 旧帖子因 5 小时处的评论排到最前
	if rows[0].PlatformID != "oldpost" {
		t.Errorf("expected oldpost first by latest activity, got %s", rows[0].PlatformID)
	}
	if rows[0].CommentCount != 2 {
		t.Errorf("expected comment_count=2, got %d", rows[0].CommentCount)
	}
	if !rows[0].HasNewComments {
		t.Error("expected has_new_comments=true")
	}
	if rows[0].LatestCommentAt == nil || !rows[0].LatestCommentAt.Equal(base.Add(5*time.Hour)) {
		t.Errorf("latest_comment_at wrong: %+v", rows[0].LatestCommentAt)
	}

	if rows[1].PlatformID != "newpost" {
		t.Errorf("expected newpost second, got %s", rows[1].PlatformID)
	}
	if rows[1].CommentCount != 0 || rows[1].HasNewComments {
		t.Errorf("newpost should have no comment activity: count=%d", rows[1].CommentCount)
	}
}

// 关键词标签列表与补标签
func TestKeywordTagsAndBackfill(t *testing.T) {
	setupTestDB(t)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	tagged := redditPost("rp1", base, base)
	kw := "llama"
	tagged.SearchKeywords = &kw
	mustUpsert(t, tagged, models.SourceAPI)
	mustUpsert(t, redditPost("rp2", base, base), models.SourceAPI) // 无标签

	tags, err := SearchKeywordTags()
	if err != nil {
		t.Fatalf("SearchKeywordTags: %v", err)
	}
	if len(tags) != 1 || tags[0] != "llama" {
		t.Errorf("expected [llama], got %v", tags)
	}

	// 补标签只影响 NULL 行
	n, err := BackfillKeywordTag("qwen")
	if err != nil {
		t.Fatalf("BackfillKeywordTag: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 backfilled, got %d", n)
	}

	rows, err := ListDiscussions(ListFilter{SearchKeywords: "llama"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("existing tag must be untouched, got %d rows", len(rows))
	}

	tags, _ = SearchKeywordTags()
	if len(tags) != 2 {
		t.Errorf("expected 2 tags after backfill, got %v", tags)
	}
}
