package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/db"
	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/models"

	"github.com/araddon/dateparse"
	"gorm.io/gorm"
)

// projectionColumns 总表与三张扩展表的联合投影
// author/title/content_type 按"第一个非空"原则跨平台取值
const projectionColumns = `
	d.db_id,
	d.platform_id,
	d.platform,
	d.content,
	d.url,
	d.created_at,
	d.fetched_at,
	d.source,
	d.search_keywords,
	COALESCE(r.author, h.author, t.author) AS author,
	COALESCE(r.title, h.title) AS title,
	COALESCE(r.content_type, h.content_type, t.content_type) AS content_type,
	r.subreddit,
	r.score,
	r.upvote_ratio,
	r.num_comments,
	r.permalink,
	COALESCE(r.parent_id, h.parent_id, t.parent_id) AS parent_id,
	r.is_self,
	r.link_flair_text,
	h.model_id,
	h.discussion_num,
	h.status,
	h.event_type,
	t.likes,
	t.retweets,
	t.replies,
	t.views,
	t.user_display_name,
	t.user_verified,
	t.language`

// ListFilter 列表查询条件
type ListFilter struct {
	Platform       string
	ContentType    string
	SearchKeywords string
	StartDate      *time.Time
	EndDate        *time.Time
	Limit          int
	Offset         int
}

// projectionQuery 构建带全部扩展表 LEFT JOIN 的基础查询
func projectionQuery() *gorm.DB {
	return db.DB.Table("discussions AS d").
		Select(projectionColumns).
		Joins("LEFT JOIN reddit_discussions r ON d.db_id = r.db_id").
		Joins("LEFT JOIN huggingface_discussions h ON d.db_id = h.db_id").
		Joins("LEFT JOIN twitter_discussions t ON d.db_id = t.db_id")
}

// ListDiscussions 联合查询讨论列表，按创建时间倒序
func ListDiscussions(f ListFilter) ([]models.ProjectedDiscussion, error) {
	q := projectionQuery()

	if f.Platform != "" {
		q = q.Where("d.platform = ?", f.Platform)
	}
	if f.ContentType != "" {
		q = q.Where("r.content_type = ? OR h.content_type = ? OR t.content_type = ?",
			f.ContentType, f.ContentType, f.ContentType)
	}
	if f.SearchKeywords != "" {
		q = q.Where("d.search_keywords = ?", f.SearchKeywords)
	}
	if f.StartDate != nil {
		q = q.Where("d.created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("d.created_at <= ?", *f.EndDate)
	}

	q = q.Order("d.created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var rows []models.ProjectedDiscussion
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list discussions: %w", err)
	}
	return rows, nil
}

// SearchDiscussions 关键词搜索
//
// 搜索范围：内容、标题、关键词标签、HuggingFace 模型 ID、Reddit 板块名。
// 只按时间倒序，不做相关性排序。
func SearchDiscussions(keyword, platform string, limit int) ([]models.ProjectedDiscussion, error) {
	if keyword == "" {
		return nil, &models.ValidationError{Field: "keyword"}
	}
	like := "%" + keyword + "%"

	q := projectionQuery().Where(
		`d.content LIKE ? OR r.title LIKE ? OR h.title LIKE ? OR
		 d.search_keywords LIKE ? OR h.model_id LIKE ? OR r.subreddit LIKE ?`,
		like, like, like, like, like, like)

	if platform != "" {
		q = q.Where("d.platform = ?", platform)
	}
	if limit <= 0 {
		limit = 100
	}

	var rows []models.ProjectedDiscussion
	if err := q.Order("d.created_at DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("search discussions: %w", err)
	}
	return rows, nil
}

// PlatformStat 单个平台的统计信息
type PlatformStat struct {
	Count    int64      `json:"count"`
	Earliest *time.Time `json:"earliest"`
	Latest   *time.Time `json:"latest"`
	AvgScore *float64   `json:"avg_score"` // 只有 Reddit 有分数概念，其余平台为 null
}

// PlatformStats 按平台统计数量和时间范围
func PlatformStats() (map[string]PlatformStat, int64, error) {
	// MIN/MAX 聚合列丢失了原列的时间类型，驱动按字符串返回，需自行解析
	type row struct {
		Platform string
		Count    int64
		Earliest sql.NullString
		Latest   sql.NullString
	}
	var rows []row
	err := db.DB.Table("discussions").
		Select("platform, COUNT(*) AS count, MIN(created_at) AS earliest, MAX(created_at) AS latest").
		Group("platform").
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("platform stats: %w", err)
	}

	stats := make(map[string]PlatformStat, len(rows))
	var total int64
	for _, r := range rows {
		s := PlatformStat{Count: r.Count, Earliest: parseDBTime(r.Earliest), Latest: parseDBTime(r.Latest)}
		if r.Platform == string(models.PlatformReddit) {
			var avg sql.NullFloat64
			if err := db.DB.Table("reddit_discussions").
				Select("AVG(score)").Row().Scan(&avg); err != nil {
				return nil, 0, fmt.Errorf("reddit avg score: %w", err)
			}
			if avg.Valid {
				s.AvgScore = &avg.Float64
			}
		}
		stats[r.Platform] = s
		total += r.Count
	}
	return stats, total, nil
}

// DetailedStats Web API 用的汇总统计
type DetailedStats struct {
	Total        int64            `json:"total"`
	Platforms    map[string]int64 `json:"platforms"`
	ContentTypes map[string]int64 `json:"content_types"`
}

// GetDetailedStats 总量、平台分布、内容类型分布
func GetDetailedStats() (*DetailedStats, error) {
	stats := &DetailedStats{
		Platforms:    map[string]int64{},
		ContentTypes: map[string]int64{},
	}

	if err := db.DB.Model(&models.Discussion{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("count discussions: %w", err)
	}

	type kv struct {
		Name  string
		Count int64
	}
	var platforms []kv
	err := db.DB.Table("discussions").
		Select("platform AS name, COUNT(*) AS count").
		Group("platform").
		Scan(&platforms).Error
	if err != nil {
		return nil, fmt.Errorf("platform counts: %w", err)
	}
	for _, p := range platforms {
		stats.Platforms[p.Name] = p.Count
	}

	for _, table := range []string{"reddit_discussions", "huggingface_discussions", "twitter_discussions"} {
		var types []kv
		err := db.DB.Table(table).
			Select("content_type AS name, COUNT(*) AS count").
			Where("content_type IS NOT NULL").
			Group("content_type").
			Scan(&types).Error
		if err != nil {
			return nil, fmt.Errorf("content type counts (%s): %w", table, err)
		}
		for _, t := range types {
			stats.ContentTypes[t.Name] += t.Count
		}
	}
	return stats, nil
}

// PostsWithActivity 查询顶层帖子并附带评论统计
//
// 排序使用"最新子内容时间，无子内容时回退到帖子自身创建时间"。
// 每个结果行再做一次定点查询统计评论（跨平台的"最新评论"关系
// 无法统一成一个 join，这里刻意保持 O(结果数) 次定点查询）。
func PostsWithActivity(f ListFilter) ([]models.ProjectedDiscussion, error) {
	q := projectionQuery().
		Where("r.content_type = ? OR h.content_type = ? OR t.content_type = ?",
			models.ContentTypePost, models.ContentTypeDiscussion, models.ContentTypePost)

	if f.Platform != "" {
		q = q.Where("d.platform = ?", f.Platform)
	}
	if f.SearchKeywords != "" {
		q = q.Where("d.search_keywords = ?", f.SearchKeywords)
	}

	q = q.Order(`COALESCE(
		(SELECT MAX(d2.created_at)
		 FROM discussions d2
		 LEFT JOIN reddit_discussions r2 ON d2.db_id = r2.db_id
		 LEFT JOIN huggingface_discussions h2 ON d2.db_id = h2.db_id
		 LEFT JOIN twitter_discussions t2 ON d2.db_id = t2.db_id
		 WHERE r2.parent_id = d.platform_id
		    OR h2.parent_id = d.platform_id
		    OR t2.parent_id = d.platform_id),
		d.created_at
	) DESC`)

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	q = q.Limit(limit).Offset(f.Offset)

	var rows []models.ProjectedDiscussion
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("posts with activity: %w", err)
	}

	for i := range rows {
		count, latest, err := commentStats(rows[i].Platform, rows[i].PlatformID)
		if err != nil {
			return nil, err
		}
		rows[i].CommentCount = count
		rows[i].LatestCommentAt = latest
		rows[i].HasNewComments = latest != nil && latest.After(rows[i].CreatedAt)
	}
	return rows, nil
}

// commentStats 统计某个帖子的子内容数量和最新时间（按所属平台的扩展表关联）
func commentStats(platform, platformID string) (int, *time.Time, error) {
	var extTable string
	switch models.Platform(platform) {
	case models.PlatformReddit:
		extTable = "reddit_discussions"
	case models.PlatformHuggingFace:
		extTable = "huggingface_discussions"
	default:
		extTable = "twitter_discussions"
	}

	var result struct {
		CommentCount    int
		LatestCommentAt sql.NullString
	}
	err := db.DB.Table("discussions AS d2").
		Select("COUNT(*) AS comment_count, MAX(d2.created_at) AS latest_comment_at").
		Joins(fmt.Sprintf("JOIN %s x ON d2.db_id = x.db_id", extTable)).
		Where("x.parent_id = ?", platformID).
		Scan(&result).Error
	if err != nil {
		return 0, nil, fmt.Errorf("comment stats for %s: %w", platformID, err)
	}
	return result.CommentCount, parseDBTime(result.LatestCommentAt), nil
}

// parseDBTime 解析聚合查询返回的字符串时间，解析失败按缺失处理
func parseDBTime(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	t, err := dateparse.ParseAny(v.String)
	if err != nil {
		return nil
	}
	return &t
}

// SearchKeywordTags 返回所有出现过的关键词标签（去重、排除 NULL）
func SearchKeywordTags() ([]string, error) {
	var keywords []string
	err := db.DB.Model(&models.Discussion{}).
		Distinct().
		Where("search_keywords IS NOT NULL").
		Order("search_keywords").
		Pluck("search_keywords", &keywords).Error
	if err != nil {
		return nil, fmt.Errorf("keyword tags: %w", err)
	}
	return keywords, nil
}
