package models

// RedditDiscussion Reddit 扩展表，与总表一对一，随总表级联删除
type RedditDiscussion struct {
	DbID uint `gorm:"primaryKey;column:db_id" json:"db_id"`

	// 基本信息
	Subreddit   string `gorm:"not null;index" json:"subreddit"`
	Author      string `gorm:"index" json:"author"`
	Title       string `json:"title"`
	ContentType string `json:"content_type"` // "post" 或 "comment"

	// 互动数据
	Score       int      `gorm:"default:0" json:"score"`
	UpvoteRatio *float64 `json:"upvote_ratio"`
	NumComments *int     `json:"num_comments"`

	// 链接
	Permalink string  `json:"permalink"`
	ParentID  *string `gorm:"index" json:"parent_id"`

	// 帖子特性
	IsSelf        bool    `json:"is_self"`
	LinkFlairText *string `json:"link_flair_text"`
}

// NewRedditExtension 由统一记录和 Reddit 元数据生成扩展行
func NewRedditExtension(dbID uint, r *UnifiedRecord, meta *RedditMetadata) *RedditDiscussion {
	if meta == nil {
		meta = &RedditMetadata{}
	}
	score := 0
	if r.Score != nil {
		score = *r.Score
	}
	title := ""
	if r.Title != nil {
		title = *r.Title
	}
	contentType := string(r.ContentType)
	if contentType == "" {
		contentType = string(ContentTypePost)
	}
	return &RedditDiscussion{
		DbID:          dbID,
		Subreddit:     meta.Subreddit,
		Author:        r.Author,
		Title:         title,
		ContentType:   contentType,
		Score:         score,
		UpvoteRatio:   meta.UpvoteRatio,
		NumComments:   meta.NumComments,
		Permalink:     meta.Permalink,
		ParentID:      r.ParentID,
		IsSelf:        meta.IsSelf,
		LinkFlairText: meta.LinkFlairText,
	}
}
