package models

import (
	"time"
)

// ProjectedDiscussion 总表与扩展表联合查询后的扁平视图
//
// 作者/标题/内容类型按"第一个非空"原则从各平台列中取值，
// 调用方无需了解扩展表的布局。可空列一律用指针表达。
type ProjectedDiscussion struct {
	DbID           uint      `json:"db_id"`
	PlatformID     string    `gorm:"column:platform_id" json:"id"`
	Platform       string    `json:"platform"`
	Content        string    `json:"content"`
	URL            string    `json:"url"`
	CreatedAt      time.Time `json:"created_at"`
	FetchedAt      time.Time `json:"fetched_at"`
	Source         string    `json:"source"`
	SearchKeywords *string   `json:"search_keywords"`

	// COALESCE 优先级列
	Author      *string `json:"author"`
	Title       *string `json:"title"`
	ContentType *string `json:"content_type"`

	// Reddit
	Subreddit     *string  `json:"subreddit"`
	Score         *int     `json:"score"`
	UpvoteRatio   *float64 `json:"upvote_ratio"`
	NumComments   *int     `json:"num_comments"`
	Permalink     *string  `json:"permalink"`
	ParentID      *string  `json:"parent_id"`
	IsSelf        *bool    `json:"is_self"`
	LinkFlairText *string  `json:"link_flair_text"`

	// HuggingFace
	ModelID       *string `json:"model_id"`
	DiscussionNum *int    `json:"discussion_num"`
	Status        *string `json:"status"`
	EventType     *string `json:"event_type"`

	// Twitter
	Likes           *int    `json:"likes"`
	Retweets        *int    `json:"retweets"`
	Replies         *int    `json:"replies"`
	Views           *int    `json:"views"`
	UserDisplayName *string `json:"user_display_name"`
	UserVerified    *bool   `json:"user_verified"`
	Language        *string `json:"language"`

	// 非数据库字段，PostsWithActivity 查询时填充
	CommentCount    int        `gorm:"-" json:"comment_count,omitempty"`
	LatestCommentAt *time.Time `gorm:"-" json:"latest_comment_at,omitempty"`
	HasNewComments  bool       `gorm:"-" json:"has_new_comments,omitempty"`
}
