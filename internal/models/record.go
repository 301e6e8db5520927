package models

import (
	"fmt"
	"time"
)

// Platform 支持的平台
type Platform string

const (
	PlatformReddit      Platform = "reddit"
	PlatformHuggingFace Platform = "huggingface"
	PlatformTwitter     Platform = "twitter"
)

// KnownPlatforms 当前拥有扩展表的平台，按固定顺序排列
var KnownPlatforms = []Platform{PlatformReddit, PlatformHuggingFace, PlatformTwitter}

// ContentType 内容类型
type ContentType string

const (
	ContentTypePost       ContentType = "post"
	ContentTypeComment    ContentType = "comment"
	ContentTypeDiscussion ContentType = "discussion"
	ContentTypeReply      ContentType = "reply"
)

// Source 数据来源渠道
type Source string

const (
	SourceAPI       Source = "api"
	SourceWeb       Source = "web"
	SourceHTML      Source = "html"
	SourceSelenium  Source = "selenium"
	SourceCSVImport Source = "csv_import"
	SourceManual    Source = "manual"
)

// ValidationError 统一记录缺少必填字段
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid record: field %q %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid record: missing required field %q", e.Field)
}

// PlatformMetadata 平台特有字段的变体类型
// 每个平台一个固定字段集，未知平台在入库前即被拒绝
type PlatformMetadata interface {
	MetaPlatform() Platform
}

// RedditMetadata Reddit 特有字段
type RedditMetadata struct {
	Subreddit     string
	UpvoteRatio   *float64
	NumComments   *int
	Permalink     string
	IsSelf        bool
	LinkFlairText *string
}

func (m *RedditMetadata) MetaPlatform() Platform { return PlatformReddit }

// HuggingFaceMetadata HuggingFace 特有字段
type HuggingFaceMetadata struct {
	ModelID       string
	DiscussionNum *int
	Status        *string
	EventType     *string
}

func (m *HuggingFaceMetadata) MetaPlatform() Platform { return PlatformHuggingFace }

// TwitterMetadata Twitter 特有字段（含作者资料快照）
type TwitterMetadata struct {
	Likes             int
	Retweets          int
	Replies           int
	Views             *int
	Bookmarks         *int
	Language          *string
	Tags              *string
	PossiblySensitive bool

	UserID          *string
	UserDisplayName *string
	UserAvatar      *string
	UserBanner      *string
	UserBio         *string
	UserLocation    *string
	UserVerified    bool
	UserFollowers   *int
	UserTweetCount  *int
	UserMediaCount  *int
	UserCreatedAt   *time.Time

	ReplyToUsername *string
	ReplyToUserID   *string
	ReplyToURL      *string
}

func (m *TwitterMetadata) MetaPlatform() Platform { return PlatformTwitter }

// UnifiedRecord 所有采集器入库前必须转换成的统一记录
//
// PlatformID 与 Platform 共同构成自然键；FetchedAt 是新鲜度时钟，
// 与内容本身的 CreatedAt 相互独立。
type UnifiedRecord struct {
	PlatformID  string
	Platform    Platform
	ContentType ContentType
	Author      string
	Title       *string
	Content     string
	URL         string
	Score       *int
	ParentID    *string

	CreatedAt      time.Time
	FetchedAt      time.Time // 零值表示入库时取当前时间
	SearchKeywords *string

	Metadata PlatformMetadata
}

// Validate 校验必填字段以及元数据和平台是否一致
func (r *UnifiedRecord) Validate() error {
	if r.PlatformID == "" {
		return &ValidationError{Field: "platform_id"}
	}
	if r.Platform == "" {
		return &ValidationError{Field: "platform"}
	}
	if !r.Platform.known() {
		return &ValidationError{Field: "platform", Reason: fmt.Sprintf("is unknown (%q)", r.Platform)}
	}
	if r.Content == "" {
		return &ValidationError{Field: "content"}
	}
	if r.URL == "" {
		return &ValidationError{Field: "url"}
	}
	if r.CreatedAt.IsZero() {
		return &ValidationError{Field: "created_at"}
	}
	if r.Metadata != nil && r.Metadata.MetaPlatform() != r.Platform {
		return &ValidationError{
			Field:  "metadata",
			Reason: fmt.Sprintf("belongs to platform %q, record says %q", r.Metadata.MetaPlatform(), r.Platform),
		}
	}
	return nil
}

func (p Platform) known() bool {
	for _, k := range KnownPlatforms {
		if p == k {
			return true
		}
	}
	return false
}
