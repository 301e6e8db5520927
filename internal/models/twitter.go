package models

import (
	"time"
)

// TwitterDiscussion Twitter 扩展表，与总表一对一，随总表级联删除
type TwitterDiscussion struct {
	DbID uint `gorm:"primaryKey;column:db_id" json:"db_id"`

	// 基本信息
	Author      string `gorm:"index" json:"author"`
	ContentType string `json:"content_type"` // "post" 或 "comment"

	// 互动数据
	Likes     int  `gorm:"default:0" json:"likes"`
	Retweets  int  `gorm:"default:0" json:"retweets"`
	Replies   int  `gorm:"default:0" json:"replies"`
	Views     *int `json:"views"`
	Bookmarks *int `json:"bookmarks"`

	// 推文属性
	Language          *string `json:"language"`
	Tags              *string `json:"tags"`
	PossiblySensitive bool    `json:"possibly_sensitive"`

	// 用户信息快照
	UserID          *string    `gorm:"index" json:"user_id"`
	UserDisplayName *string    `json:"user_display_name"`
	UserAvatar      *string    `json:"user_avatar"`
	UserBanner      *string    `json:"user_banner"`
	UserBio         *string    `json:"user_bio"`
	UserLocation    *string    `json:"user_location"`
	UserVerified    bool       `gorm:"default:false" json:"user_verified"`
	UserFollowers   *int       `json:"user_followers"`
	UserTweetCount  *int       `json:"user_tweet_count"`
	UserMediaCount  *int       `json:"user_media_count"`
	UserCreatedAt   *time.Time `json:"user_created_at"`

	// 回复信息
	ParentID        *string `gorm:"index" json:"parent_id"`
	ReplyToUsername *string `json:"reply_to_username"`
	ReplyToUserID   *string `json:"reply_to_user_id"`
	ReplyToURL      *string `json:"reply_to_url"`
}

// NewTwitterExtension 由统一记录和 Twitter 元数据生成扩展行
func NewTwitterExtension(dbID uint, r *UnifiedRecord, meta *TwitterMetadata) *TwitterDiscussion {
	if meta == nil {
		meta = &TwitterMetadata{}
	}
	contentType := string(r.ContentType)
	if contentType == "" {
		contentType = string(ContentTypePost)
	}
	return &TwitterDiscussion{
		DbID:              dbID,
		Author:            r.Author,
		ContentType:       contentType,
		Likes:             meta.Likes,
		Retweets:          meta.Retweets,
		Replies:           meta.Replies,
		Views:             meta.Views,
		Bookmarks:         meta.Bookmarks,
		Language:          meta.Language,
		Tags:              meta.Tags,
		PossiblySensitive: meta.PossiblySensitive,
		UserID:            meta.UserID,
		UserDisplayName:   meta.UserDisplayName,
		UserAvatar:        meta.UserAvatar,
		UserBanner:        meta.UserBanner,
		UserBio:           meta.UserBio,
		UserLocation:      meta.UserLocation,
		UserVerified:      meta.UserVerified,
		UserFollowers:     meta.UserFollowers,
		UserTweetCount:    meta.UserTweetCount,
		UserMediaCount:    meta.UserMediaCount,
		UserCreatedAt:     meta.UserCreatedAt,
		ParentID:          r.ParentID,
		ReplyToUsername:   meta.ReplyToUsername,
		ReplyToUserID:     meta.ReplyToUserID,
		ReplyToURL:        meta.ReplyToURL,
	}
}
