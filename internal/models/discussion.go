package models

import (
	"time"
)

// Discussion 总表：所有平台共享的核心字段
//
// db_id 是存储层自增的代理键，扩展表只允许引用它；
// platform_id 全局唯一，用于跨平台去重。
type Discussion struct {
	DbID       uint      `gorm:"primaryKey;column:db_id" json:"db_id"`
	PlatformID string    `gorm:"uniqueIndex;not null" json:"platform_id"`
	Platform   string    `gorm:"not null;index" json:"platform"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	URL        string    `gorm:"not null" json:"url"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`

	// 抓取信息
	FetchedAt      time.Time `gorm:"not null;index" json:"fetched_at"`
	Source         string    `json:"source"`
	SearchKeywords *string   `gorm:"index" json:"search_keywords"`
	UpdatedAt      time.Time `json:"updated_at"`

	// 关联只为在扩展表上建立指向 discussions(db_id) 的级联外键，
	// 读路径不走预加载，全部经由手写投影查询
	Reddit      *RedditDiscussion      `gorm:"foreignKey:DbID;references:DbID;constraint:OnDelete:CASCADE;" json:"-"`
	HuggingFace *HuggingFaceDiscussion `gorm:"foreignKey:DbID;references:DbID;constraint:OnDelete:CASCADE;" json:"-"`
	Twitter     *TwitterDiscussion     `gorm:"foreignKey:DbID;references:DbID;constraint:OnDelete:CASCADE;" json:"-"`
}
