package models

// HuggingFaceDiscussion HuggingFace 扩展表，与总表一对一，随总表级联删除
type HuggingFaceDiscussion struct {
	DbID uint `gorm:"primaryKey;column:db_id" json:"db_id"`

	// 基本信息
	ModelID     string `gorm:"not null;index" json:"model_id"`
	Author      string `gorm:"index" json:"author"`
	Title       string `gorm:"not null" json:"title"`
	ContentType string `json:"content_type"` // "discussion" 或 "comment"

	// Discussion 信息
	DiscussionNum *int    `json:"discussion_num"`
	Status        *string `json:"status"`     // "open", "closed"
	EventType     *string `json:"event_type"` // "comment", "status-change" 等
	ParentID      *string `gorm:"index" json:"parent_id"`
}

// TableName gorm 默认会拆成 hugging_face_discussions，这里固定为原始表名
func (HuggingFaceDiscussion) TableName() string {
	return "huggingface_discussions"
}

// NewHuggingFaceExtension 由统一记录和 HuggingFace 元数据生成扩展行
func NewHuggingFaceExtension(dbID uint, r *UnifiedRecord, meta *HuggingFaceMetadata) *HuggingFaceDiscussion {
	if meta == nil {
		meta = &HuggingFaceMetadata{}
	}
	title := ""
	if r.Title != nil {
		title = *r.Title
	}
	contentType := string(r.ContentType)
	if contentType == "" {
		contentType = string(ContentTypeDiscussion)
	}
	return &HuggingFaceDiscussion{
		DbID:          dbID,
		ModelID:       meta.ModelID,
		Author:        r.Author,
		Title:         title,
		ContentType:   contentType,
		DiscussionNum: meta.DiscussionNum,
		Status:        meta.Status,
		EventType:     meta.EventType,
		ParentID:      r.ParentID,
	}
}
