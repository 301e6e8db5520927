package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/db"
	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertDiscussion 写入单条统一记录，是唯一合法的写入口
//
// 返回 true 表示发生了插入或更新；当库里已有同一 platform_id 且
// fetched_at 不比库中更新时丢弃本次写入并返回 false，旧快照永远
// 不会覆盖新数据。任何失败都只回滚这一条记录对应的总表/扩展表变更。
func UpsertDiscussion(rec *models.UnifiedRecord, source models.Source) (bool, error) {
	if err := rec.Validate(); err != nil {
		return false, err
	}
	if rec.FetchedAt.IsZero() {
		rec.FetchedAt = time.Now()
	}

	written := false
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Discussion
		err := tx.Where("platform_id = ?", rec.PlatformID).First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			err = insertDiscussion(tx, rec, source)
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// 并发写入者抢先插入了同一 platform_id，回退到更新路径
				if err := tx.Where("platform_id = ?", rec.PlatformID).First(&existing).Error; err != nil {
					return err
				}
				return updateDiscussion(tx, &existing, rec, source, &written)
			}
			if err != nil {
				return err
			}
			written = true
			return nil

		case err != nil:
			return fmt.Errorf("lookup %s: %w", rec.PlatformID, err)

		default:
			return updateDiscussion(tx, &existing, rec, source, &written)
		}
	})
	return written, err
}

// BulkUpsert 按顺序逐条写入并统计成功数
//
// 第一条出错即中止整个批次；需要"单条失败不影响其余"的调用方
// 应自行逐条调用 UpsertDiscussion 并处理错误。
func BulkUpsert(recs []*models.UnifiedRecord, source models.Source) (int, error) {
	count := 0
	for _, rec := range recs {
		ok, err := UpsertDiscussion(rec, source)
		if err != nil {
			return count, err
		}
		if ok {
			count++
		}
	}
	return count, nil
}

func insertDiscussion(tx *gorm.DB, rec *models.UnifiedRecord, source models.Source) error {
	row := models.Discussion{
		PlatformID:     rec.PlatformID,
		Platform:       string(rec.Platform),
		Content:        rec.Content,
		URL:            rec.URL,
		CreatedAt:      rec.CreatedAt,
		FetchedAt:      rec.FetchedAt,
		Source:         string(source),
		SearchKeywords: rec.SearchKeywords,
	}
	if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
		return err
	}
	return writeExtension(tx, row.DbID, rec)
}

func updateDiscussion(tx *gorm.DB, existing *models.Discussion, rec *models.UnifiedRecord, source models.Source, written *bool) error {
	// 只接受严格更新的观测，保证 fetched_at 单调递增
	if !rec.FetchedAt.After(existing.FetchedAt) {
		return nil
	}

	updates := map[string]interface{}{
		"content":         rec.Content,
		"url":             rec.URL,
		"created_at":      rec.CreatedAt,
		"fetched_at":      rec.FetchedAt,
		"source":          string(source),
		"search_keywords": rec.SearchKeywords,
	}
	if err := tx.Model(&models.Discussion{}).Where("db_id = ?", existing.DbID).Updates(updates).Error; err != nil {
		return fmt.Errorf("update discussion %s: %w", rec.PlatformID, err)
	}
	if err := writeExtension(tx, existing.DbID, rec); err != nil {
		return err
	}
	*written = true
	return nil
}

// writeExtension 整行重建扩展表数据（insert-or-replace，不做逐字段合并）
func writeExtension(tx *gorm.DB, dbID uint, rec *models.UnifiedRecord) error {
	replace := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "db_id"}},
		UpdateAll: true,
	})

	switch rec.Platform {
	case models.PlatformReddit:
		meta, _ := rec.Metadata.(*models.RedditMetadata)
		return replace.Create(models.NewRedditExtension(dbID, rec, meta)).Error
	case models.PlatformHuggingFace:
		meta, _ := rec.Metadata.(*models.HuggingFaceMetadata)
		return replace.Create(models.NewHuggingFaceExtension(dbID, rec, meta)).Error
	case models.PlatformTwitter:
		meta, _ := rec.Metadata.(*models.TwitterMetadata)
		return replace.Create(models.NewTwitterExtension(dbID, rec, meta)).Error
	default:
		// Validate 已经拦截未知平台，这里只是兜底
		return &models.ValidationError{Field: "platform", Reason: fmt.Sprintf("is unknown (%q)", rec.Platform)}
	}
}
