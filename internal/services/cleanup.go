package services

import (
	"fmt"
	"log"
	"time"

	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/db"
	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/models"

	"gorm.io/gorm"
)

// CleanupOldDiscussions 删除创建时间早于 N 天前的记录
//
// 扩展行与总表行在同一事务里一起删除，任何删除都不会留下孤儿扩展行。
// 返回删除的总表行数。
func CleanupOldDiscussions(days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("cleanup: days must be positive, got %d", days)
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	var deleted int64
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		old := tx.Model(&models.Discussion{}).
			Select("db_id").
			Where("created_at < ?", cutoff)

		for _, ext := range []interface{}{
			&models.RedditDiscussion{},
			&models.HuggingFaceDiscussion{},
			&models.TwitterDiscussion{},
		} {
			if err := tx.Where("db_id IN (?)", old).Delete(ext).Error; err != nil {
				return fmt.Errorf("delete extension rows: %w", err)
			}
		}

		result := tx.Where("created_at < ?", cutoff).Delete(&models.Discussion{})
		if result.Error != nil {
			return fmt.Errorf("delete discussions: %w", result.Error)
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Printf("Cleanup removed %d discussions older than %d days", deleted, days)
	return deleted, nil
}

// BackfillKeywordTag 给所有没有关键词标签的历史记录补默认标签
//
// 只触碰 search_keywords 为 NULL 的行，一次性迁移，可重复执行。
func BackfillKeywordTag(tag string) (int64, error) {
	if tag == "" {
		return 0, &models.ValidationError{Field: "search_keywords"}
	}

	result := db.DB.Model(&models.Discussion{}).
		Where("search_keywords IS NULL").
		Update("search_keywords", tag)
	if result.Error != nil {
		return 0, fmt.Errorf("backfill keywords: %w", result.Error)
	}

	log.Printf("Backfilled search_keywords=%q on %d rows", tag, result.RowsAffected)
	return result.RowsAffected, nil
}
