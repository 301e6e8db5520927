package services

import (
	"sort"

	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/models"
)

// DeduplicateProjected 导出前的收尾去重
//
// 按 (platform, platform_id) 分组，每组只保留 fetched_at 最大的一行
// （相同 fetched_at 时取 db_id 较大者，保证结果与输入顺序无关），
// 然后按 created_at 倒序恢复时间顺序。纯函数：同一输入集合永远
// 得到同一输出，对自身输出再应用一次结果不变。
//
// 写入路径已经按新鲜度去重，这里是面向历史数据的双保险。
func DeduplicateProjected(rows []models.ProjectedDiscussion) []models.ProjectedDiscussion {
	if len(rows) == 0 {
		return rows
	}

	type key struct {
		platform   string
		platformID string
	}
	best := make(map[key]models.ProjectedDiscussion, len(rows))
	for _, row := range rows {
		k := key{row.Platform, row.PlatformID}
		cur, ok := best[k]
		if !ok {
			best[k] = row
			continue
		}
		if row.FetchedAt.After(cur.FetchedAt) ||
			(row.FetchedAt.Equal(cur.FetchedAt) && row.DbID > cur.DbID) {
			best[k] = row
		}
	}

	result := make([]models.ProjectedDiscussion, 0, len(best))
	for _, row := range best {
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].DbID > result[j].DbID
	})
	return result
}
