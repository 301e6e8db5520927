package router

import (
	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/config"
	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/handlers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, cfg *config.Config) {
	// Handlers
	discussionHandler := handlers.NewDiscussionHandler(cfg)

	// 只读查询 API (Read-only API)
	api := r.Group("/api")
	{
		api.GET("/stats", discussionHandler.Stats)            // 平台与类型统计
		api.GET("/discussions", discussionHandler.List)       // 讨论列表（分页、过滤）
		api.GET("/posts", discussionHandler.Posts)            // 帖子列表（按评论活动排序）
		api.GET("/search", discussionHandler.Search)          // 全文搜索
		api.GET("/keywords", discussionHandler.Keywords)      // 抓取关键词标签
		api.GET("/export", discussionHandler.Export)          // 导出 CSV / Excel
	}
}
