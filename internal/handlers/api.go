package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/config"
	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/models"
	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/services"

	"github.com/gin-gonic/gin"
)

type DiscussionHandler struct {
	cfg *config.Config
}

func NewDiscussionHandler(cfg *config.Config) *DiscussionHandler {
	return &DiscussionHandler{cfg: cfg}
}

// ok 统一成功响应：{"success":true,"data":...,"count":N}
func ok(c *gin.Context, data interface{}, count int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"count":   count,
	})
}

func fail(c *gin.Context, code int, err error) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

// listFilterFromQuery 从查询参数组装过滤条件
func listFilterFromQuery(c *gin.Context) services.ListFilter {
	filter := services.ListFilter{
		Platform:       c.Query("platform"),
		ContentType:    c.Query("content_type"),
		SearchKeywords: c.Query("search_keywords"),
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}
	if v := c.Query("start_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.StartDate = &t
		}
	}
	if v := c.Query("end_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.EndDate = &t
		}
	}
	return filter
}

// Stats GET /api/stats 各平台数量与整体统计
func (h *DiscussionHandler) Stats(c *gin.Context) {
	stats, err := services.GetDetailedStats()
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, stats, int(stats.Total))
}

// List GET /api/discussions 按条件分页列出讨论
func (h *DiscussionHandler) List(c *gin.Context) {
	filter := listFilterFromQuery(c)
	rows, err := services.ListDiscussions(filter)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, rows, len(rows))
}

// Posts GET /api/posts 帖子列表，按最新评论活动排序
func (h *DiscussionHandler) Posts(c *gin.Context) {
	filter := listFilterFromQuery(c)
	rows, err := services.PostsWithActivity(filter)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, rows, len(rows))
}

// Search GET /api/search?q=... 全文模糊搜索
func (h *DiscussionHandler) Search(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("q"))
	limit := 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	rows, err := services.SearchDiscussions(keyword, c.Query("platform"), limit)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			fail(c, http.StatusBadRequest, err)
			return
		}
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, rows, len(rows))
}

// Keywords GET /api/keywords 已有的抓取关键词标签
func (h *DiscussionHandler) Keywords(c *gin.Context) {
	tags, err := services.SearchKeywordTags()
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, tags, len(tags))
}

// Export GET /api/export?format=csv|excel 导出并以附件下载
func (h *DiscussionHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "excel" {
		fail(c, http.StatusBadRequest, errors.New("format must be csv or excel"))
		return
	}

	opts := services.ExportOptions{
		Platform:       c.Query("platform"),
		SearchKeywords: c.Query("search_keywords"),
		Deduplicate:    c.DefaultQuery("deduplicate", "true") != "false",
	}

	outputFile := services.ExportFilename(h.cfg.ExportDir, format, opts)

	var err error
	if format == "csv" {
		_, err = services.ExportCSV(outputFile, opts)
	} else {
		var platforms []string
		if opts.Platform != "" {
			platforms = []string{opts.Platform}
		} else {
			for _, p := range models.KnownPlatforms {
				platforms = append(platforms, string(p))
			}
		}
		err = services.ExportExcel(outputFile, platforms, opts)
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}

	// 没有匹配数据时不会生成文件
	if _, err := os.Stat(outputFile); err != nil {
		ok(c, nil, 0)
		return
	}
	c.FileAttachment(outputFile, filepath.Base(outputFile))
}
