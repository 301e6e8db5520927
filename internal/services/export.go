package services

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/models"

	"github.com/xuri/excelize/v2"
)

// ExportOptions 导出筛选条件
type ExportOptions struct {
	Platform       string
	SearchKeywords string
	Deduplicate    bool // 默认应开启；历史数据可能早于写入端去重规则
}

const exportTimeLayout = "2006-01-02 15:04:05"

// Excel 不接受的控制字符（保留 tab / newline / carriage return）
var illegalExcelChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F-\x9F]`)

// 各平台导出的列选择，与汇总视图共用的通用列
var (
	redditColumns = []string{
		"db_id", "platform_id", "search_keywords", "content", "url", "created_at",
		"author", "title", "content_type", "subreddit", "score",
		"upvote_ratio", "num_comments", "permalink", "parent_id", "fetched_at",
	}
	huggingfaceColumns = []string{
		"db_id", "platform_id", "search_keywords", "content", "url", "created_at",
		"author", "title", "content_type", "model_id",
		"discussion_num", "status", "event_type", "fetched_at",
	}
	twitterColumns = []string{
		"db_id", "platform_id", "search_keywords", "content", "url", "created_at",
		"author", "user_display_name", "content_type",
		"likes", "retweets", "replies", "views",
		"user_verified", "language", "parent_id", "fetched_at",
	}
	summaryColumns = []string{
		"db_id", "platform_id", "platform", "search_keywords", "content", "url",
		"created_at", "author", "title", "content_type", "fetched_at",
	}
)

func columnsForPlatform(platform string) []string {
	switch models.Platform(platform) {
	case models.PlatformReddit:
		return redditColumns
	case models.PlatformHuggingFace:
		return huggingfaceColumns
	case models.PlatformTwitter:
		return twitterColumns
	default:
		return summaryColumns
	}
}

// queryForExport 取出待导出的行并按需去重
func queryForExport(opts ExportOptions) ([]models.ProjectedDiscussion, error) {
	rows, err := ListDiscussions(ListFilter{
		Platform:       opts.Platform,
		SearchKeywords: opts.SearchKeywords,
	})
	if err != nil {
		return nil, err
	}
	if opts.Deduplicate {
		before := len(rows)
		rows = DeduplicateProjected(rows)
		if len(rows) < before {
			log.Printf("Export dedup: %d -> %d rows", before, len(rows))
		}
	}
	return rows, nil
}

// ExportCSV 导出为 CSV（UTF-8 BOM，方便 Excel 直接打开）
func ExportCSV(outputFile string, opts ExportOptions) (int, error) {
	rows, err := queryForExport(opts)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		log.Printf("No data to export to %s", outputFile)
		return 0, nil
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		return 0, fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return 0, fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	// UTF-8 BOM
	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return 0, fmt.Errorf("write bom: %w", err)
	}

	cols := columnsForPlatform(opts.Platform)
	w := csv.NewWriter(f)
	if err := w.Write(cols); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	for i := range rows {
		if err := w.Write(rowValues(&rows[i], cols, false)); err != nil {
			return 0, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}

	log.Printf("Exported %d rows to %s", len(rows), outputFile)
	return len(rows), nil
}

// ExportExcel 导出为 Excel：每个平台一个 sheet，外加一个汇总 sheet
func ExportExcel(outputFile string, platforms []string, opts ExportOptions) error {
	if len(platforms) == 0 {
		for _, p := range models.KnownPlatforms {
			platforms = append(platforms, string(p))
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	wrote := false
	for _, platform := range platforms {
		rows, err := queryForExport(ExportOptions{
			Platform:       platform,
			SearchKeywords: opts.SearchKeywords,
			Deduplicate:    opts.Deduplicate,
		})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			continue
		}
		if err := writeSheet(f, platform, columnsForPlatform(platform), rows); err != nil {
			return err
		}
		wrote = true
		log.Printf("Sheet %s: %d rows", platform, len(rows))
	}

	// 汇总 sheet 只含通用列
	all, err := queryForExport(ExportOptions{
		SearchKeywords: opts.SearchKeywords,
		Deduplicate:    opts.Deduplicate,
	})
	if err != nil {
		return err
	}
	if len(all) > 0 {
		if err := writeSheet(f, "all", summaryColumns, all); err != nil {
			return err
		}
		wrote = true
		log.Printf("Sheet all: %d rows", len(all))
	}

	if !wrote {
		log.Printf("No data to export to %s", outputFile)
		return nil
	}

	f.DeleteSheet("Sheet1")
	if err := f.SaveAs(outputFile); err != nil {
		return fmt.Errorf("save excel: %w", err)
	}
	log.Printf("Exported to %s", outputFile)
	return nil
}

func writeSheet(f *excelize.File, name string, cols []string, rows []models.ProjectedDiscussion) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("new sheet %s: %w", name, err)
	}

	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range rows {
		values := rowValues(&rows[i], cols, true)
		cells := make([]interface{}, len(values))
		for j, v := range values {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &cells); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return nil
}

// rowValues 按列选择序列化一行；sanitize 打开时移除 Excel 非法字符
func rowValues(row *models.ProjectedDiscussion, cols []string, sanitize bool) []string {
	values := make([]string, len(cols))
	for i, col := range cols {
		v := columnValue(row, col)
		if sanitize {
			v = illegalExcelChars.ReplaceAllString(v, "")
		}
		values[i] = v
	}
	return values
}

func columnValue(row *models.ProjectedDiscussion, col string) string {
	switch col {
	case "db_id":
		return strconv.FormatUint(uint64(row.DbID), 10)
	case "platform_id":
		return row.PlatformID
	case "platform":
		return row.Platform
	case "content":
		return row.Content
	case "url":
		return row.URL
	case "created_at":
		return row.CreatedAt.Format(exportTimeLayout)
	case "fetched_at":
		return row.FetchedAt.Format(exportTimeLayout)
	case "source":
		return row.Source
	case "search_keywords":
		return strPtr(row.SearchKeywords)
	case "author":
		return strPtr(row.Author)
	case "title":
		return strPtr(row.Title)
	case "content_type":
		return strPtr(row.ContentType)
	case "subreddit":
		return strPtr(row.Subreddit)
	case "score":
		return intPtr(row.Score)
	case "upvote_ratio":
		if row.UpvoteRatio == nil {
			return ""
		}
		return strconv.FormatFloat(*row.UpvoteRatio, 'f', -1, 64)
	case "num_comments":
		return intPtr(row.NumComments)
	case "permalink":
		return strPtr(row.Permalink)
	case "parent_id":
		return strPtr(row.ParentID)
	case "model_id":
		return strPtr(row.ModelID)
	case "discussion_num":
		return intPtr(row.DiscussionNum)
	case "status":
		return strPtr(row.Status)
	case "event_type":
		return strPtr(row.EventType)
	case "likes":
		return intPtr(row.Likes)
	case "retweets":
		return intPtr(row.Retweets)
	case "replies":
		return intPtr(row.Replies)
	case "views":
		return intPtr(row.Views)
	case "user_display_name":
		return strPtr(row.UserDisplayName)
	case "user_verified":
		if row.UserVerified == nil {
			return ""
		}
		return strconv.FormatBool(*row.UserVerified)
	case "language":
		return strPtr(row.Language)
	default:
		return ""
	}
}

func strPtr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intPtr(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

// ExportFilename 根据筛选条件生成带时间戳的导出文件名
func ExportFilename(dir, format string, opts ExportOptions) string {
	name := "discussions"
	if opts.Platform != "" {
		name += "_" + opts.Platform
	}
	if opts.SearchKeywords != "" {
		name += "_" + sanitizeFilename(opts.SearchKeywords)
	}
	ext := format
	if format == "excel" {
		ext = "xlsx"
	}
	name += "_" + time.Now().Format("20060102_150405") + "." + ext
	return filepath.Join(dir, name)
}

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f\x7f ]`)

func sanitizeFilename(name string) string {
	name = invalidFilenameChars.ReplaceAllString(name, "_")
	if len(name) > 200 {
		name = name[:200]
	}
	return name
}
