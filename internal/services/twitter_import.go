package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/models"

	"github.com/araddon/dateparse"
)

// TwitterCSVImporter 导入浏览器侧采集工具导出的推文 CSV
//
// 列名沿用采集工具的中文表头；浏览器自动化本身不在本仓库范围内，
// 这里只消费它的产物。
type TwitterCSVImporter struct {
	SearchKeywords string // 给本次导入的数据打的关键词标签
	Verbose        bool
}

// ImportResult 单次导入的统计
type ImportResult struct {
	Parsed   int // 成功解析的行数
	Skipped  int // 缺必填字段或日期无法解析而跳过的行数
	Imported int // 实际写入（插入或更新）的行数
	Failed   int // 入库失败的行数
}

// ImportFile 读取 CSV 并逐条入库
//
// 单条失败只记日志不中断导入（这里就是批量契约文档里说的
// "需要部分成功时自行逐条包装"的那个调用方）。
func (imp *TwitterCSVImporter) ImportFile(csvFile string) (*ImportResult, error) {
	f, err := os.Open(csvFile)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	records, result, err := imp.Parse(f)
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		ok, err := UpsertDiscussion(rec, models.SourceCSVImport)
		if err != nil {
			result.Failed++
			log.Printf("Twitter import: failed to save %s: %v", rec.PlatformID, err)
			continue
		}
		if ok {
			result.Imported++
		}
	}

	log.Printf("Twitter import: parsed=%d skipped=%d imported=%d failed=%d",
		result.Parsed, result.Skipped, result.Imported, result.Failed)
	return result, nil
}

// Parse 解析 CSV 内容为统一记录（不写库）
func (imp *TwitterCSVImporter) Parse(r io.Reader) ([]*models.UnifiedRecord, *ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	// 第一列可能带 UTF-8 BOM
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	result := &ImportResult{}
	var records []*models.UnifiedRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv row: %w", err)
		}

		rec := imp.parseRow(row, index)
		if rec == nil {
			result.Skipped++
			continue
		}
		records = append(records, rec)
		result.Parsed++
	}
	return records, result, nil
}

// parseRow 把一行 CSV 转成统一记录；必填字段缺失返回 nil
func (imp *TwitterCSVImporter) parseRow(row []string, index map[string]int) *models.UnifiedRecord {
	get := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	tweetID := get("ID")
	content := get("内容")
	tweetURL := get("链接")
	if tweetID == "" || content == "" || tweetURL == "" {
		if imp.Verbose {
			log.Printf("Twitter import: skip row, id=%q content len=%d", tweetID, len(content))
		}
		return nil
	}

	createdAt, err := dateparse.ParseAny(get("发布日期"))
	if err != nil {
		if imp.Verbose {
			log.Printf("Twitter import: cannot parse date %q: %v", get("发布日期"), err)
		}
		return nil
	}

	// 有回复对象的是评论，否则是帖子
	parentID := optStr(get("回复推文 ID"))
	contentType := models.ContentTypePost
	if parentID != nil {
		contentType = models.ContentTypeComment
	}

	likes := parseInt(get("喜欢数"))
	var userCreatedAt *time.Time
	if v := get("用户注册时间"); v != "" {
		if t, err := dateparse.ParseAny(v); err == nil {
			userCreatedAt = &t
		}
	}

	rec := &models.UnifiedRecord{
		PlatformID:  tweetID,
		Platform:    models.PlatformTwitter,
		ContentType: contentType,
		Author:      get("用户名"),
		Content:     content,
		URL:         tweetURL,
		Score:       &likes, // likes 充当 score
		ParentID:    parentID,
		CreatedAt:   createdAt,
		Metadata: &models.TwitterMetadata{
			Likes:             likes,
			Retweets:          parseInt(get("转发数")),
			Replies:           parseInt(get("回复数")),
			Views:             optInt(get("浏览量")),
			Bookmarks:         optInt(get("书签数")),
			Language:          optStr(get("语言")),
			Tags:              optStr(get("标签")),
			PossiblySensitive: parseBool(get("可能敏感")),
			UserID:            optStr(get("用户ID")),
			UserDisplayName:   optStr(get("用户昵称")),
			UserAvatar:        optStr(get("用户头像链接")),
			UserBanner:        optStr(get("用户封面图片链接")),
			UserBio:           optStr(get("用户个人简介")),
			UserLocation:      optStr(get("用户所在地")),
			UserVerified:      parseBool(get("用户是否认证账号")),
			UserFollowers:     optInt(get("用户粉丝数")),
			UserTweetCount:    optInt(get("用户推文数")),
			UserMediaCount:    optInt(get("用户媒体数")),
			UserCreatedAt:     userCreatedAt,
			ReplyToUsername:   optStr(get("回复推文用户名")),
			ReplyToUserID:     optStr(get("回复推文用户 ID")),
			ReplyToURL:        optStr(get("回复推文链接")),
		},
	}
	if imp.SearchKeywords != "" {
		kw := imp.SearchKeywords
		rec.SearchKeywords = &kw
	}
	return rec
}

func parseInt(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func optInt(v string) *int {
	if v == "" {
		return nil
	}
	n := parseInt(v)
	return &n
}

func optStr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "true", "1", "yes", "是":
		return true
	}
	return false
}
