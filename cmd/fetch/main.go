package main

import (
	"flag"
	"log"
	"os"

	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/config"
	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/db"
	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/models"
	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/services"

	"github.com/joho/godotenv"
)

func main() {
	var (
		sources         = flag.String("sources", "all", "抓取来源: huggingface / reddit / all")
		query           = flag.String("query", "", "搜索关键词（必填）")
		limit           = flag.Int("limit", 20, "每个来源的抓取上限")
		redditGlobal    = flag.Bool("reddit-global", false, "Reddit 全站搜索（默认只搜配置的 subreddit）")
		includeComments = flag.Bool("comments", false, "同时抓取评论")
		export          = flag.Bool("export", false, "抓取完成后导出")
		exportFormat    = flag.String("export-format", "csv", "导出格式: csv / excel")
	)
	flag.Parse()

	if *query == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}
	cfg := config.Load()
	db.Init(cfg.DatabasePath)

	var records []*models.UnifiedRecord

	if *sources == "huggingface" || *sources == "all" {
		fetcher, err := services.NewHuggingFaceFetcher(cfg)
		if err != nil {
			log.Fatalf("HuggingFace fetcher: %v", err)
		}
		recs, err := fetcher.Fetch(*query, *limit, *includeComments)
		if err != nil {
			log.Printf("HuggingFace fetch failed: %v", err)
		}
		records = append(records, recs...)
	}

	if *sources == "reddit" || *sources == "all" {
		fetcher := services.NewRedditFetcher(cfg)
		recs, err := fetcher.Fetch(*query, *limit, *redditGlobal, *includeComments)
		if err != nil {
			log.Printf("Reddit fetch failed: %v", err)
		}
		records = append(records, recs...)
	}

	// 逐条入库，单条失败不影响其余记录
	saved, failed := 0, 0
	for _, rec := range records {
		source := models.SourceAPI
		if rec.Platform == models.PlatformReddit {
			source = models.SourceWeb // old.reddit.com 公共 JSON 端点，无需凭据
		}
		written, err := services.UpsertDiscussion(rec, source)
		if err != nil {
			failed++
			log.Printf("save %s/%s: %v", rec.Platform, rec.PlatformID, err)
			continue
		}
		if written {
			saved++
		}
	}
	log.Printf("fetch done: fetched=%d saved=%d failed=%d", len(records), saved, failed)

	if *export {
		opts := services.ExportOptions{SearchKeywords: *query, Deduplicate: true}
		outputFile := services.ExportFilename(cfg.ExportDir, *exportFormat, opts)
		var err error
		if *exportFormat == "excel" {
			var platforms []string
			for _, p := range models.KnownPlatforms {
				platforms = append(platforms, string(p))
			}
			err = services.ExportExcel(outputFile, platforms, opts)
		} else {
			_, err = services.ExportCSV(outputFile, opts)
		}
		if err != nil {
			log.Fatalf("export: %v", err)
		}
		log.Printf("exported to %s", outputFile)
	}
}
