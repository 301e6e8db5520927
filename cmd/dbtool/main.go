package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/config"
	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/db"
	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/models"
	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/services"

	"github.com/joho/godotenv"
)

const usage = `用法: dbtool <command> [flags]

命令:
  stats                         数据库统计
  query                         查询讨论
  export                        导出 CSV / Excel
  cleanup --days N              清理 N 天前的旧数据
  backfill --tag TAG            给没有关键词标签的记录补标签
  import-twitter --file F       导入 Twitter CSV
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}
	cfg := config.Load()
	db.Init(cfg.DatabasePath)

	switch os.Args[1] {
	case "stats":
		runStats()
	case "query":
		runQuery(os.Args[2:])
	case "export":
		runExport(cfg, os.Args[2:])
	case "cleanup":
		runCleanup(os.Args[2:])
	case "backfill":
		runBackfill(os.Args[2:])
	case "import-twitter":
		runImportTwitter(os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func runStats() {
	stats, err := services.GetDetailedStats()
	if err != nil {
		log.Fatalf("stats: %v", err)
	}
	fmt.Printf("总记录数: %d\n\n按平台:\n", stats.Total)
	for _, p := range models.KnownPlatforms {
		fmt.Printf("  %-12s %d\n", p, stats.Platforms[string(p)])
	}
	fmt.Println("\n按类型:")
	for name, count := range stats.ContentTypes {
		fmt.Printf("  %-12s %d\n", name, count)
	}
}

func runQuery(args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	platform := fs.String("platform", "", "按平台过滤")
	contentType := fs.String("content-type", "", "按内容类型过滤")
	keywords := fs.String("keywords", "", "按抓取关键词标签过滤")
	limit := fs.Int("limit", 20, "返回条数")
	fs.Parse(args)

	rows, err := services.ListDiscussions(services.ListFilter{
		Platform:       *platform,
		ContentType:    *contentType,
		SearchKeywords: *keywords,
		Limit:          *limit,
	})
	if err != nil {
		log.Fatalf("query: %v", err)
	}
	for _, row := range rows {
		title := ""
		if row.Title != nil {
			title = *row.Title
		}
		fmt.Printf("[%s] %s  %s  %s\n", row.Platform, row.CreatedAt.Format("2006-01-02 15:04"), row.PlatformID, title)
	}
	fmt.Printf("共 %d 条\n", len(rows))
}

func runExport(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "csv", "导出格式: csv / excel")
	platform := fs.String("platform", "", "只导出指定平台")
	keywords := fs.String("keywords", "", "只导出指定关键词标签")
	noDedup := fs.Bool("no-dedup", false, "跳过导出去重")
	output := fs.String("output", "", "输出文件（默认自动命名）")
	fs.Parse(args)

	opts := services.ExportOptions{
		Platform:       *platform,
		SearchKeywords: *keywords,
		Deduplicate:    !*noDedup,
	}
	outputFile := *output
	if outputFile == "" {
		outputFile = services.ExportFilename(cfg.ExportDir, *format, opts)
	}

	switch *format {
	case "csv":
		n, err := services.ExportCSV(outputFile, opts)
		if err != nil {
			log.Fatalf("export: %v", err)
		}
		fmt.Printf("导出 %d 条到 %s\n", n, outputFile)
	case "excel":
		var platforms []string
		if *platform != "" {
			platforms = []string{*platform}
		} else {
			for _, p := range models.KnownPlatforms {
				platforms = append(platforms, string(p))
			}
		}
		if err := services.ExportExcel(outputFile, platforms, opts); err != nil {
			log.Fatalf("export: %v", err)
		}
		fmt.Printf("导出到 %s\n", outputFile)
	default:
		log.Fatalf("unknown format %q", *format)
	}
}

func runCleanup(args []string) {
	fs := flag.NewFlagSet("cleanup", flag.ExitOnError)
	days := fs.Int("days", 90, "保留最近 N 天的数据")
	fs.Parse(args)

	n, err := services.CleanupOldDiscussions(*days)
	if err != nil {
		log.Fatalf("cleanup: %v", err)
	}
	fmt.Printf("删除 %d 条\n", n)
}

func runBackfill(args []string) {
	fs := flag.NewFlagSet("backfill", flag.ExitOnError)
	tag := fs.String("tag", "", "要补的关键词标签（必填）")
	fs.Parse(args)
	if *tag == "" {
		fs.Usage()
		os.Exit(2)
	}

	n, err := services.BackfillKeywordTag(*tag)
	if err != nil {
		log.Fatalf("backfill: %v", err)
	}
	fmt.Printf("更新 %d 条\n", n)
}

func runImportTwitter(args []string) {
	fs := flag.NewFlagSet("import-twitter", flag.ExitOnError)
	file := fs.String("file", "", "CSV 文件路径（必填）")
	keywords := fs.String("keywords", "", "给导入数据打的关键词标签")
	verbose := fs.Bool("verbose", false, "打印跳过的行")
	fs.Parse(args)
	if *file == "" {
		fs.Usage()
		os.Exit(2)
	}

	imp := &services.TwitterCSVImporter{SearchKeywords: *keywords, Verbose: *verbose}
	result, err := imp.ImportFile(*file)
	if err != nil {
		log.Fatalf("import: %v", err)
	}
	fmt.Printf("解析 %d 条，跳过 %d 条，写入 %d 条，失败 %d 条\n",
		result.Parsed, result.Skipped, result.Imported, result.Failed)
}
