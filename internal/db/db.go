package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Init 打开数据库并完成建表，失败直接终止进程（启动期没有降级模式）
func Init(databasePath string) {
	if err := Connect(databasePath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	log.Printf("Database ready at %s", databasePath)
}

// Connect 打开 SQLite 文件并幂等地迁移表结构
// 每次进程启动都可以安全调用；迁移只做增量变更（加列对已有列不报错）
func Connect(databasePath string) error {
	// 确保目录存在
	if dir := filepath.Dir(databasePath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}

	// busy_timeout 吸收并发写入者的锁竞争，foreign_keys 打开级联删除
	dsn := databasePath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	var err error
	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	// Auto Migrate
	err = DB.AutoMigrate(
		&models.Discussion{},
		&models.RedditDiscussion{},
		&models.HuggingFaceDiscussion{},
		&models.TwitterDiscussion{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	return nil
}
