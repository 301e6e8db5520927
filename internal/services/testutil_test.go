package services

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/db"
	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/models"
)

// setupTestDB 每个测试用独立的临时数据库文件
func setupTestDB(t *testing.T) {
	t.Helper()
	if err := db.Connect(filepath.Join(t.TempDir(), "discussions.db")); err != nil {
		t.Fatalf("connect test db: %v", err)
	}
}

func redditPost(id string, createdAt, fetchedAt time.Time) *models.UnifiedRecord {
	title := "Post " + id
	score := 42
	return &models.UnifiedRecord{
		PlatformID:  id,
		Platform:    models.PlatformReddit,
		ContentType: models.ContentTypePost,
		Author:      "reddit_user",
		Title:       &title,
		Content:     "reddit content " + id,
		URL:         fmt.Sprintf("https://www.reddit.com/r/LocalLLaMA/comments/%s/", id),
		Score:       &score,
		CreatedAt:   createdAt,
		FetchedAt:   fetchedAt,
		Metadata: &models.RedditMetadata{
			Subreddit: "LocalLLaMA",
			Permalink: "/r/LocalLLaMA/comments/" + id + "/",
			IsSelf:    true,
		},
	}
}

func redditComment(id, parentID string, createdAt time.Time) *models.UnifiedRecord {
	rec := redditPost(id, createdAt, createdAt)
	rec.ContentType = models.ContentTypeComment
	rec.Title = nil
	rec.ParentID = &parentID
	rec.Content = "reddit comment " + id
	return rec
}

func hfDiscussionRecord(id, modelID string, createdAt time.Time) *models.UnifiedRecord {
	title := "Discussion " + id
	num := 7
	return &models.UnifiedRecord{
		PlatformID:  id,
		Platform:    models.PlatformHuggingFace,
		ContentType: models.ContentTypeDiscussion,
		Author:      "hf_user",
		Title:       &title,
		Content:     "hf content " + id,
		URL:         "https://huggingface.co/" + modelID + "/discussions/7",
		CreatedAt:   createdAt,
		FetchedAt:   createdAt,
		Metadata: &models.HuggingFaceMetadata{
			ModelID:       modelID,
			DiscussionNum: &num,
		},
	}
}

func twitterPost(id string, createdAt time.Time) *models.UnifiedRecord {
	likes := 10
	return &models.UnifiedRecord{
		PlatformID:  id,
		Platform:    models.PlatformTwitter,
		ContentType: models.ContentTypePost,
		Author:      "tw_user",
		Content:     "tweet content " + id,
		URL:         "https://x.com/tw_user/status/" + id,
		Score:       &likes,
		CreatedAt:   createdAt,
		FetchedAt:   createdAt,
		Metadata:    &models.TwitterMetadata{Likes: likes},
	}
}
