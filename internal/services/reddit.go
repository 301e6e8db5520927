package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/config"
	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/models"
)

const defaultRedditBaseURL = "https://old.reddit.com"

// RedditFetcher 通过 Reddit 公开 JSON 接口搜索帖子和评论
type RedditFetcher struct {
	userAgent  string
	subreddits []string
	client     *http.Client
	limiter    *RateLimiter
	baseURL    string // 测试时可替换
}

func NewRedditFetcher(cfg *config.Config) *RedditFetcher {
	return &RedditFetcher{
		userAgent:  cfg.RedditUserAgent,
		subreddits: cfg.Subreddits,
		client:     &http.Client{Timeout: cfg.RedditTimeout},
		limiter:    NewRateLimiter(cfg.RedditRateLimit),
		baseURL:    defaultRedditBaseURL,
	}
}

func (f *RedditFetcher) getJSON(path string, params url.Values, out interface{}) error {
	endpoint := f.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	return retryOnFailure(3, 2*time.Second, 10*time.Second, func() error {
		f.limiter.Wait()

		req, err := http.NewRequest(http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", f.userAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return &httpStatusError{StatusCode: resp.StatusCode, URL: endpoint}
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
}

// redditThing Reddit listing 里的单个条目（t3 帖子 / t1 评论）
type redditThing struct {
	Kind string `json:"kind"`
	Data struct {
		ID            string          `json:"id"`
		Title         string          `json:"title"`
		Selftext      string          `json:"selftext"`
		Body          string          `json:"body"`
		Author        string          `json:"author"`
		Subreddit     string          `json:"subreddit"`
		Score         int             `json:"score"`
		UpvoteRatio   float64         `json:"upvote_ratio"`
		NumComments   int             `json:"num_comments"`
		Permalink     string          `json:"permalink"`
		URL           string          `json:"url"`
		IsSelf        bool            `json:"is_self"`
		LinkFlairText *string         `json:"link_flair_text"`
		CreatedUTC    float64         `json:"created_utc"`
		Replies       json.RawMessage `json:"replies"` // 空字符串或嵌套 listing
	} `json:"data"`
}

type redditListing struct {
	Data struct {
		After    string        `json:"after"`
		Children []redditThing `json:"children"`
	} `json:"data"`
}

// SearchSubreddit 在单个板块内搜索帖子
func (f *RedditFetcher) SearchSubreddit(subreddit, query string, limit int, searchKeywords string) ([]*models.UnifiedRecord, error) {
	params := url.Values{
		"q":           {query},
		"restrict_sr": {"on"},
		"sort":        {"new"},
		"limit":       {fmt.Sprint(limit)},
	}
	var listing redditListing
	if err := f.getJSON("/r/"+subreddit+"/search.json", params, &listing); err != nil {
		return nil, fmt.Errorf("search r/%s: %w", subreddit, err)
	}

	var records []*models.UnifiedRecord
	for _, child := range listing.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		records = append(records, f.postRecord(child, searchKeywords))
	}
	log.Printf("Reddit: found %d posts matching %q in r/%s", len(records), query, subreddit)
	return records, nil
}

// SearchAllReddit 全站搜索，适合小众关键词
func (f *RedditFetcher) SearchAllReddit(query string, limit int, searchKeywords string) ([]*models.UnifiedRecord, error) {
	params := url.Values{
		"q":     {query},
		"sort":  {"new"},
		"limit": {fmt.Sprint(limit)},
	}
	var listing redditListing
	if err := f.getJSON("/search.json", params, &listing); err != nil {
		return nil, fmt.Errorf("global search %q: %w", query, err)
	}

	var records []*models.UnifiedRecord
	for _, child := range listing.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		records = append(records, f.postRecord(child, searchKeywords))
	}
	log.Printf("Reddit: global search found %d posts for %q", len(records), query)
	return records, nil
}

// FetchPostComments 抓取单个帖子的评论树（拍平，全部挂在帖子下）
func (f *RedditFetcher) FetchPostComments(postID, subreddit, searchKeywords string) ([]*models.UnifiedRecord, error) {
	var listings []redditListing
	if err := f.getJSON("/comments/"+postID+".json", nil, &listings); err != nil {
		return nil, fmt.Errorf("fetch comments of %s: %w", postID, err)
	}
	if len(listings) < 2 {
		return nil, nil
	}

	var records []*models.UnifiedRecord
	f.collectComments(listings[1].Data.Children, postID, subreddit, searchKeywords, &records)
	log.Printf("Reddit: fetched %d comments for post %s", len(records), postID)
	return records, nil
}

func (f *RedditFetcher) collectComments(children []redditThing, postID, subreddit, searchKeywords string, out *[]*models.UnifiedRecord) {
	for _, child := range children {
		if child.Kind != "t1" || child.Data.Body == "" {
			continue
		}
		*out = append(*out, f.commentRecord(child, postID, subreddit, searchKeywords))

		// replies 字段要么是空字符串要么是嵌套 listing
		if len(child.Data.Replies) > 2 {
			var nested redditListing
			if err := json.Unmarshal(child.Data.Replies, &nested); err == nil {
				f.collectComments(nested.Data.Children, postID, subreddit, searchKeywords, out)
			}
		}
	}
}

// Fetch 按配置的板块列表逐个搜索；global 打开时改为全站搜索
func (f *RedditFetcher) Fetch(query string, limit int, global bool, includeComments bool) ([]*models.UnifiedRecord, error) {
	var posts []*models.UnifiedRecord
	if global {
		found, err := f.SearchAllReddit(query, limit, query)
		if err != nil {
			return nil, err
		}
		posts = found
	} else {
		log.Printf("Reddit: searching %d subreddits for %q", len(f.subreddits), query)
		for i, subreddit := range f.subreddits {
			log.Printf("Reddit: [%d/%d] r/%s", i+1, len(f.subreddits), subreddit)
			found, err := f.SearchSubreddit(subreddit, query, limit, query)
			if err != nil {
				// 单个板块失败不中断整次抓取
				log.Printf("Reddit: %v", err)
				continue
			}
			posts = append(posts, found...)
		}
	}

	all := posts
	if includeComments {
		for _, post := range posts {
			meta := post.Metadata.(*models.RedditMetadata)
			comments, err := f.FetchPostComments(post.PlatformID, meta.Subreddit, query)
			if err != nil {
				log.Printf("Reddit: %v", err)
				continue
			}
			all = append(all, comments...)
		}
	}
	log.Printf("Reddit: fetched %d records for %q", len(all), query)
	return all, nil
}

func (f *RedditFetcher) postRecord(t redditThing, searchKeywords string) *models.UnifiedRecord {
	d := t.Data
	score := d.Score
	ratio := d.UpvoteRatio
	numComments := d.NumComments
	title := d.Title

	rec := &models.UnifiedRecord{
		PlatformID:  d.ID,
		Platform:    models.PlatformReddit,
		ContentType: models.ContentTypePost,
		Author:      d.Author,
		Title:       &title,
		Content:     postContent(d.Selftext, d.Title),
		URL:         "https://www.reddit.com" + d.Permalink,
		Score:       &score,
		CreatedAt:   time.Unix(int64(d.CreatedUTC), 0),
		Metadata: &models.RedditMetadata{
			Subreddit:     d.Subreddit,
			UpvoteRatio:   &ratio,
			NumComments:   &numComments,
			Permalink:     d.Permalink,
			IsSelf:        d.IsSelf,
			LinkFlairText: d.LinkFlairText,
		},
	}
	if searchKeywords != "" {
		rec.SearchKeywords = &searchKeywords
	}
	return rec
}

func (f *RedditFetcher) commentRecord(t redditThing, postID, subreddit string, searchKeywords string) *models.UnifiedRecord {
	d := t.Data
	score := d.Score
	parent := postID

	rec := &models.UnifiedRecord{
		PlatformID:  d.ID,
		Platform:    models.PlatformReddit,
		ContentType: models.ContentTypeComment,
		Author:      d.Author,
		Content:     d.Body,
		URL:         "https://www.reddit.com" + d.Permalink,
		Score:       &score,
		ParentID:    &parent,
		CreatedAt:   time.Unix(int64(d.CreatedUTC), 0),
		Metadata: &models.RedditMetadata{
			Subreddit: subreddit,
			Permalink: d.Permalink,
		},
	}
	if searchKeywords != "" {
		rec.SearchKeywords = &searchKeywords
	}
	return rec
}

// postContent 空自文帖用标题占位，保证 content 非空
func postContent(selftext, title string) string {
	if selftext != "" {
		return selftext
	}
	return title
}
