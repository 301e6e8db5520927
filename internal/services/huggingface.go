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

const defaultHuggingFaceBaseURL = "https://huggingface.co"

// HuggingFaceFetcher 通过 HuggingFace REST API 抓取模型讨论
type HuggingFaceFetcher struct {
	token   string
	client  *http.Client
	limiter *RateLimiter
	baseURL string // 测试时可替换
}

// NewHuggingFaceFetcher token 缺失直接报错，鉴权之外的流程不在本层处理
func NewHuggingFaceFetcher(cfg *config.Config) (*HuggingFaceFetcher, error) {
	if cfg.HuggingFaceToken == "" {
		return nil, fmt.Errorf("HUGGINGFACE_TOKEN is required, set it in .env")
	}
	return &HuggingFaceFetcher{
		token:   cfg.HuggingFaceToken,
		client:  &http.Client{Timeout: cfg.HFAPITimeout},
		limiter: NewRateLimiter(cfg.HFRateLimit),
		baseURL: defaultHuggingFaceBaseURL,
	}, nil
}

func (f *HuggingFaceFetcher) getJSON(path string, params url.Values, out interface{}) error {
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
		req.Header.Set("Authorization", "Bearer "+f.token)

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

// SearchModels 按关键词搜索模型，返回模型 ID 列表
func (f *HuggingFaceFetcher) SearchModels(query string, limit int) ([]string, error) {
	params := url.Values{"search": {query}}
	if limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}

	var result []struct {
		ID string `json:"id"`
	}
	if err := f.getJSON("/api/models", params, &result); err != nil {
		return nil, fmt.Errorf("search models %q: %w", query, err)
	}

	ids := make([]string, 0, len(result))
	for _, m := range result {
		ids = append(ids, m.ID)
	}
	log.Printf("HuggingFace: found %d models for %q", len(ids), query)
	return ids, nil
}

type hfAuthor struct {
	Name string `json:"name"`
}

type hfDiscussion struct {
	Num       int      `json:"num"`
	Title     string   `json:"title"`
	Status    string   `json:"status"`
	CreatedAt string   `json:"createdAt"`
	Author    hfAuthor `json:"author"`
}

type hfEvent struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	CreatedAt string   `json:"createdAt"`
	Author    hfAuthor `json:"author"`
	Data      struct {
		Latest struct {
			Raw string `json:"raw"`
		} `json:"latest"`
	} `json:"data"`
}

// FetchDiscussionsForModel 抓取单个模型的全部讨论
// includeComments 打开时逐个讨论拉取事件流，把有内容的事件存成 comment
func (f *HuggingFaceFetcher) FetchDiscussionsForModel(modelID string, includeComments bool, searchKeywords string) ([]*models.UnifiedRecord, error) {
	var listing struct {
		Discussions []hfDiscussion `json:"discussions"`
		Count       int            `json:"count"`
	}
	path := "/api/models/" + modelID + "/discussions"
	if err := f.getJSON(path, nil, &listing); err != nil {
		return nil, fmt.Errorf("fetch discussions for %s: %w", modelID, err)
	}

	var records []*models.UnifiedRecord
	for _, d := range listing.Discussions {
		discussionID := fmt.Sprintf("%s_%d", modelID, d.Num)
		discussionURL := fmt.Sprintf("%s/%s/discussions/%d", f.baseURL, modelID, d.Num)
		createdAt := parseHFTime(d.CreatedAt)

		if !includeComments {
			records = append(records, hfRecord(
				discussionID, modelID, d, d.Title, d.Author.Name,
				createdAt, discussionURL, models.ContentTypeDiscussion, nil, searchKeywords, nil))
			continue
		}

		var detail struct {
			Events []hfEvent `json:"events"`
		}
		detailPath := fmt.Sprintf("%s/%d", path, d.Num)
		if err := f.getJSON(detailPath, nil, &detail); err != nil {
			log.Printf("HuggingFace: skip discussion %d of %s: %v", d.Num, modelID, err)
			continue
		}

		for _, ev := range detail.Events {
			if ev.Data.Latest.Raw == "" {
				continue
			}
			eventID := fmt.Sprintf("%s_%d_%s", modelID, d.Num, ev.ID)
			eventType := ev.Type
			records = append(records, hfRecord(
				eventID, modelID, d, ev.Data.Latest.Raw, ev.Author.Name,
				parseHFTime(ev.CreatedAt), discussionURL, models.ContentTypeComment,
				&eventType, searchKeywords, &discussionID))
		}
	}
	return records, nil
}

// Fetch 搜索模型并抓取每个模型的讨论
func (f *HuggingFaceFetcher) Fetch(query string, modelLimit int, includeComments bool) ([]*models.UnifiedRecord, error) {
	modelIDs, err := f.SearchModels(query, modelLimit)
	if err != nil {
		return nil, err
	}

	var all []*models.UnifiedRecord
	for i, modelID := range modelIDs {
		log.Printf("HuggingFace: [%d/%d] fetching discussions for %s", i+1, len(modelIDs), modelID)
		records, err := f.FetchDiscussionsForModel(modelID, includeComments, query)
		if err != nil {
			// 单个模型失败不中断整次抓取
			log.Printf("HuggingFace: %v", err)
			continue
		}
		all = append(all, records...)
	}
	log.Printf("HuggingFace: fetched %d records for %q", len(all), query)
	return all, nil
}

func hfRecord(id, modelID string, d hfDiscussion, content, author string, createdAt time.Time,
	pageURL string, contentType models.ContentType, eventType *string, searchKeywords string, parentID *string) *models.UnifiedRecord {

	if author == "" {
		author = "Unknown"
	}
	num := d.Num
	status := d.Status
	title := d.Title

	rec := &models.UnifiedRecord{
		PlatformID:  id,
		Platform:    models.PlatformHuggingFace,
		ContentType: contentType,
		Author:      author,
		Title:       &title,
		Content:     content,
		URL:         pageURL,
		CreatedAt:   createdAt,
		ParentID:    parentID,
		Metadata: &models.HuggingFaceMetadata{
			ModelID:       modelID,
			DiscussionNum: &num,
			Status:        &status,
			EventType:     eventType,
		},
	}
	if searchKeywords != "" {
		rec.SearchKeywords = &searchKeywords
	}
	return rec
}

func parseHFTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Now()
	}
	return t
}
