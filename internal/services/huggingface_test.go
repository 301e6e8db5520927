package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/config"
	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/models"
)

func newTestHFFetcher(t *testing.T, handler http.Handler) (*HuggingFaceFetcher, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	fetcher, err := NewHuggingFaceFetcher(&config.Config{
		HuggingFaceToken: "test-token",
		HFRateLimit:      0, // 测试不限速
	})
	if err != nil {
		t.Fatalf("NewHuggingFaceFetcher: %v", err)
	}
	fetcher.baseURL = server.URL
	return fetcher, server
}

func TestHuggingFaceFetcherRequiresToken(t *testing.T) {
	if _, err := NewHuggingFaceFetcher(&config.Config{}); err == nil {
		t.Fatal("expected error without token")
	}
}

func TestHuggingFaceSearchModels(t *testing.T) {
	fetcher, _ := newTestHFFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		if r.URL.Query().Get("search") != "llama" {
			t.Errorf("search param: %q", r.URL.Query().Get("search"))
		}
		w.Write([]byte(`[{"id":"meta-llama/Llama-3"},{"id":"other/llama-ft"}]`))
	}))

	ids, err := fetcher.SearchModels("llama", 10)
	if err != nil {
		t.Fatalf("SearchModels: %v", err)
	}
	if len(ids) != 2 || ids[0] != "meta-llama/Llama-3" {
		t.Errorf("unexpected ids: %v", ids)
	}
}

// 讨论本体与评论事件各成一条记录，评论挂在讨论的 platform_id 下
func TestHuggingFaceFetchDiscussionsWithComments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/models/org/model/discussions", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":1,"discussions":[
			{"num":5,"title":"Great model","status":"open","createdAt":"2025-06-01T10:00:00.000Z","author":{"name":"alice"}}
		]}`))
	})
	mux.HandleFunc("/api/models/org/model/discussions/5", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"events":[
			{"id":"ev1","type":"comment","createdAt":"2025-06-01T11:00:00.000Z","author":{"name":"bob"},
			 "data":{"latest":{"raw":"Thanks, works well"}}},
			{"id":"ev2","type":"status-change","createdAt":"2025-06-01T12:00:00.000Z","author":{"name":"alice"},
			 "data":{"latest":{"raw":""}}}
		]}`))
	})

	fetcher, _ := newTestHFFetcher(t, mux)
	records, err := fetcher.FetchDiscussionsForModel("org/model", true, "llama")
	if err != nil {
		t.Fatalf("FetchDiscussionsForModel: %v", err)
	}
	// 只有带内容的事件成为记录
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	comment := records[0]
	if comment.PlatformID != "org/model_5_ev1" {
		t.Errorf("platform_id: %q", comment.PlatformID)
	}
	if comment.ContentType != models.ContentTypeComment {
		t.Errorf("content_type: %q", comment.ContentType)
	}
	if comment.ParentID == nil || *comment.ParentID != "org/model_5" {
		t.Errorf("parent_id: %+v", comment.ParentID)
	}
	if comment.Author != "bob" {
		t.Errorf("author: %q", comment.Author)
	}
	if err := comment.Validate(); err != nil {
		t.Errorf("record must be valid: %v", err)
	}
}

func TestHuggingFaceFetchDiscussionsWithoutComments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/models/org/model/discussions", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":1,"discussions":[
			{"num":5,"title":"Great model","status":"open","createdAt":"2025-06-01T10:00:00.000Z","author":{"name":"alice"}}
		]}`))
	})

	fetcher, _ := newTestHFFetcher(t, mux)
	records, err := fetcher.FetchDiscussionsForModel("org/model", false, "")
	if err != nil {
		t.Fatalf("FetchDiscussionsForModel: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.PlatformID != "org/model_5" {
		t.Errorf("platform_id: %q", rec.PlatformID)
	}
	if rec.ContentType != models.ContentTypeDiscussion {
		t.Errorf("content_type: %q", rec.ContentType)
	}
	meta := rec.Metadata.(*models.HuggingFaceMetadata)
	if meta.ModelID != "org/model" || meta.DiscussionNum == nil || *meta.DiscussionNum != 5 {
		t.Errorf("metadata: %+v", meta)
	}
}
