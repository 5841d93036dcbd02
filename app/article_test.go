package app_test

import (
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juveniletion/medcore/internal/model"
)

func TestAdminPublishesArticleWithAttachment(t *testing.T) {
	srv, client, d, _ := newTestServer(t)
	admin := seedUser(t, d, "chief", "chief@medcore.test", "pw123456", model.RoleAdmin)
	login(t, client, srv.URL, "chief@medcore.test", "pw123456")

	ct, buf := multipartForm(t, map[string]string{
		"title":   "New imaging guidelines",
		"content": "Full text here.",
	}, "scan.png", []byte("png-bytes"))

	resp, err := client.Post(srv.URL+"/api/admin/article/new", ct, buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, resp.Body)["success"])

	var a model.Article
	require.NoError(t, d.DB.First(&a).Error)
	assert.Equal(t, "New imaging guidelines", a.Title)
	assert.Equal(t, model.DefaultCategory, a.Category, "category defaults when omitted")
	assert.Equal(t, admin.ID, a.AuthorID)
	assert.Equal(t, "scan.png", a.Attachment)

	// The stored file is served back
	fileResp, err := client.Get(srv.URL + "/uploads/scan.png")
	require.NoError(t, err)
	defer fileResp.Body.Close()
	require.Equal(t, http.StatusOK, fileResp.StatusCode)

	content, err := io.ReadAll(fileResp.Body)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))
}

func TestDisallowedAttachmentIsSilentlyDropped(t *testing.T) {
	srv, client, d, _ := newTestServer(t)
	seedUser(t, d, "chief", "chief@medcore.test", "pw123456", model.RoleAdmin)
	login(t, client, srv.URL, "chief@medcore.test", "pw123456")

	ct, buf := multipartForm(t, map[string]string{
		"title":    "Budget report",
		"content":  "Numbers.",
		"category": "international",
	}, "payload.exe", []byte("MZ..."))

	resp, err := client.Post(srv.URL+"/api/admin/article/new", ct, buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	// The request still succeeds, only the attachment is gone
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, resp.Body)["success"])

	var a model.Article
	require.NoError(t, d.DB.First(&a).Error)
	assert.Equal(t, "international", a.Category)
	assert.Empty(t, a.Attachment)

	fileResp, err := client.Get(srv.URL + "/uploads/payload.exe")
	require.NoError(t, err)
	fileResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, fileResp.StatusCode)
}

func TestArticleCreateRequiresAdmin(t *testing.T) {
	srv, client, d, _ := newTestServer(t)
	seedUser(t, d, "reader", "reader@x.com", "pw123456", model.RoleUser)

	ct, buf := multipartForm(t, map[string]string{
		"title":   "Nope",
		"content": "Nope.",
	}, "", nil)

	// Anonymous caller
	resp, err := (&http.Client{}).Post(srv.URL+"/api/admin/article/new", ct, buf)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Authenticated but not admin
	login(t, client, srv.URL, "reader@x.com", "pw123456")

	ct, buf = multipartForm(t, map[string]string{
		"title":   "Nope",
		"content": "Nope.",
	}, "", nil)

	resp, err = client.Post(srv.URL+"/api/admin/article/new", ct, buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var count int64
	require.NoError(t, d.DB.Model(model.Article{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestArticleListFiltersAndCaps(t *testing.T) {
	srv, client, d, _ := newTestServer(t)
	author := seedUser(t, d, "chief", "chief@medcore.test", "pw123456", model.RoleAdmin)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		require.NoError(t, d.DB.Create(&model.Article{
			Title:     fmt.Sprintf("domestic %d", i),
			Content:   "body",
			Category:  "domestic",
			AuthorID:  author.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}
	for i := 0; i < 2; i++ {
		require.NoError(t, d.DB.Create(&model.Article{
			Title:     fmt.Sprintf("international %d", i),
			Content:   "body",
			Category:  "international",
			AuthorID:  author.ID,
			CreatedAt: base.Add(-time.Duration(i+1) * time.Minute),
		}).Error)
	}

	status, body := getJSON(t, client, srv.URL+"/api/articles?category=domestic")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])

	items := body["data"].([]any)
	require.Len(t, items, 20, "capped at 20")

	// Newest first, only the requested category
	assert.Equal(t, "domestic 24", items[0].(map[string]any)["title"])
	for _, raw := range items {
		item := raw.(map[string]any)
		assert.Equal(t, "domestic", item["category"])
		assert.Equal(t, "chief", item["author_name"])
	}

	status, body = getJSON(t, client, srv.URL+"/api/articles?category=international")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"].([]any), 2)

	status, body = getJSON(t, client, srv.URL+"/api/articles")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"].([]any), 20)
}

func TestArticleFetch(t *testing.T) {
	srv, client, d, _ := newTestServer(t)
	author := seedUser(t, d, "chief", "chief@medcore.test", "pw123456", model.RoleAdmin)

	a := model.Article{
		Title:    "Single dose study",
		Content:  "Details.",
		Category: "domestic",
		AuthorID: author.ID,
	}
	require.NoError(t, d.DB.Create(&a).Error)

	status, body := getJSON(t, client, fmt.Sprintf("%s/api/article/%d", srv.URL, a.ID))
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "Single dose study", data["title"])
	assert.Equal(t, "chief", data["author_name"])

	status, body = getJSON(t, client, srv.URL+"/api/article/99999")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
}
