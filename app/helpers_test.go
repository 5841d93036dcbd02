package app_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/juveniletion/medcore/app"
	"github.com/juveniletion/medcore/internal"
	"github.com/juveniletion/medcore/internal/model"
	"github.com/juveniletion/medcore/internal/service"
	"github.com/juveniletion/medcore/internal/storage"
	"github.com/juveniletion/medcore/pkg/security"
)

type sentMail struct {
	Email string
	Code  string
}

// fakeMailer records what would have been sent. Fail can be flipped to
// simulate an SMTP outage.
type fakeMailer struct {
	mu   sync.Mutex
	Sent []sentMail
	Fail bool
}

func (m *fakeMailer) SendCode(email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return fmt.Errorf("smtp unreachable")
	}

	m.Sent = append(m.Sent, sentMail{Email: email, Code: code})
	return nil
}

func (m *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	require.NotEmpty(t, m.Sent, "no mail was sent")
	return m.Sent[len(m.Sent)-1].Code
}

func newTestDeps(t *testing.T) (*internal.Deps, *fakeMailer) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	viper.Set("session.ttl_hours", 1)
	viper.Set("upload.max_size", int64(10<<20))
	viper.Set("upload.allowed_exts", []string{"png", "jpg", "jpeg", "gif", "pdf"})
	viper.Set("host.cors", []string{"http://localhost:3000"})
	viper.Set("cloudflare.turnstile.enabled", false)
	viper.Set("storage.type", "local")
	viper.Set("storage.local_dir", t.TempDir())

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn))
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(model.User{}, model.Article{}, model.EmailCode{}))

	files, err := storage.New()
	require.NoError(t, err)

	mailer := &fakeMailer{}
	sessions := service.NewSessionStore(time.Hour)
	t.Cleanup(sessions.Close)

	return &internal.Deps{
		DB:       conn,
		Argon:    security.New(),
		Mail:     mailer,
		Sessions: sessions,
		Codes:    &service.EmailCodes{DB: conn},
		Files:    files,
	}, mailer
}

func newTestServer(t *testing.T) (*httptest.Server, *http.Client, *internal.Deps, *fakeMailer) {
	t.Helper()

	d, mailer := newTestDeps(t)

	srv := httptest.NewServer(app.NewRouterWithDeps(d))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return srv, &http.Client{Jar: jar}, d, mailer
}

func seedUser(t *testing.T, d *internal.Deps, username, email, password string, role model.Role) *model.User {
	t.Helper()

	hash, err := d.Argon.GenerateFromPassword(password)
	require.NoError(t, err)

	u := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	require.NoError(t, d.DB.Create(u).Error)

	return u
}

func postJSON(t *testing.T, client *http.Client, url string, body any) (int, map[string]any) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := client.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()

	return resp.StatusCode, decodeBody(t, resp.Body)
}

func getJSON(t *testing.T, client *http.Client, url string) (int, map[string]any) {
	t.Helper()

	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	return resp.StatusCode, decodeBody(t, resp.Body)
}

func decodeBody(t *testing.T, r io.Reader) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.NewDecoder(r).Decode(&out))

	return out
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) map[string]any {
	t.Helper()

	status, body := postJSON(t, client, baseURL+"/api/login", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"], "login failed: %v", body)

	return body
}

// multipartForm builds a multipart body with the given fields and an
// optional file under the `attachment` key.
func multipartForm(t *testing.T, fields map[string]string, filename string, fileContent []byte) (string, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}

	if filename != "" {
		fw, err := w.CreateFormFile("attachment", filename)
		require.NoError(t, err)
		_, err = fw.Write(fileContent)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())

	return w.FormDataContentType(), buf
}
