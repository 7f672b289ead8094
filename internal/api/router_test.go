package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kingstonroots/yaadstory/internal/db"
	"github.com/kingstonroots/yaadstory/internal/media"
	"github.com/kingstonroots/yaadstory/internal/middleware"
	"github.com/kingstonroots/yaadstory/internal/services"
)

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	f.calls++
	return f.text, f.err
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeTranscriber) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	sqlDB, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(context.Background(), sqlDB))

	store, err := db.NewSQLiteStore(sqlDB, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.SeedAdmin(store, "admin", "Admin1234", "Administrator", zap.NewNop()))

	mediaStore, err := media.NewDiskStore(t.TempDir(), "/media")
	require.NoError(t, err)

	ft := &fakeTranscriber{text: "mi story"}
	tokens := middleware.NewTokenAuth("test-secret")
	rt := NewRouter(
		services.NewAuthService(store, tokens.SignToken),
		services.NewQuestionService(store),
		services.NewResponseService(store),
		services.NewTranscriptionService(mediaStore, ft),
		tokens,
		zap.NewNop(),
		BuildInfo{Commit: "test", BuildTime: "now"},
	)
	srv := httptest.NewServer(rt.Handler("", mediaStore.Dir()))
	t.Cleanup(srv.Close)
	return srv, ft
}

func doJSON(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		if len(data) > 0 {
			require.NoError(t, json.Unmarshal(data, out), "body: %s", data)
		}
	}
	return resp.StatusCode
}

func registerUser(t *testing.T, base, username string) string {
	t.Helper()
	var res struct {
		Token string `json:"token"`
	}
	status := doJSON(t, http.MethodPost, base+"/api/auth/register", "", map[string]string{
		"username":        username,
		"password":        "Secret123",
		"confirmPassword": "Secret123",
		"name":            username,
	}, &res)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, res.Token)
	return res.Token
}

func loginUser(t *testing.T, base, username, password string) (string, int) {
	t.Helper()
	var res struct {
		Token string `json:"token"`
	}
	status := doJSON(t, http.MethodPost, base+"/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	}, &res)
	return res.Token, status
}

func TestRegisterAndLoginFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	registerUser(t, srv.URL, "lisa")

	// Duplicate username.
	status := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"username":        "lisa",
		"password":        "Secret123",
		"confirmPassword": "Secret123",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// Weak password.
	status = doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"username":        "marcus",
		"password":        "short",
		"confirmPassword": "short",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	token, status := loginUser(t, srv.URL, "lisa", "Secret123")
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, token)

	_, status = loginUser(t, srv.URL, "lisa", "WrongPass1")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestQuestionsArePublicAndLocalized(t *testing.T) {
	srv, _ := newTestServer(t)

	var questions []struct {
		ID     int64  `json:"id"`
		Text   string `json:"text"`
		Order  int    `json:"order"`
		Prompt string `json:"prompt"`
	}
	status := doJSON(t, http.MethodGet, srv.URL+"/api/questions", "", nil, &questions)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, questions, 28)
	assert.Equal(t, 1, questions[0].Order)
	assert.Equal(t, questions[0].Text, questions[0].Prompt)

	var patois []struct {
		Prompt string `json:"prompt"`
	}
	status = doJSON(t, http.MethodGet, srv.URL+"/api/questions?lang=pat", "", nil, &patois)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Yu Jamaican Roots", patois[0].Prompt)
}

func TestResponseLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL

	lisaToken := registerUser(t, base, "lisa")
	marcusToken := registerUser(t, base, "marcus")
	adminToken, status := loginUser(t, base, "admin", "Admin1234")
	require.Equal(t, http.StatusOK, status)

	var first struct {
		ID             int64    `json:"id"`
		TextResponse   string   `json:"textResponse"`
		Transcriptions []string `json:"transcriptions"`
	}
	status = doJSON(t, http.MethodPost, base+"/api/responses", lisaToken, map[string]any{
		"questionId":   1,
		"textResponse": "My story",
	}, &first)
	require.Equal(t, http.StatusOK, status)
	require.NotZero(t, first.ID)
	assert.Equal(t, []string{}, first.Transcriptions)

	// Resubmitting for the same question updates the same row.
	var second struct {
		ID           int64  `json:"id"`
		TextResponse string `json:"textResponse"`
	}
	status = doJSON(t, http.MethodPost, base+"/api/responses", lisaToken, map[string]any{
		"questionId":   1,
		"textResponse": "My story, revised",
	}, &second)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "My story, revised", second.TextResponse)

	var mine []struct {
		ID int64 `json:"id"`
	}
	status = doJSON(t, http.MethodGet, base+"/api/user/responses", lisaToken, nil, &mine)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, mine, 1)

	respURL := base + "/api/responses/" + strconv.FormatInt(first.ID, 10)
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, respURL, lisaToken, nil, nil))
	assert.Equal(t, http.StatusForbidden, doJSON(t, http.MethodGet, respURL, marcusToken, nil, nil))
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, respURL, adminToken, nil, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, base+"/api/responses/99999", lisaToken, nil, nil))

	// Admin review lists everything; regular users are forbidden.
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, base+"/api/admin/responses", adminToken, nil, nil))
	assert.Equal(t, http.StatusForbidden, doJSON(t, http.MethodGet, base+"/api/admin/responses", lisaToken, nil, nil))

	// Bulk delete is idempotent.
	for i := 0; i < 2; i++ {
		var del struct {
			Message string `json:"message"`
		}
		status = doJSON(t, http.MethodDelete, base+"/api/user/responses", lisaToken, nil, &del)
		require.Equal(t, http.StatusOK, status)
		assert.NotEmpty(t, del.Message)
	}
	status = doJSON(t, http.MethodGet, base+"/api/user/responses", lisaToken, nil, &mine)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, mine)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv, _ := newTestServer(t)

	status := doJSON(t, http.MethodPost, srv.URL+"/api/responses", "", map[string]any{"questionId": 1}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status = doJSON(t, http.MethodPost, srv.URL+"/api/responses", "tampered.token.value", map[string]any{"questionId": 1}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status = doJSON(t, http.MethodGet, srv.URL+"/api/user/responses", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func multipartAudio(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestTranscribeEndpoint(t *testing.T) {
	srv, ft := newTestServer(t)

	// Missing file: 400 and the provider is never called.
	body, contentType := multipartAudio(t, "audio", "", nil)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/transcribe", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, ft.calls)

	// Happy path.
	body, contentType = multipartAudio(t, "audio", "take.webm", []byte("audio-bytes"))
	req, err = http.NewRequest(http.MethodPost, srv.URL+"/api/transcribe", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	var out struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "mi story", out.Text)

	// Provider failure surfaces as a 500 with a safe message.
	ft.err = errors.New("upstream exploded")
	body, contentType = multipartAudio(t, "audio", "take.webm", []byte("audio-bytes"))
	req, err = http.NewRequest(http.MethodPost, srv.URL+"/api/transcribe", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(data), "exploded")
}

func TestUploadAudio(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerUser(t, srv.URL, "lisa")

	// Auth required.
	body, contentType := multipartAudio(t, "audio", "take.webm", []byte("audio-bytes"))
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/upload-audio", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, contentType = multipartAudio(t, "audio", "take.webm", []byte("audio-bytes"))
	req, err = http.NewRequest(http.MethodPost, srv.URL+"/api/upload-audio", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	var out struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, out.URL)

	// The stored blob is retrievable under /media.
	blob, err := http.Get(srv.URL + out.URL)
	require.NoError(t, err)
	data, err := io.ReadAll(blob.Body)
	require.NoError(t, err)
	_ = blob.Body.Close()
	assert.Equal(t, http.StatusOK, blob.StatusCode)
	assert.Equal(t, "audio-bytes", string(data))
}

func TestHealthAndVersion(t *testing.T) {
	srv, _ := newTestServer(t)

	var health struct {
		OK     bool   `json:"ok"`
		Locale string `json:"locale"`
	}
	status := doJSON(t, http.MethodGet, srv.URL+"/health?lang=pat", "", nil, &health)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, health.OK)
	assert.Equal(t, "pat", health.Locale)

	var version struct {
		Commit string `json:"commit"`
	}
	status = doJSON(t, http.MethodGet, srv.URL+"/version", "", nil, &version)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "test", version.Commit)
}

