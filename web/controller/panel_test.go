package controller

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"copycheck/database"
	"copycheck/database/model"
	"copycheck/logger"
	"copycheck/web/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"

	openai "github.com/sashabaranov/go-openai"
)

type testMsg struct {
	Success bool            `json:"success"`
	Msg     string          `json:"msg"`
	Obj     json.RawMessage `json:"obj"`
}

func setup() {
	logger.InitLogger(logging.ERROR)
	dbPath := "test.db"
	os.Remove(dbPath)
	database.InitDB(dbPath)
}

func teardown() {
	db, _ := database.GetDB().DB()
	db.Close()
	os.Remove("test.db")
	os.RemoveAll("log")
}

func newTestRouter(completionService *service.CompletionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	engine.Use(sessions.Sessions("copycheck", store))
	g := engine.Group("/")
	NewIndexController(g)
	NewPanelController(g, completionService)
	return engine
}

func doRequest(engine *gin.Engine, req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func postJSON(engine *gin.Engine, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return doRequest(engine, req, cookies)
}

func getPath(engine *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	return doRequest(engine, req, cookies)
}

func decodeMsg(t *testing.T, w *httptest.ResponseRecorder) testMsg {
	t.Helper()
	var m testMsg
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func registerAndLogin(t *testing.T, engine *gin.Engine, username string, password string) []*http.Cookie {
	t.Helper()
	w := postJSON(engine, "/register", gin.H{
		"username":        username,
		"password":        password,
		"confirmPassword": password,
	}, nil)
	assert.True(t, decodeMsg(t, w).Success)

	w = postJSON(engine, "/login", gin.H{"username": username, "password": password}, nil)
	assert.True(t, decodeMsg(t, w).Success)
	cookies := w.Result().Cookies()
	assert.NotEmpty(t, cookies)
	return cookies
}

func historyCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	assert.NoError(t, database.GetDB().Model(&model.HistoryEntry{}).Count(&count).Error)
	return count
}

func TestGenerateFailureWritesNoHistory(t *testing.T) {
	setup()
	defer teardown()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
	}))
	defer server.Close()

	engine := newTestRouter(service.NewCompletionServiceWith("test-key", server.URL))
	cookies := registerAndLogin(t, engine, "alice", "secret")

	w := postJSON(engine, "/panel/api/generate", gin.H{
		"type":   "SMS",
		"topic":  "新商品",
		"length": "標準 (300字程度)",
		"model":  "gpt-4o-mini",
	}, cookies)
	m := decodeMsg(t, w)
	assert.False(t, m.Success)
	assert.Contains(t, m.Msg, "エラーが発生しました")

	form := url.Values{"inputText": {"校閲対象"}, "model": {"gpt-4o-mini"}}
	req := httptest.NewRequest(http.MethodPost, "/panel/api/proofread", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = doRequest(engine, req, cookies)
	m = decodeMsg(t, w)
	assert.False(t, m.Success)

	// A failed completion never produces a history row
	assert.EqualValues(t, 0, historyCount(t))
}

func TestGenerateWritesHistoryAndDefaultsTemperature(t *testing.T) {
	setup()
	defer teardown()

	var received openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "生成結果"}},
			},
		})
	}))
	defer server.Close()

	engine := newTestRouter(service.NewCompletionServiceWith("test-key", server.URL))
	cookies := registerAndLogin(t, engine, "alice", "secret")

	// Omitted temperature falls back to the slider default
	w := postJSON(engine, "/panel/api/generate", gin.H{
		"type":   "メールマガジン",
		"topic":  "新商品",
		"length": "短め (100字程度)",
		"model":  "gpt-4o-mini",
	}, cookies)
	m := decodeMsg(t, w)
	assert.True(t, m.Success)
	assert.InDelta(t, service.DefaultTemperature, received.Temperature, 0.001)

	var obj struct {
		Result string `json:"result"`
	}
	assert.NoError(t, json.Unmarshal(m.Obj, &obj))
	assert.Equal(t, "生成結果", obj.Result)

	// An explicit value passes through
	w = postJSON(engine, "/panel/api/generate", gin.H{
		"type":        "SMS",
		"topic":       "新商品",
		"length":      "短め (100字程度)",
		"model":       "gpt-4o",
		"temperature": 0.9,
	}, cookies)
	assert.True(t, decodeMsg(t, w).Success)
	assert.InDelta(t, 0.9, received.Temperature, 0.001)

	assert.EqualValues(t, 2, historyCount(t))

	var entries []model.HistoryEntry
	assert.NoError(t, database.GetDB().Find(&entries).Error)
	assert.Equal(t, model.ActionGeneration, entries[0].ActionType)
	assert.Equal(t, "生成結果", entries[0].Result)
	assert.Empty(t, entries[0].FileName)
}

func TestProofreadUploadFlow(t *testing.T) {
	setup()
	defer teardown()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "修正済み"}},
			},
		})
	}))
	defer server.Close()

	engine := newTestRouter(service.NewCompletionServiceWith("test-key", server.URL))
	cookies := registerAndLogin(t, engine, "alice", "secret")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("inputText", "")
	fw, err := mw.CreateFormFile("file", "notes.txt")
	assert.NoError(t, err)
	fw.Write([]byte("校閲対象の文章"))
	mw.WriteField("model", "gpt-4o-mini")
	mw.WriteField("temperature", "0.2")
	assert.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/panel/api/proofread", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := doRequest(engine, req, cookies)
	m := decodeMsg(t, w)
	assert.True(t, m.Success)

	var obj struct {
		Result   string `json:"result"`
		Content  string `json:"content"`
		FileName string `json:"fileName"`
	}
	assert.NoError(t, json.Unmarshal(m.Obj, &obj))
	assert.Equal(t, "修正済み", obj.Result)
	assert.Equal(t, "校閲対象の文章", obj.Content)
	assert.Equal(t, "notes.txt", obj.FileName)

	var entry model.HistoryEntry
	assert.NoError(t, database.GetDB().First(&entry).Error)
	assert.Equal(t, model.ActionProofreading, entry.ActionType)
	assert.Equal(t, "校閲対象の文章", entry.Content)
	assert.Equal(t, "notes.txt", entry.FileName)
}

func TestExtractEndpoint(t *testing.T) {
	setup()
	defer teardown()

	engine := newTestRouter(service.NewCompletionServiceWith("test-key", ""))
	cookies := registerAndLogin(t, engine, "alice", "secret")

	buildUpload := func() (*bytes.Buffer, string) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, _ := mw.CreateFormFile("file", "notes.txt")
		fw.Write([]byte("こんにちは"))
		mw.Close()
		return &buf, mw.FormDataContentType()
	}

	body, contentType := buildUpload()
	req := httptest.NewRequest(http.MethodPost, "/panel/api/extract", body)
	req.Header.Set("Content-Type", contentType)
	w := doRequest(engine, req, cookies)
	m := decodeMsg(t, w)
	assert.True(t, m.Success)

	var obj struct {
		FileName string `json:"fileName"`
		Text     string `json:"text"`
	}
	assert.NoError(t, json.Unmarshal(m.Obj, &obj))
	assert.Equal(t, "notes.txt", obj.FileName)
	assert.Equal(t, "こんにちは", obj.Text)

	// Anonymous upload is rejected
	body, contentType = buildUpload()
	req = httptest.NewRequest(http.MethodPost, "/panel/api/extract", body)
	req.Header.Set("Content-Type", contentType)
	w = doRequest(engine, req, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogsEndpoint(t *testing.T) {
	setup()
	defer teardown()

	engine := newTestRouter(service.NewCompletionServiceWith("test-key", ""))
	cookies := registerAndLogin(t, engine, "alice", "secret")

	w := getPath(engine, "/panel/api/logs?count=20&level=DEBUG", cookies)
	m := decodeMsg(t, w)
	assert.True(t, m.Success)

	var lines []string
	assert.NoError(t, json.Unmarshal(m.Obj, &lines))
	// Login activity is already buffered
	assert.NotEmpty(t, lines)

	w = getPath(engine, "/panel/api/logs", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
