package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"copycheck/web/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLoginFlowGrantsAndRevokesPanelAccess(t *testing.T) {
	setup()
	defer teardown()

	engine := newTestRouter(service.NewCompletionServiceWith("test-key", ""))

	// Anonymous AJAX requests get a 401 envelope
	w := getPath(engine, "/panel/api/history", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	m := decodeMsg(t, w)
	assert.False(t, m.Success)
	assert.Equal(t, "ログインしてください。", m.Msg)

	// Anonymous browser requests get redirected to the login page
	req := httptest.NewRequest(http.MethodGet, "/panel/generation", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	// The session cookie from login opens the panel
	cookies := registerAndLogin(t, engine, "alice", "secret")
	w = getPath(engine, "/panel/api/history", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeMsg(t, w).Success)

	// Logout clears the session
	w = getPath(engine, "/logout", cookies)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	cleared := w.Result().Cookies()
	assert.NotEmpty(t, cleared)

	w = getPath(engine, "/panel/api/history", cleared)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejectsWrongCredentials(t *testing.T) {
	setup()
	defer teardown()

	engine := newTestRouter(service.NewCompletionServiceWith("test-key", ""))
	registerAndLogin(t, engine, "alice", "secret")

	w := postJSON(engine, "/login", gin.H{"username": "alice", "password": "wrong"}, nil)
	m := decodeMsg(t, w)
	assert.False(t, m.Success)
	assert.Equal(t, "ユーザー名またはパスワードが間違っています。", m.Msg)
	assert.Empty(t, w.Result().Cookies())

	w = postJSON(engine, "/login", gin.H{"username": "nobody", "password": "secret"}, nil)
	assert.False(t, decodeMsg(t, w).Success)
}

func TestRegisterValidation(t *testing.T) {
	setup()
	defer teardown()

	engine := newTestRouter(service.NewCompletionServiceWith("test-key", ""))

	w := postJSON(engine, "/register", gin.H{
		"username":        "alice",
		"password":        "one",
		"confirmPassword": "two",
	}, nil)
	m := decodeMsg(t, w)
	assert.False(t, m.Success)
	assert.Equal(t, "パスワードが一致しません。", m.Msg)

	registerAndLogin(t, engine, "alice", "secret")
	w = postJSON(engine, "/register", gin.H{
		"username":        "alice",
		"password":        "other",
		"confirmPassword": "other",
	}, nil)
	m = decodeMsg(t, w)
	assert.False(t, m.Success)
	assert.Equal(t, "そのユーザー名は既に使用されています。", m.Msg)
}
