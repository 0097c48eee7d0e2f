package controller

import (
	"errors"
	"net/http"

	"copycheck/logger"
	"copycheck/web/service"
	"copycheck/web/session"

	"github.com/gin-gonic/gin"
)

// LoginForm represents the login request.
type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// RegisterForm represents the account-creation request.
type RegisterForm struct {
	Username        string `json:"username" form:"username"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

// IndexController handles the login page, login, registration and logout.
type IndexController struct {
	BaseController

	userService service.UserService
}

func NewIndexController(g *gin.RouterGroup) *IndexController {
	a := &IndexController{}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.index)
	g.GET("/logout", a.logout)

	g.POST("/login", a.login)
	g.POST("/register", a.register)
}

// index shows the login page, or forwards authenticated users to the panel.
func (a *IndexController) index(c *gin.Context) {
	if session.IsLogin(c) {
		c.Redirect(http.StatusTemporaryRedirect, "panel/")
		return
	}
	html(c, "login.html", "ログイン", nil)
}

// login authenticates the user and establishes the session.
func (a *IndexController) login(c *gin.Context) {
	var form LoginForm

	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusOK, false, "入力内容が正しくありません。")
		return
	}
	if form.Username == "" || form.Password == "" {
		pureJsonMsg(c, http.StatusOK, false, "ユーザー名とパスワードを入力してください。")
		return
	}

	user := a.userService.CheckUser(form.Username, form.Password)
	if user == nil {
		logger.Warningf("wrong username or password for %q, IP: %q", form.Username, getRemoteIp(c))
		pureJsonMsg(c, http.StatusOK, false, "ユーザー名またはパスワードが間違っています。")
		return
	}

	if err := session.SetLoginUser(c, user); err != nil {
		logger.Warning("Unable to save session:", err)
		pureJsonMsg(c, http.StatusOK, false, "セッションの保存に失敗しました。")
		return
	}

	logger.Infof("%s logged in successfully, IP: %s", user.Username, getRemoteIp(c))
	jsonMsg(c, "ログインに成功しました！", nil)
}

// register creates a new account. The session is left untouched; the user
// logs in afterwards, as the original did.
func (a *IndexController) register(c *gin.Context) {
	var form RegisterForm

	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusOK, false, "入力内容が正しくありません。")
		return
	}
	if form.Username == "" || form.Password == "" || form.ConfirmPassword == "" {
		pureJsonMsg(c, http.StatusOK, false, "すべての項目を入力してください。")
		return
	}
	if form.Password != form.ConfirmPassword {
		pureJsonMsg(c, http.StatusOK, false, "パスワードが一致しません。")
		return
	}

	err := a.userService.Register(form.Username, form.Password)
	if errors.Is(err, service.ErrUsernameTaken) {
		pureJsonMsg(c, http.StatusOK, false, "そのユーザー名は既に使用されています。")
		return
	}
	if err != nil {
		jsonMsg(c, "アカウントの作成に失敗しました", err)
		return
	}

	logger.Infof("account %q created", form.Username)
	jsonMsg(c, "アカウントが作成されました。ログインしてください。", nil)
}

// logout clears the session and returns to the login page.
func (a *IndexController) logout(c *gin.Context) {
	user := session.GetLoginUser(c)
	if user != nil {
		logger.Infof("%s logged out successfully", user.Username)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("Unable to save session after clearing:", err)
	}
	c.Redirect(http.StatusTemporaryRedirect, "/")
}
