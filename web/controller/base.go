// Package controller provides the HTTP handlers of the copycheck panel:
// login and registration, the generation/proofreading/history views and
// their JSON API.
package controller

import (
	"net/http"

	"copycheck/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController provides the authentication gate shared by all panel
// controllers.
type BaseController struct{}

// checkLogin verifies the session and turns anonymous requests away: AJAX
// callers get a 401 envelope, browsers a redirect to the login page.
func (a *BaseController) checkLogin(c *gin.Context) {
	if !session.IsLogin(c) {
		if isAjax(c) {
			pureJsonMsg(c, http.StatusUnauthorized, false, "ログインしてください。")
		} else {
			c.Redirect(http.StatusTemporaryRedirect, "/")
		}
		c.Abort()
	} else {
		c.Next()
	}
}
