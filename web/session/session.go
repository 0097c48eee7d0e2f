package session

import (
	"encoding/gob"

	"copycheck/database/model"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	loginUser   = "LOGIN_USER"
	currentView = "CURRENT_VIEW"
)

// Panel views selectable while authenticated.
const (
	ViewGeneration   = "generation"
	ViewProofreading = "proofreading"
	ViewHistory      = "history"
)

func init() {
	gob.Register(model.User{})
}

// SetLoginUser stores the user and resets the view selection to its
// default, so each fresh login starts on the generation view.
func SetLoginUser(c *gin.Context, user *model.User) error {
	s := sessions.Default(c)
	s.Set(loginUser, *user)
	s.Set(currentView, ViewGeneration)
	return s.Save()
}

func GetLoginUser(c *gin.Context) *model.User {
	s := sessions.Default(c)
	if obj := s.Get(loginUser); obj != nil {
		if user, ok := obj.(model.User); ok {
			return &user
		}
	}
	return nil
}

func IsLogin(c *gin.Context) bool {
	return GetLoginUser(c) != nil
}

// SetView records the panel view selection for this session.
func SetView(c *gin.Context, view string) error {
	switch view {
	case ViewGeneration, ViewProofreading, ViewHistory:
	default:
		view = ViewGeneration
	}
	s := sessions.Default(c)
	s.Set(currentView, view)
	return s.Save()
}

// GetView returns the session's view selection, defaulting to generation.
func GetView(c *gin.Context) string {
	s := sessions.Default(c)
	if obj := s.Get(currentView); obj != nil {
		if view, ok := obj.(string); ok && view != "" {
			return view
		}
	}
	return ViewGeneration
}

func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	return s.Save()
}
