// Package service implements the business logic of copycheck: accounts,
// history, document text extraction, prompt assembly and the completion
// adapter. Controllers stay thin on top of it.
package service

import (
	"errors"
	"time"

	"copycheck/database"
	"copycheck/database/model"
	"copycheck/logger"
	"copycheck/util/crypto"

	"gorm.io/gorm"
)

// ErrUsernameTaken is returned by Register when the username already exists.
var ErrUsernameTaken = errors.New("username already taken")

type UserService struct{}

// Register creates a new account. The username must be unused; a duplicate
// attempt fails without touching the existing row.
func (s *UserService) Register(username string, password string) error {
	if username == "" {
		return errors.New("username can not be empty")
	}
	if password == "" {
		return errors.New("password can not be empty")
	}

	db := database.GetDB()

	var count int64
	err := db.Model(model.User{}).
		Where("username = ?", username).
		Count(&count).
		Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrUsernameTaken
	}

	user := &model.User{
		Username:     username,
		PasswordHash: crypto.HashPassword(password),
		CreatedAt:    time.Now(),
	}
	return db.Create(user).Error
}

// CheckUser returns the matching user when both username and password digest
// match, nil otherwise.
func (s *UserService) CheckUser(username string, password string) *model.User {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("username = ?", username).
		First(user).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil
	}

	if !crypto.CheckPasswordHash(user.PasswordHash, password) {
		return nil
	}

	return user
}
