package service

import (
	"os"
	"testing"

	"copycheck/database"
	"copycheck/database/model"
	"copycheck/util/crypto"

	"github.com/stretchr/testify/assert"
)

func setup() {
	dbPath := "test.db"
	os.Remove(dbPath)
	database.InitDB(dbPath)
}

func teardown() {
	db, _ := database.GetDB().DB()
	db.Close()
	os.Remove("test.db")
}

func TestUserServiceRegisterAndLogin(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}

	err := userService.Register("alice", "secret")
	assert.NoError(t, err)

	// Stored digest is deterministic and never the plaintext
	var user model.User
	database.GetDB().Where("username = ?", "alice").First(&user)
	assert.Equal(t, crypto.HashPassword("secret"), user.PasswordHash)
	assert.NotEqual(t, "secret", user.PasswordHash)

	// Correct credentials
	loggedIn := userService.CheckUser("alice", "secret")
	assert.NotNil(t, loggedIn)
	assert.Equal(t, "alice", loggedIn.Username)

	// Wrong password and unknown username
	assert.Nil(t, userService.CheckUser("alice", "wrong"))
	assert.Nil(t, userService.CheckUser("nobody", "secret"))
}

func TestUserServiceDuplicateUsername(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}

	err := userService.Register("alice", "first")
	assert.NoError(t, err)

	err = userService.Register("alice", "second")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	// The existing account is untouched
	var user model.User
	database.GetDB().Where("username = ?", "alice").First(&user)
	assert.Equal(t, crypto.HashPassword("first"), user.PasswordHash)
	assert.NotNil(t, userService.CheckUser("alice", "first"))
	assert.Nil(t, userService.CheckUser("alice", "second"))
}

func TestUserServiceEmptyFields(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}

	assert.Error(t, userService.Register("", "secret"))
	assert.Error(t, userService.Register("alice", ""))
}
