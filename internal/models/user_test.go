package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPasswordHashing(t *testing.T) {
	user := &User{Email: "alice@example.com", Password: "s3cret-pass"}

	require.NoError(t, user.HashPassword())
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, user.Password, user.PasswordHash)

	assert.NoError(t, user.CheckPassword("s3cret-pass"))
	assert.Error(t, user.CheckPassword("wrong"))
}

func TestUserHashPasswordSkipsEmpty(t *testing.T) {
	user := &User{Email: "alice@example.com"}

	require.NoError(t, user.HashPassword())
	assert.Empty(t, user.PasswordHash)
}

func TestDriverPasswordHashing(t *testing.T) {
	driver := &Driver{Email: "bob@taxi.test", Password: "drive-safe"}

	require.NoError(t, driver.HashPassword())
	assert.NoError(t, driver.CheckPassword("drive-safe"))
	assert.Error(t, driver.CheckPassword("drive-fast"))
}
