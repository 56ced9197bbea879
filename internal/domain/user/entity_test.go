package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Alice", (&User{Email: "alice@example.com", Name: "Alice"}).DisplayName())
	assert.Equal(t, "alice", (&User{Email: "alice@example.com"}).DisplayName())
	assert.Equal(t, "nodomain", (&User{Email: "nodomain"}).DisplayName())
}
