package app_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"travel_cms/internal/app"
	"travel_cms/internal/domain"
)

func TestCleanMessage(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", "Something went wrong"},
		{"Not Authorized", "Not Authorized"},
		{"[CMS M(packages:add)] [Request ID: 1a2b] Server Error Uncaught Error: Price must be > 0 at handler (packages.ts:12:3)", "Price must be > 0"},
		{"Server Error replace document: Failed to resolve image URL", "Failed to resolve image URL"},
		{"insert: write: disk full at store.go:10", "disk full"},
		{"Uncaught Error:    at x", "Something went wrong"},
		{"boom Called by client", "boom"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, app.CleanMessage(c.in), c.in)
	}
}

func TestUserMessage(t *testing.T) {
	wrapped := fmt.Errorf("update package: %w", domain.ErrImageUnresolvable)
	assert.Equal(t, "Failed to resolve image URL", app.UserMessage(wrapped))
	assert.Equal(t, "Something went wrong", app.UserMessage(nil))
	assert.Equal(t, "timeout", app.UserMessage(errors.New("dial tcp: timeout")))
}
