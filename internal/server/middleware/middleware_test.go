package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheControlFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/theme.css", "no-cache"},
		{"/theme.5b8f93e6dad9.css", "public, max-age=31536000, immutable"},
		{"/livereload.js", "public, max-age=300"},
		{"/img/logo.svg", "public, max-age=86400"},
		{"/api/search", "no-store"},
		{"/en/courses/anchor/intro", "public, max-age=0, must-revalidate"},
		{"/en/", "public, max-age=0, must-revalidate"},
		{"/feed.xml", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, CacheControlFor(tt.path))
		})
	}
}
