package logfields

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttrs(t *testing.T) {
	assert.Equal(t, KeyLocale, Locale("en").Key)
	assert.Equal(t, "en", Locale("en").Value.String())
	assert.Equal(t, int64(404), Status(404).Value.Int64())
	assert.InDelta(t, 1.5, Duration(1500*time.Microsecond).Value.Float64(), 0.0001)
}

func TestError(t *testing.T) {
	assert.Equal(t, "", Error(nil).Value.String())
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
}
