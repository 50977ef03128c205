package log

import (
	"bytes"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleLog(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf)

	err := h.HandleLog(&log.Entry{
		Level:     log.InfoLevel,
		Message:   "cache preloaded",
		Timestamp: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Fields:    log.Fields{"topics": 5, "by": "test"},
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02 03:04:05 I cache preloaded by=test topics=5\n", buf.String())
}

func TestInitLoggerLevel(t *testing.T) {
	tests := []struct {
		env     string
		debug   bool
		errored bool
	}{
		{env: "", debug: false, errored: true},
		{env: "debug", debug: true, errored: true},
		{env: "bogus", debug: false, errored: true},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		t.Setenv("CAG_LOG", tt.env)
		InitLogger(&buf)

		log.Debug("d")
		log.Error("e")
		assert.Equal(t, tt.debug, bytes.Contains(buf.Bytes(), []byte(" D d")), "CAG_LOG=%q", tt.env)
		assert.Equal(t, tt.errored, bytes.Contains(buf.Bytes(), []byte(" E e")), "CAG_LOG=%q", tt.env)
	}
}
