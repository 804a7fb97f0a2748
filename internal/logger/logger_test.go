package logger_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/studyflash/internal/logger"
)

func TestLookupLevel(t *testing.T) {
	tests := []struct {
		in    string
		level logger.Level
		ok    bool
	}{
		{"debug", logger.DEBUG, true},
		{"INFO", logger.INFO, true},
		{"warning", logger.WARN, true},
		{" error ", logger.ERROR, true},
		{"verbose", logger.INFO, false},
		{"", logger.INFO, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, ok := logger.LookupLevel(tt.in)
			assert.Equal(t, tt.level, level)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.WARN), logger.WithColors(false))

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("shown %d", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "shown 1")
}

func TestLogger_FieldsAreSorted(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithColors(false)).
		WithPrefix("review").
		WithFields(map[string]any{"user_id": "u1", "card_id": "c1"}).
		WithError(errors.New("boom"))

	log.Info("rated")

	out := buf.String()
	assert.Contains(t, out, "[review]")
	assert.Less(t, strings.Index(out, "card_id=c1"), strings.Index(out, "error=boom"))
	assert.Less(t, strings.Index(out, "error=boom"), strings.Index(out, "user_id=u1"))
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	reqLog := logger.New(logger.WithOutput(&buf), logger.WithColors(false)).WithField("request_id", "abc")

	ctx := logger.NewContext(context.Background(), reqLog)
	logger.FromContext(ctx).Info("hello")

	assert.Contains(t, buf.String(), "request_id=abc")
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}
