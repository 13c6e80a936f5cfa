package logger

import (
	"testing"

	"study_planner_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		mode, level string
		want        zap.AtomicLevel
	}{
		{mode: "debug", want: zap.NewAtomicLevelAt(zap.DebugLevel)},
		{mode: "release", want: zap.NewAtomicLevelAt(zap.InfoLevel)},
		{mode: "release", level: "warn", want: zap.NewAtomicLevelAt(zap.WarnLevel)},
		{mode: "debug", level: "nonsense", want: zap.NewAtomicLevelAt(zap.DebugLevel)},
	}
	for _, tt := range tests {
		cfg := &config.Config{Server: config.ServerConfig{Mode: tt.mode}, Log: config.LogConfig{Level: tt.level}}
		assert.Equal(t, tt.want.Level(), level(cfg), "mode=%s level=%s", tt.mode, tt.level)
	}
}
