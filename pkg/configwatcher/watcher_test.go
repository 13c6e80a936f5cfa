package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"study_planner_backend/internal/config"

	"github.com/stretchr/testify/require"
)

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	write := func(port string) {
		body := "server:\n  port: \"" + port + "\"\nstorage:\n  type: minio\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	write("8080")

	var port atomic.Value
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, path, func(cfg *config.Config) {
			port.Store(cfg.Server.Port)
		})
	}()

	// 감시가 시작될 시간을 준다
	time.Sleep(200 * time.Millisecond)
	write("9090")

	require.Eventually(t, func() bool {
		v, _ := port.Load().(string)
		return v == "9090"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
