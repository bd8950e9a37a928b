package config

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cfdshell/cfdshell/internal/models"
)

func TestSettingsWatcher_ReloadsOnWrite(t *testing.T) {
	useTempHome(t)

	var mu sync.Mutex
	var got []*models.Settings

	w, err := NewSettingsWatcher(zap.NewNop().Sugar(), func(s *models.Settings) {
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	settings := models.NewSettings()
	settings.Window.StartMinimized = true
	settings.Log.Level = "debug"
	require.NoError(t, SaveSettings(settings))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0 && got[len(got)-1].Window.StartMinimized && got[len(got)-1].Log.Level == "debug"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestSettingsWatcher_StopIsIdempotent(t *testing.T) {
	useTempHome(t)

	w, err := NewSettingsWatcher(zap.NewNop().Sugar(), func(*models.Settings) {})
	require.NoError(t, err)
	require.NoError(t, w.Start())

	w.Stop()
	w.Stop()
}
