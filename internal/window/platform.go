package window

import (
	"sync"

	"go.uber.org/zap"
)

// DesktopPlatform is the Platform used by the desktop build. Chrome app
// windows expose no taskbar or dock controls, so those hooks only record the
// requested presentation.
type DesktopPlatform struct {
	Logger *zap.SugaredLogger
	OnQuit func()

	mu            sync.Mutex
	taskbar, dock bool
	quitOnce      sync.Once
}

func (p *DesktopPlatform) SetTaskbarVisible(visible bool) {
	p.mu.Lock()
	p.taskbar = visible
	p.mu.Unlock()
	p.logger().Debugw("Taskbar presence", "visible", visible)
}

func (p *DesktopPlatform) SetDockVisible(visible bool) {
	p.mu.Lock()
	p.dock = visible
	p.mu.Unlock()
	p.logger().Debugw("Dock icon", "visible", visible)
}

// TaskbarVisible reports the last requested taskbar presence.
func (p *DesktopPlatform) TaskbarVisible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.taskbar
}

// DockVisible reports the last requested dock presence.
func (p *DesktopPlatform) DockVisible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dock
}

// Quit runs OnQuit once.
func (p *DesktopPlatform) Quit() {
	p.quitOnce.Do(func() {
		p.logger().Infow("Quitting")
		if p.OnQuit != nil {
			p.OnQuit()
		}
	})
}

func (p *DesktopPlatform) logger() *zap.SugaredLogger {
	if p.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return p.Logger
}
