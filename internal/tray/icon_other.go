//go:build !windows

package tray

func iconBytes() ([]byte, error) {
	return renderIcon()
}
