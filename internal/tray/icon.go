package tray

// GetIcon returns the tray icon image data, or nil to use the platform
// default. This demo ships no binary icon asset; systray.SetIcon is
// simply skipped when nil.
func GetIcon() []byte {
	return nil
}
