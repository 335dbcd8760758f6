package plugin

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyInstalled is returned by a second Install.
	ErrAlreadyInstalled = errors.New("plugins already installed")

	// ErrNotInstalled is returned by Uninstall before Install.
	ErrNotInstalled = errors.New("plugins not installed")
)

// Hook names used in HookError.
const (
	HookInstall               = "install"
	HookUninstall             = "uninstall"
	HookDocumentLoad          = "onDocumentLoad"
	HookTextLayerRender       = "onTextLayerRender"
	HookAnnotationLayerRender = "onAnnotationLayerRender"
	HookCanvasLayerRender     = "onCanvasLayerRender"
	HookViewerStateChange     = "onViewerStateChange"
	HookViewerStateCommit     = "onViewerStateCommit"
)

// HookError reports a failed or panicking plugin hook.
type HookError struct {
	// Plugin is the name of the plugin, or its position when unnamed.
	Plugin string

	// Hook is one of the Hook* constants.
	Hook string

	// Err is the error returned by the hook. It is nil when the hook
	// panicked.
	Err error

	// Panic holds the recovered value when the hook panicked.
	Panic any
}

// Error implements the error interface.
func (e *HookError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("plugin %s: %s panicked: %v", e.Plugin, e.Hook, e.Panic)
	}
	return fmt.Sprintf("plugin %s: %s: %v", e.Plugin, e.Hook, e.Err)
}

// Unwrap returns the hook's error.
func (e *HookError) Unwrap() error {
	return e.Err
}

// IsHookError returns true if err is or wraps a HookError.
func IsHookError(err error) bool {
	var he *HookError
	return errors.As(err, &he)
}

// IsPanic returns true if err wraps a HookError for a recovered panic.
func IsPanic(err error) bool {
	var he *HookError
	if errors.As(err, &he) {
		return he.Panic != nil
	}
	return false
}
