package renderer

import "fmt"

// ResourceCreationError reports a GPU object that could not be created. It is fatal for the caller, there is no
// retry policy.
type ResourceCreationError struct {
	Resource string
	Err      error
}

func (e *ResourceCreationError) Error() string {
	return fmt.Sprintf("failed to create %s: %v", e.Resource, e.Err)
}

func (e *ResourceCreationError) Unwrap() error {
	return e.Err
}

func creationError(resource string, err error) error {
	return &ResourceCreationError{Resource: resource, Err: err}
}

// SwapchainStaleError signals that the surface no longer matches the swap chain and it can not be rebuilt right
// now, e.g. while the window is minimized. Core handles it by skipping frames, it never leaves RenderFrame.
type SwapchainStaleError struct {
	Reason string
}

func (e *SwapchainStaleError) Error() string {
	return "swap chain is stale: " + e.Reason
}
