package domain

import "fmt"

// ResourceLoadError reports that the collision CSV could not be fetched or
// parsed. It is the only failure the pipeline surfaces.
type ResourceLoadError struct {
	Source string
	Err    error
}

func (e *ResourceLoadError) Error() string {
	return fmt.Sprintf("load collision data from %s: %v", e.Source, e.Err)
}

func (e *ResourceLoadError) Unwrap() error {
	return e.Err
}
