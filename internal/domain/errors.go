package domain

import "errors"

var (
	// ErrAuthFailed indicates the upstream source rejected the configured
	// credentials. Never retried silently; surfaced as 401 at the boundary.
	ErrAuthFailed = errors.New("authentication with glucose source failed")

	// ErrNoData indicates the upstream source answered but returned no
	// readings at all. Distinct from a transient API failure.
	ErrNoData = errors.New("no glucose readings available")

	// ErrNoCachedFallback indicates an upstream fetch failed while no cached
	// reading existed to degrade to. Fatal for the calling request.
	ErrNoCachedFallback = errors.New("glucose fetch failed and no cached reading is available")
)
