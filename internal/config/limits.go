package config

import "time"

const (
	// MaxNodeNameLength is the maximum length for file and folder names.
	MaxNodeNameLength = 255

	// MaxPathDepth bounds how deep a node may be nested below its project.
	// Deeper hierarchies are rejected as invalid paths.
	MaxPathDepth = 64

	// MaxFileContentBytes is the largest file content accepted by the API.
	MaxFileContentBytes = 2 << 20

	// MaxLogEntriesPerProject caps retained log history per project.
	// Oldest entries are evicted first; sequence numbers keep increasing.
	MaxLogEntriesPerProject = 1000

	// DefaultEditDebounce is the quiet period before an editor change is committed.
	DefaultEditDebounce = 500 * time.Millisecond

	// DefaultCompileTimeout bounds a single remote compile request.
	DefaultCompileTimeout = 2 * time.Minute
)
