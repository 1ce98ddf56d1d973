package config

const (
	// MaxNodeNameLength is the maximum length for file and folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxNodeNameLength = 255

	// MaxRequirementNameLength is the maximum length for requirement names.
	MaxRequirementNameLength = 255

	// MaxCategoryLength is the maximum length for requirement categories.
	MaxCategoryLength = 100

	// MaxDescriptionLength bounds requirement descriptions.
	MaxDescriptionLength = 2000

	// MaxStoragePathLength bounds the storage key supplied by the upload transport.
	MaxStoragePathLength = 1024

	// DefaultMaxTreeDepth bounds parent-chain walks (breadcrumbs, cycle checks,
	// cascading deletes) so corrupted parent links can never hang a request.
	DefaultMaxTreeDepth = 1000
)
