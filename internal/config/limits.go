package config

const (
	// MaxTitleLength is the maximum length for object, media, model,
	// item and portfolio titles. Fits in PostgreSQL VARCHAR(255).
	MaxTitleLength = 255

	// MaxAddressLength is the maximum length for object addresses.
	MaxAddressLength = 500

	// MaxFolderNameLength is the maximum length for folder names.
	MaxFolderNameLength = 255

	// MaxDescriptionLength is the maximum length for free-text descriptions.
	MaxDescriptionLength = 5000

	// MaxCommentLength is the maximum length for comment bodies.
	MaxCommentLength = 5000
)
