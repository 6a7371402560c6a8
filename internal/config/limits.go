package config

const (
	// MaxTitleLength is the maximum length for document and file titles.
	// Titles end up in Content-Disposition headers, so keep them short.
	MaxTitleLength = 255

	// MaxAuthorLength is the maximum length for a file's author.
	MaxAuthorLength = 255

	// MaxDescriptionLength is the maximum length for a file description.
	MaxDescriptionLength = 4000

	// MaxCategoryNameLength is the maximum length for a normalized category name.
	MaxCategoryNameLength = 64

	// MaxSearchQueryLength is the maximum length for a search query.
	MaxSearchQueryLength = 255
)
