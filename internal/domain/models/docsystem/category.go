package docsystem

// Category is a named tag referenced by files. Names are stored trimmed and uppercase.
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
