package docsystem

// TreeNode is the whole storage tree: documents with their files
type TreeNode struct {
	Documents []*DocumentTreeNode `json:"documents"`
}

// DocumentTreeNode is one document directory in the tree
type DocumentTreeNode struct {
	ID    string         `json:"id"`
	Title string         `json:"title"`
	Files []FileTreeNode `json:"files"`
}

// FileTreeNode is one blob in a document directory
type FileTreeNode struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	View     int64  `json:"view"`
}
