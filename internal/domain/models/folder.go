package models

// FolderItem is a folder as reported by the remote file service.
// Children is filled in by this app when it builds the sidebar tree and is
// never sent back to the service.
type FolderItem struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Children []FolderItem `json:"children,omitempty"`
}

// HasChildren reports whether the folder has loaded subfolders.
func (f FolderItem) HasChildren() bool {
	return len(f.Children) > 0
}
