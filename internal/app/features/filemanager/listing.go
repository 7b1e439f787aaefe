package filemanager

import (
	"context"
	"net/http"

	"github.com/dalemusser/coconsult/internal/app/system/fileapi"
	"github.com/dalemusser/coconsult/internal/app/system/normalize"
	"github.com/dalemusser/coconsult/internal/app/system/timeouts"
	"github.com/dalemusser/coconsult/internal/app/system/viewdata"
	"github.com/dalemusser/coconsult/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// view is one of the listings reachable from the sidebar.
type view string

const (
	viewAll     view = "all"
	viewFolder  view = "folder"
	viewStarred view = "starred"
	viewShared  view = "shared"
	viewTrash   view = "trash"
)

var viewTitles = map[view]string{
	viewAll:     "My Files",
	viewFolder:  "Folder",
	viewStarred: "Starred",
	viewShared:  "Shared with me",
	viewTrash:   "Trash",
}

// maxTreeDepth bounds how deep expanded folders are fetched for the sidebar.
const maxTreeDepth = 4

// FileRow is a file as shown in the listing table.
type FileRow struct {
	ID       string
	Name     string
	Type     string
	Icon     string
	Owner    string
	Modified string
	Size     string
	Starred  bool
}

// TreeNode is a folder in the sidebar tree.
type TreeNode struct {
	ID       string
	Name     string
	Expanded bool
	Current  bool
	Depth    int
	Children []TreeNode
}

// listing is what one page load fetched.
type listing struct {
	Files   []models.FileItem
	Folders []models.FolderItem
	Err     string // user-facing load problem, empty on success
}

type pageVM struct {
	viewdata.BaseVM
	View        string
	Heading     string
	FolderID    string
	Query       string
	ReturnURL   string
	Files       []FileRow
	Folders     []models.FolderItem // subfolders of the current location
	Tree        []TreeNode
	MoveTargets []models.FolderItem // root folders
	LoadError   string
}

func (h *Handler) browse(v view) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := currentUser(r)
		folderID := ""
		if v == viewFolder {
			folderID = chi.URLParam(r, "folderID")
		}
		q := normalize.Search(query.Get(r, "q"))

		ctx, cancel := timeouts.Remote(r.Context(), h.logger, "filemanager browse")
		defer cancel()

		l, err := h.load(ctx, u.Token, v, folderID, q)
		if err != nil {
			if h.sessionExpired(w, r, err) {
				return
			}
			h.errLog.LogWithFields(r, "filemanager: load listing", err, zap.String("view", string(v)))
		}

		roots, tree := h.sidebar(ctx, w, r, u.Token, folderID)

		vm := pageVM{
			BaseVM:      viewdata.NewBaseVM(w, r, viewTitles[v], "/filemanager"),
			View:        string(v),
			Heading:     viewTitles[v],
			FolderID:    folderID,
			Query:       q,
			ReturnURL:   r.URL.RequestURI(),
			Files:       h.rows(l.Files),
			Folders:     l.Folders,
			Tree:        tree,
			MoveTargets: roots,
			LoadError:   l.Err,
		}
		if v == viewFolder {
			if name := folderName(roots, folderID); name != "" {
				vm.Heading = name
			}
		}
		if q != "" {
			vm.Heading = "Search results"
		}
		vm.Title = models.FileManagerName + " - " + vm.Heading

		templates.Render(w, r, "filemanager/index", vm)
	}
}

// load fetches the files and folders for a listing. A non-empty query
// replaces the file list with search results; the folders of the current
// location are still shown. The returned error is the first remote failure,
// already summarised in listing.Err.
func (h *Handler) load(ctx context.Context, token string, v view, folderID, q string) (listing, error) {
	var l listing
	var firstErr error

	if q != "" {
		files, err := h.files.SearchFiles(ctx, token, q)
		if err != nil {
			l.Err = failureMessage(err, "Search failed", "Error searching files")
			firstErr = err
		}
		l.Files = files
	} else {
		files, err := h.listFiles(ctx, token, v, folderID)
		if err != nil {
			l.Err = failureMessage(err, "Failed to load files", "Error loading files")
			firstErr = err
		}
		l.Files = files
	}

	if v == viewAll || v == viewFolder {
		folders, err := h.files.GetFolders(ctx, token, folderID)
		if err != nil {
			// Folder tiles are secondary; the file list still shows.
			h.logger.Warn("filemanager: load folders", zap.Error(err), zap.String("folder_id", folderID))
			if firstErr == nil {
				firstErr = err
			}
		}
		l.Folders = folders
	}

	return l, firstErr
}

func (h *Handler) listFiles(ctx context.Context, token string, v view, folderID string) ([]models.FileItem, error) {
	switch v {
	case viewShared:
		return h.files.GetFiles(ctx, token, "", fileapi.ViewShared)
	case viewTrash:
		return h.files.GetFiles(ctx, token, "", fileapi.ViewTrash)
	case viewStarred:
		files, err := h.files.GetFiles(ctx, token, "", fileapi.ViewAll)
		if err != nil {
			return nil, err
		}
		return starredOnly(files), nil
	default:
		return h.files.GetFiles(ctx, token, folderID, fileapi.ViewAll)
	}
}

func starredOnly(files []models.FileItem) []models.FileItem {
	out := make([]models.FileItem, 0, len(files))
	for _, f := range files {
		if f.Starred {
			out = append(out, f)
		}
	}
	return out
}

func (h *Handler) rows(files []models.FileItem) []FileRow {
	now := h.now()
	rows := make([]FileRow, 0, len(files))
	for _, f := range files {
		rows = append(rows, FileRow{
			ID:       f.ID,
			Name:     f.Name,
			Type:     f.KnownType(),
			Icon:     FileTypeIcon(f.KnownType()),
			Owner:    f.Owner,
			Modified: FormatModified(f.LastModified, now),
			Size:     FormatFileSize(f.Size),
			Starred:  f.Starred,
		})
	}
	return rows
}

// sidebar loads the root folders and the subfolders of every expanded
// folder. It returns the root folders with Children filled in for expanded
// ones, and the tree to render. On the first visit the first root folder
// starts expanded and that state is saved to the session.
func (h *Handler) sidebar(ctx context.Context, w http.ResponseWriter, r *http.Request, token, currentID string) ([]models.FolderItem, []TreeNode) {
	roots, err := h.files.GetFolders(ctx, token, "")
	if err != nil {
		h.logger.Warn("filemanager: load sidebar folders", zap.Error(err))
		return nil, nil
	}

	expanded, ok := h.sessionMgr.ExpandedFolders(r)
	if !ok {
		expanded = initialExpanded(roots)
		if err := h.sessionMgr.SaveExpandedFolders(w, r, expanded); err != nil {
			h.errLog.Log(r, "filemanager: save expanded folders", err)
		}
	}

	h.loadChildren(ctx, token, roots, expanded, 1)
	return roots, buildTree(roots, expanded, currentID, 0)
}

// loadChildren fills Children for each expanded folder, depth levels down.
func (h *Handler) loadChildren(ctx context.Context, token string, folders []models.FolderItem, expanded map[string]bool, depth int) {
	if depth > maxTreeDepth {
		return
	}
	for i := range folders {
		if !expanded[folders[i].ID] {
			continue
		}
		children, err := h.files.GetFolders(ctx, token, folders[i].ID)
		if err != nil {
			h.logger.Warn("filemanager: load subfolders", zap.Error(err), zap.String("folder_id", folders[i].ID))
			continue
		}
		folders[i].Children = children
		h.loadChildren(ctx, token, folders[i].Children, expanded, depth+1)
	}
}

// initialExpanded returns the default expand state: the first folder open.
func initialExpanded(roots []models.FolderItem) map[string]bool {
	set := make(map[string]bool)
	if len(roots) > 0 {
		set[roots[0].ID] = true
	}
	return set
}

// toggle flips id in set.
func toggle(set map[string]bool, id string) {
	if set[id] {
		delete(set, id)
		return
	}
	set[id] = true
}

func buildTree(folders []models.FolderItem, expanded map[string]bool, currentID string, depth int) []TreeNode {
	nodes := make([]TreeNode, 0, len(folders))
	for _, f := range folders {
		n := TreeNode{
			ID:       f.ID,
			Name:     f.Name,
			Expanded: expanded[f.ID],
			Current:  f.ID == currentID,
			Depth:    depth,
		}
		if n.Expanded && f.HasChildren() {
			n.Children = buildTree(f.Children, expanded, currentID, depth+1)
		}
		nodes = append(nodes, n)
	}
	return nodes
}

func folderName(folders []models.FolderItem, id string) string {
	for _, f := range folders {
		if f.ID == id {
			return f.Name
		}
		if name := folderName(f.Children, id); name != "" {
			return name
		}
	}
	return ""
}
