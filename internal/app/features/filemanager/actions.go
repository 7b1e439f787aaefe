package filemanager

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/coconsult/internal/app/system/auth"
	"github.com/dalemusser/coconsult/internal/app/system/events"
	"github.com/dalemusser/coconsult/internal/app/system/inputval"
	"github.com/dalemusser/coconsult/internal/app/system/jsonutil"
	"github.com/dalemusser/coconsult/internal/app/system/normalize"
	"github.com/dalemusser/coconsult/internal/app/system/timeouts"
	"github.com/dalemusser/coconsult/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Notices for the file actions.
const (
	MsgStarred       = "File starred successfully"
	MsgTrashed       = "File moved to trash"
	MsgShared        = "File shared successfully"
	MsgMoved         = "File moved successfully"
	MsgInvalidEmail  = "Please enter a valid email address"
	MsgNoTarget      = "Please choose a folder"
	MsgDownloadStart = "Download started"
)

// action is one remote file mutation with its notices.
type action struct {
	op          string
	success     string
	rejected    string
	unavailable string
	call        func(ctx context.Context, token, fileID string) error
}

func (h *Handler) star(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, action{
		op:          "star",
		success:     MsgStarred,
		rejected:    "Failed to star file",
		unavailable: "Error starring file",
		call:        h.files.StarFile,
	})
}

func (h *Handler) trash(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, action{
		op:          "trash",
		success:     MsgTrashed,
		rejected:    "Failed to move file to trash",
		unavailable: "Error moving file to trash",
		call:        h.files.MoveToTrash,
	})
}

func (h *Handler) share(w http.ResponseWriter, r *http.Request) {
	email := normalize.Email(r.PostFormValue("email"))
	if email == "" || !inputval.IsValidEmail(email) {
		viewdata.AddFlash(w, r, auth.FlashError, MsgInvalidEmail)
		http.Redirect(w, r, returnTo(r), http.StatusSeeOther)
		return
	}
	h.run(w, r, action{
		op:          "share",
		success:     MsgShared,
		rejected:    "Failed to share file",
		unavailable: "Error sharing file",
		call: func(ctx context.Context, token, fileID string) error {
			return h.files.ShareFile(ctx, token, fileID, email)
		},
	})
}

// run performs a form-posted file action, flashes the outcome and sends the
// browser back to the listing it came from, which then reloads.
func (h *Handler) run(w http.ResponseWriter, r *http.Request, a action) {
	u := currentUser(r)
	fileID := chi.URLParam(r, "fileID")

	ctx, cancel := timeouts.Remote(r.Context(), h.logger, "filemanager "+a.op)
	defer cancel()

	if err := a.call(ctx, u.Token, fileID); err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		h.errLog.LogWithFields(r, "filemanager: "+a.op, err, zap.String("file_id", fileID))
		viewdata.AddFlash(w, r, auth.FlashError, failureMessage(err, a.rejected, a.unavailable))
		http.Redirect(w, r, returnTo(r), http.StatusSeeOther)
		return
	}

	viewdata.AddFlash(w, r, auth.FlashSuccess, a.success)
	http.Redirect(w, r, returnTo(r), http.StatusSeeOther)
}

type moveRequest struct {
	TargetFolderID string `json:"targetFolderId"`
}

// move moves a file into another folder. The drag-and-drop script posts JSON
// and reloads on its own; the move menu posts a form and is redirected.
// Either way every open view of the user is told to reload.
func (h *Handler) move(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	fileID := chi.URLParam(r, "fileID")
	asJSON := isJSONBody(r)

	var target string
	if asJSON {
		var req moveRequest
		if err := jsonutil.Decode(r, &req); err != nil {
			jsonutil.Fail(w, http.StatusBadRequest, "Invalid request")
			return
		}
		target = strings.TrimSpace(req.TargetFolderID)
	} else {
		target = strings.TrimSpace(r.PostFormValue("targetFolderId"))
	}

	reply := func(status int, kind, msg string) {
		if asJSON || wantsJSON(r) {
			jsonutil.Reply(w, status, kind == auth.FlashSuccess, msg)
			return
		}
		viewdata.AddFlash(w, r, kind, msg)
		http.Redirect(w, r, returnTo(r), http.StatusSeeOther)
	}

	if target == "" {
		reply(http.StatusBadRequest, auth.FlashError, MsgNoTarget)
		return
	}
	if target == fileID {
		reply(http.StatusBadRequest, auth.FlashError, "Failed to move file")
		return
	}

	ctx, cancel := timeouts.Remote(r.Context(), h.logger, "filemanager move")
	defer cancel()

	if err := h.files.MoveFile(ctx, u.Token, fileID, target); err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		h.errLog.LogWithFields(r, "filemanager: move", err,
			zap.String("file_id", fileID), zap.String("target_folder_id", target))
		reply(http.StatusBadGateway, auth.FlashError, failureMessage(err, "Failed to move file", "Error moving file"))
		return
	}

	ev := events.New(events.FilesMoved, u.ID)
	ev.FileID = fileID
	ev.FolderID = target
	if h.bus != nil {
		if err := h.bus.Publish(ctx, ev); err != nil {
			h.logger.Warn("filemanager: publish move event", zap.Error(err), zap.String("file_id", fileID))
		}
	}

	if !asJSON && !wantsJSON(r) {
		viewdata.AddFlash(w, r, auth.FlashSuccess, MsgMoved)
		http.Redirect(w, r, returnTo(r), http.StatusSeeOther)
		return
	}
	jsonutil.OK(w, MsgMoved)
}

// download acknowledges a download request. The file service has no
// download endpoint yet, so nothing is transferred.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	msg := MsgDownloadStart
	if name := normalize.Name(r.PostFormValue("name")); name != "" {
		msg = "Downloading " + name + "..."
	}
	h.logger.Info("filemanager: download requested", zap.String("file_id", chi.URLParam(r, "fileID")))
	viewdata.AddFlash(w, r, auth.FlashInfo, msg)
	http.Redirect(w, r, returnTo(r), http.StatusSeeOther)
}

// toggleFolder expands or collapses a sidebar folder. Script callers get 204
// and reload themselves; plain form posts are redirected.
func (h *Handler) toggleFolder(w http.ResponseWriter, r *http.Request) {
	folderID := chi.URLParam(r, "folderID")

	set, ok := h.sessionMgr.ExpandedFolders(r)
	if !ok {
		set = make(map[string]bool)
	}
	toggle(set, folderID)
	if err := h.sessionMgr.SaveExpandedFolders(w, r, set); err != nil {
		h.errLog.Log(r, "filemanager: save expanded folders", err)
	}

	if wantsJSON(r) || r.Header.Get("X-Requested-With") == "fetch" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, returnTo(r), http.StatusSeeOther)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// returnTo is the local page a posted action goes back to.
func returnTo(r *http.Request) string {
	return urlutil.SafeReturn(r.PostFormValue("return"), "", "/filemanager")
}

// returnPath is where to resume after signing in again.
func returnPath(r *http.Request) string {
	if r.Method == http.MethodGet {
		return r.URL.RequestURI()
	}
	return returnTo(r)
}
