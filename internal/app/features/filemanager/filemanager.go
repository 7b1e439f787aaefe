// Package filemanager serves the CloudVault file manager: the sidebar folder
// tree, the file listings and the per-file actions. All file state lives in
// the remote file service; every page load fetches it afresh.
package filemanager

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	errorsfeature "github.com/dalemusser/coconsult/internal/app/features/errors"
	"github.com/dalemusser/coconsult/internal/app/system/auth"
	"github.com/dalemusser/coconsult/internal/app/system/events"
	"github.com/dalemusser/coconsult/internal/app/system/remoteapi"
	"github.com/dalemusser/coconsult/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FileService is the remote file API. *fileapi.Client satisfies it.
type FileService interface {
	GetFiles(ctx context.Context, token, folderID, view string) ([]models.FileItem, error)
	GetFolders(ctx context.Context, token, parentID string) ([]models.FolderItem, error)
	SearchFiles(ctx context.Context, token, query string) ([]models.FileItem, error)
	StarFile(ctx context.Context, token, fileID string) error
	MoveToTrash(ctx context.Context, token, fileID string) error
	ShareFile(ctx context.Context, token, fileID, email string) error
	MoveFile(ctx context.Context, token, fileID, targetFolderID string) error
}

// DefaultHeartbeat is how often an idle event stream sends a keep-alive.
const DefaultHeartbeat = 25 * time.Second

// Handler provides the file manager handlers.
type Handler struct {
	files      FileService
	bus        events.Bus
	sessionMgr *auth.SessionManager
	errLog     *errorsfeature.ErrorLogger
	heartbeat  time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// NewHandler creates a file manager Handler.
func NewHandler(
	files FileService,
	bus events.Bus,
	sessionMgr *auth.SessionManager,
	errLog *errorsfeature.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		files:      files,
		bus:        bus,
		sessionMgr: sessionMgr,
		errLog:     errLog,
		heartbeat:  DefaultHeartbeat,
		now:        time.Now,
		logger:     logger,
	}
}

// Mount registers the file manager routes on r. Every route requires a
// signed-in user. The event stream is returned separately so it can be
// mounted outside any request timeout.
func Mount(r chi.Router, h *Handler) {
	r.Group(func(r chi.Router) {
		r.Use(h.sessionMgr.RequireSignedIn)

		r.Get("/filemanager", h.browse(viewAll))
		r.Get("/folder/{folderID}", h.browse(viewFolder))
		r.Get("/starred", h.browse(viewStarred))
		r.Get("/shared", h.browse(viewShared))
		r.Get("/trash", h.browse(viewTrash))

		r.Post("/filemanager/folders/{folderID}/toggle", h.toggleFolder)

		r.Post("/files/{fileID}/star", h.star)
		r.Post("/files/{fileID}/trash", h.trash)
		r.Post("/files/{fileID}/share", h.share)
		r.Post("/files/{fileID}/move", h.move)
		r.Post("/files/{fileID}/download", h.download)
	})
}

// EventsHandler returns the server-sent event stream of refresh signals.
// It requires a signed-in user.
func EventsHandler(h *Handler) http.Handler {
	return h.sessionMgr.RequireSignedIn(http.HandlerFunc(h.stream))
}

// failureMessage picks the message for a failed remote call: the service
// said no, or the call did not go through.
func failureMessage(err error, rejected, unavailable string) string {
	if errors.Is(err, remoteapi.ErrRejected) {
		return rejected
	}
	return unavailable
}

// sessionExpired signs the user out when the file service no longer accepts
// their token. It reports whether it did so; the response is then written.
func (h *Handler) sessionExpired(w http.ResponseWriter, r *http.Request, err error) bool {
	var re *remoteapi.Error
	if !errors.As(err, &re) || re.Status != http.StatusUnauthorized {
		return false
	}

	h.sessionMgr.DestroySession(w, r)
	if wantsJSON(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return true
	}
	http.Redirect(w, r, "/login?return="+url.QueryEscape(returnPath(r)), http.StatusSeeOther)
	return true
}

func currentUser(r *http.Request) *auth.SessionUser {
	u, _ := auth.CurrentUser(r)
	return u
}
