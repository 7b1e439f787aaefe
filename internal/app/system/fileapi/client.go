// Package fileapi is the client for the remote CloudVault file service.
//
// The service owns all storage, sharing, trash and search semantics; this
// client only lists and requests mutations. Every call is a single
// request/response round trip with no retry. Calls made on behalf of a
// signed-in user carry the user's bearer token.
package fileapi

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/dalemusser/coconsult/internal/app/system/remoteapi"
	"github.com/dalemusser/coconsult/internal/domain/models"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Listing views understood by the service.
const (
	ViewAll    = ""
	ViewShared = "shared"
	ViewTrash  = "trash"
)

// Config configures the client.
type Config struct {
	BaseURL string        // e.g. https://files.example.com/api
	Timeout time.Duration // per request; 0 means 10s
}

// Client talks to the remote file service.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client // shared transport for all per-user clients
	logger  *zap.Logger
}

// New creates a file service client.
func New(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// BaseURL returns the configured service URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// rest returns a resty client that authenticates as token.
// An empty token yields an anonymous client.
func (c *Client) rest(token string) *resty.Client {
	hc := c.http
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.http)
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}))
		hc.Timeout = c.timeout
	}

	return resty.NewWithClient(hc).
		SetBaseURL(c.baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			c.logger.Debug("file service call",
				zap.String("method", resp.Request.Method),
				zap.String("url", resp.Request.URL),
				zap.Int("status", resp.StatusCode()),
				zap.Duration("elapsed", resp.Time()))
			return nil
		})
}

// GetFiles lists the files in folderID (root when empty) for the given view.
func (c *Client) GetFiles(ctx context.Context, token, folderID, view string) ([]models.FileItem, error) {
	req := c.rest(token).R().SetContext(ctx)
	if folderID != "" {
		req.SetQueryParam("folderId", folderID)
	}
	if view != ViewAll {
		req.SetQueryParam("view", view)
	}

	resp, err := req.Get("/files")
	var files []models.FileItem
	if err := remoteapi.DecodeInto("getFiles", resp, err, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// GetFolders lists the folders under parentID (root when empty).
func (c *Client) GetFolders(ctx context.Context, token, parentID string) ([]models.FolderItem, error) {
	req := c.rest(token).R().SetContext(ctx)
	if parentID != "" {
		req.SetQueryParam("parentId", parentID)
	}

	resp, err := req.Get("/folders")
	var folders []models.FolderItem
	if err := remoteapi.DecodeInto("getFolders", resp, err, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// SearchFiles returns the files matching query.
func (c *Client) SearchFiles(ctx context.Context, token, query string) ([]models.FileItem, error) {
	resp, err := c.rest(token).R().
		SetContext(ctx).
		SetQueryParam("q", query).
		Get("/files/search")
	var files []models.FileItem
	if err := remoteapi.DecodeInto("searchFiles", resp, err, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// StarFile marks a file as starred.
func (c *Client) StarFile(ctx context.Context, token, fileID string) error {
	resp, err := c.rest(token).R().
		SetContext(ctx).
		Post(filePath(fileID, "star"))
	_, err = remoteapi.Decode("starFile", resp, err)
	return err
}

// MoveToTrash moves a file to the trash.
func (c *Client) MoveToTrash(ctx context.Context, token, fileID string) error {
	resp, err := c.rest(token).R().
		SetContext(ctx).
		Post(filePath(fileID, "trash"))
	_, err = remoteapi.Decode("moveToTrash", resp, err)
	return err
}

// ShareFile shares a file with the given email address.
func (c *Client) ShareFile(ctx context.Context, token, fileID, email string) error {
	resp, err := c.rest(token).R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email}).
		Post(filePath(fileID, "share"))
	_, err = remoteapi.Decode("shareFile", resp, err)
	return err
}

// MoveFile moves a file into targetFolderID.
func (c *Client) MoveFile(ctx context.Context, token, fileID, targetFolderID string) error {
	resp, err := c.rest(token).R().
		SetContext(ctx).
		SetBody(map[string]string{"targetFolderId": targetFolderID}).
		Post(filePath(fileID, "move"))
	_, err = remoteapi.Decode("moveFile", resp, err)
	return err
}

// Ping checks that the service answers at all. Any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.rest("").R().SetContext(ctx).Head("/")
	return err
}

func filePath(fileID, action string) string {
	return "/files/" + url.PathEscape(fileID) + "/" + action
}
