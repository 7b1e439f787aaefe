// Package authapi is the client for the remote authentication service.
package authapi

import (
	"context"
	"time"

	"github.com/dalemusser/coconsult/internal/app/system/remoteapi"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Credentials are forwarded to the login endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is forwarded to the register endpoint.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the identity returned by the service.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is what a successful login or registration yields.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Client talks to the remote auth service.
type Client struct {
	rest   *resty.Client
	logger *zap.Logger
}

// New creates an auth service client.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	return &Client{rest: rest, logger: logger}
}

// Login exchanges credentials for a session. A wrong password comes back as
// an error matching remoteapi.ErrRejected carrying the service's message.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	return c.post(ctx, "login", "/auth/login", creds)
}

// Register creates an account and returns its session.
func (c *Client) Register(ctx context.Context, reg Registration) (*Session, error) {
	return c.post(ctx, "register", "/auth/register", reg)
}

func (c *Client) post(ctx context.Context, op, path string, body any) (*Session, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)

	var sess Session
	if err := remoteapi.DecodeInto(op, resp, err, &sess); err != nil {
		c.logger.Debug("auth service call failed", zap.String("op", op), zap.Error(err))
		return nil, err
	}
	return &sess, nil
}

// Ping checks that the service answers at all. Any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.rest.R().SetContext(ctx).Head("/")
	return err
}
