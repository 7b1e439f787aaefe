// internal/app/features/newsletter/newsletter.go
package newsletter

import (
	"context"
	"errors"
	"net/http"

	errorsfeature "github.com/dalemusser/coconsult/internal/app/features/errors"
	"github.com/dalemusser/coconsult/internal/app/system/auditlog"
	"github.com/dalemusser/coconsult/internal/app/system/auth"
	"github.com/dalemusser/coconsult/internal/app/system/emailer"
	"github.com/dalemusser/coconsult/internal/app/system/inputval"
	"github.com/dalemusser/coconsult/internal/app/system/normalize"
	"github.com/dalemusser/coconsult/internal/app/system/timeouts"
	"github.com/dalemusser/coconsult/internal/app/system/viewdata"
	"github.com/dalemusser/coconsult/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Messages shown to the visitor.
const (
	MsgEmpty   = "Please enter your email address."
	MsgInvalid = "Please enter a valid email address"
	MsgThanks  = "Thank you for subscribing to our newsletter."
	MsgFailed  = "There was a problem subscribing. Please try again later."
)

// Source tags where a subscription came from.
const sourceFooter = "footer"

// SubscriberStore records sign-ups. *subscribers.Store satisfies it.
type SubscriberStore interface {
	Upsert(ctx context.Context, email, source string) (models.Subscriber, bool, error)
	Remove(ctx context.Context, email string) error
}

// Handler serves the footer sign-up form.
type Handler struct {
	subscribers SubscriberStore
	sender      emailer.Sender
	auditLogger *auditlog.Logger
	errLog      *errorsfeature.ErrorLogger
	logger      *zap.Logger
}

// NewHandler creates a newsletter Handler.
func NewHandler(subscribers SubscriberStore, sender emailer.Sender, auditLogger *auditlog.Logger, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		subscribers: subscribers,
		sender:      sender,
		auditLogger: auditLogger,
		errLog:      errLog,
		logger:      logger,
	}
}

// Routes returns a chi.Router with the newsletter routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.subscribe)
	return r
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	kind, msg := h.process(r, r.PostFormValue("email"))
	viewdata.AddFlash(w, r, kind, msg)
	http.Redirect(w, r, urlutil.SafeReturn(r.PostFormValue("return"), "", "/"), http.StatusSeeOther)
}

// process handles one sign-up and returns the flash kind and message.
func (h *Handler) process(r *http.Request, raw string) (string, string) {
	email := normalize.Email(raw)
	if email == "" {
		return auth.FlashError, MsgEmpty
	}
	if !inputval.IsValidEmail(email) {
		return auth.FlashError, MsgInvalid
	}

	ctx, cancel := timeouts.Remote(r.Context(), h.logger, "newsletter subscribe")
	defer cancel()

	_, first, err := h.subscribers.Upsert(ctx, email, sourceFooter)
	if err != nil {
		h.errLog.Log(r, "newsletter: record subscriber", err)
		return auth.FlashError, MsgFailed
	}

	// Repeat sign-ups are thanked again without a second notification.
	if first {
		if err := h.notify(ctx, email); err != nil {
			h.errLog.LogWithFields(r, "newsletter: notify", err, zap.String("provider", h.sender.Name()))
			h.forget(r, email)
			return auth.FlashError, MsgFailed
		}
	}

	h.auditLogger.Subscribed(ctx, r, email, first)
	return auth.FlashSuccess, MsgThanks
}

// forget removes email so a retry notifies again. It gets its own deadline
// because the sign-up's may already have passed.
func (h *Handler) forget(r *http.Request, email string) {
	ctx, cancel := timeouts.Remote(context.WithoutCancel(r.Context()), h.logger, "newsletter rollback")
	defer cancel()
	if err := h.subscribers.Remove(ctx, email); err != nil {
		h.errLog.Log(r, "newsletter: remove subscriber", err)
	}
}

// notify adds email to the provider's mailing list when it has one, and
// otherwise emails the team.
func (h *Handler) notify(ctx context.Context, email string) error {
	if adder, ok := h.sender.(emailer.ContactAdder); ok {
		err := adder.AddContact(ctx, email)
		if !errors.Is(err, emailer.ErrNotConfigured) {
			return err
		}
	}
	return h.sender.Send(ctx, emailer.Message{
		Kind:   emailer.KindSubscription,
		Params: SubscriptionParams(email),
	})
}

// SubscriptionParams are the template parameters for a sign-up notice.
func SubscriptionParams(email string) map[string]string {
	return map[string]string{
		emailer.ParamFromName:  "Website Subscriber",
		emailer.ParamFromEmail: email,
		emailer.ParamMessage:   "New subscription request from the website footer.",
		emailer.ParamToName:    models.ContactTeamName,
		emailer.ParamReplyTo:   email,
	}
}
