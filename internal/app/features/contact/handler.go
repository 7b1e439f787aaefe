// internal/app/features/contact/handler.go
package contact

import (
	"context"
	"errors"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/coconsult/internal/app/features/errors"
	"github.com/dalemusser/coconsult/internal/app/store/inquiries"
	"github.com/dalemusser/coconsult/internal/app/system/auditlog"
	"github.com/dalemusser/coconsult/internal/app/system/auth"
	"github.com/dalemusser/coconsult/internal/app/system/emailer"
	"github.com/dalemusser/coconsult/internal/app/system/network"
	"github.com/dalemusser/coconsult/internal/app/system/timeouts"
	"github.com/dalemusser/coconsult/internal/app/system/viewdata"
	"github.com/dalemusser/coconsult/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Messages shown to the visitor.
const (
	MsgSubmissionProblem = "There was a problem with your submission. Please try again."
	MsgTooFast           = "Please take a moment to review your message before submitting."
	MsgSendFailed        = "There was a problem sending your message. Please try again later."
	MsgSent              = "Message sent! We've received your inquiry and will get back to you soon."
)

// Form actions.
const (
	actionNext   = "next"
	actionBack   = "back"
	actionSubmit = "submit"
)

// honeypotField is hidden from people; bots tend to fill it.
const honeypotField = "website"

// DefaultMinFillTime is how long a form must be open before it may be sent.
const DefaultMinFillTime = 3 * time.Second

// InquiryStore records accepted submissions. *inquiries.Store satisfies it.
type InquiryStore interface {
	Create(ctx context.Context, in models.Inquiry) (models.Inquiry, error)
	MarkSent(ctx context.Context, id primitive.ObjectID) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) error
	CountSince(ctx context.Context, ip string, t time.Time) (int64, error)
}

// Config tunes the anti-spam checks.
type Config struct {
	MinFillTime time.Duration // 0 means DefaultMinFillTime
	HourlyLimit int           // inquiries per client IP per hour; 0 disables
}

// Handler serves the multi-step contact form.
type Handler struct {
	inquiries   InquiryStore // nil disables recording
	sender      emailer.Sender
	stamper     *Stamper
	auditLogger *auditlog.Logger
	errLog      *errorsfeature.ErrorLogger
	cfg         Config
	logger      *zap.Logger
}

// NewHandler creates a contact Handler.
func NewHandler(
	inquiryStore InquiryStore,
	sender emailer.Sender,
	stamper *Stamper,
	auditLogger *auditlog.Logger,
	errLog *errorsfeature.ErrorLogger,
	cfg Config,
	logger *zap.Logger,
) *Handler {
	if cfg.MinFillTime <= 0 {
		cfg.MinFillTime = DefaultMinFillTime
	}
	return &Handler{
		inquiries:   inquiryStore,
		sender:      sender,
		stamper:     stamper,
		auditLogger: auditLogger,
		errLog:      errLog,
		cfg:         cfg,
		logger:      logger,
	}
}

// Routes returns a chi.Router with the contact routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.show)
	r.Post("/", h.handle)
	return r
}

type pageVM struct {
	viewdata.BaseVM
	Form Form
}

// BlankForm returns a fresh step-1 form for r. Other pages use it to embed
// the form.
func (h *Handler) BlankForm(r *http.Request) Form {
	f := Form{Step: StepPersonal, CSRFToken: csrf.Token(r)}
	h.restamp(r, &f)
	return f
}

func (h *Handler) restamp(r *http.Request, f *Form) {
	stamp, err := h.stamper.Issue()
	if err != nil {
		h.errLog.Log(r, "contact: issue form stamp", err)
		return
	}
	f.Stamp = stamp
}

// renew swaps f's spent stamp for one with the same issue time, so a retry
// is not held back by the minimum fill time again.
func (h *Handler) renew(r *http.Request, f *Form, st Stamp) {
	stamp, err := h.stamper.Renew(st)
	if err != nil {
		h.errLog.Log(r, "contact: renew form stamp", err)
		return
	}
	f.Stamp = stamp
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.BlankForm(r))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, f Form) {
	vm := pageVM{
		BaseVM: viewdata.NewBaseVM(w, r, "Contact Us", "/"),
		Form:   f,
	}
	templates.Render(w, r, "contact/index", vm)
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	f := Form{
		Step:      parseStep(r.PostFormValue("step")),
		Values:    valuesFromRequest(r),
		Stamp:     r.PostFormValue("stamp"),
		CSRFToken: csrf.Token(r),
	}

	if h.apply(r, r.PostFormValue("action"), &f) {
		viewdata.AddFlash(w, r, auth.FlashSuccess, MsgSent)
		http.Redirect(w, r, "/contact", http.StatusSeeOther)
		return
	}
	h.render(w, r, f)
}

// apply runs action against f and reports whether the inquiry was sent.
// On any other outcome f is left ready to re-render.
func (h *Handler) apply(r *http.Request, action string, f *Form) bool {
	if f.Stamp == "" {
		h.restamp(r, f)
	}

	switch action {
	case actionBack:
		f.Step = prevStep(f.Step)
		return false
	case actionSubmit:
		return h.submit(r, f)
	case actionNext:
		if errs := f.Values.ValidateStep(f.Step); len(errs) > 0 {
			f.Errors = errs
			return false
		}
		f.Step = nextStep(f.Step)
		return false
	default:
		return false
	}
}

func (h *Handler) submit(r *http.Request, f *Form) bool {
	ctx := r.Context()

	if r.PostFormValue(honeypotField) != "" {
		h.auditLogger.InquiryRejected(ctx, r, "honeypot")
		f.Error = MsgSubmissionProblem
		return false
	}

	st, err := h.stamper.Open(f.Stamp)
	if err != nil {
		h.auditLogger.InquiryRejected(ctx, r, "invalid stamp")
		f.Error = MsgSubmissionProblem
		h.restamp(r, f)
		return false
	}
	if h.stamper.Age(st) < h.cfg.MinFillTime {
		h.auditLogger.InquiryRejected(ctx, r, "submitted too quickly")
		f.Error = MsgTooFast
		return false
	}

	if errs, first := f.Values.ValidateAll(); first != 0 {
		f.Errors = errs
		f.Step = first
		return false
	}

	ip := network.ClientIP(r)
	if h.overLimit(r, ip) {
		h.auditLogger.InquiryRejected(ctx, r, "hourly limit reached")
		f.Error = MsgSubmissionProblem
		return false
	}

	params := f.Values.TemplateParams()
	inq, err := h.record(r, models.Inquiry{
		Reference: uuid.NewString(),
		Email:     f.Values.Email,
		Params:    params,
		Provider:  h.sender.Name(),
		ClientIP:  ip,
		StampID:   st.ID,
	})
	if err != nil {
		h.auditLogger.InquiryRejected(ctx, r, "stamp reused")
		f.Error = MsgSubmissionProblem
		h.restamp(r, f)
		return false
	}

	sendCtx, cancel := timeouts.Remote(ctx, h.logger, "contact send")
	defer cancel()

	err = h.sender.Send(sendCtx, emailer.Message{
		Kind:      emailer.KindInquiry,
		Reference: inq.Reference,
		Params:    params,
	})
	if err != nil {
		h.errLog.LogWithFields(r, "contact: send inquiry", err,
			zap.String("reference", inq.Reference),
			zap.String("provider", h.sender.Name()))
		h.auditLogger.InquiryFailed(ctx, r, f.Values.Email, inq.Reference, err.Error())
		h.markFailed(r, inq, err.Error())
		h.renew(r, f, st)
		f.Error = MsgSendFailed
		return false
	}

	h.auditLogger.InquirySent(ctx, r, f.Values.Email, inq.Reference, h.sender.Name())
	h.markSent(r, inq)
	return true
}

// overLimit reports whether ip has reached the hourly inquiry limit. Store
// errors let the submission through.
func (h *Handler) overLimit(r *http.Request, ip string) bool {
	if h.inquiries == nil || h.cfg.HourlyLimit <= 0 || ip == "" {
		return false
	}
	n, err := h.inquiries.CountSince(r.Context(), ip, time.Now().Add(-time.Hour))
	if err != nil {
		h.errLog.Log(r, "contact: count recent inquiries", err)
		return false
	}
	return n >= int64(h.cfg.HourlyLimit)
}

// record stores the inquiry and so spends its stamp. The only error
// returned is inquiries.ErrStampUsed; any other storage failure is logged
// and the send goes ahead without a stored record.
func (h *Handler) record(r *http.Request, in models.Inquiry) (models.Inquiry, error) {
	if h.inquiries == nil {
		return in, nil
	}
	stored, err := h.inquiries.Create(r.Context(), in)
	if errors.Is(err, inquiries.ErrStampUsed) {
		return in, err
	}
	if err != nil {
		h.errLog.Log(r, "contact: store inquiry", err)
		return in, nil
	}
	return stored, nil
}

func (h *Handler) markSent(r *http.Request, in models.Inquiry) {
	if h.inquiries == nil || in.ID.IsZero() {
		return
	}
	if err := h.inquiries.MarkSent(r.Context(), in.ID); err != nil {
		h.errLog.Log(r, "contact: mark inquiry sent", err)
	}
}

func (h *Handler) markFailed(r *http.Request, in models.Inquiry, reason string) {
	if h.inquiries == nil || in.ID.IsZero() {
		return
	}
	if err := h.inquiries.MarkFailed(r.Context(), in.ID, reason); err != nil {
		h.errLog.Log(r, "contact: mark inquiry failed", err)
	}
}
