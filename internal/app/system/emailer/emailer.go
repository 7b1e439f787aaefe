// Package emailer delivers contact inquiries and newsletter notifications
// through a transactional email provider.
//
// Callers hand over a fixed set of template parameters (see the Param
// constants). Hosted-template providers (EmailJS) receive the parameters as
// is; the others render them with the mailer templates first.
package emailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/coconsult/internal/app/system/mailer"
)

// Template parameter names shared by every provider.
const (
	ParamFromName    = "from_name"
	ParamFromEmail   = "from_email"
	ParamPhone       = "phone"
	ParamCompany     = "company"
	ParamProjectType = "project_type"
	ParamBudget      = "budget"
	ParamTimeline    = "timeline"
	ParamTeamSize    = "team_size"
	ParamMessage     = "message"
	ParamToName      = "to_name"
	ParamReplyTo     = "reply_to"
)

// Message kinds.
const (
	KindInquiry      = "inquiry"
	KindSubscription = "subscription"
)

// Provider names accepted in configuration.
const (
	ProviderEmailJS = "emailjs"
	ProviderResend  = "resend"
	ProviderSMTP    = "smtp"
	ProviderLog     = "log"
)

// ErrNotConfigured is returned when a provider lacks required settings.
var ErrNotConfigured = errors.New("email provider not configured")

// Message is a templated email.
type Message struct {
	Kind      string
	Reference string // optional id included in rendered emails
	Params    map[string]string
}

// Param returns the named template parameter.
func (m Message) Param(name string) string {
	return m.Params[name]
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// ContactAdder is implemented by providers that manage a mailing list.
// AddContact returns ErrNotConfigured when no list is set up.
type ContactAdder interface {
	AddContact(ctx context.Context, email string) error
}

// rendered is a message turned into subject and bodies.
type rendered struct {
	Subject string
	Text    string
	HTML    string
}

// render builds the subject and bodies for providers without hosted templates.
func render(appName string, msg Message) (rendered, error) {
	switch msg.Kind {
	case KindInquiry:
		text, html := mailer.InquiryEmail(mailer.InquiryEmailData{
			AppName:   appName,
			ToName:    msg.Param(ParamToName),
			FromName:  msg.Param(ParamFromName),
			FromEmail: msg.Param(ParamFromEmail),
			Reference: msg.Reference,
			Fields: []mailer.InquiryField{
				{Label: "Phone", Value: msg.Param(ParamPhone)},
				{Label: "Company", Value: msg.Param(ParamCompany)},
				{Label: "Project type", Value: msg.Param(ParamProjectType)},
				{Label: "Budget", Value: msg.Param(ParamBudget)},
				{Label: "Timeline", Value: msg.Param(ParamTimeline)},
				{Label: "Team size", Value: msg.Param(ParamTeamSize)},
			},
			Message: msg.Param(ParamMessage),
		})
		return rendered{
			Subject: "New inquiry from " + msg.Param(ParamFromName),
			Text:    text,
			HTML:    html,
		}, nil
	case KindSubscription:
		text, html := mailer.SubscriptionEmail(mailer.SubscriptionEmailData{
			AppName: appName,
			ToName:  msg.Param(ParamToName),
			Email:   msg.Param(ParamFromEmail),
			Message: msg.Param(ParamMessage),
		})
		return rendered{
			Subject: "New newsletter subscription",
			Text:    text,
			HTML:    html,
		}, nil
	default:
		return rendered{}, fmt.Errorf("unknown message kind %q", msg.Kind)
	}
}
