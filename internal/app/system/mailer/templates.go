// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"html/template"
	"strings"
)

// InquiryField is one labelled value in an inquiry email.
type InquiryField struct {
	Label string
	Value string
}

// InquiryEmailData contains the data for a contact inquiry notification.
type InquiryEmailData struct {
	AppName   string
	ToName    string // e.g. "CO Consultants Team"
	FromName  string
	FromEmail string
	Reference string
	Fields    []InquiryField // phone, company, project details
	Message   string         // plain text, already stripped of markup
}

// InquiryEmail generates both plain text and HTML versions of an inquiry email.
func InquiryEmail(data InquiryEmailData) (textBody, htmlBody string) {
	var t strings.Builder
	t.WriteString("Hello " + data.ToName + ",\n\n")
	t.WriteString("New inquiry from " + data.FromName + " <" + data.FromEmail + ">.\n\n")
	for _, f := range data.Fields {
		if f.Value == "" {
			continue
		}
		t.WriteString(f.Label + ": " + f.Value + "\n")
	}
	t.WriteString("\nMessage:\n" + data.Message + "\n")
	if data.Reference != "" {
		t.WriteString("\nReference: " + data.Reference + "\n")
	}
	textBody = t.String()

	var buf bytes.Buffer
	_ = inquiryHTMLTmpl.Execute(&buf, data)
	htmlBody = buf.String()

	return textBody, htmlBody
}

// SubscriptionEmailData contains the data for a newsletter sign-up notification.
type SubscriptionEmailData struct {
	AppName string
	ToName  string
	Email   string
	Message string
}

// SubscriptionEmail generates both plain text and HTML versions of a
// newsletter sign-up notification.
func SubscriptionEmail(data SubscriptionEmailData) (textBody, htmlBody string) {
	textBody = "Hello " + data.ToName + ",\n\n" +
		data.Message + "\n\n" +
		"Subscriber: " + data.Email + "\n"

	var buf bytes.Buffer
	_ = subscriptionHTMLTmpl.Execute(&buf, data)
	htmlBody = buf.String()

	return textBody, htmlBody
}

var inquiryHTMLTmpl = template.Must(template.New("inquiry").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>New Inquiry</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f4f4f5;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f4f4f5;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 560px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 1px 3px rgba(0,0,0,0.1);">
          <tr>
            <td style="padding: 32px 32px 24px 32px; text-align: center; border-bottom: 1px solid #e4e4e7;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #18181b;">{{.AppName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <h2 style="margin: 0 0 16px 0; font-size: 20px; font-weight: 600; color: #18181b;">New inquiry from {{.FromName}}</h2>
              <p style="margin: 0 0 24px 0; font-size: 15px; line-height: 1.6; color: #52525b;">
                Hello {{.ToName}}, reply directly to reach <a href="mailto:{{.FromEmail}}" style="color: #4f46e5;">{{.FromEmail}}</a>.
              </p>
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="margin-bottom: 24px;">
                {{range .Fields}}{{if .Value}}
                <tr>
                  <td style="padding: 6px 0; font-size: 14px; color: #71717a; width: 140px;">{{.Label}}</td>
                  <td style="padding: 6px 0; font-size: 14px; color: #18181b;">{{.Value}}</td>
                </tr>
                {{end}}{{end}}
              </table>
              <p style="margin: 0; font-size: 15px; line-height: 1.6; color: #3f3f46; white-space: pre-wrap;">{{.Message}}</p>
            </td>
          </tr>
          {{if .Reference}}
          <tr>
            <td style="padding: 24px 32px; background-color: #fafafa; border-top: 1px solid #e4e4e7; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #a1a1aa; text-align: center;">Reference {{.Reference}}</p>
            </td>
          </tr>
          {{end}}
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`))

var subscriptionHTMLTmpl = template.Must(template.New("subscription").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Newsletter Subscription</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f4f4f5;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f4f4f5;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px;">
              <h2 style="margin: 0 0 16px 0; font-size: 20px; font-weight: 600; color: #18181b;">{{.AppName}}</h2>
              <p style="margin: 0 0 16px 0; font-size: 15px; line-height: 1.6; color: #52525b;">Hello {{.ToName}},</p>
              <p style="margin: 0 0 16px 0; font-size: 15px; line-height: 1.6; color: #52525b;">{{.Message}}</p>
              <p style="margin: 0; font-size: 14px; color: #18181b;">Subscriber: <strong>{{.Email}}</strong></p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`))
