// internal/app/features/contact/form.go
package contact

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/coconsult/internal/app/system/emailer"
	"github.com/dalemusser/coconsult/internal/app/system/htmlsanitize"
	"github.com/dalemusser/coconsult/internal/app/system/inputval"
	"github.com/dalemusser/coconsult/internal/app/system/normalize"
	"github.com/dalemusser/coconsult/internal/domain/models"
)

// Step numbers.
const (
	StepPersonal = 1
	StepProject  = 2
	StepMessage  = 3
)

// Step describes one page of the form.
type Step struct {
	Number      int
	Title       string
	Description string
}

// Steps are the form pages in order.
var Steps = []Step{
	{Number: StepPersonal, Title: "Personal Info", Description: "Tell us about yourself"},
	{Number: StepProject, Title: "Project Details", Description: "Project requirements"},
	{Number: StepMessage, Title: "Message", Description: "Describe your needs"},
}

// Option is a select choice.
type Option struct {
	Value string
	Label string
}

// Select options. The values must stay in sync with the oneof rules on
// projectInput.
var (
	ProjectTypes = []Option{
		{"dashboard-setup", "Dashboard Setup"},
		{"rtls-tracking", "RTLS Tracking Implementation"},
		{"data-integration", "Data Integration"},
		{"analytics-platform", "Complete Analytics Platform"},
		{"consulting", "Construction Data Consulting"},
		{"other", "Other"},
	}
	Budgets = []Option{
		{"under-25k", "Under $25,000"},
		{"25k-50k", "$25,000 - $50,000"},
		{"50k-100k", "$50,000 - $100,000"},
		{"100k-250k", "$100,000 - $250,000"},
		{"over-250k", "Over $250,000"},
		{"discuss", "Prefer to discuss"},
	}
	Timelines = []Option{
		{"asap", "ASAP"},
		{"1-3months", "1-3 months"},
		{"3-6months", "3-6 months"},
		{"6-12months", "6-12 months"},
		{"over-year", "Over a year"},
		{"flexible", "Flexible"},
	}
	TeamSizes = []Option{
		{"1-10", "1-10 people"},
		{"11-50", "11-50 people"},
		{"51-200", "51-200 people"},
		{"201-500", "201-500 people"},
		{"over-500", "Over 500 people"},
	}
)

// Values are the visitor's answers. Field names in the posted form match
// the json tags of the step inputs below.
type Values struct {
	Name        string
	Email       string
	Phone       string
	Company     string
	ProjectType string
	Budget      string
	Timeline    string
	TeamSize    string
	Message     string
}

type personalInput struct {
	Name    string `json:"name" validate:"required,min=2" msg:"Name must be at least 2 characters"`
	Email   string `json:"email" validate:"required,bareemail" msg:"Please enter a valid email address"`
	Phone   string `json:"phone" validate:"required,min=10" msg:"Please enter a valid phone number"`
	Company string `json:"company" validate:"required,min=2" msg:"Company name must be at least 2 characters"`
}

type projectInput struct {
	ProjectType string `json:"projectType" validate:"required,oneof=dashboard-setup rtls-tracking data-integration analytics-platform consulting other" msg:"Please select a project type"`
	Budget      string `json:"budget" validate:"required,oneof=under-25k 25k-50k 50k-100k 100k-250k over-250k discuss" msg:"Please select a budget range"`
	Timeline    string `json:"timeline" validate:"required,oneof=asap 1-3months 3-6months 6-12months over-year flexible" msg:"Please select a timeline"`
	TeamSize    string `json:"teamSize" validate:"required,oneof=1-10 11-50 51-200 201-500 over-500" msg:"Please select team size"`
}

type messageInput struct {
	Message string `json:"message" validate:"required,min=10" msg:"Message must be at least 10 characters"`
}

// valuesFromRequest reads the answers from a parsed form.
func valuesFromRequest(r *http.Request) Values {
	return Values{
		Name:        normalize.Name(r.PostFormValue("name")),
		Email:       normalize.Email(r.PostFormValue("email")),
		Phone:       normalize.Phone(r.PostFormValue("phone")),
		Company:     normalize.Name(r.PostFormValue("company")),
		ProjectType: normalize.Option(r.PostFormValue("projectType")),
		Budget:      normalize.Option(r.PostFormValue("budget")),
		Timeline:    normalize.Option(r.PostFormValue("timeline")),
		TeamSize:    normalize.Option(r.PostFormValue("teamSize")),
		Message:     normalize.Message(r.PostFormValue("message")),
	}
}

// stepInput returns the validation input for one step.
func (v Values) stepInput(step int) any {
	switch step {
	case StepPersonal:
		return personalInput{Name: v.Name, Email: v.Email, Phone: v.Phone, Company: v.Company}
	case StepProject:
		return projectInput{ProjectType: v.ProjectType, Budget: v.Budget, Timeline: v.Timeline, TeamSize: v.TeamSize}
	default:
		return messageInput{Message: v.Message}
	}
}

// ValidateStep checks only the fields of step. The result maps form field
// names to messages and is empty when the step is valid.
func (v Values) ValidateStep(step int) map[string]string {
	return inputval.Fields(v.stepInput(step))
}

// ValidateAll checks every step. It also returns the first step that has a
// problem, or 0 when all steps are valid.
func (v Values) ValidateAll() (map[string]string, int) {
	all := make(map[string]string)
	first := 0
	for _, s := range Steps {
		errs := v.ValidateStep(s.Number)
		if len(errs) > 0 && first == 0 {
			first = s.Number
		}
		for k, msg := range errs {
			all[k] = msg
		}
	}
	return all, first
}

// TemplateParams maps the answers to the email template parameters. Markup
// is stripped from every value.
func (v Values) TemplateParams() map[string]string {
	return htmlsanitize.PlainTextMap(map[string]string{
		emailer.ParamFromName:    v.Name,
		emailer.ParamFromEmail:   v.Email,
		emailer.ParamPhone:       v.Phone,
		emailer.ParamCompany:     v.Company,
		emailer.ParamProjectType: v.ProjectType,
		emailer.ParamBudget:      v.Budget,
		emailer.ParamTimeline:    v.Timeline,
		emailer.ParamTeamSize:    v.TeamSize,
		emailer.ParamMessage:     v.Message,
		emailer.ParamToName:      models.ContactTeamName,
		emailer.ParamReplyTo:     v.Email,
	})
}

// parseStep reads the step number, clamped to the valid range.
func parseStep(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return StepPersonal
	}
	return clampStep(n)
}

func clampStep(n int) int {
	return min(max(n, StepPersonal), StepMessage)
}

func nextStep(step int) int {
	return min(step+1, StepMessage)
}

func prevStep(step int) int {
	return max(step-1, StepPersonal)
}

// Form is the view model for the contact form partial.
type Form struct {
	Step      int
	Values    Values
	Errors    map[string]string // inline messages by field name
	Error     string            // form-level problem
	Stamp     string            // signed render time
	CSRFToken string
}

// Steps returns the step list for the progress indicator.
func (f Form) Steps() []Step { return Steps }

// Current returns the active step.
func (f Form) Current() Step { return Steps[clampStep(f.Step)-1] }

// IsFirst reports whether the active step is the first one.
func (f Form) IsFirst() bool { return f.Step <= StepPersonal }

// IsLast reports whether the active step is the last one.
func (f Form) IsLast() bool { return f.Step >= StepMessage }

// StepState returns "done", "current" or "todo" for step n.
func (f Form) StepState(n int) string {
	switch {
	case n < f.Step:
		return "done"
	case n == f.Step:
		return "current"
	default:
		return "todo"
	}
}

// Select option lists for the template.
func (f Form) ProjectTypes() []Option { return ProjectTypes }
func (f Form) Budgets() []Option      { return Budgets }
func (f Form) Timelines() []Option    { return Timelines }
func (f Form) TeamSizes() []Option    { return TeamSizes }
