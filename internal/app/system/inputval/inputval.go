// Package inputval validates form input with waffle/pantry/validate and
// turns failures into messages keyed by form field.
//
// Rules go in `validate` tags. A `msg` tag replaces the generated message
// for any rule failing on that field; otherwise a `label` tag (or the field
// name) is used to build one. Fields are keyed by their json name, which is
// the name the HTML form posts.
//
//	type personalInput struct {
//	    Name  string `json:"name" validate:"required,min=2" msg:"Name must be at least 2 characters"`
//	    Email string `json:"email" validate:"required,bareemail" msg:"Please enter a valid email address"`
//	}
//
//	errs := inputval.Fields(personalInput{Name: name, Email: email})
package inputval

import (
	"errors"
	"net/mail"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/waffle/pantry/validate"
)

var (
	validator     *validate.Validator
	validatorOnce sync.Once
)

func get() *validate.Validator {
	validatorOnce.Do(func() {
		validator = validate.New()
		// bareemail is email without the "Name <addr>" form.
		validator.RegisterRuleFunc("bareemail", func(value any) bool {
			s, ok := value.(string)
			return ok && IsValidEmail(s)
		}, "bareemail")
	})
	return validator
}

// Fields validates s and returns the first message for every failing
// field. The map is empty when s is valid.
func Fields(s any) map[string]string {
	out := make(map[string]string)

	err := get().Struct(s)
	if err == nil {
		return out
	}
	var errs validate.Errors
	if !errors.As(err, &errs) {
		out[""] = err.Error()
		return out
	}

	tags := fieldTags(s)
	for _, e := range errs {
		if _, seen := out[e.Field]; seen {
			continue
		}
		t := tags[e.Field]
		msg := t.msg
		if msg == "" {
			label := t.label
			if label == "" {
				label = e.Field
			}
			msg = message(label, e.Rule, e.Param)
		}
		out[e.Field] = msg
	}
	return out
}

type tagSet struct {
	label string
	msg   string
}

// fieldTags reads the label and msg tags of s, keyed the way the validator
// reports field names.
func fieldTags(s any) map[string]tagSet {
	out := make(map[string]tagSet)

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Pointer {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return out
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		name := f.Name
		if j, _, _ := strings.Cut(f.Tag.Get("json"), ","); j != "" && j != "-" {
			name = j
		}
		out[name] = tagSet{label: f.Tag.Get("label"), msg: f.Tag.Get("msg")}
	}
	return out
}

func message(label, rule, param string) string {
	switch rule {
	case "required":
		return label + " is required."
	case "email", "bareemail":
		return "Please enter a valid email address"
	case "oneof":
		return "Please select a " + strings.ToLower(label)
	case "min":
		return label + " must be at least " + param + " characters"
	case "max":
		return label + " must be at most " + param + " characters"
	default:
		return label + " is invalid."
	}
}

// IsValidEmail reports whether email is a bare RFC 5322 address, with no
// display name and no surrounding space.
func IsValidEmail(email string) bool {
	if email == "" || strings.TrimSpace(email) != email {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email
}
