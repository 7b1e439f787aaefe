package inputval

import "testing"

type personal struct {
	Name    string `json:"name" validate:"required,min=2" msg:"Name must be at least 2 characters"`
	Email   string `json:"email" validate:"required,bareemail" msg:"Please enter a valid email address"`
	Company string `json:"company" validate:"required" label:"Company"`
}

type project struct {
	Budget string `json:"budget" validate:"required,oneof=under-25k discuss" label:"Budget range"`
	Notes  string `json:"notes" validate:"max=5"`
}

func TestFields_Valid(t *testing.T) {
	got := Fields(personal{Name: "Pat", Email: "pat@example.com", Company: "Acme"})
	if len(got) != 0 {
		t.Errorf("Fields() = %v, want none", got)
	}
}

func TestFields_MessageOverride(t *testing.T) {
	got := Fields(personal{Name: "P", Email: "Pat <pat@example.com>", Company: "Acme"})

	want := map[string]string{
		"name":  "Name must be at least 2 characters",
		"email": "Please enter a valid email address",
	}
	if len(got) != len(want) {
		t.Fatalf("Fields() = %v, want %v", got, want)
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Errorf("%s = %q, want %q", field, got[field], msg)
		}
	}
}

func TestFields_OneMessagePerField(t *testing.T) {
	// Empty name fails both required and min; only the override is kept.
	got := Fields(personal{Email: "pat@example.com", Company: "Acme"})
	if got["name"] != "Name must be at least 2 characters" || len(got) != 1 {
		t.Errorf("Fields() = %v", got)
	}
}

func TestFields_GeneratedMessages(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		field string
		want  string
	}{
		{"label required", personal{Name: "Pat", Email: "pat@example.com"}, "company", "Company is required."},
		{"label oneof", project{Budget: "lots"}, "budget", "Please select a budget range"},
		{"field name max", project{Budget: "discuss", Notes: "too long"}, "notes", "notes must be at most 5 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fields(tt.in)
			if got[tt.field] != tt.want {
				t.Errorf("Fields()[%q] = %q, want %q (all: %v)", tt.field, got[tt.field], tt.want, got)
			}
		})
	}
}

func TestFields_Pointer(t *testing.T) {
	got := Fields(&personal{Name: "P", Email: "pat@example.com", Company: "Acme"})
	if got["name"] != "Name must be at least 2 characters" {
		t.Errorf("Fields(&s) = %v", got)
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"pat@example.com", true},
		{"pat.doe+news@sub.example.co", true},
		{"", false},
		{"pat", false},
		{"pat@", false},
		{"@example.com", false},
		{"Pat <pat@example.com>", false},
		{" pat@example.com", false},
		{"pat@example.com ", false},
		{"two@@example.com", false},
	}

	for _, tt := range tests {
		if got := IsValidEmail(tt.email); got != tt.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}
