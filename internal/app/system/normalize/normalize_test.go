package normalize

import "testing"

func TestNormalizers(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"email lowercased", Email, "  Pat@Example.COM\n", "pat@example.com"},
		{"email blank", Email, "   ", ""},

		{"name trimmed", Name, "\tJane Doe\n", "Jane Doe"},
		{"name inner runs", Name, "Jane   \t Doe", "Jane Doe"},
		{"name case kept", Name, "McDONALD", "McDONALD"},
		{"name blank", Name, " \t ", ""},

		{"phone punctuation kept", Phone, " +1 (555)  123-4567 ", "+1 (555) 123-4567"},

		{"option key", Option, " 50K-100K ", "50k-100k"},
		{"option empty", Option, "", ""},

		{"message crlf", Message, "line one\r\nline two\rline three", "line one\nline two\nline three"},
		{"message inner spacing kept", Message, "  a  b\n\n c  ", "a  b\n\n c"},
		{"message control chars", Message, "hi\x00 there\x07\tok", "hi there\tok"},

		{"search", Search, "  quarterly   report ", "quarterly report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
