package validator

import (
	"strings"
	"testing"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Locale   string `json:"locale" validate:"omitempty,locale"`
	Mood     string `json:"mood" validate:"omitempty,oneof=calm tired"`
	Guests   int    `json:"guests" validate:"gte=1,lte=10"`
}

func TestValidate(t *testing.T) {
	v := NewValidator()
	valid := signup{Email: "a@b.co", Password: "12345678", Phone: "+972 50-123-4567", Locale: "he", Guests: 2}

	tests := []struct {
		name    string
		mutate  func(*signup)
		wantMsg string
	}{
		{name: "valid", mutate: func(*signup) {}},
		{name: "missing email", mutate: func(s *signup) { s.Email = "" }, wantMsg: "email is required"},
		{name: "short password", mutate: func(s *signup) { s.Password = "123" }, wantMsg: "password must be at least 8 characters"},
		{name: "bad phone", mutate: func(s *signup) { s.Phone = "call me" }, wantMsg: "phone must be a valid phone number"},
		{name: "short phone", mutate: func(s *signup) { s.Phone = "12345" }, wantMsg: "phone must be a valid phone number"},
		{name: "local phone", mutate: func(s *signup) { s.Phone = "050-1234567" }},
		{name: "bad locale", mutate: func(s *signup) { s.Locale = "fr" }, wantMsg: "locale must be he or en"},
		{name: "bad mood", mutate: func(s *signup) { s.Mood = "angry" }, wantMsg: "mood must be one of [calm tired]"},
		{name: "too many guests", mutate: func(s *signup) { s.Guests = 11 }, wantMsg: "guests must be less than or equal to 10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := v.Validate(in)
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("Validate() error = %v, want %q", err, tt.wantMsg)
			}
		})
	}
}

func TestValidateJoinsMessages(t *testing.T) {
	err := NewValidator().Validate(signup{Guests: 1})
	if err == nil {
		t.Fatalf("Validate() error = nil")
	}
	if got := strings.Count(err.Error(), ";"); got != 1 {
		t.Fatalf("Validate() = %q, want two messages", err)
	}
}
