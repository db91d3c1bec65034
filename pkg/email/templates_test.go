package email

import (
	"strings"
	"testing"
	"time"
)

func TestBookingRequestEmail(t *testing.T) {
	msg := BookingMessage{
		Name:         "<Dana>",
		PackageName:  "Single plunge",
		When:         time.Date(2025, 7, 3, 18, 30, 0, 0, time.UTC),
		Participants: 2,
		ConfirmURL:   "https://studio.example/api/v1/bookings/action?token=abc",
		CancelURL:    "https://studio.example/api/v1/bookings/action?token=def",
	}

	tests := []struct {
		locale  string
		subject string
		dir     string
	}{
		{locale: "he", subject: "קיבלנו את בקשת ההזמנה שלך", dir: `dir="rtl"`},
		{locale: "en", subject: "We received your booking request", dir: `dir="ltr"`},
		{locale: "fr", subject: "קיבלנו את בקשת ההזמנה שלך", dir: `dir="rtl"`},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			msg.Locale = tt.locale
			subject, body, err := BookingRequestEmail(msg)
			if err != nil {
				t.Fatalf("BookingRequestEmail() error = %v", err)
			}
			if subject != tt.subject {
				t.Fatalf("subject = %q want %q", subject, tt.subject)
			}
			for _, want := range []string{tt.dir, "03/07/2025 18:30", "token=abc", "token=def", "&lt;Dana&gt;"} {
				if !strings.Contains(body, want) {
					t.Fatalf("body missing %q", want)
				}
			}
		})
	}
}

func TestBookingStatusEmail(t *testing.T) {
	subject, _, err := BookingStatusEmail(BookingMessage{Locale: "en", Status: "cancelled"})
	if err != nil {
		t.Fatalf("BookingStatusEmail() error = %v", err)
	}
	if subject != "Your booking was cancelled" {
		t.Fatalf("subject = %q", subject)
	}
	subject, _, _ = BookingStatusEmail(BookingMessage{Locale: "en", Status: "confirmed"})
	if subject != "Your booking is confirmed" {
		t.Fatalf("subject = %q", subject)
	}
}

func TestPasswordResetEmail(t *testing.T) {
	_, body, err := PasswordResetEmail(PasswordResetMessage{Locale: "en", ResetURL: "https://x/reset?token=t", ExpiresIn: 24 * time.Hour})
	if err != nil {
		t.Fatalf("PasswordResetEmail() error = %v", err)
	}
	if !strings.Contains(body, "expires in 24 hours") || !strings.Contains(body, "reset?token=t") {
		t.Fatalf("body missing expiry or link")
	}
}
