package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

type phrases struct {
	Dir              string
	Greeting         string
	RequestSubject   string
	RequestIntro     string
	ConfirmedSubject string
	ConfirmedBody    string
	CancelledSubject string
	CancelledBody    string
	PackageLabel     string
	WhenLabel        string
	GuestsLabel      string
	ConfirmButton    string
	CancelButton     string
	ResetSubject     string
	ResetIntro       string
	ResetButton      string
	ResetExpiry      string
	Footer           string
}

var catalog = map[string]phrases{
	"he": {
		Dir:              "rtl",
		Greeting:         "שלום",
		RequestSubject:   "קיבלנו את בקשת ההזמנה שלך",
		RequestIntro:     "תודה שבחרת בנו. אנא אשר/י את ההזמנה או בטל/י אותה בלחיצה על אחד הכפתורים:",
		ConfirmedSubject: "ההזמנה שלך אושרה",
		ConfirmedBody:    "ההזמנה אושרה. מחכים לראות אותך!",
		CancelledSubject: "ההזמנה שלך בוטלה",
		CancelledBody:    "ההזמנה בוטלה. נשמח לראות אותך בפעם אחרת.",
		PackageLabel:     "חבילה",
		WhenLabel:        "מועד",
		GuestsLabel:      "משתתפים",
		ConfirmButton:    "אישור הזמנה",
		CancelButton:     "ביטול הזמנה",
		ResetSubject:     "איפוס סיסמה",
		ResetIntro:       "התקבלה בקשה לאיפוס הסיסמה שלך. לחיצה על הכפתור תאפשר לבחור סיסמה חדשה:",
		ResetButton:      "בחירת סיסמה חדשה",
		ResetExpiry:      "הקישור בתוקף למשך %d שעות.",
		Footer:           "סטודיו לטיפול בקור",
	},
	"en": {
		Dir:              "ltr",
		Greeting:         "Hi",
		RequestSubject:   "We received your booking request",
		RequestIntro:     "Thanks for booking with us. Please confirm or cancel your booking:",
		ConfirmedSubject: "Your booking is confirmed",
		ConfirmedBody:    "Your booking is confirmed. See you at the studio!",
		CancelledSubject: "Your booking was cancelled",
		CancelledBody:    "Your booking was cancelled. We hope to see you another time.",
		PackageLabel:     "Package",
		WhenLabel:        "When",
		GuestsLabel:      "Participants",
		ConfirmButton:    "Confirm booking",
		CancelButton:     "Cancel booking",
		ResetSubject:     "Reset your password",
		ResetIntro:       "We received a request to reset your password. Use the button below to choose a new one:",
		ResetButton:      "Choose a new password",
		ResetExpiry:      "This link expires in %d hours.",
		Footer:           "Cold Therapy Studio",
	},
}

func lookup(locale string) phrases {
	if s, ok := catalog[locale]; ok {
		return s
	}
	return catalog["he"]
}

const layout = `<!DOCTYPE html>
<html dir="{{.S.Dir}}">
<head><meta charset="UTF-8"><title>{{.Title}}</title></head>
<body style="margin:0;padding:0;font-family:Arial,sans-serif;background-color:#eef6f9;">
<table role="presentation" style="width:100%;border-collapse:collapse;">
<tr><td align="center" style="padding:32px 0;">
<table role="presentation" style="width:600px;background-color:#ffffff;border-radius:8px;">
<tr><td style="padding:32px;text-align:center;background-color:#0e7490;border-radius:8px 8px 0 0;">
<h1 style="margin:0;color:#ffffff;font-size:24px;">{{.Title}}</h1>
</td></tr>
<tr><td style="padding:32px;font-size:16px;line-height:24px;color:#1f2937;">
{{if .Name}}<p>{{.S.Greeting}} {{.Name}},</p>{{end}}
{{range .Paragraphs}}<p>{{.}}</p>{{end}}
{{if .Details}}<table role="presentation" style="margin:16px 0;">
{{range .Details}}<tr><td style="padding:4px 12px;color:#6b7280;">{{.Label}}</td><td style="padding:4px 12px;">{{.Value}}</td></tr>{{end}}
</table>{{end}}
{{range .Buttons}}<p style="text-align:center;margin:24px 0;"><a href="{{.URL}}" style="display:inline-block;padding:12px 32px;background-color:{{.Color}};color:#ffffff;text-decoration:none;border-radius:6px;font-weight:bold;">{{.Label}}</a></p>{{end}}
</td></tr>
<tr><td style="padding:24px;text-align:center;background-color:#f8fafc;font-size:12px;color:#94a3b8;border-radius:0 0 8px 8px;">{{.S.Footer}}</td></tr>
</table>
</td></tr>
</table>
</body>
</html>`

var page = template.Must(template.New("email").Parse(layout))

type detail struct {
	Label string
	Value string
}

type button struct {
	Label string
	URL   string
	Color template.CSS
}

type view struct {
	S          phrases
	Title      string
	Name       string
	Paragraphs []string
	Details    []detail
	Buttons    []button
}

func render(v view) (string, error) {
	var buf bytes.Buffer
	if err := page.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}

func bookingDetails(s phrases, msg BookingMessage) []detail {
	return []detail{
		{Label: s.PackageLabel, Value: msg.PackageName},
		{Label: s.WhenLabel, Value: msg.When.Format("02/01/2006 15:04")},
		{Label: s.GuestsLabel, Value: fmt.Sprint(msg.Participants)},
	}
}

// BookingRequestEmail returns the subject and HTML body for a new booking.
func BookingRequestEmail(msg BookingMessage) (string, string, error) {
	s := lookup(msg.Locale)
	body, err := render(view{
		S:          s,
		Title:      s.RequestSubject,
		Name:       msg.Name,
		Paragraphs: []string{s.RequestIntro},
		Details:    bookingDetails(s, msg),
		Buttons: []button{
			{Label: s.ConfirmButton, URL: msg.ConfirmURL, Color: "#0e7490"},
			{Label: s.CancelButton, URL: msg.CancelURL, Color: "#9ca3af"},
		},
	})
	return s.RequestSubject, body, err
}

func BookingStatusEmail(msg BookingMessage) (string, string, error) {
	s := lookup(msg.Locale)
	subject, text := s.ConfirmedSubject, s.ConfirmedBody
	if msg.Status == "cancelled" {
		subject, text = s.CancelledSubject, s.CancelledBody
	}
	body, err := render(view{
		S:          s,
		Title:      subject,
		Name:       msg.Name,
		Paragraphs: []string{text},
		Details:    bookingDetails(s, msg),
	})
	return subject, body, err
}

// StaffNoticeEmail is always rendered in Hebrew.
func StaffNoticeEmail(n StaffNotice) (string, string, error) {
	s := lookup("he")
	subject := fmt.Sprintf("הזמנה חדשה: %s", n.Booking.Name)
	details := append(bookingDetails(s, n.Booking),
		detail{Label: "Email", Value: n.Email},
		detail{Label: "Phone", Value: n.Phone},
	)
	if n.Notes != "" {
		details = append(details, detail{Label: "Notes", Value: n.Notes})
	}
	body, err := render(view{S: s, Title: subject, Details: details})
	return subject, body, err
}

func PasswordResetEmail(msg PasswordResetMessage) (string, string, error) {
	s := lookup(msg.Locale)
	hours := max(int(msg.ExpiresIn/time.Hour), 1)
	body, err := render(view{
		S:          s,
		Title:      s.ResetSubject,
		Name:       msg.Name,
		Paragraphs: []string{s.ResetIntro, fmt.Sprintf(s.ResetExpiry, hours)},
		Buttons:    []button{{Label: s.ResetButton, URL: msg.ResetURL, Color: "#0e7490"}},
	})
	return s.ResetSubject, body, err
}
