package mailer

import (
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"
)

// DigestLine is one row of the expiry digest table.
type DigestLine struct {
	FullName      string
	MobileNumber  string
	CategoryName  string
	ExpiryDate    string
	DaysRemaining int
}

type IEmailService interface {
	SendExpiryDigest(toEmail string, expired, expiringSoon []DigestLine) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

func (s *emailService) SendExpiryDigest(toEmail string, expired, expiringSoon []DigestLine) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", DigestSubject(len(expired), len(expiringSoon)))
	m.SetBody("text/html", DigestBody(expired, expiringSoon))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send expiry digest to %s: %w", toEmail, err)
	}
	return nil
}

func DigestSubject(expired, expiringSoon int) string {
	return fmt.Sprintf("Registration expiry: %d expired, %d expiring soon", expired, expiringSoon)
}

// DigestBody renders the two sections as HTML tables. Values are escaped.
func DigestBody(expired, expiringSoon []DigestLine) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">`)
	writeSection(&b, "Expired", "#D32F2F", expired)
	writeSection(&b, "Expiring soon", "#F57C00", expiringSoon)
	b.WriteString(`<p>Open the admin dashboard to approve, reject or follow up.</p></div>`)
	return b.String()
}

func writeSection(b *strings.Builder, title, color string, lines []DigestLine) {
	fmt.Fprintf(b, `<h2 style="color: %s;">%s (%d)</h2>`, color, title, len(lines))
	if len(lines) == 0 {
		b.WriteString("<p>None.</p>")
		return
	}
	b.WriteString(`<table cellpadding="6" style="border-collapse: collapse;">`)
	b.WriteString("<tr><th>Name</th><th>Mobile</th><th>Category</th><th>Expiry</th><th>Days</th></tr>")
	for _, l := range lines {
		fmt.Fprintf(b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%d</td></tr>",
			html.EscapeString(l.FullName),
			html.EscapeString(l.MobileNumber),
			html.EscapeString(l.CategoryName),
			html.EscapeString(l.ExpiryDate),
			l.DaysRemaining,
		)
	}
	b.WriteString("</table>")
}
