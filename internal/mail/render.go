package mail

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/derivativegenius/backend/internal/model"
)

const confirmationSubject = "Thank you for contacting Derivative Genius"

// htmlText escapes HTML metacharacters and renders embedded newlines as
// line breaks. Every user-supplied value goes through this before it is
// interpolated into a body.
func htmlText(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>")
}

// OperatorNotification renders the email sent to the business operator
// describing an incoming submission.
func OperatorNotification(operator string, sub *model.Submission) Message {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(`<h2 style="color: #2563eb; border-bottom: 2px solid #2563eb; padding-bottom: 10px;">New Contact Form Submission</h2>`)
	b.WriteString(`<div style="background-color: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0;">`)
	fmt.Fprintf(&b, `<p><strong>Name:</strong> %s</p>`, htmlText(sub.Name))
	fmt.Fprintf(&b, `<p><strong>Email:</strong> %s</p>`, htmlText(sub.Email))
	if sub.Phone != "" {
		fmt.Fprintf(&b, `<p><strong>Phone:</strong> %s</p>`, htmlText(sub.Phone))
	}
	b.WriteString(`<p><strong>Message:</strong></p>`)
	fmt.Fprintf(&b, `<div style="background-color: white; padding: 15px; border-radius: 4px; margin-top: 10px;">%s</div>`, htmlText(sub.Message))
	b.WriteString(`</div>`)
	fmt.Fprintf(&b, `<p style="color: #6b7280; font-size: 0.875rem;">Submitted on %s from %s</p>`,
		sub.CreatedAt.Format(time.RFC1123), htmlText(sub.IP))
	b.WriteString(`</div>`)

	return Message{
		To:      operator,
		Subject: "New Contact Form Submission from " + sub.Name,
		HTML:    b.String(),
	}
}

// SubmitterConfirmation renders the acknowledgment sent back to the
// person who submitted the form, echoing their message.
func SubmitterConfirmation(sub *model.Submission) Message {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(`<h2 style="color: #2563eb; border-bottom: 2px solid #2563eb; padding-bottom: 10px;">Thank You for Reaching Out</h2>`)
	b.WriteString(`<div style="background-color: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0;">`)
	fmt.Fprintf(&b, `<p>Dear %s,</p>`, htmlText(sub.Name))
	b.WriteString(`<p>Thank you for contacting Derivative Genius. We have received your message and will get back to you as soon as possible.</p>`)
	b.WriteString(`<p>For your records, here's a copy of your message:</p>`)
	fmt.Fprintf(&b, `<div style="background-color: white; padding: 15px; border-radius: 4px; margin: 10px 0;">%s</div>`, htmlText(sub.Message))
	b.WriteString(`<p>Best regards,<br>The Derivative Genius Team</p>`)
	b.WriteString(`</div>`)
	fmt.Fprintf(&b, `<p style="color: #6b7280; font-size: 0.875rem; text-align: center;">&copy; %d Derivative Genius. All rights reserved.</p>`,
		sub.CreatedAt.Year())
	b.WriteString(`</div>`)

	return Message{
		To:      sub.Email,
		Subject: confirmationSubject,
		HTML:    b.String(),
	}
}
