package mail

import (
	"fmt"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// BodyInput carries the fields interpolated into the notification body.
type BodyInput struct {
	RecipientName string
	DocumentTitle string
	Number        string
	SenderName    string
	SenderEmail   string
	SenderPhone   string
}

// BuildHTMLBody renders the email body that accompanies a document
// attachment. All interpolated values are escaped.
func BuildHTMLBody(in BodyInput) string {
	var sb strings.Builder
	sb.WriteString("<html><body style=\"font-family:Arial,sans-serif;color:#1f2933\">")
	fmt.Fprintf(&sb, "<p>Dear %s,</p>", htmlEscaper.Replace(in.RecipientName))
	fmt.Fprintf(&sb, "<p>Please find attached %s <strong>%s</strong>.</p>",
		htmlEscaper.Replace(in.DocumentTitle), htmlEscaper.Replace(in.Number))
	sb.WriteString("<p>If you have any questions, reply to this email.</p>")
	sb.WriteString("<p>Kind regards,<br/>")
	sb.WriteString(htmlEscaper.Replace(in.SenderName))
	if in.SenderEmail != "" {
		fmt.Fprintf(&sb, "<br/>%s", htmlEscaper.Replace(in.SenderEmail))
	}
	if in.SenderPhone != "" {
		fmt.Fprintf(&sb, "<br/>%s", htmlEscaper.Replace(in.SenderPhone))
	}
	sb.WriteString("</p></body></html>")
	return sb.String()
}
