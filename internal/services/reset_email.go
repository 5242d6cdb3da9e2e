package services

import (
	"fmt"
	"html"
	"time"
)

const passwordResetSubject = "Reset your password"

// PasswordResetEmail composes the message carrying a password reset link.
func PasswordResetEmail(to, resetURL string, validFor time.Duration) Message {
	expiry := humanDuration(validFor)

	text := fmt.Sprintf("You requested a password reset.\n\n"+
		"Click the link below to reset your password:\n%s\n\n"+
		"This link will expire in %s.\n\n"+
		"If you did not request a password reset, please ignore this email.\n", resetURL, expiry)

	escaped := html.EscapeString(resetURL)
	body := fmt.Sprintf(`<p>You requested a password reset.</p>
<p>Click the link below to reset your password:</p>
<p><a href="%s">Reset Password</a></p>
<p>This link will expire in %s.</p>
<p>If you did not request a password reset, please ignore this email.</p>
`, escaped, expiry)

	return Message{To: to, Subject: passwordResetSubject, Text: text, HTML: body}
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
