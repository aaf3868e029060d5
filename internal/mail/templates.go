package mail

import "fmt"

// ResetPasswordBody builds the password-reset email. The link points at the
// frontend, which posts the token back to the API.
func ResetPasswordBody(name, frontendURL, token string) (subject, body string) {
	subject = "Reset your password"
	body = fmt.Sprintf(`<p>Hi %s,</p>
<p>We received a request to reset your password. Click the link below to choose a new one. The link expires in 15 minutes.</p>
<p><a href="%s/reset-password/%s">Reset password</a></p>
<p>If you did not request this, you can ignore this email.</p>`,
		name, frontendURL, token)
	return subject, body
}

// InvitationBody builds the project-invitation email.
func InvitationBody(inviterName, projectName, frontendURL, token string) (subject, body string) {
	subject = fmt.Sprintf("You have been invited to %s", projectName)
	body = fmt.Sprintf(`<p>%s invited you to join the project <strong>%s</strong>.</p>
<p><a href="%s/accept-invite/%s">Accept invitation</a></p>
<p>The invitation expires in 7 days.</p>`,
		inviterName, projectName, frontendURL, token)
	return subject, body
}
