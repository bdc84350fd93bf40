package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
)

// ResetPasswordSubject is the subject line of the forgot-password email
const ResetPasswordSubject = "Roleplay: Recuperação de Senha"

// ResetPasswordData holds data for the reset password email.
type ResetPasswordData struct {
	Username  string
	ResetLink string
	ExpiresIn string // e.g. "2 horas"
}

// ResetLink appends the token to the caller supplied reset URL, keeping any
// query string it already carries.
func ResetLink(baseURL, token string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// BuildResetPasswordEmail creates the forgot-password email with both HTML
// and text bodies. From and To are set by the caller.
func BuildResetPasswordEmail(data ResetPasswordData) Email {
	return Email{
		Subject:  ResetPasswordSubject,
		TextBody: buildResetPasswordText(data),
		HTMLBody: buildResetPasswordHTML(data),
	}
}

func buildResetPasswordText(data ResetPasswordData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Olá %s,\n\n", data.Username))
	buf.WriteString("Recebemos um pedido para redefinir a sua senha. Use o link abaixo:\n")
	buf.WriteString(data.ResetLink + "\n\n")
	buf.WriteString(fmt.Sprintf("O link expira em %s.\n\n", data.ExpiresIn))
	buf.WriteString("Se você não fez este pedido, ignore este email.\n")
	return buf.String()
}

var resetPasswordTmpl = template.Must(template.New("reset_password").Parse(resetPasswordHTMLTemplate))

func buildResetPasswordHTML(data ResetPasswordData) string {
	var buf bytes.Buffer
	_ = resetPasswordTmpl.Execute(&buf, data)
	return buf.String()
}

const resetPasswordHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Recuperação de Senha</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151;">Olá {{.Username}},</p>
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151;">
                Recebemos um pedido para redefinir a sua senha.
              </p>
              <p style="text-align: center;">
                <a href="{{.ResetLink}}" style="display: inline-block; padding: 14px 32px; background-color: #4f46e5; color: #ffffff; text-decoration: none; border-radius: 6px;">
                  Redefinir senha
                </a>
              </p>
              <p style="margin: 24px 0 0; font-size: 13px; color: #9ca3af; text-align: center;">
                O link expira em {{.ExpiresIn}}.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
