package remote

import (
	"fmt"
	"html/template"
	"strings"
)

// signingEmail is the HTML body mailed to a signer. The only dynamic part is
// the hosted signing URL.
const signingEmail = `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1.0" />
    <title>Action Required: Sign Your Document</title>
  </head>
  <body style="margin:0; padding:0; background-color:#f0f9ff; font-family:-apple-system,'Segoe UI',Roboto,Helvetica,Arial,sans-serif;">
    <table width="100%" cellpadding="0" cellspacing="0" style="padding:40px 20px;">
      <tr>
        <td align="center">
          <table width="100%" cellpadding="0" cellspacing="0"
            style="max-width:540px; background:#ffffff; border-radius:28px; border:1px solid #e0f2fe;">
            <tr>
              <td style="padding:48px 40px 32px; text-align:center;">
                <h1 style="margin:0; font-size:28px; font-weight:800; color:#0f172a;">Document Signature Required</h1>
              </td>
            </tr>
            <tr>
              <td style="padding:0 48px 40px; text-align:center;">
                <p style="margin:0; font-size:16px; line-height:1.7; color:#475569;">
                  A document has been shared with you and requires your electronic signature.
                  This secure link is intended only for you.
                </p>
                <table cellpadding="0" cellspacing="0" style="margin:36px auto 0;">
                  <tr>
                    <td align="center" style="background:#0ea5e9; border-radius:16px;">
                      <a href="{{.SignURL}}" target="_blank"
                        style="display:inline-block; padding:18px 48px; font-size:16px; font-weight:700; color:#ffffff; text-decoration:none;">
                        Review &amp; Sign Document
                      </a>
                    </td>
                  </tr>
                </table>
                <p style="margin:18px 0 0; font-size:12px; font-weight:600; color:#94a3b8; text-transform:uppercase;">
                  Link valid for 24 hours
                </p>
              </td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>`

var signingEmailTmpl = template.Must(template.New("signing-email").Parse(signingEmail))

// RenderSigningEmail interpolates the hosted signing URL into the email body.
func RenderSigningEmail(signURL string) (string, error) {
	if signURL == "" {
		return "", fmt.Errorf("signing URL cannot be empty")
	}
	var builder strings.Builder
	if err := signingEmailTmpl.Execute(&builder, struct{ SignURL string }{SignURL: signURL}); err != nil {
		return "", fmt.Errorf("failed to render signing email: %w", err)
	}
	return builder.String(), nil
}
