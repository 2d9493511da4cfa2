// Package templates renders the HTML bodies of Fund Road transactional emails.
package templates

import (
	"bytes"
	"html/template"
	"log"
)

type EmailLayoutProps struct {
	Preheader  string
	Title      string
	Content    string
	FooterText string
	SiteURL    string
}

// Internal template data structure with safe HTML typing
type emailTemplateData struct {
	Preheader  string
	Title      string
	Content    template.HTML // Mark as safe HTML to prevent escaping
	FooterText string
	SiteURL    string
}

var emailLayoutTemplate = template.Must(template.New("emailLayout").Parse(`
<!doctype html>
<html lang="fr">
  <head>
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8">
    <title>{{.Title}}</title>
    <style media="all" type="text/css">
      @media only screen and (max-width: 640px) {
        .main p, .main td, .main span { font-size: 16px !important; }
        .wrapper { padding: 8px !important; }
        .container { padding: 0 !important; padding-top: 8px !important; width: 100% !important; }
        .main { border-left-width: 0 !important; border-radius: 0 !important; border-right-width: 0 !important; }
      }
    </style>
  </head>
  <body style="font-family: Helvetica, sans-serif; font-size: 16px; line-height: 1.4; background-color: #f3f6fb; margin: 0; padding: 0;">
    <span class="preheader" style="color: transparent; display: none; height: 0; max-height: 0; opacity: 0; overflow: hidden; mso-hide: all; visibility: hidden; width: 0;">{{.Preheader}}</span>
    <table role="presentation" border="0" cellpadding="0" cellspacing="0" style="background-color: #f3f6fb; width: 100%;" width="100%">
      <tr>
        <td>&nbsp;</td>
        <td class="container" style="max-width: 600px; padding-top: 24px; width: 600px; margin: 0 auto;" width="600" valign="top">
          <table role="presentation" border="0" cellpadding="0" cellspacing="0" class="main" style="background: #ffffff; border: 1px solid #e2e8f0; border-radius: 12px; width: 100%;" width="100%">
            <tr>
              <td style="background-color: #1e3a8a; border-radius: 12px 12px 0 0; padding: 16px 24px; color: #ffffff; font-size: 20px; font-weight: bold;">{{.Title}}</td>
            </tr>
            <tr>
              <td class="wrapper" style="box-sizing: border-box; padding: 24px;" valign="top">
                {{.Content}}
              </td>
            </tr>
          </table>
          <div style="padding-top: 24px; text-align: center; color: #94a3b8; font-size: 14px;">
            {{.FooterText}}<br>
            <a href="{{.SiteURL}}" style="color: #94a3b8;">{{.SiteURL}}</a>
          </div>
        </td>
        <td>&nbsp;</td>
      </tr>
    </table>
  </body>
</html>`))

func GetEmailLayout(props EmailLayoutProps) string {
	data := emailTemplateData{
		Preheader:  props.Preheader,
		Title:      props.Title,
		Content:    template.HTML(props.Content),
		FooterText: props.FooterText,
		SiteURL:    props.SiteURL,
	}
	if data.Title == "" {
		data.Title = "Fund Road"
	}
	if data.FooterText == "" {
		data.FooterText = "Fund Road, la feuille de route des entrepreneurs"
	}
	if data.SiteURL == "" {
		data.SiteURL = "https://fundroad.fr"
	}

	var buf bytes.Buffer
	if err := emailLayoutTemplate.Execute(&buf, data); err != nil {
		log.Printf("Error executing email layout template: %v", err)
		return "<html><body>Template execution error</body></html>"
	}
	return buf.String()
}
