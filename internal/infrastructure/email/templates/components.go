package templates

import (
	"bytes"
	"html/template"
	"log"
	"net/url"
	"strings"
)

type ButtonProps struct {
	Text            string
	URL             string
	BackgroundColor string
	TextColor       string
}

// DetailRow is one label/value line of a details table. Empty values are skipped.
type DetailRow struct {
	Label string
	Value string
}

var (
	buttonTemplate = template.Must(template.New("emailButton").Parse(`
    <table role="presentation" border="0" cellpadding="0" cellspacing="0" style="width: auto; margin-bottom: 16px;">
      <tr>
        <td style="border-radius: 6px; text-align: center; background-color: {{.BackgroundColor}};" bgcolor="{{.BackgroundColor}}">
          <a href="{{.URL}}" target="_blank" style="display: inline-block; font-size: 16px; font-weight: bold; padding: 12px 24px; text-decoration: none; color: {{.TextColor}};">{{.Text}}</a>
        </td>
      </tr>
    </table>`))

	paragraphTemplate = template.Must(template.New("emailParagraph").Parse(`<p style="font-size: 16px; margin: 0; margin-bottom: 16px;">{{range $i, $line := .}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>`))

	detailsTemplate = template.Must(template.New("emailDetails").Parse(`
    <table role="presentation" border="0" cellpadding="0" cellspacing="0" style="width: 100%; margin-bottom: 16px; border-collapse: collapse;" width="100%">
      {{range .}}<tr>
        <td style="padding: 6px 12px 6px 0; color: #64748b; font-size: 14px; white-space: nowrap; vertical-align: top;">{{.Label}}</td>
        <td style="padding: 6px 0; font-size: 16px; vertical-align: top;">{{.Value}}</td>
      </tr>{{end}}
    </table>`))
)

// GetButton renders a call-to-action link. Only http, https and mailto URLs are kept.
func GetButton(props ButtonProps) string {
	if props.BackgroundColor == "" {
		props.BackgroundColor = "#1e3a8a"
	}
	if props.TextColor == "" {
		props.TextColor = "#ffffff"
	}
	props.URL = sanitizeEmailURL(props.URL)
	if props.URL == "" {
		return ""
	}
	return execute(buttonTemplate, props)
}

// GetParagraph renders escaped text; newlines become line breaks.
func GetParagraph(text string) string {
	return execute(paragraphTemplate, strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n"))
}

func GetDetailsTable(rows []DetailRow) string {
	kept := make([]DetailRow, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Value) != "" {
			kept = append(kept, row)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return execute(detailsTemplate, kept)
}

func execute(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.Printf("Error executing %s template: %v", tmpl.Name(), err)
		return ""
	}
	return buf.String()
}

func sanitizeEmailURL(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	switch parsed.Scheme {
	case "http", "https", "mailto":
		return parsed.String()
	}
	return ""
}
