package templates

import (
	"net/url"
	"strings"
)

// ContactProps carries a contact form submission.
type ContactProps struct {
	Name         string
	Email        string
	Phone        string
	ProjectType  string
	ProjectStage string
	Message      string
	Subject      string
}

// GetContactNotificationContent renders the message delivered to the recipient
// of a contact form, with a reply button addressed to the sender.
func GetContactNotificationContent(props ContactProps) string {
	var b strings.Builder
	b.WriteString(GetParagraph("Nouvelle demande de contact reçue depuis Fund Road."))
	b.WriteString(GetDetailsTable([]DetailRow{
		{Label: "Nom", Value: props.Name},
		{Label: "Email", Value: props.Email},
		{Label: "Téléphone", Value: props.Phone},
		{Label: "Type de projet", Value: props.ProjectType},
		{Label: "Stade du projet", Value: props.ProjectStage},
	}))
	b.WriteString(GetParagraph(props.Message))

	reply := url.URL{Scheme: "mailto", Opaque: props.Email}
	if props.Subject != "" {
		reply.RawQuery = "subject=" + url.QueryEscape("Re: "+props.Subject)
	}
	b.WriteString(GetButton(ButtonProps{Text: "Répondre", URL: reply.String()}))
	return b.String()
}

// GetContactConfirmationContent renders the acknowledgement sent back to the sender.
func GetContactConfirmationContent(props ContactProps) string {
	name := strings.TrimSpace(props.Name)
	if name == "" {
		name = "Bonjour"
	} else {
		name = "Bonjour " + name
	}

	var b strings.Builder
	b.WriteString(GetParagraph(name + ","))
	b.WriteString(GetParagraph("Nous avons bien reçu votre message et reviendrons vers vous rapidement."))
	b.WriteString(GetParagraph("Rappel de votre message :"))
	b.WriteString(GetParagraph(props.Message))
	b.WriteString(GetParagraph("L'équipe Fund Road"))
	return b.String()
}
