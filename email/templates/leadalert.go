// Package templates provides the qualified-lead alert email template
package templates

import (
	"fmt"
	"strings"
)

type LeadAlertEmailProps struct {
	VisitorID string
	Name      string
	Email     string
	Phone     string
	LeadScore int
	Interests []string
	Location  string
}

func GetLeadAlertEmailContent(props LeadAlertEmailProps) string {
	name := props.Name
	if name == "" {
		name = "An unnamed visitor"
	}

	rows := GetKeyValueRow("Visitor ID", props.VisitorID) +
		GetKeyValueRow("Lead score", fmt.Sprintf("%d", props.LeadScore))
	if props.Email != "" {
		rows += GetKeyValueRow("Email", props.Email)
	}
	if props.Phone != "" {
		rows += GetKeyValueRow("Phone", props.Phone)
	}
	if props.Location != "" {
		rows += GetKeyValueRow("Location", props.Location)
	}
	if len(props.Interests) > 0 {
		rows += GetKeyValueRow("Interests", strings.Join(props.Interests, ", "))
	}

	content := GetHeading("New qualified lead") +
		GetParagraph(fmt.Sprintf("%s just identified themselves on the site and scored above the qualified-lead threshold.", name)) +
		GetKeyValueTable(rows) +
		GetParagraph("Full activity history is available in the visitor dashboard.")

	return content
}
