// Package email provides email client functionality
package email

import (
	"fmt"
	"os"

	defaults "github.com/rarecask/leadtrack-go/config"
	"github.com/rarecask/leadtrack-go/email/templates"
	"github.com/rarecask/leadtrack-go/models"
	"github.com/resendlabs/resend-go"
)

type Client struct {
	resend    *resend.Client
	fromEmail string
	fromName  string
	alertTo   string
}

func NewClient() (*Client, error) {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	fromEmail := os.Getenv("EMAIL_FROM")
	if fromEmail == "" {
		fromEmail = "noreply@yourdomain.com"
	}

	fromName := os.Getenv("EMAIL_FROM_NAME")
	if fromName == "" {
		fromName = "Lead Tracker"
	}

	client := resend.NewClient(apiKey)

	return &Client{
		resend:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		alertTo:   defaults.LeadAlertEmail,
	}, nil
}

// SendLeadAlertEmail notifies the sales address that a visitor crossed the
// qualified-lead threshold.
func (c *Client) SendLeadAlertEmail(v *models.Visitor) error {
	if c.alertTo == "" {
		return fmt.Errorf("LEAD_ALERT_EMAIL is not configured")
	}

	location := ""
	if v.Location.City != "" && v.Location.Country != "" {
		location = v.Location.City + ", " + v.Location.Country
	} else if v.Location.Country != "" {
		location = v.Location.Country
	}

	content := templates.GetLeadAlertEmailContent(templates.LeadAlertEmailProps{
		VisitorID: v.VisitorID,
		Name:      v.Name,
		Email:     v.Email,
		Phone:     v.Phone,
		LeadScore: v.Behavior.LeadScore,
		Interests: v.Behavior.Interests,
		Location:  location,
	})

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Content: content,
	})

	subject := fmt.Sprintf("New qualified lead (score %d)", v.Behavior.LeadScore)

	request := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{c.alertTo},
		Subject: subject,
		Html:    htmlContent,
	}

	_, err := c.resend.Emails.Send(request)
	if err != nil {
		return fmt.Errorf("failed to send lead alert email: %w", err)
	}

	return nil
}
