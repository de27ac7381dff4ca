package email

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PayoutEmailData contains the data needed for the commission payout notice.
type PayoutEmailData struct {
	StaffName  string
	Email      string
	ClinicName string
	Procedure  string
	Amount     decimal.Decimal
	AppName    string
}

// BuildPayoutNoticeEmail creates the message sent to a staff member when one
// of their commissions is marked as paid.
func BuildPayoutNoticeEmail(data PayoutEmailData) Message {
	appName := data.AppName
	if appName == "" {
		appName = "Clinio"
	}

	name := data.StaffName
	if name == "" {
		name = "there"
	}

	clinic := data.ClinicName
	if clinic == "" {
		clinic = "your clinic"
	}

	amount := data.Amount.StringFixed(2)

	subject := fmt.Sprintf("Commission payout: %s", amount)

	textBody := fmt.Sprintf(`Hi %s,

A commission of %s for %q at %s has been marked as paid.

If you were not expecting this payout, please contact your clinic administrator.

Thanks,
The %s Team`,
		name, amount, data.Procedure, clinic, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p>A commission of <strong>%s</strong> for <strong>%s</strong> at %s has been marked as paid.</p>
    <p>If you were not expecting this payout, please contact your clinic administrator.</p>
    <p style="color: #666; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		name, amount, data.Procedure, clinic, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// GenerationWarningEmailData contains the data for the admin notice sent when
// a confirmed payment produced no commissions.
type GenerationWarningEmailData struct {
	Email      string
	ClinicName string
	Procedure  string
	PaymentID  string
	Reason     string
	AppName    string
}

// BuildGenerationWarningEmail creates the message sent to a clinic admin when
// commission generation for a confirmed payment was skipped or failed.
func BuildGenerationWarningEmail(data GenerationWarningEmailData) Message {
	appName := data.AppName
	if appName == "" {
		appName = "Clinio"
	}

	clinic := data.ClinicName
	if clinic == "" {
		clinic = "your clinic"
	}

	subject := fmt.Sprintf("Payment confirmed without commissions: %s", data.Procedure)

	textBody := fmt.Sprintf(`Hello,

Payment %s for %q at %s was confirmed, but no commissions were generated.

Reason: %s

The payment itself is unaffected. You can review the commission rules and
retry generation from the payment screen.

Thanks,
The %s Team`,
		data.PaymentID, data.Procedure, clinic, data.Reason, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #b45309;">Payment confirmed without commissions</h2>
    <p>Payment <code>%s</code> for <strong>%s</strong> at %s was confirmed, but no commissions were generated.</p>
    <p><strong>Reason:</strong> %s</p>
    <p>The payment itself is unaffected. You can review the commission rules and retry generation from the payment screen.</p>
    <p style="color: #666; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		data.PaymentID, data.Procedure, clinic, data.Reason, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}
