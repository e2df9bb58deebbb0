package mailer

import (
	"fmt"
	"strings"
	"time"
)

const bodyWrapper = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:24px;font-family:'Segoe UI',Tahoma,sans-serif;background-color:#f4f4f4;">
  <div style="max-width:600px;margin:0 auto;background:#ffffff;border-radius:8px;padding:32px;">
    <h2 style="margin-top:0;color:#1f2a44;">%s</h2>
    %s
    <p style="color:#8a93a6;font-size:12px;margin-bottom:0;">Citizen Petition System &mdash; automated message, do not reply.</p>
  </div>
</body>
</html>`

func render(heading, content string) string {
	return fmt.Sprintf(bodyWrapper, heading, content)
}

// SubmissionAck confirms receipt of a new petition to the citizen.
func SubmissionAck(to, name, ticketID, title string) Message {
	content := fmt.Sprintf(`
    <p>Dear %s,</p>
    <p>Your petition <strong>%s</strong> has been received and assigned ticket
    <strong>%s</strong>. Use the ticket number to track its progress.</p>`,
		name, title, ticketID)
	return Message{
		To:       to,
		Subject:  fmt.Sprintf("Petition Received - %s", ticketID),
		HTMLBody: render("Petition Received", content),
		Kind:     KindSubmissionAck,
	}
}

// HighUrgencyAlert warns a department about a newly filed urgent petition.
func HighUrgencyAlert(to, ticketID, title, category, submitter string) Message {
	content := fmt.Sprintf(`
    <p>A high urgency petition requires immediate attention.</p>
    <ul>
      <li>Ticket: <strong>%s</strong></li>
      <li>Title: %s</li>
      <li>Category: %s</li>
      <li>Submitted by: %s</li>
    </ul>`, ticketID, title, category, submitter)
	return Message{
		To:       to,
		Subject:  fmt.Sprintf("HIGH URGENCY PETITION - %s", ticketID),
		HTMLBody: render("High Urgency Alert", content),
		Kind:     KindHighUrgencyAlert,
	}
}

// StatusChange informs the citizen of a status transition.
func StatusChange(to, name, ticketID, title, oldStatus, newStatus string) Message {
	content := fmt.Sprintf(`
    <p>Dear %s,</p>
    <p>The status of your petition <strong>%s</strong> (ticket %s) changed from
    <strong>%s</strong> to <strong>%s</strong>.</p>`,
		name, title, ticketID, prettyStatus(oldStatus), prettyStatus(newStatus))
	return Message{
		To:       to,
		Subject:  fmt.Sprintf("Petition Status Update - %s", ticketID),
		HTMLBody: render("Status Update", content),
		Kind:     KindStatusChange,
	}
}

// Rejection informs the citizen that a petition was rejected and why.
func Rejection(to, name, ticketID, title, reason string) Message {
	content := fmt.Sprintf(`
    <p>Dear %s,</p>
    <p>Your petition <strong>%s</strong> (ticket %s) has been rejected.</p>
    <p><strong>Reason:</strong> %s</p>
    <p>You may submit a new petition with additional details if circumstances change.</p>`,
		name, title, ticketID, reason)
	return Message{
		To:       to,
		Subject:  fmt.Sprintf("Petition Rejected - %s", ticketID),
		HTMLBody: render("Petition Rejected", content),
		Kind:     KindRejection,
	}
}

// DeadlineReminder nudges a department about an approaching deadline.
func DeadlineReminder(to, ticketID, title string, hoursRemaining float64) Message {
	content := fmt.Sprintf(`
    <p>Petition <strong>%s</strong> (ticket %s) is due in
    <strong>%.1f hours</strong>. Please take action before the deadline passes.</p>`,
		title, ticketID, hoursRemaining)
	return Message{
		To:       to,
		Subject:  fmt.Sprintf("Deadline Reminder: Petition %s", ticketID),
		HTMLBody: render("Deadline Reminder", content),
		Kind:     KindDeadlineReminder,
	}
}

// OTP delivers a one-time passcode.
func OTP(to, name, code string) Message {
	content := fmt.Sprintf(`
    <p>Hello %s,</p>
    <p>Your verification code is:</p>
    <p style="font-size:32px;letter-spacing:8px;font-weight:bold;color:#4361ee;">%s</p>
    <p>The code expires in 10 minutes. If you did not request it, ignore this message.</p>`,
		name, code)
	return Message{
		To:       to,
		Subject:  "Your Verification Code",
		HTMLBody: render("Email Verification", content),
		Kind:     KindOTP,
	}
}

// Welcome greets a freshly verified citizen.
func Welcome(to, name string) Message {
	content := fmt.Sprintf(`
    <p>Dear %s,</p>
    <p>Your account is verified. You can now submit petitions, track their
    progress by ticket number, and receive status updates by email.</p>`, name)
	return Message{
		To:       to,
		Subject:  "Welcome to the Citizen Petition System",
		HTMLBody: render("Welcome", content),
		Kind:     KindWelcome,
	}
}

// SummaryRow is one petition line in a report email.
type SummaryRow struct {
	TicketID string
	Title    string
	Urgency  string
	Category string
}

// DailySummaryData feeds the daily report template.
type DailySummaryData struct {
	Department    string
	Date          time.Time
	NewPetitions  int64
	ResolvedToday int64
	Pending       int64
	HighUrgency   int64
	UrgentList    []SummaryRow
	NewToday      []SummaryRow
}

// DailySummary renders the daily department digest.
func DailySummary(to string, data DailySummaryData) Message {
	content := fmt.Sprintf(`
    <p>Daily activity for <strong>%s</strong> on %s:</p>
    <ul>
      <li>New petitions: <strong>%d</strong></li>
      <li>Resolved today: <strong>%d</strong></li>
      <li>Currently pending: <strong>%d</strong></li>
      <li>Open high urgency: <strong>%d</strong></li>
    </ul>
    %s
    %s`,
		data.Department, data.Date.Format("January 2, 2006"),
		data.NewPetitions, data.ResolvedToday, data.Pending, data.HighUrgency,
		renderRows("Open High Urgency", data.UrgentList),
		renderRows("New Today", data.NewToday))
	return Message{
		To:       to,
		Subject:  fmt.Sprintf("Daily Summary Report - %s - %s", data.Department, data.Date.Format("January 2, 2006")),
		HTMLBody: render("Daily Summary", content),
		Kind:     KindDailySummary,
	}
}

// WeeklyReportData feeds the weekly report template.
type WeeklyReportData struct {
	Department     string
	WeekStart      time.Time
	WeekEnd        time.Time
	TotalPetitions int64
	VolumeTrendPct float64
	ResolutionRate float64
	ResolvedCount  int64
	InProgress     int64
	Pending        int64
	Insights       []string
}

// WeeklyReport renders the weekly performance digest.
func WeeklyReport(to string, data WeeklyReportData) Message {
	insights := make([]string, 0, len(data.Insights))
	for _, insight := range data.Insights {
		insights = append(insights, "<li>"+insight+"</li>")
	}
	content := fmt.Sprintf(`
    <p>Weekly performance for <strong>%s</strong> (%s &ndash; %s):</p>
    <ul>
      <li>Petitions received: <strong>%d</strong> (%+.1f%% vs previous week)</li>
      <li>Resolution rate: <strong>%.1f%%</strong> (%d resolved)</li>
      <li>In progress: <strong>%d</strong>, pending: <strong>%d</strong></li>
    </ul>
    <h3 style="color:#1f2a44;">Insights</h3>
    <ul>%s</ul>`,
		data.Department,
		data.WeekStart.Format("January 2"), data.WeekEnd.Format("January 2, 2006"),
		data.TotalPetitions, data.VolumeTrendPct,
		data.ResolutionRate, data.ResolvedCount,
		data.InProgress, data.Pending,
		strings.Join(insights, ""))
	return Message{
		To:       to,
		Subject:  fmt.Sprintf("Weekly Performance Report - %s - Week of %s", data.Department, data.WeekStart.Format("January 2")),
		HTMLBody: render("Weekly Report", content),
		Kind:     KindWeeklyReport,
	}
}

func renderRows(heading string, rows []SummaryRow) string {
	if len(rows) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf(`<h3 style="color:#1f2a44;">%s</h3><ul>`, heading))
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("<li><strong>%s</strong> %s (%s, %s)</li>",
			row.TicketID, row.Title, row.Urgency, row.Category))
	}
	b.WriteString("</ul>")
	return b.String()
}

func prettyStatus(status string) string {
	return strings.ReplaceAll(status, "_", " ")
}
