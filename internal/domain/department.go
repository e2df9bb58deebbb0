package domain

import "time"

// NotificationSettings controls which alerts a department receives.
type NotificationSettings struct {
	NewPetitionAlerts bool `json:"new_petition_alerts"`
	PriorityAlerts    bool `json:"priority_alerts"`
	DailySummary      bool `json:"daily_summary"`
	WeeklyReport      bool `json:"weekly_report"`
}

// SLASettings captures departmental response targets in hours/days.
type SLASettings struct {
	FirstResponseHours int    `json:"first_response"`
	ResolutionDays     int    `json:"resolution_time"`
	EscalationDays     int    `json:"escalation_time"`
	ReminderFrequency  string `json:"reminder_frequency"`
}

// DefaultNotificationSettings mirrors the defaults applied on creation.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		NewPetitionAlerts: true,
		PriorityAlerts:    true,
		DailySummary:      false,
		WeeklyReport:      true,
	}
}

// DefaultSLASettings mirrors the defaults applied on creation.
func DefaultSLASettings() SLASettings {
	return SLASettings{
		FirstResponseHours: 2,
		ResolutionDays:     5,
		EscalationDays:     3,
		ReminderFrequency:  "daily",
	}
}

// Department represents a municipal unit that triages petitions.
type Department struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	Categories    []string
	Profile       string
	Phone         string
	Address       string
	Notifications NotificationSettings
	SLA           SLASettings
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
