package entity

import "time"

// Report is the analytics summary returned to the admin dashboard.
// It is recomputed on every request and never stored.
type Report struct {
	TotalIntents         int              `json:"totalIntents"`
	TotalMessages        int              `json:"totalMessages"`
	AvgResponseTime      float64          `json:"avgResponseTime"`
	PlatformSatisfaction int              `json:"platformSatisfaction"`
	MessagesPerDay       []DailyCount     `json:"messagesPerDay"`
	MessageData          []DailySenderMix `json:"messageData"`
	PopularIntents       []PopularIntent  `json:"popularIntents"`
	ResponseTimes        []IntentLatency  `json:"responseTimes"`
	MessageChange        int              `json:"messageChange"`
	ResponseTimeChange   int              `json:"responseTimeChange"`
	SatisfactionChange   int              `json:"satisfactionChange"`
}

// DailyCount is the number of messages on one UTC date
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DailySenderMix splits one UTC date's messages by sender
type DailySenderMix struct {
	Date         string `json:"date"`
	UserMessages int    `json:"userMessages"`
	BotMessages  int    `json:"botMessages"`
}

// PopularIntent is one row of the most used intents table
type PopularIntent struct {
	Name         string     `json:"name"`
	DisplayName  string     `json:"displayName"`
	Count        int        `json:"count"`
	Satisfaction *int       `json:"satisfaction"`
	LastUsed     *time.Time `json:"lastUsed"`
}

// IntentLatency is the average bot response time for one intent, in seconds
type IntentLatency struct {
	Intent string  `json:"intent"`
	Time   float64 `json:"time"`
}

// DateLayout is the UTC bucket key format
const DateLayout = "2006-01-02"
