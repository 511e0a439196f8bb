package dto

import "time"

type AdminDashboardStats struct {
	TotalRegistrations int `json:"total_registrations"`
	Pending            int `json:"pending"`
	Approved           int `json:"approved"`
	Rejected           int `json:"rejected"`
	Expired            int `json:"expired"`
	ExpiringSoon       int `json:"expiring_soon"`
	PendingTransfers   int `json:"pending_transfers"`
}

// LogListResponse ids are MD5 hashes of the log line, not UUIDs.
type LogListResponse struct {
	Id        string    `json:"id"`
	Level     string    `json:"level"`
	Module    string    `json:"module"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type LogDetailResponse struct {
	LogListResponse
	Details map[string]interface{} `json:"details"`
}

// ActivityMessage is pushed to dashboards over the websocket for every domain event.
type ActivityMessage struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}
