package amqp

import (
	"encoding/json"
	"time"
)

// AlertEventMessage announces that an alert was created or updated. It carries
// identifiers only; consumers fetch the full alert from the store.
type AlertEventMessage struct {
	AlertID    string    `json:"alert_id"`
	CategoryID string    `json:"category_id"`
	Period     string    `json:"period"`
	Percentage float64   `json:"percentage"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewAlertEventMessage(alertID, categoryID, period string, percentage float64) *AlertEventMessage {
	return &AlertEventMessage{
		AlertID:    alertID,
		CategoryID: categoryID,
		Period:     period,
		Percentage: percentage,
		Timestamp:  time.Now(),
	}
}

func (m *AlertEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AlertEventMessageFromJSON(data []byte) (*AlertEventMessage, error) {
	var msg AlertEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
