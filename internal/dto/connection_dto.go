// FILE: internal/dto/connection_dto.go
package dto

import "time"

type InitiateConnectionResponse struct {
	Platform string `json:"platform"`
	AuthUrl  string `json:"auth_url"`
	State    string `json:"state"`
}

type ConnectionStatusResponse struct {
	Platform    string     `json:"platform"`
	Connected   bool       `json:"connected"`
	AccountName string     `json:"account_name,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}
