package set_service_status

// SetStatusRequest HTTP request model
type SetStatusRequest struct {
	Status string `json:"status"` // "active" | "inactive"
}

// StatusResponse HTTP response model
type StatusResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}
