package submission

import "time"

// Submission is one collected account record.
type Submission struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Wallet    string    `json:"wallet"`
	Paid      bool      `json:"paid"`
	CreatedAt time.Time `json:"created_at"`
}

// State is the full store snapshot mirrored to the remote blob. The JSON
// field names match the blobs written by earlier deployments.
type State struct {
	Submissions []Submission `json:"submissions"`
	NextID      int64        `json:"nextId"`
}
