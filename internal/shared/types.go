package shared

// Asynq task types and queues.
const (
	TypeGigExpireSweep = "gig:expire_sweep"

	QueueGig = "default"
)

// ExpireSweepPayload is the (empty) payload for the lifecycle sweep task.
type ExpireSweepPayload struct{}

// UserBasicInfo is display info shared across domains without importing
// the user domain.
type UserBasicInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
