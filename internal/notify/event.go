package notify

import "travelorders/internal/domain/models"

// Kind tags the lifecycle outcome carried by an event. Approval and
// disapproval map onto the two notification mails the worker sends; a
// cancellation by the owner is reported as a disapproval.
type Kind string

const (
	KindApproved    Kind = "approved"
	KindDisapproved Kind = "disapproved"
)

// Event is the message published after a successful assessment or
// cancellation commit. It carries everything the worker needs so it never
// has to read the database.
type Event struct {
	Kind  Kind               `json:"kind"`
	Order models.TravelOrder `json:"order"`
	User  models.UserProfile `json:"user"`
}
