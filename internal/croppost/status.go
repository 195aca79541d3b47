package croppost

// Status is the lifecycle state of a listing.
//
//	pending -> approved -> available -> sold
//	pending -> rejected
//	any non-terminal -> deleted
//
// New listings start out active. sold and deleted are terminal.
type Status string

const (
	StatusActive    Status = "active"
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusSold      Status = "sold"
	StatusAvailable Status = "available"
	StatusDeleted   Status = "deleted"
)

var allStatuses = []Status{
	StatusActive,
	StatusPending,
	StatusApproved,
	StatusRejected,
	StatusSold,
	StatusAvailable,
	StatusDeleted,
}

func (s Status) Valid() bool {
	for _, v := range allStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusSold || s == StatusDeleted
}

// CanFarmerTransition reports whether the owning farmer may move a listing
// from one status to another. Farmers can only withdraw (delete) a listing
// that is still open.
func CanFarmerTransition(from, to Status) bool {
	return to == StatusDeleted && !from.IsTerminal()
}

func terminalStatuses() []any {
	return []any{string(StatusSold), string(StatusDeleted)}
}
