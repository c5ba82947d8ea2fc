package domain

import "time"

// DefaultCheckedOutBy is shown when a checkout document carries no user name.
const DefaultCheckedOutBy = "Unknown"

type CheckoutStatus string

const (
	StatusActive  CheckoutStatus = "Active"
	StatusOverdue CheckoutStatus = "Overdue"
)

// Override is the staff-set manual classification of a checkout.
type Override int

const (
	OverrideNone Override = iota
	OverrideOverdue
	OverrideActive
)

func (o Override) String() string {
	switch o {
	case OverrideOverdue:
		return "overdue"
	case OverrideActive:
		return "active"
	default:
		return "none"
	}
}

// ParseOverride maps the wire value of an override command. The second
// return value is false for anything unrecognized.
func ParseOverride(s string) (Override, bool) {
	switch s {
	case "overdue":
		return OverrideOverdue, true
	case "active":
		return OverrideActive, true
	case "none", "":
		return OverrideNone, true
	default:
		return OverrideNone, false
	}
}

// OverrideFromFlags resolves the two stored booleans. manualOverdue wins when
// both are set.
func OverrideFromFlags(manualOverdue, manualActive bool) Override {
	if manualOverdue {
		return OverrideOverdue
	}
	if manualActive {
		return OverrideActive
	}
	return OverrideNone
}

// CheckoutRecord is one item currently on loan.
type CheckoutRecord struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	CheckedOutBy   string     `json:"checked_out_by"`
	CheckoutTime   *time.Time `json:"checkout_time,omitempty"`
	Override       Override   `json:"-"`
	ExternalLinkID string     `json:"external_link_id,omitempty"`
}

// ItemView is a checkout record classified against a specific instant.
type ItemView struct {
	Record       CheckoutRecord `json:"record"`
	Status       CheckoutStatus `json:"status"`
	Override     string         `json:"override"`
	CheckedOutAt string         `json:"checked_out_at"`
	HeldFor      string         `json:"held_for,omitempty"`
}

// DashboardView is the classified working set served to staff.
type DashboardView struct {
	Now        time.Time  `json:"now"`
	Loading    bool       `json:"loading"`
	Error      string     `json:"error,omitempty"`
	CheckedOut []ItemView `json:"checked_out"`
	Overdue    []ItemView `json:"overdue"`
}

// InventoryItem is a row of the inventory collection.
type InventoryItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CheckedOut bool   `json:"checkedOut"`
}
