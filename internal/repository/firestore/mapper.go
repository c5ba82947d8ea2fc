package firestore

import (
	"fmt"
	"strings"
	"time"

	"scanimals-checkout/internal/domain"
	"scanimals-checkout/internal/utils"
)

// Field names have drifted across revisions of the checkout app; the first
// present alias wins.
var (
	nameFields         = []string{"name", "itemName"}
	checkedOutByFields = []string{"checkedOutBy", "usersName", "lastCheckedOutBy"}
	checkoutTimeFields = []string{"checkOutTime", "timestamp"}
)

const (
	fieldManualOverdue  = "manualOverdue"
	fieldManualOverride = "manualOverride"
	fieldItemID         = "itemID"
	fieldCheckedOut     = "checkedOut"
)

// RecordFromDocument maps a checkout document into the canonical record
func RecordFromDocument(id string, data map[string]interface{}, loc *time.Location) domain.CheckoutRecord {
	record := domain.CheckoutRecord{
		ID:           id,
		Name:         firstString(data, nameFields),
		CheckedOutBy: firstString(data, checkedOutByFields),
	}
	if record.CheckedOutBy == "" {
		record.CheckedOutBy = domain.DefaultCheckedOutBy
	}

	raw := utils.AbsentTimestamp()
	for _, f := range checkoutTimeFields {
		if v, ok := data[f]; ok && v != nil {
			raw = utils.RawTimestampFrom(v, loc)
			break
		}
	}
	record.CheckoutTime = utils.Normalize(raw)

	record.Override = domain.OverrideFromFlags(boolField(data, fieldManualOverdue), boolField(data, fieldManualOverride))
	record.ExternalLinkID = stringish(data[fieldItemID])

	return record
}

// InventoryFromDocument maps an inventory document; checkedOut defaults false
func InventoryFromDocument(id string, data map[string]interface{}) domain.InventoryItem {
	return domain.InventoryItem{
		ID:         id,
		Name:       stringish(data["name"]),
		CheckedOut: boolField(data, fieldCheckedOut),
	}
}

// OverrideUpdates returns the stored flag values for an override
func OverrideUpdates(o domain.Override) map[string]bool {
	switch o {
	case domain.OverrideOverdue:
		return map[string]bool{fieldManualOverdue: true, fieldManualOverride: false}
	case domain.OverrideActive:
		return map[string]bool{fieldManualOverride: true, fieldManualOverdue: false}
	default:
		return map[string]bool{fieldManualOverdue: false, fieldManualOverride: false}
	}
}

func firstString(data map[string]interface{}, fields []string) string {
	for _, f := range fields {
		if s := strings.TrimSpace(stringish(data[f])); s != "" {
			return s
		}
	}
	return ""
}

func boolField(data map[string]interface{}, field string) bool {
	b, ok := data[field].(bool)
	return ok && b
}

func stringish(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
