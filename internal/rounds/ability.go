package rounds

import (
	"strings"

	"valtrack/internal/model"
)

// AbilitySlot identifies which ability slot a finishing blow came from.
type AbilitySlot int

const (
	SlotNone AbilitySlot = iota
	SlotGrenade
	SlotBasic
	SlotSignature
	SlotUltimate
)

func (s AbilitySlot) String() string {
	switch s {
	case SlotGrenade:
		return "Grenade"
	case SlotBasic:
		return "Basic"
	case SlotSignature:
		return "Signature"
	case SlotUltimate:
		return "Ultimate"
	default:
		return "None"
	}
}

// AbilitySlotFor attributes a finishing blow to an ability slot by matching
// markers in the damage type/item strings. Substring matching is a documented
// fallback for telemetry that does not tag ability kills explicitly; several
// downstream aggregates are tuned against this attribution, so keep it as-is.
func AbilitySlotFor(fd model.FinishingDamage) AbilitySlot {
	dtype := strings.ToLower(fd.DamageType)
	item := strings.ToLower(fd.DamageItem)

	if dtype != "ability" && !strings.Contains(dtype, "grenade") && !strings.Contains(dtype, "ultimate") {
		return SlotNone
	}
	switch {
	case strings.Contains(item, "grenade") || strings.Contains(dtype, "grenade"):
		return SlotGrenade
	case strings.Contains(item, "ultimate") || strings.Contains(dtype, "ultimate"):
		return SlotUltimate
	case strings.Contains(item, "ability2") || strings.Contains(item, "signature"):
		return SlotSignature
	case strings.Contains(item, "ability1") || strings.Contains(item, "basic"):
		return SlotBasic
	default:
		// Ability kill with an unrecognized item string; count it as basic.
		return SlotBasic
	}
}
