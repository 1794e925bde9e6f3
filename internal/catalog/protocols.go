// Package catalog holds the static protocol and exercise content the engine
// resolves against. In production these tables are synced from the remote
// content store; the engine only ever reads them.
package catalog

import "github.com/claude/ironcoach/internal/models"

var protocols = map[string]models.ProtocolVariant{
	"strength_3x5_moderate": {
		ID: "strength_3x5_moderate", Name: "3x5 Moderate",
		RepScheme: []int{5, 5, 5}, RestSeconds: 180,
	},
	"strength_5x5_straight": {
		ID: "strength_5x5_straight", Name: "5x5 Straight Sets",
		RepScheme: []int{5, 5, 5, 5, 5}, RestSeconds: 180,
	},
	"strength_3x8_moderate": {
		ID: "strength_3x8_moderate", Name: "3x8 Moderate",
		RepScheme: []int{8, 8, 8}, RestSeconds: 90,
	},
	"strength_3x10_moderate": {
		ID: "strength_3x10_moderate", Name: "3x10 Moderate",
		RepScheme: []int{10, 10, 10}, RestSeconds: 90,
	},
	"strength_3x12_light": {
		ID: "strength_3x12_light", Name: "3x12 Light",
		RepScheme: []int{12, 12, 12}, RestSeconds: 60,
	},
	"cardio_30min_steady": {
		ID: "cardio_30min_steady", Name: "30min Steady State",
		RepScheme: []int{1}, RestSeconds: 0,
	},
}

// DefaultRestSeconds is used when a position has no protocol assigned.
const DefaultRestSeconds = 90

// Protocol resolves a protocol variant by id.
func Protocol(id string) (models.ProtocolVariant, bool) {
	p, ok := protocols[id]
	return p, ok
}

// Protocols returns every known protocol variant.
func Protocols() []models.ProtocolVariant {
	out := make([]models.ProtocolVariant, 0, len(protocols))
	for _, p := range protocols {
		out = append(out, p)
	}
	return out
}
