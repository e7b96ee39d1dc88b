// Package deck defines the card and deck snapshot model shared by every
// analyzer and simulator. A snapshot is a flat, read-only view of deck
// contents; persistence lives in internal/storage.
package deck

import (
	"fmt"
	"strings"
)

// CardType is the printed type of a card.
type CardType string

// Card types in the game. Power and Sigil are the two resource-producing
// variants; everything else costs power to play.
const (
	TypeUnit        CardType = "Unit"
	TypeSpell       CardType = "Spell"
	TypeFastSpell   CardType = "Fast Spell"
	TypeAttachment  CardType = "Attachment"
	TypeWeapon      CardType = "Weapon"
	TypeRelic       CardType = "Relic"
	TypeRelicWeapon CardType = "Relic Weapon"
	TypeCurse       CardType = "Curse"
	TypePower       CardType = "Power"
	TypeSigil       CardType = "Sigil"
	TypeSite        CardType = "Site"
	TypeCurseWeapon CardType = "Curse Weapon"
)

// IsPower reports whether the type is one of the resource-producing categories.
func (t CardType) IsPower() bool {
	return t == TypePower || t == TypeSigil
}

// FactionOrder lists the single-character faction codes in canonical order.
var FactionOrder = []string{"F", "T", "J", "P", "S"}

// FactionNames maps faction codes to display names.
var FactionNames = map[string]string{
	"F": "Fire",
	"T": "Time",
	"J": "Justice",
	"P": "Primal",
	"S": "Shadow",
}

// Card is the read-only projection of a card consumed by the analysis core.
type Card struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Type      CardType `json:"card_type"`
	Cost      int      `json:"cost"`
	Influence string   `json:"influence"`
	Attack    int      `json:"attack"`
	Health    int      `json:"health"`
	Text      string   `json:"card_text"`
	UnitTypes string   `json:"unit_types"` // comma-separated tags, e.g. "Soldier, Valkyrie"
	SetNumber int      `json:"set_number"`
	EternalID int      `json:"eternal_id"` // collector number within the set
	ImageURL  string   `json:"image_url,omitempty"`
}

// SetCardID returns the standard printed identifier, e.g. "Set1 #15".
func (c *Card) SetCardID() string {
	return fmt.Sprintf("Set%d #%d", c.SetNumber, c.EternalID)
}

// IsPower reports whether the card is a power source.
func (c *Card) IsPower() bool {
	return c.Type.IsPower()
}

// IsSigil reports whether the card is a basic power card exempt from copy limits.
func (c *Card) IsSigil() bool {
	return c.Type == TypeSigil || strings.Contains(c.Name, "Sigil")
}

// HasBargain reports whether the card carries the Bargain keyword, which
// permits a main-deck copy to also sit in the market.
func (c *Card) HasBargain() bool {
	return strings.Contains(c.Text, "Bargain")
}

// ParseInfluence parses an influence string like "{F}{F}{S}" into per-faction
// pip counts, e.g. {"F": 2, "S": 1}. Characters that are not recognized
// faction codes (braces, digits, anything else) are ignored.
func ParseInfluence(influence string) map[string]int {
	result := make(map[string]int)
	for _, r := range influence {
		code := string(r)
		if _, ok := FactionNames[code]; ok {
			result[code]++
		}
	}
	return result
}

// ParseUnitTypes splits a comma-separated unit-type tag string into trimmed,
// non-empty tags.
func ParseUnitTypes(unitTypes string) []string {
	if unitTypes == "" {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(unitTypes, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
