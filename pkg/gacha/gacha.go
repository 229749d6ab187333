// Package gacha implements the prize machine: weighted rarity draws with
// guaranteed-tier mechanics on multi-pulls and character-specific special
// prizes.
package gacha

import (
	"errors"
	"fmt"
	"math/rand"
)

// Rarity tiers. Higher is better.
const (
	RarityCommon    = 1
	RarityRare      = 2
	RarityLegendary = 3
)

// Pull costs in ledger points.
const (
	SingleCost = 10
	FiveCost   = 50
	TenCost    = 100
)

// Rarity weights for an ordinary draw, out of 100.
const (
	commonWeight = 70
	rareWeight   = 25
)

// specialChance is applied per legendary prize, after the rarity is
// already decided.
const specialChance = 0.5

// guaranteedLegendaryChance is the odds that a five-pull guarantee slot
// picks uniformly from {rare, legendary} instead of rare.
const guaranteedLegendaryChance = 0.2

var ErrInsufficientPoints = errors.New("not enough points for this pull")

// Prize is one catalog entry.
type Prize struct {
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	Rarity           int    `json:"rarity"`
	SpecialCharacter string `json:"special_character,omitempty"`
}

// RollType identifies the pull size.
type RollType string

const (
	RollSingle RollType = "single"
	RollFive   RollType = "multi5"
	RollTen    RollType = "multi10"
)

// RollResult is the outcome of one pull of any size.
type RollResult struct {
	Prizes         []Prize  `json:"prizes"`
	Cost           int      `json:"cost"`
	Type           RollType `json:"roll_type"`
	GuaranteeFired bool     `json:"guarantee_fired"`
}

// Roller draws prizes from a catalog.
type Roller struct {
	catalog *Catalog
	rng     *rand.Rand
}

func NewRoller(catalog *Catalog, rng *rand.Rand) *Roller {
	return &Roller{catalog: catalog, rng: rng}
}

// rollRarity draws a tier from the 70/25/5 table.
func (r *Roller) rollRarity() int {
	n := r.rng.Intn(100)
	switch {
	case n < commonWeight:
		return RarityCommon
	case n < commonWeight+rareWeight:
		return RarityRare
	default:
		return RarityLegendary
	}
}

// draw picks a weighted prize and applies the special-character
// substitution when the prize came out legendary.
func (r *Roller) draw(characterName string) Prize {
	prize := r.catalog.Random(r.rng, r.rollRarity())
	return r.applySpecial(prize, characterName)
}

// applySpecial substitutes a character-specific special prize with 50%
// probability. The check runs per prize, only once the prize is already
// determined to be legendary.
func (r *Roller) applySpecial(prize Prize, characterName string) Prize {
	if prize.Rarity != RarityLegendary || characterName == "" {
		return prize
	}
	specials := r.catalog.Specials(characterName)
	if len(specials) == 0 {
		return prize
	}
	if r.rng.Float64() < specialChance {
		return specials[r.rng.Intn(len(specials))]
	}
	return prize
}

// Single performs one ordinary weighted draw.
func (r *Roller) Single(characterName string) RollResult {
	return RollResult{
		Prizes: []Prize{r.draw(characterName)},
		Cost:   SingleCost,
		Type:   RollSingle,
	}
}

// Five performs a five-pull. If the first four draws are all common, the
// fifth comes from a guaranteed tier: 20% of the time the tier is picked
// uniformly from {rare, legendary}, otherwise it is rare.
func (r *Roller) Five(characterName string) RollResult {
	prizes := make([]Prize, 0, 5)
	for i := 0; i < 4; i++ {
		prizes = append(prizes, r.draw(characterName))
	}

	hasRarePlus := false
	for _, p := range prizes {
		if p.Rarity >= RarityRare {
			hasRarePlus = true
			break
		}
	}

	guaranteed := false
	if hasRarePlus {
		prizes = append(prizes, r.draw(characterName))
	} else {
		rarity := RarityRare
		if r.rng.Float64() < guaranteedLegendaryChance {
			rarity = RarityRare + r.rng.Intn(2)
		}
		prize := r.applySpecial(r.catalog.Random(r.rng, rarity), characterName)
		prizes = append(prizes, prize)
		guaranteed = true
	}

	return RollResult{Prizes: prizes, Cost: FiveCost, Type: RollFive, GuaranteeFired: guaranteed}
}

// Ten performs a ten-pull. If the first nine draws hold no legendary, the
// tenth comes from the legendary pool.
func (r *Roller) Ten(characterName string) RollResult {
	prizes := make([]Prize, 0, 10)
	for i := 0; i < 9; i++ {
		prizes = append(prizes, r.draw(characterName))
	}

	hasLegendary := false
	for _, p := range prizes {
		if p.Rarity == RarityLegendary {
			hasLegendary = true
			break
		}
	}

	guaranteed := false
	if hasLegendary {
		prizes = append(prizes, r.draw(characterName))
	} else {
		prize := r.applySpecial(r.catalog.Random(r.rng, RarityLegendary), characterName)
		prizes = append(prizes, prize)
		guaranteed = true
	}

	return RollResult{Prizes: prizes, Cost: TenCost, Type: RollTen, GuaranteeFired: guaranteed}
}

// Roll dispatches on pull size: 1, 5 or 10.
func (r *Roller) Roll(pulls int, characterName string) (RollResult, error) {
	switch pulls {
	case 1:
		return r.Single(characterName), nil
	case 5:
		return r.Five(characterName), nil
	case 10:
		return r.Ten(characterName), nil
	default:
		return RollResult{}, fmt.Errorf("unsupported pull count %d: must be 1, 5 or 10", pulls)
	}
}

// Cost returns the point price of a pull size.
func Cost(pulls int) (int, error) {
	switch pulls {
	case 1:
		return SingleCost, nil
	case 5:
		return FiveCost, nil
	case 10:
		return TenCost, nil
	default:
		return 0, fmt.Errorf("unsupported pull count %d: must be 1, 5 or 10", pulls)
	}
}
