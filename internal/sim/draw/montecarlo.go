package draw

import (
	"math"
	"math/rand"
	"sort"

	"github.com/eternal-forge/eternal-forge/internal/deck"
)

// Final-hand power counts considered mana screw or flood.
const (
	screwThreshold = 1
	floodThreshold = 5
)

// CardCount pairs a card name with how many trial hands contained it.
type CardCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// OpeningHandStats aggregates a Monte Carlo run over opening hands. The
// power distributions index by power count, with 7+ collapsed into the last
// bucket. Rate fields have matching percentage fields computed over the
// number of simulations.
type OpeningHandStats struct {
	Simulations int `json:"num_simulations"`

	PowerDistribution    [8]int     `json:"power_distribution"`
	MulliganPowerDist    [8]int     `json:"mulligan_power_dist"`
	PowerDistPct         [8]float64 `json:"power_dist_pct"`
	MulliganPowerDistPct [8]float64 `json:"mull_power_dist_pct"`

	AvgPowerInitial   float64 `json:"avg_power_initial"`
	AvgPowerAfterMull float64 `json:"avg_power_after_mull"`

	Keeps            int     `json:"keeps"`
	MulliganedOnce   int     `json:"mulligan_once"`
	MulliganedTwice  int     `json:"mulligan_twice"`
	KeepRatePct      float64 `json:"keep_rate_pct"`
	MulliganOncePct  float64 `json:"mulligan_once_pct"`
	MulliganTwicePct float64 `json:"mulligan_twice_pct"`

	HandsWith2To4Power    int     `json:"hands_with_2_4_power"`
	HandsScrew            int     `json:"hands_screw"`
	HandsFlood            int     `json:"hands_flood"`
	HandsWith2To4PowerPct float64 `json:"hands_with_2_4_power_pct"`
	HandsScrewPct         float64 `json:"hands_screw_pct"`
	HandsFloodPct         float64 `json:"hands_flood_pct"`

	PlayableTurn1    int     `json:"playable_turn_1"`
	PlayableTurn2    int     `json:"playable_turn_2"`
	PlayableTurn3    int     `json:"playable_turn_3"`
	PlayableTurn1Pct float64 `json:"playable_turn_1_pct"`
	PlayableTurn2Pct float64 `json:"playable_turn_2_pct"`
	PlayableTurn3Pct float64 `json:"playable_turn_3_pct"`

	CardAppearances   map[string]int     `json:"card_appearance"`
	CardAppearancePct map[string]float64 `json:"card_appearance_pct"`
	TopCards          []CardCount        `json:"top_cards"`

	InfluenceInHand map[string]int     `json:"influence_in_hand"`
	AvgInfluence    map[string]float64 `json:"avg_influence"`
}

// SimulateOpeningHands runs n independent opening-hand trials with the fixed
// mulligan heuristic (mulligan when power is outside 2-4, re-check once after
// the first mulligan, never a third) and aggregates the results. A nil rng
// gets a time-seeded one; pass a seeded rng for reproducible runs.
func SimulateOpeningHands(d *deck.Deck, n int, rng *rand.Rand) *OpeningHandStats {
	rng = ensureRNG(rng)
	stats := &OpeningHandStats{
		Simulations:     n,
		CardAppearances: make(map[string]int),
		InfluenceInHand: make(map[string]int),
	}

	totalPowerInitial := 0
	totalPowerFinal := 0

	for trial := 0; trial < n; trial++ {
		sim := New(d, rng)

		initial := sim.HandStats()
		totalPowerInitial += initial.PowerCount
		stats.PowerDistribution[clampBucket(initial.PowerCount)]++

		for _, card := range sim.Hand() {
			stats.CardAppearances[card.Name]++
		}

		mulligans := 0
		if initial.PowerCount < minForcedPower || initial.PowerCount > maxForcedPower {
			sim.Mulligan()
			mulligans = 1
			afterFirst := sim.HandStats()
			if afterFirst.PowerCount < minForcedPower || afterFirst.PowerCount > maxForcedPower {
				sim.Mulligan()
				mulligans = 2
			}
		}

		final := sim.HandStats()
		totalPowerFinal += final.PowerCount
		stats.MulliganPowerDist[clampBucket(final.PowerCount)]++

		switch mulligans {
		case 0:
			stats.Keeps++
		case 1:
			stats.MulliganedOnce++
		default:
			stats.MulliganedTwice++
		}

		if final.PowerCount >= minForcedPower && final.PowerCount <= maxForcedPower {
			stats.HandsWith2To4Power++
		}
		if final.PowerCount <= screwThreshold {
			stats.HandsScrew++
		}
		if final.PowerCount >= floodThreshold {
			stats.HandsFlood++
		}

		turn1, turn2, turn3 := false, false, false
		for _, card := range final.NonPowerCards {
			if card.Cost <= 1 {
				turn1 = true
			}
			if card.Cost <= 2 {
				turn2 = true
			}
			if card.Cost <= 3 {
				turn3 = true
			}
		}
		if turn1 {
			stats.PlayableTurn1++
		}
		if turn2 {
			stats.PlayableTurn2++
		}
		if turn3 {
			stats.PlayableTurn3++
		}

		for faction, pips := range final.Influence {
			stats.InfluenceInHand[faction] += pips
		}
	}

	if n == 0 {
		return stats
	}

	stats.AvgPowerInitial = round2(float64(totalPowerInitial) / float64(n))
	stats.AvgPowerAfterMull = round2(float64(totalPowerFinal) / float64(n))

	stats.KeepRatePct = pct(stats.Keeps, n)
	stats.MulliganOncePct = pct(stats.MulliganedOnce, n)
	stats.MulliganTwicePct = pct(stats.MulliganedTwice, n)
	stats.HandsWith2To4PowerPct = pct(stats.HandsWith2To4Power, n)
	stats.HandsScrewPct = pct(stats.HandsScrew, n)
	stats.HandsFloodPct = pct(stats.HandsFlood, n)
	stats.PlayableTurn1Pct = pct(stats.PlayableTurn1, n)
	stats.PlayableTurn2Pct = pct(stats.PlayableTurn2, n)
	stats.PlayableTurn3Pct = pct(stats.PlayableTurn3, n)

	for i := range stats.PowerDistribution {
		stats.PowerDistPct[i] = pct(stats.PowerDistribution[i], n)
		stats.MulliganPowerDistPct[i] = pct(stats.MulliganPowerDist[i], n)
	}

	stats.CardAppearancePct = make(map[string]float64, len(stats.CardAppearances))
	for name, count := range stats.CardAppearances {
		stats.CardAppearancePct[name] = pct(count, n)
	}

	stats.AvgInfluence = make(map[string]float64)
	for faction, pips := range stats.InfluenceInHand {
		if pips > 0 {
			stats.AvgInfluence[faction] = round2(float64(pips) / float64(n))
		}
	}

	for name, count := range stats.CardAppearances {
		stats.TopCards = append(stats.TopCards, CardCount{Name: name, Count: count})
	}
	sort.SliceStable(stats.TopCards, func(i, j int) bool {
		if stats.TopCards[i].Count != stats.TopCards[j].Count {
			return stats.TopCards[i].Count > stats.TopCards[j].Count
		}
		return stats.TopCards[i].Name < stats.TopCards[j].Name
	})
	if len(stats.TopCards) > 20 {
		stats.TopCards = stats.TopCards[:20]
	}

	return stats
}

func clampBucket(power int) int {
	if power > 7 {
		return 7
	}
	return power
}

func pct(count, total int) float64 {
	return math.Round(float64(count)/float64(total)*1000) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
