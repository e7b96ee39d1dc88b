package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/eternal-forge/eternal-forge/internal/analysis"
	"github.com/eternal-forge/eternal-forge/internal/charts"
	"github.com/eternal-forge/eternal-forge/internal/deck"
	"github.com/eternal-forge/eternal-forge/internal/power"
	"github.com/eternal-forge/eternal-forge/internal/sim/battle"
	"github.com/eternal-forge/eternal-forge/internal/sim/draw"
	"github.com/eternal-forge/eternal-forge/internal/sim/goldfish"
	"github.com/eternal-forge/eternal-forge/internal/storage"
)

var (
	header  = color.New(color.FgCyan, color.Bold)
	section = color.New(color.FgWhite, color.Bold)
	good    = color.New(color.FgGreen)
	bad     = color.New(color.FgRed)
	warn    = color.New(color.FgYellow)
	faint   = color.New(color.FgHiBlack)
)

func nameFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "-", " ")
	base = strings.ReplaceAll(base, "_", " ")
	return strings.TrimSpace(base)
}

func printImportResult(name string, result *storage.ImportResult) {
	good.Printf("Imported %q (%s)\n", name, result.DeckID)
	fmt.Printf("  Cards added:   %d\n", result.CardsAdded)
	if result.CardsSkipped > 0 {
		warn.Printf("  Cards skipped: %d\n", result.CardsSkipped)
		for _, skipped := range result.Skipped {
			warn.Printf("    %s\n", skipped)
		}
	}
	for _, warning := range result.Warnings {
		warn.Printf("  Warning: %s\n", warning)
	}
}

func printDeckList(decks []*storage.DeckSummary) {
	if len(decks) == 0 {
		fmt.Println("No saved decks. Import one with: deck-analyzer import <file>")
		return
	}

	header.Println("Saved Decks")
	header.Println("===========")
	fmt.Println()
	for _, d := range decks {
		fmt.Printf("%-36s  %-24s %-10s %3d cards  %s\n",
			d.ID, d.Name, d.Format, d.CardCount, d.UpdatedAt.Format("2006-01-02 15:04"))
	}
}

func printDeck(record *storage.DeckRecord) {
	header.Printf("%s", record.Name)
	faint.Printf("  (%s, %s)\n", record.Format, record.ID)
	fmt.Println()

	var main, market []storage.DeckSlot
	for _, slot := range record.Slots {
		if slot.IsMarket {
			market = append(market, slot)
		} else {
			main = append(main, slot)
		}
	}

	section.Printf("Main Deck (%d)\n", countSlots(main))
	for _, slot := range main {
		printSlot(slot)
	}
	if len(market) > 0 {
		fmt.Println()
		section.Printf("Market (%d)\n", countSlots(market))
		for _, slot := range market {
			printSlot(slot)
		}
	}

	fmt.Println()
	validation := record.Snapshot().Validate()
	if validation.Valid {
		good.Println("Deck is legal.")
	} else {
		bad.Println("Deck is not legal:")
		for _, e := range validation.Errors {
			bad.Printf("  - %s\n", e)
		}
	}
	for _, w := range validation.Warnings {
		warn.Printf("  ! %s\n", w)
	}
}

func printSlot(slot storage.DeckSlot) {
	fmt.Printf("  %2d %-30s", slot.Quantity, slot.Card.Name)
	if slot.Card.CardType != "" {
		faint.Printf(" %s", slot.Card.CardType)
	}
	if slot.Card.Influence != "" {
		faint.Printf(" %d%s", slot.Card.Cost, slot.Card.Influence)
	}
	fmt.Println()
}

func countSlots(slots []storage.DeckSlot) int {
	total := 0
	for _, s := range slots {
		total += s.Quantity
	}
	return total
}

func printAnalysisReport(record *storage.DeckRecord) {
	snapshot := record.Snapshot()
	full := analysis.NewAnalyzer(snapshot).FullAnalysis()

	header.Printf("Analysis: %s\n", record.Name)
	header.Println(strings.Repeat("=", len(record.Name)+10))
	fmt.Println()

	fmt.Printf("Cards: %d main (%d power, %d non-power)\n",
		full.TotalCards, full.PowerCount, full.NonPowerCount)
	fmt.Println()

	// Curve
	section.Println("Cost Curve")
	fmt.Printf("  Average cost %.2f, peak at %d\n", full.Curve.AverageCost, full.Curve.PeakCost)
	costs := make([]int, 0, len(full.Curve.NonPowerByCost))
	for cost := range full.Curve.NonPowerByCost {
		costs = append(costs, cost)
	}
	sort.Ints(costs)
	for _, cost := range costs {
		count := full.Curve.NonPowerByCost[cost]
		fmt.Printf("  %2d: %-3d %s\n", cost, count, strings.Repeat("#", count))
	}
	fmt.Println()

	// Types
	section.Println("Card Types")
	types := make([]string, 0, len(full.Types.ByType))
	for t := range full.Types.ByType {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		cardType := deck.CardType(t)
		line := fmt.Sprintf("  %-14s %3d", t, full.Types.ByType[cardType])
		if pct, ok := full.Types.Percentages[cardType]; ok {
			line += fmt.Sprintf("  (%.1f%%)", pct)
		}
		fmt.Println(line)
	}
	fmt.Println()

	// Influence
	section.Println("Influence Demands")
	for _, faction := range deck.FactionOrder {
		demand, ok := full.Influence.FactionDemands[faction]
		if !ok {
			continue
		}
		fmt.Printf("  %s: %d cards, %d total pips, hardest needs %d\n",
			faction, demand.Cards, demand.TotalPips, demand.MaxPips)
	}
	if len(full.Influence.PotentialBottlenecks) > 0 {
		warn.Println("  Potential bottlenecks:")
		for _, c := range full.Influence.PotentialBottlenecks {
			warn.Printf("    %dx %s (%d%s)\n", c.Quantity, c.Name, c.Cost, c.InfluenceStr)
		}
	}
	fmt.Println()

	// Synergies
	section.Println("Synergies")
	if len(full.Synergies.SynergyPackages) == 0 {
		faint.Println("  No significant synergy packages detected.")
	}
	for _, pkg := range full.Synergies.SynergyPackages {
		fmt.Printf("  %-24s %2d cards  strength %.2f  %s\n",
			pkg.Name, pkg.Count, pkg.Strength, pkg.Description)
	}
}

func printPowerReport(record *storage.DeckRecord, turns int) {
	snapshot := record.Snapshot()
	a := power.NewAnalyzer(snapshot)

	header.Printf("Power Base: %s\n", record.Name)
	header.Println(strings.Repeat("=", len(record.Name)+12))
	fmt.Println()

	fmt.Printf("Power sources: %d of %d cards\n", a.TotalPowerCount(), a.TotalCards())
	fmt.Printf("  Undepleted:  %d\n", a.UndepletedCount())
	fmt.Printf("  Depleted:    %d\n", a.DepletedCount())
	fmt.Printf("  Conditional: %d\n", a.ConditionalCount())
	fmt.Println()

	section.Println("Influence Sources")
	sources := a.InfluenceSources()
	for _, faction := range deck.FactionOrder {
		if sources[faction] == 0 {
			continue
		}
		fmt.Printf("  %s: %d\n", faction, sources[faction])
	}
	fmt.Println()

	section.Println("Power Odds by Turn")
	printOddsTable(a.PowerTable(turns))

	for _, faction := range deck.FactionOrder {
		table, ok := a.InfluenceTable(turns)[faction]
		if !ok {
			continue
		}
		fmt.Println()
		section.Printf("%s Influence Odds by Turn\n", faction)
		printOddsTable(table)
	}

	keyCards := a.KeyCardAnalysis(snapshot)
	if len(keyCards) > 0 {
		fmt.Println()
		section.Println("Key Cards on Curve")
		for _, kc := range keyCards {
			line := fmt.Sprintf("  %dx %-28s turn %d: %5.1f%%",
				kc.Quantity, kc.CardName, kc.TargetTurn, kc.OddsOnCurve*100)
			if kc.OddsOnCurve >= 0.8 {
				good.Println(line)
			} else if kc.OddsOnCurve >= 0.6 {
				warn.Println(line)
			} else {
				bad.Println(line)
			}
		}
	}
}

// printOddsTable prints rows of per-amount probabilities as percentages.
func printOddsTable(rows []power.TableRow) {
	if len(rows) == 0 {
		return
	}

	amounts := make(map[int]bool)
	for _, row := range rows {
		for amount := range row.Odds {
			amounts[amount] = true
		}
	}
	sorted := make([]int, 0, len(amounts))
	for amount := range amounts {
		sorted = append(sorted, amount)
	}
	sort.Ints(sorted)

	fmt.Print("  Turn")
	for _, amount := range sorted {
		fmt.Printf("  %4d+", amount)
	}
	fmt.Println()

	for _, row := range rows {
		fmt.Printf("  %4d", row.Turn)
		for _, amount := range sorted {
			odds, ok := row.Odds[amount]
			if !ok {
				fmt.Print("      ")
				continue
			}
			fmt.Printf("  %4.0f%%", odds*100)
		}
		fmt.Println()
	}
}

func printDrawReport(name string, stats *draw.OpeningHandStats) {
	header.Printf("Opening Hands: %s\n", name)
	header.Println(strings.Repeat("=", len(name)+15))
	fmt.Println()

	fmt.Printf("Simulated %d hands\n", stats.Simulations)
	fmt.Println()

	section.Println("Power in Initial Hand")
	for i, count := range stats.PowerDistribution {
		fmt.Printf("  %d power: %5d (%.1f%%)\n", i, count, stats.PowerDistPct[i])
	}
	fmt.Printf("  Average: %.2f\n", stats.AvgPowerInitial)
	fmt.Println()

	section.Println("Mulligan Behavior")
	fmt.Printf("  Kept:            %5d (%.1f%%)\n", stats.Keeps, stats.KeepRatePct)
	fmt.Printf("  Mulliganed once: %5d (%.1f%%)\n", stats.MulliganedOnce, stats.MulliganOncePct)
	fmt.Printf("  Mulliganed twice:%5d (%.1f%%)\n", stats.MulliganedTwice, stats.MulliganTwicePct)
	fmt.Printf("  Average power after mulligans: %.2f\n", stats.AvgPowerAfterMull)
	fmt.Println()

	section.Println("Hand Quality")
	good.Printf("  2-4 power: %5d (%.1f%%)\n", stats.HandsWith2To4Power, stats.HandsWith2To4PowerPct)
	bad.Printf("  Screw:     %5d (%.1f%%)\n", stats.HandsScrew, stats.HandsScrewPct)
	bad.Printf("  Flood:     %5d (%.1f%%)\n", stats.HandsFlood, stats.HandsFloodPct)
	fmt.Println()

	section.Println("Playable Card by Turn")
	fmt.Printf("  Turn 1: %.1f%%\n", stats.PlayableTurn1Pct)
	fmt.Printf("  Turn 2: %.1f%%\n", stats.PlayableTurn2Pct)
	fmt.Printf("  Turn 3: %.1f%%\n", stats.PlayableTurn3Pct)
}

func printGoldfishReport(name string, turns []goldfish.TurnSummary) {
	header.Printf("Goldfish: %s\n", name)
	header.Println(strings.Repeat("=", len(name)+10))
	fmt.Println()

	for _, turn := range turns {
		section.Printf("Turn %d", turn.Turn)
		faint.Printf("  (power %d, hand %d, damage potential %d)\n",
			turn.PowerMax, turn.HandSize, turn.DamagePotential)

		if turn.Drawn != nil {
			fmt.Printf("  Drew %s\n", turn.Drawn.Name)
		}
		if len(turn.Actions) == 0 {
			faint.Println("  No plays.")
		}
		for _, action := range turn.Actions {
			switch action.Action {
			case goldfish.ActionPlayedPower:
				fmt.Printf("  Played power: %s\n", action.Card.Name)
			case goldfish.ActionPlayedUnit:
				fmt.Printf("  Played unit:  %s (%d/%d)\n", action.Card.Name, action.Card.Attack, action.Card.Health)
			case goldfish.ActionCastSpell:
				fmt.Printf("  Cast spell:   %s\n", action.Card.Name)
			}
		}
		fmt.Println()
	}

	if len(turns) > 0 {
		last := turns[len(turns)-1]
		fmt.Printf("After %d turns: %d power, %d units on board, %d damage potential\n",
			last.Turn, last.PowerMax, last.BattlefieldCount, last.DamagePotential)
	}
}

func printBattleReport(name1, name2 string, agg *battle.Aggregate) {
	title := fmt.Sprintf("%s vs %s", name1, name2)
	header.Println(title)
	header.Println(strings.Repeat("=", len(title)))
	fmt.Println()

	fmt.Printf("Games played: %d\n", agg.GamesPlayed)
	fmt.Println()

	printWinLine(name1, agg.Player1Wins, agg.Player1WinRate)
	printWinLine(name2, agg.Player2Wins, agg.Player2WinRate)
	fmt.Printf("  %-24s %4d\n", "Draws", agg.Draws)
	fmt.Println()

	fmt.Printf("Average game length: %.1f turns\n", agg.AvgGameLength)
	fmt.Printf("Average final health: %.1f vs %.1f\n", agg.AvgPlayer1Health, agg.AvgPlayer2Health)
}

func printWinLine(name string, wins int, rate float64) {
	line := fmt.Sprintf("  %-24s %4d (%.1f%%)", name, wins, rate)
	if rate >= 55 {
		good.Println(line)
	} else if rate <= 45 {
		bad.Println(line)
	} else {
		fmt.Println(line)
	}
}

func writeChartReport(record *storage.DeckRecord, path string) error {
	snapshot := record.Snapshot()
	full := analysis.NewAnalyzer(snapshot).FullAnalysis()
	rows := power.NewAnalyzer(snapshot).PowerTable(10)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()

	return charts.RenderDeckReport(f, record.Name, full, rows)
}
