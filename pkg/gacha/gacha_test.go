package gacha

import (
	"math/rand"
	"strings"
	"testing"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]Prize{
		{Name: "Pebble", Description: "A small rock", Rarity: RarityCommon},
		{Name: "Stick", Description: "A pointy stick", Rarity: RarityCommon},
		{Name: "Silver Ring", Description: "Shiny", Rarity: RarityRare},
		{Name: "Dragon Scale", Description: "Warm to the touch", Rarity: RarityLegendary},
		{Name: "Ringo's Crown", Description: "One of a kind", Rarity: RarityLegendary, SpecialCharacter: "Ringo"},
	})
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return c
}

func TestNewCatalog_RequiresEveryTier(t *testing.T) {
	_, err := NewCatalog([]Prize{
		{Name: "Pebble", Rarity: RarityCommon},
		{Name: "Silver Ring", Rarity: RarityRare},
	})
	if err == nil {
		t.Fatal("expected error for catalog without legendaries")
	}
}

func TestSingle_CostAndShape(t *testing.T) {
	roller := NewRoller(testCatalog(t), rand.New(rand.NewSource(1)))

	for i := 0; i < 200; i++ {
		result := roller.Single("")
		if result.Cost != 10 {
			t.Fatalf("single roll cost = %d, want 10", result.Cost)
		}
		if len(result.Prizes) != 1 {
			t.Fatalf("single roll returned %d prizes", len(result.Prizes))
		}
		r := result.Prizes[0].Rarity
		if r < RarityCommon || r > RarityLegendary {
			t.Fatalf("rarity %d out of range", r)
		}
	}
}

func TestFive_GuaranteesRareOrBetter(t *testing.T) {
	roller := NewRoller(testCatalog(t), rand.New(rand.NewSource(2)))

	sawGuarantee := false
	for i := 0; i < 500; i++ {
		result := roller.Five("")
		if len(result.Prizes) != 5 {
			t.Fatalf("five-pull returned %d prizes", len(result.Prizes))
		}
		if result.Cost != FiveCost {
			t.Fatalf("five-pull cost = %d, want %d", result.Cost, FiveCost)
		}

		allCommonFirstFour := true
		for _, p := range result.Prizes[:4] {
			if p.Rarity >= RarityRare {
				allCommonFirstFour = false
				break
			}
		}
		if allCommonFirstFour {
			sawGuarantee = true
			if !result.GuaranteeFired {
				t.Fatal("guarantee should have fired")
			}
			if result.Prizes[4].Rarity < RarityRare {
				t.Fatalf("guaranteed fifth prize has rarity %d", result.Prizes[4].Rarity)
			}
		}
	}
	if !sawGuarantee {
		t.Error("no trial exercised the five-pull guarantee; check the seed")
	}
}

func TestTen_GuaranteesLegendary(t *testing.T) {
	roller := NewRoller(testCatalog(t), rand.New(rand.NewSource(3)))

	sawGuarantee := false
	for i := 0; i < 500; i++ {
		result := roller.Ten("")
		if len(result.Prizes) != 10 {
			t.Fatalf("ten-pull returned %d prizes", len(result.Prizes))
		}

		noLegendaryFirstNine := true
		for _, p := range result.Prizes[:9] {
			if p.Rarity == RarityLegendary {
				noLegendaryFirstNine = false
				break
			}
		}
		if noLegendaryFirstNine {
			sawGuarantee = true
			if result.Prizes[9].Rarity != RarityLegendary {
				t.Fatalf("guaranteed tenth prize has rarity %d", result.Prizes[9].Rarity)
			}
		}
	}
	if !sawGuarantee {
		t.Error("no trial exercised the ten-pull guarantee; check the seed")
	}
}

func TestSpecialSubstitution(t *testing.T) {
	roller := NewRoller(testCatalog(t), rand.New(rand.NewSource(4)))

	sawSpecial := false
	sawOrdinaryLegendary := false
	for i := 0; i < 2000; i++ {
		result := roller.Single("Ringo")
		p := result.Prizes[0]
		if p.Rarity != RarityLegendary {
			continue
		}
		if p.SpecialCharacter == "Ringo" {
			sawSpecial = true
		} else {
			sawOrdinaryLegendary = true
		}
	}
	if !sawSpecial {
		t.Error("special substitution never fired for an eligible character")
	}
	if !sawOrdinaryLegendary {
		t.Error("every legendary was substituted; chance should be 50%, not 100%")
	}

	// A character without specials never receives one.
	for i := 0; i < 2000; i++ {
		p := roller.Single("Nobody").Prizes[0]
		if p.SpecialCharacter != "" {
			t.Fatal("character without specials received a special prize")
		}
	}
}

func TestRoll_RejectsOddPullCounts(t *testing.T) {
	roller := NewRoller(testCatalog(t), rand.New(rand.NewSource(5)))

	for _, pulls := range []int{0, 2, 3, 11, -1} {
		if _, err := roller.Roll(pulls, ""); err == nil {
			t.Errorf("Roll(%d) succeeded, want error", pulls)
		}
	}
}

func TestReadCatalog(t *testing.T) {
	data := `Name,Description,Rareness,Special_Character
"Pebble","A small rock",1,
"Silver Ring","Shiny",2,
"Dragon Scale","Warm",3,
"Ringo's Crown","One of a kind",3,Ringo
`
	c, err := ReadCatalog(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadCatalog failed: %v", err)
	}
	if c.Len() != 4 {
		t.Errorf("expected 4 prizes, got %d", c.Len())
	}
	if len(c.Specials("Ringo")) != 1 {
		t.Errorf("expected 1 special for Ringo, got %d", len(c.Specials("Ringo")))
	}
	if _, ok := c.Lookup("dragon scale"); !ok {
		t.Error("case-insensitive lookup failed")
	}
}
