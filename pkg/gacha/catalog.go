package gacha

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
)

// Catalog holds every prize, indexed by rarity and by special character.
type Catalog struct {
	prizes   []Prize
	byRarity map[int][]Prize
	specials map[string][]Prize
}

// NewCatalog indexes a prize list. Every rarity tier must have at least
// one prize, or the guarantee mechanics could come up empty-handed.
func NewCatalog(prizes []Prize) (*Catalog, error) {
	c := &Catalog{
		prizes:   prizes,
		byRarity: make(map[int][]Prize),
		specials: make(map[string][]Prize),
	}

	for _, p := range prizes {
		if p.Rarity < RarityCommon || p.Rarity > RarityLegendary {
			return nil, fmt.Errorf("prize %q has invalid rarity %d", p.Name, p.Rarity)
		}
		c.byRarity[p.Rarity] = append(c.byRarity[p.Rarity], p)
		if p.SpecialCharacter != "" {
			c.specials[p.SpecialCharacter] = append(c.specials[p.SpecialCharacter], p)
		}
	}

	for rarity := RarityCommon; rarity <= RarityLegendary; rarity++ {
		if len(c.byRarity[rarity]) == 0 {
			return nil, fmt.Errorf("catalog has no prizes of rarity %d", rarity)
		}
	}

	return c, nil
}

// LoadCatalog reads a CSV prize file with a Name,Description,Rareness,
// Special_Character header row.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prize file: %w", err)
	}
	defer f.Close()
	return ReadCatalog(f)
}

// ReadCatalog parses prize CSV data.
func ReadCatalog(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read prize header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"name", "description", "rareness"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("prize file is missing column %q", required)
		}
	}

	var prizes []Prize
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read prize row: %w", err)
		}

		rarity, err := strconv.Atoi(strings.TrimSpace(record[col["rareness"]]))
		if err != nil {
			return nil, fmt.Errorf("prize %q has non-numeric rarity: %w", record[col["name"]], err)
		}

		prize := Prize{
			Name:        strings.TrimSpace(record[col["name"]]),
			Description: strings.TrimSpace(record[col["description"]]),
			Rarity:      rarity,
		}
		if i, ok := col["special_character"]; ok && i < len(record) {
			prize.SpecialCharacter = strings.TrimSpace(record[i])
		}
		prizes = append(prizes, prize)
	}

	return NewCatalog(prizes)
}

// Random picks a uniform prize of the given rarity.
func (c *Catalog) Random(rng *rand.Rand, rarity int) Prize {
	pool := c.byRarity[rarity]
	return pool[rng.Intn(len(pool))]
}

// Specials returns the character-specific prizes for a character name.
func (c *Catalog) Specials(characterName string) []Prize {
	return c.specials[characterName]
}

// Lookup finds a prize by name, case-insensitively.
func (c *Catalog) Lookup(name string) (Prize, bool) {
	for _, p := range c.prizes {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Prize{}, false
}

// Len reports the catalog size.
func (c *Catalog) Len() int {
	return len(c.prizes)
}
