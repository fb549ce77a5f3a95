package catalog

import (
	"fmt"
	"sort"

	"github.com/ItsBlendi/Hackathon-projekt/pkg/errors"
	"github.com/gosimple/slug"
)

// Formula converts a game's raw score into XP. Implementations must be
// pure and monotonic non-decreasing in rawScore, and must never exceed
// their cap. Anything stateful here would make the ledger unreplayable.
type Formula interface {
	XP(rawScore int64) int64
	MaxXP() int64
}

// DivisorFormula implements xp = min(cap, floor(rawScore / divisor)).
type DivisorFormula struct {
	Divisor int64
	Cap     int64
}

func (f DivisorFormula) XP(rawScore int64) int64 {
	if rawScore < 0 || f.Divisor <= 0 {
		return 0
	}
	xp := rawScore / f.Divisor
	if xp > f.Cap {
		return f.Cap
	}
	return xp
}

func (f DivisorFormula) MaxXP() int64 {
	return f.Cap
}

// BlendedFormula is used for games whose raw score is already a blended
// speed+accuracy value on the XP scale. XP is the raw score, capped.
type BlendedFormula struct {
	Cap int64
}

func (f BlendedFormula) XP(rawScore int64) int64 {
	if rawScore < 0 {
		return 0
	}
	if rawScore > f.Cap {
		return f.Cap
	}
	return rawScore
}

func (f BlendedFormula) MaxXP() int64 {
	return f.Cap
}

type GameDefinition struct {
	Slug        string
	DisplayName string
	Formula     Formula
}

// Catalog is the static game registry. Read-only after construction, so
// lookups are safe from any goroutine.
type Catalog struct {
	games map[string]*GameDefinition
	slugs []string
}

func New(defs ...GameDefinition) (*Catalog, error) {
	c := &Catalog{games: make(map[string]*GameDefinition, len(defs))}
	for i := range defs {
		def := defs[i]
		if def.Slug == "" {
			def.Slug = slug.Make(def.DisplayName)
		}
		if def.Formula == nil {
			return nil, fmt.Errorf("game %q has no XP formula", def.Slug)
		}
		if _, exists := c.games[def.Slug]; exists {
			return nil, fmt.Errorf("duplicate game slug %q", def.Slug)
		}
		c.games[def.Slug] = &def
		c.slugs = append(c.slugs, def.Slug)
	}
	sort.Strings(c.slugs)
	return c, nil
}

// Default returns the catalog of the five portal games. Divisors and caps
// match the per-game scoring rules: point games award 1 XP per 2 points,
// survival and reaction games 1 XP per 10 units, everything capped at 100.
func Default() *Catalog {
	c, err := New(
		GameDefinition{DisplayName: "Flappy Bird", Formula: DivisorFormula{Divisor: 2, Cap: 100}},
		GameDefinition{DisplayName: "Number Ninja", Formula: DivisorFormula{Divisor: 2, Cap: 100}},
		GameDefinition{DisplayName: "Reaction Rush", Formula: DivisorFormula{Divisor: 10, Cap: 100}},
		GameDefinition{DisplayName: "Dodge Squares", Formula: DivisorFormula{Divisor: 10, Cap: 100}},
		GameDefinition{DisplayName: "Memory Grid", Formula: BlendedFormula{Cap: 100}},
	)
	if err != nil {
		// Only reachable if the table above is broken at compile time.
		panic(err)
	}
	return c
}

// Lookup resolves a game slug. Unknown slugs are a hard error, never a
// silent default.
func (c *Catalog) Lookup(gameSlug string) (*GameDefinition, error) {
	def, ok := c.games[gameSlug]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownGame, fmt.Sprintf("unknown game %q", gameSlug))
	}
	return def, nil
}

// Slugs returns all registered game slugs in sorted order.
func (c *Catalog) Slugs() []string {
	out := make([]string, len(c.slugs))
	copy(out, c.slugs)
	return out
}
