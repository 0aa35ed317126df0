package soundpool

import (
	"sort"
)

// Catalog groups sound variants by sound type. It is immutable once
// built; the manager swaps in a fresh catalog on Rebuild.
type Catalog struct {
	variants map[SoundType][]SoundVariant
}

// BuildCatalog groups variants by sound type. Variants with the
// sentinel sound type or a nil clip are skipped and reported through
// the observer. Building twice from the same input yields the same
// grouping. obs may be nil.
func BuildCatalog(variants []SoundVariant, obs Observer) *Catalog {
	c := &Catalog{
		variants: make(map[SoundType][]SoundVariant, len(variants)),
	}

	for _, v := range variants {
		if err := v.validate(); err != nil {
			if obs != nil {
				obs.VariantSkipped(v, err)
			}
			continue
		}
		v.Volume = v.Volume.normalized()
		v.Pitch = v.Pitch.normalized()
		c.variants[v.Sound] = append(c.variants[v.Sound], v)
	}

	if len(c.variants) == 0 && obs != nil {
		obs.EmptyCatalog()
	}
	return c
}

// Variants returns the variants assigned to a sound type, in the
// order they were supplied. The slice is shared; callers must not
// modify it.
func (c *Catalog) Variants(st SoundType) []SoundVariant {
	return c.variants[st]
}

// Len returns the number of sound types with at least one variant
func (c *Catalog) Len() int {
	return len(c.variants)
}

// Empty reports whether the catalog holds no playable variants
func (c *Catalog) Empty() bool {
	return len(c.variants) == 0
}

// Sounds returns every assigned sound type in sorted order
func (c *Catalog) Sounds() []SoundType {
	sounds := make([]SoundType, 0, len(c.variants))
	for st := range c.variants {
		sounds = append(sounds, st)
	}
	sort.Slice(sounds, func(i, j int) bool { return sounds[i] < sounds[j] })
	return sounds
}

// Missing returns which of the given sound types have no variants
// assigned, preserving input order
func (c *Catalog) Missing(known []SoundType) []SoundType {
	var missing []SoundType
	for _, st := range known {
		if st == SoundNone {
			continue
		}
		if len(c.variants[st]) == 0 {
			missing = append(missing, st)
		}
	}
	return missing
}
