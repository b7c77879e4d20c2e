// SPDX-License-Identifier: MPL-2.0

package texture

import (
	"fmt"
	"sort"
	"strings"
)

// mapIdent identifies one logical map inside a set. The same map name under
// two color spaces is two distinct maps, not a conflict.
type mapIdent struct {
	name       string
	colorSpace string
}

// Aggregate groups exported files by their textureSet token into ordered
// TextureSet groupings. UDIM sequences (files differing only by tile number)
// collapse into a single tiled TextureMap; partial tile blocks are valid and
// pass through with whatever tiles exist. Conflicting files inside one group
// return InconsistentTextureSetError.
func Aggregate(files []ExportedFile) ([]TextureSet, error) {
	var setOrder []string
	mapsBySet := make(map[string]map[mapIdent]*TextureMap)
	mapOrder := make(map[string][]mapIdent)

	for _, f := range files {
		if err := checkMapName(f); err != nil {
			return nil, err
		}

		if _, ok := mapsBySet[f.TextureSet]; !ok {
			mapsBySet[f.TextureSet] = make(map[mapIdent]*TextureMap)
			setOrder = append(setOrder, f.TextureSet)
		}

		ident := mapIdent{name: f.MapName, colorSpace: f.ColorSpace}
		m, ok := mapsBySet[f.TextureSet][ident]
		if !ok {
			mapsBySet[f.TextureSet][ident] = &TextureMap{
				Name:       f.MapName,
				ColorSpace: f.ColorSpace,
				Tiled:      f.Tiled,
				Files:      []ExportedFile{f},
			}
			mapOrder[f.TextureSet] = append(mapOrder[f.TextureSet], ident)
			continue
		}

		if m.Tiled != f.Tiled {
			return nil, &InconsistentTextureSetError{
				TextureSet: f.TextureSet,
				MapName:    f.MapName,
				Reason:     "mixes tiled and untiled files",
			}
		}
		if !f.Tiled {
			return nil, &InconsistentTextureSetError{
				TextureSet: f.TextureSet,
				MapName:    f.MapName,
				Reason:     fmt.Sprintf("duplicate untiled file (colorspace %s)", f.ColorSpace),
			}
		}
		for _, existing := range m.Files {
			if existing.UDIM == f.UDIM {
				return nil, &InconsistentTextureSetError{
					TextureSet: f.TextureSet,
					MapName:    f.MapName,
					Reason:     fmt.Sprintf("duplicate udim tile %d", f.UDIM),
				}
			}
		}
		m.Files = append(m.Files, f)
	}

	sets := make([]TextureSet, 0, len(setOrder))
	for _, setName := range setOrder {
		set := TextureSet{Name: setName}
		for _, ident := range mapOrder[setName] {
			m := mapsBySet[setName][ident]
			if m.Tiled {
				set.Tiled = true
				sort.Slice(m.Files, func(i, j int) bool {
					return m.Files[i].UDIM < m.Files[j].UDIM
				})
			}
			set.Maps = append(set.Maps, *m)
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// checkMapName re-validates the separator constraint for files that were
// constructed programmatically rather than through ParseFilename.
func checkMapName(f ExportedFile) error {
	if f.MapName == "" || strings.ContainsAny(f.MapName, "_ \t") {
		return &InconsistentTextureSetError{
			TextureSet: f.TextureSet,
			MapName:    f.MapName,
			Reason:     "map name contains a forbidden separator",
		}
	}
	return nil
}
