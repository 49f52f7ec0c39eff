package session

import "github.com/thenoetrevino/circles/internal/models"

// ZoneGroup is the notes of one zone plus action counts
type ZoneGroup struct {
	Zone        models.Zone
	Notes       []models.Note
	OpenActions int
	DoneActions int
}

// ZoneSummary groups notes by zone in board order. Every zone appears, even when empty.
func ZoneSummary(notes []models.Note) []ZoneGroup {
	groups := make([]ZoneGroup, len(models.Zones))
	index := make(map[models.Zone]int, len(models.Zones))
	for i, z := range models.Zones {
		groups[i] = ZoneGroup{Zone: z, Notes: []models.Note{}}
		index[z] = i
	}

	for _, n := range notes {
		i, ok := index[n.Zone]
		if !ok {
			continue
		}
		g := &groups[i]
		g.Notes = append(g.Notes, n)
		for _, a := range n.NextActions {
			if a.Completed {
				g.DoneActions++
			} else {
				g.OpenActions++
			}
		}
	}
	return groups
}
