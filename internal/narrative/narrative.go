// Package narrative composes capsule narratives from memory fragments.
// Composition is a pure function of the title and the ordered memories so
// it can be tested without persistence.
package narrative

import (
	"fmt"
	"strings"

	"github.com/neuraltc/capsule-service/internal/model"
)

// Theme applied to every generated capsule.
const Theme = "neural"

// maxDescriptions caps how many leading memories contribute their
// description to the narrative.
const maxDescriptions = 3

// Compose assembles the capsule narrative. Memories must already be in
// presentation order (the order their IDs were supplied); dedup of
// locations and people is exact-string, first occurrence wins.
func Compose(title string, memories []*model.Memory) string {
	var b strings.Builder

	fmt.Fprintf(&b, "This Neural Capsule, \"%s\", has been reconstructed through our AI engine. ", title)

	if len(memories) > 0 {
		fmt.Fprintf(&b, "It brings together fragments from %d distinct moments. ", len(memories))

		if locations := distinctLocations(memories); len(locations) > 0 {
			fmt.Fprintf(&b, "We've identified significant spatial anchors in %s. ", strings.Join(locations, ", "))
		}
		if people := distinctPeople(memories); len(people) > 0 {
			fmt.Fprintf(&b, "The neural reconstruction highlights deep social bonds with %s. ", strings.Join(people, " and "))
		}
		if descriptions := leadingDescriptions(memories); descriptions != "" {
			fmt.Fprintf(&b, "At its core, this capsule preserves memories of: %s. ", descriptions)
		}
	}

	b.WriteString("This synthesized narrative serves as a sensory bridge to help maintain cognitive connections.")
	return b.String()
}

func distinctLocations(memories []*model.Memory) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range memories {
		if m.Location == nil || *m.Location == "" {
			continue
		}
		if _, ok := seen[*m.Location]; ok {
			continue
		}
		seen[*m.Location] = struct{}{}
		out = append(out, *m.Location)
	}
	return out
}

func distinctPeople(memories []*model.Memory) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range memories {
		for _, p := range m.PeopleInvolved {
			if p == "" {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// leadingDescriptions joins the non-empty descriptions of the first
// maxDescriptions memories. The window is positional: a memory without a
// description still consumes a slot.
func leadingDescriptions(memories []*model.Memory) string {
	n := len(memories)
	if n > maxDescriptions {
		n = maxDescriptions
	}
	var parts []string
	for _, m := range memories[:n] {
		if m.Description != nil && *m.Description != "" {
			parts = append(parts, *m.Description)
		}
	}
	return strings.Join(parts, ". ")
}
