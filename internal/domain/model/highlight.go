package model

import "sort"

// HighlightSet is the set of entities emphasized by a pointer interaction.
// Members always includes AnchorID.
type HighlightSet struct {
	AnchorID string              `json:"anchor_id"`
	Members  map[string]struct{} `json:"-"`
}

// NewHighlightSet builds a set containing the anchor and the given members.
func NewHighlightSet(anchor string, members ...string) HighlightSet {
	s := HighlightSet{AnchorID: anchor, Members: make(map[string]struct{}, len(members)+1)}
	s.Members[anchor] = struct{}{}
	for _, m := range members {
		s.Members[m] = struct{}{}
	}
	return s
}

// Contains reports whether id is highlighted.
func (s HighlightSet) Contains(id string) bool {
	_, ok := s.Members[id]
	return ok
}

// Empty reports whether nothing is highlighted.
func (s HighlightSet) Empty() bool { return len(s.Members) == 0 }

// IDs returns the members sorted for stable output.
func (s HighlightSet) IDs() []string {
	ids := make([]string, 0, len(s.Members))
	for id := range s.Members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
