package model

import "slices"

// Ranked vocabularies. Order matters: it decides argument order and the
// numeric class of a relation type.
var (
	EntityTypes   = []string{"PER", "ORG", "LOC", "GPE", "FAC", "VEH", "WEA"}
	MentionTypes  = []string{"NAM", "NOM", "PRO", "PRE"}
	RelationTypes = []string{NoRelation, "PHYS", "PER-SOC", "EMP-ORG", "ART", "OTHER-AFF", "GPE-AFF", "DISC"}
)

// rank returns the position of v in list, or len(list) when absent.
func rank(list []string, v string) int {
	if i := slices.Index(list, v); i >= 0 {
		return i
	}
	return len(list)
}

// RelationTypeIndex returns the class number of a relation type within
// types, or -1 when it is not listed.
func RelationTypeIndex(types []string, t string) int {
	return slices.Index(types, t)
}

// CompareMentions orders two mentions for argument assignment: by
// entity type rank, then mention type rank, then headword. A negative
// result puts a first.
func CompareMentions(a, b *Mention) int {
	if d := rank(EntityTypes, a.EntityType) - rank(EntityTypes, b.EntityType); d != 0 {
		return d
	}
	if d := rank(MentionTypes, a.MentionType) - rank(MentionTypes, b.MentionType); d != 0 {
		return d
	}
	switch {
	case a.Headword < b.Headword:
		return -1
	case a.Headword > b.Headword:
		return 1
	}
	return 0
}
