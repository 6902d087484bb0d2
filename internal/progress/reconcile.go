package progress

import "onestack/internal/catalog"

// ReconcileTopics aligns stored completion state with the current canonical
// topic list. The output has exactly one topic per canonical entry, in
// canonical order:
//
//   - a stored topic with a matching id keeps its completed/completedAt state
//   - canonical topics the user has never seen start incomplete
//   - stored topics no longer in the canonical list are dropped
//
// The canonical name always wins, so renames propagate without losing state.
// Pure and idempotent; callers persist the result themselves if needed.
func ReconcileTopics(canonical []catalog.TopicDef, stored []Topic) []Topic {
	byID := make(map[int]Topic, len(stored))
	for _, t := range stored {
		byID[t.ID] = t
	}

	out := make([]Topic, 0, len(canonical))
	for _, def := range canonical {
		topic := Topic{ID: def.ID, Name: def.Name}
		if prev, ok := byID[def.ID]; ok {
			topic.Completed = prev.Completed
			topic.CompletedAt = prev.CompletedAt
		}
		out = append(out, topic)
	}
	return out
}
