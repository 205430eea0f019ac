package selection

import (
	"github.com/google/uuid"

	"emily-marketing-be/pkg/store"
)

// Intents that operate on exactly one record. Selecting under these
// replaces the current selection instead of extending it.
var singleSelectIntents = map[string]bool{
	"publish_content": true,
	"delete_content":  true,
	"delete_lead":     true,
}

// IsSingleSelect reports whether the intent uses single-select semantics.
func IsSingleSelect(intent string) bool {
	return singleSelectIntents[intent]
}

// Toggle computes the next selection for a record id under the given
// intent. Single-select intents replace (or clear, when re-toggling the
// same id); everything else toggles membership.
func Toggle(selected []uuid.UUID, id uuid.UUID, intent string) []uuid.UUID {
	if IsSingleSelect(intent) {
		if len(selected) == 1 && selected[0] == id {
			return nil
		}
		return []uuid.UUID{id}
	}

	for i, s := range selected {
		if s == id {
			next := make([]uuid.UUID, 0, len(selected)-1)
			next = append(next, selected[:i]...)
			next = append(next, selected[i+1:]...)
			if len(next) == 0 {
				return nil
			}
			return next
		}
	}
	next := make([]uuid.UUID, len(selected), len(selected)+1)
	copy(next, selected)
	return append(next, id)
}

// Contains reports membership of id in the selection.
func Contains(selected []uuid.UUID, id uuid.UUID) bool {
	for _, s := range selected {
		if s == id {
			return true
		}
	}
	return false
}

// Remove drops id from the selection, preserving order.
func Remove(selected []uuid.UUID, id uuid.UUID) []uuid.UUID {
	next := selected[:0:0]
	for _, s := range selected {
		if s != id {
			next = append(next, s)
		}
	}
	if len(next) == 0 {
		return nil
	}
	return next
}

// Guard predicates for which batch actions are enabled.

// CanPublish requires at least one selected content item that is not
// already published.
func CanPublish(conv *store.Conversation) bool {
	if conv.SelectionDomain != store.DomainContent || len(conv.Selected) == 0 {
		return false
	}
	for _, id := range conv.Selected {
		if item, ok := conv.ContentIndex[id]; ok && item.Status != "published" {
			return true
		}
	}
	return false
}

// CanDelete requires a non-empty selection in either domain.
func CanDelete(conv *store.Conversation) bool {
	return len(conv.Selected) > 0
}

// CanSchedule requires exactly one selected content item not yet published.
func CanSchedule(conv *store.Conversation) bool {
	if conv.SelectionDomain != store.DomainContent || len(conv.Selected) != 1 {
		return false
	}
	item, ok := conv.ContentIndex[conv.Selected[0]]
	return ok && item.Status != "published"
}

// CanSaveDraft requires at least one selected content item.
func CanSaveDraft(conv *store.Conversation) bool {
	return conv.SelectionDomain == store.DomainContent && len(conv.Selected) > 0
}
