package selection

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"emily-marketing-be/pkg/store"
)

func TestToggleSingleSelect(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	// First toggle selects.
	sel := Toggle(nil, a, "publish_content")
	assert.Equal(t, []uuid.UUID{a}, sel)

	// Same id again clears the selection.
	sel = Toggle(sel, a, "publish_content")
	assert.Empty(t, sel)

	// A different id replaces rather than unions.
	sel = Toggle([]uuid.UUID{a}, b, "publish_content")
	assert.Equal(t, []uuid.UUID{b}, sel)
}

func TestToggleMultiSelect(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	sel := Toggle(nil, a, "schedule_content")
	sel = Toggle(sel, b, "schedule_content")
	assert.Len(t, sel, 2)
	assert.True(t, Contains(sel, a))
	assert.True(t, Contains(sel, b))

	// Toggling an existing member removes it.
	sel = Toggle(sel, a, "schedule_content")
	assert.Equal(t, []uuid.UUID{b}, sel)

	sel = Toggle(sel, b, "schedule_content")
	assert.Empty(t, sel)
}

func TestToggleDoesNotMutateInput(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	original := []uuid.UUID{a}

	_ = Toggle(original, b, "schedule_content")
	assert.Equal(t, []uuid.UUID{a}, original)
}

func TestRemove(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	assert.Equal(t, []uuid.UUID{b}, Remove([]uuid.UUID{a, b}, a))
	assert.Nil(t, Remove([]uuid.UUID{a}, a))
}

func TestGuards(t *testing.T) {
	published := uuid.New()
	draft := uuid.New()

	conv := &store.Conversation{
		SelectionDomain: store.DomainContent,
		ContentIndex: map[uuid.UUID]*store.ContentItem{
			published: {Id: published, Status: "published"},
			draft:     {Id: draft, Status: "draft"},
		},
	}

	// Empty selection enables nothing.
	assert.False(t, CanPublish(conv))
	assert.False(t, CanDelete(conv))
	assert.False(t, CanSchedule(conv))

	// Only published items selected: publish disabled.
	conv.Selected = []uuid.UUID{published}
	assert.False(t, CanPublish(conv))
	assert.True(t, CanDelete(conv))
	assert.False(t, CanSchedule(conv))

	conv.Selected = []uuid.UUID{draft}
	assert.True(t, CanPublish(conv))
	assert.True(t, CanSchedule(conv))
	assert.True(t, CanSaveDraft(conv))

	// Schedule is single-record only.
	conv.Selected = []uuid.UUID{draft, published}
	assert.False(t, CanSchedule(conv))
}
