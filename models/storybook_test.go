package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusDraft, StatusGenerating, true},
		{StatusGenerating, StatusCompleted, true},
		{StatusCompleted, StatusPublished, true},
		{StatusDraft, StatusPublished, true},
		{StatusCompleted, StatusCompleted, true},
		{StatusPublished, StatusCompleted, false},
		{StatusCompleted, StatusGenerating, false},
		{StatusGenerating, StatusDraft, false},
		{StatusDraft, Status("archived"), false},
		{Status(""), StatusDraft, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestStorybook_TransitionTo(t *testing.T) {
	b := &Storybook{Status: StatusCompleted}
	require.NoError(t, b.TransitionTo(StatusPublished))
	assert.Equal(t, StatusPublished, b.Status)
	assert.True(t, b.IsPublic)
	require.NotNil(t, b.PublishedAt)

	err := b.TransitionTo(StatusDraft)
	assert.Error(t, err)
	assert.Equal(t, StatusPublished, b.Status)

	assert.Error(t, b.TransitionTo(Status("bogus")))
}

func TestStorybook_SetPages(t *testing.T) {
	b := &Storybook{ID: "book-1"}
	b.SetPages([]StoryPage{
		{PageNumber: 7, Text: "third"},
		{PageNumber: 2, Text: "first", ImageURL: "https://cdn/a.png"},
		{PageNumber: 5, Text: "second"},
	})

	require.Len(t, b.Pages, 3)
	assert.Equal(t, 3, b.TotalPages)
	for i, p := range b.Pages {
		assert.Equal(t, i+1, p.PageNumber)
		assert.Equal(t, "book-1", p.StorybookID)
		assert.NotEmpty(t, p.ID)
	}
	assert.Equal(t, "first", b.Pages[0].Text)
	assert.Equal(t, "third", b.Pages[2].Text)
	assert.Equal(t, "https://cdn/a.png", b.CoverImageURL)
	assert.GreaterOrEqual(t, b.EstimatedReadTime, 1)

	page, ok := b.Page(2)
	require.True(t, ok)
	assert.Equal(t, "second", page.Text)
	_, ok = b.Page(4)
	assert.False(t, ok)
}

func TestEstimateReadMinutes(t *testing.T) {
	assert.Equal(t, 0, EstimateReadMinutes(nil))
	assert.Equal(t, 1, EstimateReadMinutes([]StoryPage{{Text: "The fox ran."}}))

	long := make([]StoryPage, 20)
	for i := range long {
		long[i].Text = "小狐狸在森林里找到了一颗闪闪发光的星星，它决定把星星送回天空。"
	}
	assert.Greater(t, EstimateReadMinutes(long), 5)
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" fox ", "Fox", "", "forest", "  "})
	assert.Equal(t, []string{"fox", "forest"}, got)
}

func TestEnums(t *testing.T) {
	assert.True(t, AgePreschool.Valid())
	assert.False(t, AgeGroup("teen").Valid())
	assert.True(t, LangEN.Valid())
	assert.False(t, Language("fr").Valid())
	assert.Equal(t, "zh-CN", LangZH.Locale())
	assert.Equal(t, "en-US", LangEN.Locale())
}

func TestAuthUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Mia", AuthUser{Name: "Mia", Email: "m@x.io"}.DisplayName())
	assert.Equal(t, "mia", AuthUser{Email: "mia@x.io"}.DisplayName())
}
