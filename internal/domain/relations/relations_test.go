package relations_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/internal/domain/relations"
)

func TestParse(t *testing.T) {
	src := `
	# two links
	relationship "sequel" {
		from = "Thor"
		to   = "Thor: The Dark World"
	}

	relationship "crossover" {
		from = "Thor"
		to   = "The Avengers"
		side = bottom
	}
	`

	rels, err := relations.Parse([]byte(src), "test.hcl")
	require.NoError(t, err)
	require.Len(t, rels, 2)

	assert.Equal(t, model.RelationSequel, rels[0].Type)
	assert.Equal(t, "Thor", rels[0].From)
	assert.Equal(t, "Thor: The Dark World", rels[0].To)
	assert.Empty(t, rels[0].Side)

	assert.Equal(t, model.RelationCrossover, rels[1].Type)
	assert.Equal(t, model.SideBottom, rels[1].Side)
}

func TestParseRejectsUnknownType(t *testing.T) {
	src := `
	relationship "reboot" {
		from = "A"
		to   = "B"
	}
	`
	_, err := relations.Parse([]byte(src), "test.hcl")
	require.Error(t, err)
	assert.True(t, errors.Is(err, relations.ErrUnknownType))
}

func TestParseRejectsBadSide(t *testing.T) {
	src := `
	relationship "sequel" {
		from = "A"
		to   = "B"
		side = "left"
	}
	`
	_, err := relations.Parse([]byte(src), "test.hcl")
	require.Error(t, err)
	assert.True(t, errors.Is(err, relations.ErrInvalid))
}

func TestParseSyntaxError(t *testing.T) {
	_, err := relations.Parse([]byte(`relationship "sequel" {`), "broken.hcl")
	require.Error(t, err)
	assert.True(t, errors.Is(err, relations.ErrDecode))
}

func TestEmbedded(t *testing.T) {
	rels, err := relations.Embedded()
	require.NoError(t, err)
	assert.NotEmpty(t, rels)
	for _, r := range rels {
		assert.True(t, r.Type.Valid(), "type %q", r.Type)
	}
}

func TestResolveDropsMissingTitles(t *testing.T) {
	titles := []model.Title{
		{ID: "iron-man", Name: "Iron Man", Released: time.Date(2008, 5, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "iron-man-2", Name: "Iron Man 2", Released: time.Date(2010, 5, 7, 0, 0, 0, 0, time.UTC)},
		{ID: "avengers", Name: "The Avengers", Released: time.Date(2012, 5, 4, 0, 0, 0, 0, time.UTC)},
	}
	rels := []model.Relationship{
		{Type: model.RelationSequel, From: "Iron Man", To: "Iron Man 2"},
		{Type: model.RelationCrossover, From: "Howard the Duck", To: "The Avengers"},
		{Type: model.RelationCrossover, From: "Iron Man 2", To: "The Avengers", Side: model.SideTop},
	}

	conns, dropped := relations.Resolve(rels, titles)

	require.Len(t, conns, 2)
	assert.Equal(t, model.Connection{Type: model.RelationSequel, FromID: "iron-man", ToID: "iron-man-2", Side: model.SideTop}, conns[0])
	assert.Equal(t, model.Connection{Type: model.RelationCrossover, FromID: "iron-man-2", ToID: "avengers", Side: model.SideTop}, conns[1])

	require.Len(t, dropped, 1)
	assert.Equal(t, "Howard the Duck", dropped[0].From)
}

func TestResolveIsExactMatch(t *testing.T) {
	titles := []model.Title{{ID: "thor", Name: "Thor"}, {ID: "thor-2", Name: "Thor: The Dark World"}}
	conns, dropped := relations.Resolve([]model.Relationship{
		{Type: model.RelationSequel, From: "thor", To: "Thor: The Dark World"},
	}, titles)

	assert.Empty(t, conns)
	assert.Len(t, dropped, 1)
}

func TestDefaultSide(t *testing.T) {
	assert.Equal(t, model.SideTop, relations.DefaultSide(model.RelationSequel))
	assert.Equal(t, model.SideBottom, relations.DefaultSide(model.RelationCrossover))
	assert.Equal(t, model.SideBottom, relations.DefaultSide(model.RelationPostCredits))
}
