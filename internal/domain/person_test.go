package domain

import (
	"encoding/json"
	"testing"

	"github.com/kapu/higapro-site/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonUnmarshal(t *testing.T) {
	raw := `{"id":"aoi","name":"葵","furigana":"あおい","debut":"2023-03-31T15:00:00.000Z",
		"images":[{"url":"https://images.microcms-assets.io/aoi.png","width":800,"height":1200}],
		"type":"タレント","iriamUrl":"https://iriam.app/aoi"}`

	var p Person
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, "aoi", p.ID)
	assert.Equal(t, "2023-04-01", util.FormatJST(p.Debut, "2006-01-02"))
	assert.Equal(t, "https://iriam.app/aoi", p.IriamURL)
	assert.True(t, p.HasKind(KindTalent))
	assert.False(t, p.HasKind(KindManager))

	url, ok := p.FirstImageURL()
	assert.True(t, ok)
	assert.Equal(t, "https://images.microcms-assets.io/aoi.png", url)
}

func TestPersonUnmarshalRejectsInvalidDebut(t *testing.T) {
	var p Person
	err := json.Unmarshal([]byte(`{"id":"x","debut":"someday"}`), &p)
	require.Error(t, err)
}

func TestPersonUnmarshalWithoutDebut(t *testing.T) {
	var p Person
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","images":[]}`), &p))
	assert.True(t, p.Debut.IsZero())
	_, ok := p.FirstImageURL()
	assert.False(t, ok)
}

func TestFilterKind(t *testing.T) {
	people := []Person{
		{ID: "a", Type: "タレント"},
		{ID: "b", Type: "マネージャー"},
		{ID: "c", Type: "専属タレント"},
		{ID: "d", Type: ""},
	}

	talents := FilterKind(people, KindTalent)
	require.Len(t, talents, 2)
	assert.Equal(t, "a", talents[0].ID)
	assert.Equal(t, "c", talents[1].ID)

	managers := FilterKind(people, KindManager)
	require.Len(t, managers, 1)
	assert.Equal(t, "b", managers[0].ID)
}

func TestParseKind(t *testing.T) {
	kind, ok := ParseKind("manager")
	assert.True(t, ok)
	assert.Equal(t, KindManager, kind)
	assert.Equal(t, "managers", kind.PathSegment())

	_, ok = ParseKind("staff")
	assert.False(t, ok)
}

func TestPeopleFindByID(t *testing.T) {
	people := NewPeople([]Person{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}})

	p, ok := people.FindByID("b")
	require.True(t, ok)
	assert.Equal(t, "B", p.Name)

	_, ok = people.FindByID("z")
	assert.False(t, ok)
}
