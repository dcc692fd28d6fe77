package dri_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-dri/pkg/dri"
)

func TestNewHash(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		h := dri.NewHash()
		assert.Regexp(t, hexHash, h)
		assert.False(t, seen[h], "duplicate hash %s", h)
		seen[h] = true
	}
}

func TestProperties(t *testing.T) {
	p := dri.Properties{
		"titleInfo": map[string]interface{}{"title": "Main", "subTitle": "Sub"},
		"subject":   []interface{}{"Maps", 3, "", "Ports"},
		"creator":   "Anon",
		"nested":    dri.Properties{"deep": map[string]interface{}{"value": "x"}},
	}

	assert.Equal(t, "Main", p.Title())
	assert.Equal(t, "Sub", p.Subtitle())
	assert.Equal(t, []string{"Maps", "Ports"}, p.Strings("subject"))
	assert.Equal(t, []string{"Anon"}, p.Strings("creator"))
	assert.Equal(t, "x", p.String("nested.deep.value"))
	assert.Empty(t, p.String("creator.more"))
	assert.Empty(t, p.String("missing"))

	flat := dri.Properties{"title": "Flat", "subtitle": "Below"}
	assert.Equal(t, "Flat", flat.Title())
	assert.Equal(t, "Below", flat.Subtitle())

	var empty dri.Properties
	assert.Empty(t, empty.Title())
	assert.Nil(t, empty.Clone())
}

func TestProperties_CloneIsDeep(t *testing.T) {
	p := dri.Properties{
		"titleInfo": map[string]interface{}{"title": "Main"},
		"list":      []interface{}{"a"},
	}
	c := p.Clone()
	c["titleInfo"].(map[string]interface{})["title"] = "Changed"
	c["list"].([]interface{})[0] = "b"

	assert.Equal(t, "Main", p.Title())
	assert.Equal(t, []string{"a"}, p.Strings("list"))
}

func TestRecordUpdate_Apply(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := &dri.Record{Type: "item", Properties: dri.Properties{"a": "1", "b": "2"}}

	fedoraID := "dri:9"
	dri.RecordUpdate{
		Properties:   dri.Properties{"b": "3", "c": "4"},
		FedoraID:     &fedoraID,
		DateModified: now,
	}.Apply(r)

	assert.Equal(t, "item", r.Type)
	assert.Equal(t, dri.Properties{"a": "1", "b": "3", "c": "4"}, r.Properties)
	assert.Equal(t, "dri:9", r.FedoraID)
	require.NotNil(t, r.DateModified)
	assert.Equal(t, now, *r.DateModified)
}

func TestRecordFilter_Matches(t *testing.T) {
	parent := "p1"
	now := time.Now()
	r := &dri.Record{Type: "item", ParentID: "p1", DateModified: &now}

	assert.True(t, dri.RecordFilter{}.Matches(r))
	assert.True(t, dri.RecordFilter{Type: "item", ParentID: &parent, ModifiedOnly: true}.Matches(r))
	assert.False(t, dri.RecordFilter{Type: "series"}.Matches(r))

	other := "p2"
	assert.False(t, dri.RecordFilter{ParentID: &other}.Matches(r))
	assert.False(t, dri.RecordFilter{ModifiedOnly: true}.Matches(&dri.Record{}))

	root := ""
	assert.False(t, dri.RecordFilter{ParentID: &root}.Matches(r))
	assert.True(t, dri.RecordFilter{ParentID: &root}.Matches(&dri.Record{}))
}

func TestValidatePropertyKeys(t *testing.T) {
	assert.NoError(t, dri.ValidatePropertyKeys(nil))
	assert.NoError(t, dri.ValidatePropertyKeys(dri.Properties{
		"titleInfo": map[string]interface{}{"title": "T", "sub-title_2": "S"},
		"subject":   []interface{}{"a", map[string]interface{}{"topic": "b"}},
		"price":     "$5",
	}))

	err := dri.ValidatePropertyKeys(dri.Properties{"titleInfo": map[string]interface{}{"a.b": "x"}})
	require.ErrorIs(t, err, dri.ErrInvalidPropertyKey)
	assert.Contains(t, err.Error(), `"titleInfo.a.b"`)

	assert.ErrorIs(t, dri.ValidatePropertyKeys(dri.Properties{"$inc": 1}), dri.ErrInvalidPropertyKey)
	assert.ErrorIs(t, dri.ValidatePropertyKeys(dri.Properties{"": 1}), dri.ErrInvalidPropertyKey)
	assert.ErrorIs(t, dri.ValidatePropertyKeys(dri.Properties{
		"nested": dri.Properties{"$x": 1},
	}), dri.ErrInvalidPropertyKey)
}

func TestFieldValue(t *testing.T) {
	r := &dri.Record{
		Type:       "item",
		Label:      "abc",
		Properties: dri.Properties{"titleInfo": map[string]interface{}{"title": "T"}, "count": 3},
	}

	v, ok := dri.FieldValue(r, "type")
	assert.True(t, ok)
	assert.Equal(t, "item", v)

	v, ok = dri.FieldValue(r, "properties.titleInfo.title")
	assert.True(t, ok)
	assert.Equal(t, "T", v)

	_, ok = dri.FieldValue(r, "properties.count")
	assert.False(t, ok)

	_, ok = dri.FieldValue(r, "parentId")
	assert.False(t, ok)
}

func TestPrefixPattern(t *testing.T) {
	assert.Equal(t, `^a\.b`, dri.PrefixPattern("a.b"))
	assert.Equal(t, `^\(x\)\*`, dri.PrefixPattern("(x)*"))
}

func TestPublicationError(t *testing.T) {
	cause := errors.New("boom")
	err := &dri.PublicationError{RecordID: "r1", FedoraID: "dri:1", Step: dri.StepAttachMedia, Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "attach_media")
	assert.Contains(t, err.Error(), "dri:1")

	noObject := &dri.PublicationError{RecordID: "r1", Step: dri.StepCreateObject, Err: cause}
	assert.NotContains(t, noObject.Error(), "(object")
}
