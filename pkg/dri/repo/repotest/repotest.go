// Package repotest holds the behaviour every dri.Repository implementation
// must share. Store-specific tests call Run with a factory that returns an
// empty repository.
package repotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-dri/pkg/dri"
)

// base is truncated to milliseconds so every store round-trips it exactly.
var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return base.Add(time.Duration(minutes) * time.Minute)
}

func create(t *testing.T, repo dri.Repository, r *dri.Record) *dri.Record {
	t.Helper()
	require.NoError(t, repo.CreateRecord(context.Background(), r))
	require.NotEmpty(t, r.ID)
	return r
}

// Run exercises repo behaviour. newRepo must return an empty repository for
// each call.
func Run(t *testing.T, newRepo func(t *testing.T) dri.Repository) {
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		repo := newRepo(t)
		rec := create(t, repo, &dri.Record{
			Label: "Letters",
			Type:  "collection",
			Properties: dri.Properties{
				"titleInfo": map[string]interface{}{"title": "Letters"},
				"subject":   []interface{}{"a", "b"},
			},
			DateCreated: at(0),
		})

		got, err := repo.GetRecord(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, "Letters", got.Label)
		assert.Equal(t, "collection", got.Type)
		assert.Equal(t, "Letters", got.Properties.Title())
		assert.Equal(t, []string{"a", "b"}, got.Properties.Strings("subject"))
		assert.True(t, got.DateCreated.Equal(at(0)))
		assert.Nil(t, got.DateModified)
		assert.Empty(t, got.ParentID)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetRecord(ctx, "000000000000000000000000")
		assert.ErrorIs(t, err, dri.ErrRecordNotFound)
	})

	t.Run("UpdateMergesProperties", func(t *testing.T) {
		repo := newRepo(t)
		rec := create(t, repo, &dri.Record{
			Label:       "Item",
			Type:        "item",
			Properties:  dri.Properties{"title": "Old", "note": "kept"},
			DateCreated: at(0),
		})

		fedoraID := "dri:1"
		status := dri.PublicationStatusPublished
		require.NoError(t, repo.UpdateRecord(ctx, rec.ID, dri.RecordUpdate{
			Properties:        dri.Properties{"title": "New"},
			FedoraID:          &fedoraID,
			PublicationStatus: &status,
			DateModified:      at(5),
		}))

		got, err := repo.GetRecord(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "New", got.Properties.String("title"))
		assert.Equal(t, "kept", got.Properties.String("note"))
		assert.Equal(t, "dri:1", got.FedoraID)
		assert.Equal(t, dri.PublicationStatusPublished, got.PublicationStatus)
		require.NotNil(t, got.DateModified)
		assert.True(t, got.DateModified.Equal(at(5)))
		assert.Equal(t, "item", got.Type)
	})

	t.Run("UpdateReplacesNestedObjects", func(t *testing.T) {
		repo := newRepo(t)
		rec := create(t, repo, &dri.Record{
			Label: "Item",
			Type:  "item",
			Properties: dri.Properties{
				"titleInfo": map[string]interface{}{"title": "Old", "subTitle": "Sub"},
				"note":      "kept",
			},
			DateCreated: at(0),
		})

		require.NoError(t, repo.UpdateRecord(ctx, rec.ID, dri.RecordUpdate{
			Properties:   dri.Properties{"titleInfo": map[string]interface{}{"title": "New"}},
			DateModified: at(1),
		}))

		got, err := repo.GetRecord(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "New", got.Properties.Title())
		assert.Empty(t, got.Properties.Subtitle())
		assert.Equal(t, "kept", got.Properties.String("note"))
		assert.Len(t, got.Properties, 2)
	})

	t.Run("UpdateNotFound", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.UpdateRecord(ctx, "000000000000000000000000", dri.RecordUpdate{DateModified: at(1)})
		assert.ErrorIs(t, err, dri.ErrRecordNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newRepo(t)
		rec := create(t, repo, &dri.Record{Label: "x", Type: "item", DateCreated: at(0)})

		require.NoError(t, repo.DeleteRecord(ctx, rec.ID))
		_, err := repo.GetRecord(ctx, rec.ID)
		assert.ErrorIs(t, err, dri.ErrRecordNotFound)
		assert.ErrorIs(t, repo.DeleteRecord(ctx, rec.ID), dri.ErrRecordNotFound)
	})

	t.Run("ListChildrenPaged", func(t *testing.T) {
		repo := newRepo(t)
		parent := create(t, repo, &dri.Record{Label: "p", Type: "collection", DateCreated: at(0)})
		var ids []string
		for i := 0; i < 7; i++ {
			// created out of order to check sorting
			minute := 10 + (i*3)%7
			child := create(t, repo, &dri.Record{
				Label:       fmt.Sprintf("c%d", minute),
				Type:        "item",
				ParentID:    parent.ID,
				DateCreated: at(minute),
			})
			ids = append(ids, child.ID)
		}
		create(t, repo, &dri.Record{Label: "other", Type: "item", ParentID: "elsewhere", DateCreated: at(1)})

		filter := dri.RecordFilter{ParentID: &parent.ID}
		count, err := repo.CountRecords(ctx, filter)
		require.NoError(t, err)
		assert.EqualValues(t, 7, count)

		first, err := repo.ListRecords(ctx, dri.ListRecordsParams{Filter: filter, SortBy: dri.SortByDateCreated, Limit: 3})
		require.NoError(t, err)
		require.Len(t, first, 3)
		assert.Equal(t, []string{"c10", "c11", "c12"}, labels(first))

		last, err := repo.ListRecords(ctx, dri.ListRecordsParams{Filter: filter, SortBy: dri.SortByDateCreated, Limit: 3, Offset: 6})
		require.NoError(t, err)
		assert.Equal(t, []string{"c16"}, labels(last))

		past, err := repo.ListRecords(ctx, dri.ListRecordsParams{Filter: filter, Limit: 3, Offset: 9})
		require.NoError(t, err)
		assert.Empty(t, past)

		none := "no-such-parent"
		empty, err := repo.ListRecords(ctx, dri.ListRecordsParams{Filter: dri.RecordFilter{ParentID: &none}, Limit: 3})
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})

	t.Run("RootRecords", func(t *testing.T) {
		repo := newRepo(t)
		parent := create(t, repo, &dri.Record{Label: "root-a", Type: "collection", DateCreated: at(0)})
		create(t, repo, &dri.Record{Label: "root-b", Type: "collection", DateCreated: at(1)})
		create(t, repo, &dri.Record{Label: "child", Type: "item", ParentID: parent.ID, DateCreated: at(2)})

		root := ""
		filter := dri.RecordFilter{ParentID: &root}
		count, err := repo.CountRecords(ctx, filter)
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)

		got, err := repo.ListRecords(ctx, dri.ListRecordsParams{Filter: filter, SortBy: dri.SortByDateCreated})
		require.NoError(t, err)
		assert.Equal(t, []string{"root-a", "root-b"}, labels(got))
	})

	t.Run("ListRecentByType", func(t *testing.T) {
		repo := newRepo(t)
		for i := 0; i < 4; i++ {
			create(t, repo, &dri.Record{Label: fmt.Sprintf("i%d", i), Type: "item", DateCreated: at(i)})
		}
		create(t, repo, &dri.Record{Label: "s", Type: "series", DateCreated: at(10)})

		got, err := repo.ListRecords(ctx, dri.ListRecordsParams{
			Filter:     dri.RecordFilter{Type: "item"},
			SortBy:     dri.SortByDateCreated,
			Descending: true,
			Limit:      2,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"i3", "i2"}, labels(got))

		count, err := repo.CountRecords(ctx, dri.RecordFilter{})
		require.NoError(t, err)
		assert.EqualValues(t, 5, count)
	})

	t.Run("ListEdited", func(t *testing.T) {
		repo := newRepo(t)
		a := create(t, repo, &dri.Record{Label: "a", Type: "item", DateCreated: at(0)})
		b := create(t, repo, &dri.Record{Label: "b", Type: "item", DateCreated: at(1)})
		create(t, repo, &dri.Record{Label: "untouched", Type: "item", DateCreated: at(2)})

		require.NoError(t, repo.UpdateRecord(ctx, b.ID, dri.RecordUpdate{DateModified: at(20)}))
		require.NoError(t, repo.UpdateRecord(ctx, a.ID, dri.RecordUpdate{DateModified: at(30)}))

		got, err := repo.ListRecords(ctx, dri.ListRecordsParams{
			Filter:     dri.RecordFilter{ModifiedOnly: true},
			SortBy:     dri.SortByDateModified,
			Descending: true,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, labels(got))
	})

	t.Run("QueryPrefix", func(t *testing.T) {
		repo := newRepo(t)
		create(t, repo, &dri.Record{Label: "Harbour views", Type: "item",
			Properties: dri.Properties{"titleInfo": map[string]interface{}{"title": "Harbour views"}}, DateCreated: at(0)})
		create(t, repo, &dri.Record{Label: "harbour.master", Type: "item",
			Properties: dri.Properties{"titleInfo": map[string]interface{}{"title": "harbour.master"}}, DateCreated: at(1)})
		create(t, repo, &dri.Record{Label: "The harbour", Type: "item",
			Properties: dri.Properties{"titleInfo": map[string]interface{}{"title": "The harbour"}}, DateCreated: at(2)})

		got, err := repo.QueryRecords(ctx, "properties.titleInfo.title", "HARBOUR")
		require.NoError(t, err)
		assert.Equal(t, []string{"Harbour views", "harbour.master"}, labels(got))

		got, err = repo.QueryRecords(ctx, "label", "harbour.")
		require.NoError(t, err)
		assert.Equal(t, []string{"harbour.master"}, labels(got))

		got, err = repo.QueryRecords(ctx, "label", "nothing")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func labels(records []*dri.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Label)
	}
	return out
}
