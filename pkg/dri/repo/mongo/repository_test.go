package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-dri/pkg/dri"
	"github.com/tendant/simple-dri/pkg/dri/repo/repotest"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestMongoRepository runs against a live server when TEST_MONGO_URL is set
// (e.g. mongodb://localhost:27017).
func TestMongoRepository(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URL")
	if uri == "" {
		t.Skip("TEST_MONGO_URL not set")
	}

	ctx := context.Background()
	client, err := Connect(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	db := client.Database(fmt.Sprintf("dri_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() { _ = db.Drop(context.Background()) })
	require.NoError(t, EnsureIndexes(ctx, db))

	n := 0
	repotest.Run(t, func(t *testing.T) dri.Repository {
		n++
		return NewWithCollection(db.Collection(fmt.Sprintf("records_%d", n)))
	})
}

func TestCreateRecord_InvalidID(t *testing.T) {
	repo := &Repository{}
	err := repo.CreateRecord(context.Background(), &dri.Record{ID: "not-an-object-id"})
	assert.Error(t, err)
}

func TestInvalidIDIsNotFound(t *testing.T) {
	repo := &Repository{}
	ctx := context.Background()

	_, err := repo.GetRecord(ctx, "nope")
	assert.ErrorIs(t, err, dri.ErrRecordNotFound)
	assert.ErrorIs(t, repo.UpdateRecord(ctx, "nope", dri.RecordUpdate{}), dri.ErrRecordNotFound)
	assert.ErrorIs(t, repo.DeleteRecord(ctx, "nope"), dri.ErrRecordNotFound)
}

func TestFilterDocument(t *testing.T) {
	parent := "p1"
	assert.Equal(t, bson.M{}, filterDocument(dri.RecordFilter{}))
	assert.Equal(t, bson.M{
		"type":         "item",
		"parentId":     "p1",
		"dateModified": bson.M{"$exists": true},
	}, filterDocument(dri.RecordFilter{Type: "item", ParentID: &parent, ModifiedOnly: true}))

	root := ""
	assert.Equal(t, bson.M{
		"parentId": bson.M{"$in": bson.A{nil, ""}},
	}, filterDocument(dri.RecordFilter{ParentID: &root}))
}

func TestSetDocument(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	fedoraID := "dri:9"
	status := dri.PublicationStatusPartial

	set := setDocument(dri.RecordUpdate{
		Properties:        dri.Properties{"title": "T", "note": "N"},
		FedoraID:          &fedoraID,
		PublicationStatus: &status,
		DateModified:      now,
	})
	assert.Equal(t, bson.M{
		"dateModified":      now,
		"properties.title":  "T",
		"properties.note":   "N",
		"fedoraId":          "dri:9",
		"publicationStatus": "partial",
	}, set)
}

func TestDocumentRoundTrip(t *testing.T) {
	oid := primitive.NewObjectID()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	doc := &recordDocument{
		ID:    oid,
		Label: "Item",
		Type:  "item",
		Properties: bson.M{
			"titleInfo": primitive.M{"title": "Nested"},
			"subject":   primitive.A{"a", "b"},
			"origin":    primitive.D{{Key: "place", Value: "Dublin"}},
		},
		DateCreated: created,
	}

	rec := fromDocument(doc)
	assert.Equal(t, oid.Hex(), rec.ID)
	assert.Equal(t, "Nested", rec.Properties.Title())
	assert.Equal(t, []string{"a", "b"}, rec.Properties.Strings("subject"))
	assert.Equal(t, "Dublin", rec.Properties.String("origin.place"))
	assert.Nil(t, rec.DateModified)

	back := toDocument(rec)
	assert.Equal(t, "Item", back.Label)
	assert.Equal(t, created, back.DateCreated)
	assert.Contains(t, back.Properties, "titleInfo")
}
