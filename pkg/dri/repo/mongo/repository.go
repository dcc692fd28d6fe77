// Package mongo implements dri.Repository on a MongoDB collection, the
// document store the record schema was designed for.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tendant/simple-dri/pkg/dri"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the collection records are stored in.
const CollectionName = "records"

// recordDocument is the stored shape of a dri.Record.
type recordDocument struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Label             string             `bson:"label"`
	Type              string             `bson:"type"`
	ParentID          string             `bson:"parentId,omitempty"`
	Properties        bson.M             `bson:"properties"`
	FileLocation      string             `bson:"fileLocation,omitempty"`
	FedoraID          string             `bson:"fedoraId,omitempty"`
	PublicationStatus string             `bson:"publicationStatus,omitempty"`
	DateCreated       time.Time          `bson:"dateCreated"`
	DateModified      *time.Time         `bson:"dateModified,omitempty"`
}

// Repository implements dri.Repository using MongoDB
type Repository struct {
	collection *mongo.Collection
}

// New creates a repository on the records collection of db
func New(db *mongo.Database) dri.Repository {
	return &Repository{collection: db.Collection(CollectionName)}
}

// NewWithCollection creates a repository on an explicit collection
func NewWithCollection(collection *mongo.Collection) dri.Repository {
	return &Repository{collection: collection}
}

// Connect opens a client for uri and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the list and recent queries rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "parentId", Value: 1}, {Key: "dateCreated", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "dateCreated", Value: -1}}},
		{Keys: bson.D{{Key: "dateModified", Value: -1}}},
	})
	return err
}

func (r *Repository) CreateRecord(ctx context.Context, record *dri.Record) error {
	doc := toDocument(record)
	if record.ID == "" {
		doc.ID = primitive.NewObjectID()
	} else {
		oid, err := primitive.ObjectIDFromHex(record.ID)
		if err != nil {
			return fmt.Errorf("invalid record id %q: %w", record.ID, err)
		}
		doc.ID = oid
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return err
	}
	record.ID = doc.ID.Hex()
	return nil
}

func (r *Repository) GetRecord(ctx context.Context, id string) (*dri.Record, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, dri.ErrRecordNotFound
	}

	var doc recordDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dri.ErrRecordNotFound
		}
		return nil, err
	}
	return fromDocument(&doc), nil
}

func (r *Repository) UpdateRecord(ctx context.Context, id string, update dri.RecordUpdate) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return dri.ErrRecordNotFound
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": setDocument(update)})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return dri.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) DeleteRecord(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return dri.ErrRecordNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return dri.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) ListRecords(ctx context.Context, params dri.ListRecordsParams) ([]*dri.Record, error) {
	sortBy := params.SortBy
	if sortBy == "" {
		sortBy = dri.SortByDateCreated
	}
	dir := 1
	if params.Descending {
		dir = -1
	}

	opts := options.Find().SetSort(bson.D{{Key: string(sortBy), Value: dir}, {Key: "_id", Value: dir}})
	if params.Limit > 0 {
		opts.SetLimit(int64(params.Limit))
	}
	if params.Offset > 0 {
		opts.SetSkip(int64(params.Offset))
	}

	return r.find(ctx, filterDocument(params.Filter), opts)
}

func (r *Repository) CountRecords(ctx context.Context, filter dri.RecordFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, filterDocument(filter))
}

func (r *Repository) QueryRecords(ctx context.Context, field, prefix string) ([]*dri.Record, error) {
	filter := bson.M{field: primitive.Regex{Pattern: dri.PrefixPattern(prefix), Options: "i"}}
	opts := options.Find().SetSort(bson.D{{Key: "dateCreated", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *Repository) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]*dri.Record, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []*dri.Record{}
	for cursor.Next(ctx) {
		var doc recordDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		records = append(records, fromDocument(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func filterDocument(f dri.RecordFilter) bson.M {
	doc := bson.M{}
	if f.Type != "" {
		doc["type"] = f.Type
	}
	if f.ParentID != nil {
		if *f.ParentID == "" {
			// parentId is omitted when empty
			doc["parentId"] = bson.M{"$in": bson.A{nil, ""}}
		} else {
			doc["parentId"] = *f.ParentID
		}
	}
	if f.ModifiedOnly {
		doc["dateModified"] = bson.M{"$exists": true}
	}
	return doc
}

// setDocument builds the $set operand. Property keys are set one by one so
// the stored bag is merged rather than replaced.
func setDocument(u dri.RecordUpdate) bson.M {
	set := bson.M{"dateModified": u.DateModified}
	if u.Type != nil {
		set["type"] = *u.Type
	}
	if u.ParentID != nil {
		set["parentId"] = *u.ParentID
	}
	for k, v := range u.Properties {
		set["properties."+k] = v
	}
	if u.FileLocation != nil {
		set["fileLocation"] = *u.FileLocation
	}
	if u.FedoraID != nil {
		set["fedoraId"] = *u.FedoraID
	}
	if u.PublicationStatus != nil {
		set["publicationStatus"] = string(*u.PublicationStatus)
	}
	return set
}

func toDocument(r *dri.Record) *recordDocument {
	props := bson.M{}
	for k, v := range r.Properties {
		props[k] = v
	}
	return &recordDocument{
		Label:             r.Label,
		Type:              r.Type,
		ParentID:          r.ParentID,
		Properties:        props,
		FileLocation:      r.FileLocation,
		FedoraID:          r.FedoraID,
		PublicationStatus: string(r.PublicationStatus),
		DateCreated:       r.DateCreated,
		DateModified:      r.DateModified,
	}
}

func fromDocument(d *recordDocument) *dri.Record {
	props := dri.Properties{}
	for k, v := range d.Properties {
		props[k] = normalize(v)
	}
	rec := &dri.Record{
		ID:                d.ID.Hex(),
		Label:             d.Label,
		Type:              d.Type,
		ParentID:          d.ParentID,
		Properties:        props,
		FileLocation:      d.FileLocation,
		FedoraID:          d.FedoraID,
		PublicationStatus: dri.PublicationStatus(d.PublicationStatus),
		DateCreated:       d.DateCreated.UTC(),
	}
	if d.DateModified != nil {
		t := d.DateModified.UTC()
		rec.DateModified = &t
	}
	return rec
}

// normalize converts the driver's bson container types into plain maps and
// slices so property lookups behave the same for every store.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.M:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[k] = normalize(e)
		}
		return m
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[k] = normalize(e)
		}
		return m
	case primitive.D:
		m := make(map[string]interface{}, len(t))
		for _, e := range t {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case primitive.A:
		l := make([]interface{}, len(t))
		for i, e := range t {
			l[i] = normalize(e)
		}
		return l
	case []interface{}:
		l := make([]interface{}, len(t))
		for i, e := range t {
			l[i] = normalize(e)
		}
		return l
	case primitive.DateTime:
		return t.Time().UTC()
	}
	return v
}
