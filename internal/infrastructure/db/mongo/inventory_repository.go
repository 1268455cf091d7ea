package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aerolux/concierge-admin/internal/core/domain"
	"github.com/aerolux/concierge-admin/internal/core/ports"
)

const (
	fieldID        = "_id"
	fieldVendorID  = "vendorId"
	fieldCategory  = "category"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
)

// InventoryRepository implements ports.InventoryRepository over one
// collection per category.
type InventoryRepository struct {
	db *mongo.Database
}

func NewInventoryRepository(db *mongo.Database) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) coll(cat domain.CategoryDescriptor) *mongo.Collection {
	return r.db.Collection(cat.Collection)
}

// Insert writes item as a single document. An empty ID is replaced by a
// generated ObjectID, which is reported back through item.ID.
func (r *InventoryRepository) Insert(ctx context.Context, cat domain.CategoryDescriptor, item *domain.Item) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{}
	for k, v := range item.Fields() {
		doc[k] = v
	}
	doc[fieldCategory] = string(cat.Category)
	doc[fieldCreatedAt] = item.CreatedAt
	doc[fieldUpdatedAt] = item.UpdatedAt
	if item.VendorID != "" {
		doc[fieldVendorID] = item.VendorID
	}

	var oid primitive.ObjectID
	if item.ID == "" {
		oid = primitive.NewObjectID()
		doc[fieldID] = oid
	} else {
		doc[fieldID] = item.ID
	}

	if _, err := r.coll(cat).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateItem
		}
		return fmt.Errorf("insert %s item: %w", cat.Collection, err)
	}
	if item.ID == "" {
		item.ID = oid.Hex()
	}
	item.Category = cat.Category
	return nil
}

func (r *InventoryRepository) FindByID(ctx context.Context, cat domain.CategoryDescriptor, id, vendorID string) (*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var raw bson.M
	if err := r.coll(cat).FindOne(ctx, itemFilter(id, vendorID)).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("find %s item: %w", cat.Collection, err)
	}
	return decodeItem(cat, raw), nil
}

func (r *InventoryRepository) Find(ctx context.Context, cat domain.CategoryDescriptor, q ports.ItemQuery) ([]*domain.Item, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if q.VendorID != "" {
		filter[fieldVendorID] = q.VendorID
	}
	if q.Available != nil {
		filter[domain.FieldAvailable] = *q.Available
	}
	if q.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		or := bson.A{}
		for _, field := range cat.SearchFields() {
			or = append(or, bson.M{field: re})
		}
		filter["$or"] = or
	}

	opts := options.Find().SetSort(bson.D{{Key: fieldCreatedAt, Value: -1}, {Key: fieldID, Value: 1}})
	if q.Limit > 0 {
		opts.SetSkip(q.Skip).SetLimit(q.Limit)
	}

	cur, err := r.coll(cat).Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find %s items: %w", cat.Collection, err)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode %s items: %w", cat.Collection, err)
	}

	items := make([]*domain.Item, 0, len(docs))
	for _, raw := range docs {
		items = append(items, decodeItem(cat, raw))
	}

	if q.Limit == 0 {
		return items, int64(len(items)), nil
	}
	total, err := r.coll(cat).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s items: %w", cat.Collection, err)
	}
	return items, total, nil
}

func (r *InventoryRepository) UpdateFields(ctx context.Context, cat domain.CategoryDescriptor, id string, fields map[string]any) (*domain.Item, error) {
	set := bson.M{fieldUpdatedAt: time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}
	return r.findAndModify(ctx, cat, id, bson.M{"$set": set})
}

func (r *InventoryRepository) AppendImage(ctx context.Context, cat domain.CategoryDescriptor, id, url string) (*domain.Item, error) {
	return r.findAndModify(ctx, cat, id, bson.M{
		"$push": bson.M{domain.FieldImages: url},
		"$set":  bson.M{fieldUpdatedAt: time.Now().UTC()},
	})
}

func (r *InventoryRepository) findAndModify(ctx context.Context, cat domain.CategoryDescriptor, id string, update bson.M) (*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var raw bson.M
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.coll(cat).FindOneAndUpdate(ctx, itemFilter(id, ""), update, opts).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("update %s item: %w", cat.Collection, err)
	}
	return decodeItem(cat, raw), nil
}

func (r *InventoryRepository) Delete(ctx context.Context, cat domain.CategoryDescriptor, id, vendorID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll(cat).DeleteOne(ctx, itemFilter(id, vendorID))
	if err != nil {
		return fmt.Errorf("delete %s item: %w", cat.Collection, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// MaxSequence scans the prefixed ids of a collection. Ids are strings, so
// lexical sort order cannot be trusted once sequences pass 999.
func (r *InventoryRepository) MaxSequence(ctx context.Context, cat domain.CategoryDescriptor) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{fieldID: primitive.Regex{Pattern: "^" + regexp.QuoteMeta(cat.Prefix) + `\d+$`, Options: "i"}}
	cur, err := r.coll(cat).Find(ctx, filter, options.Find().SetProjection(bson.M{fieldID: 1}))
	if err != nil {
		return 0, fmt.Errorf("scan %s ids: %w", cat.Collection, err)
	}
	defer cur.Close(ctx)

	var max int64
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		if n, ok := cat.ParseSequence(doc.ID); ok && n > max {
			max = n
		}
	}
	return max, cur.Err()
}

// EnsureIndexes creates the listing indexes on every category collection.
func (r *InventoryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: fieldCreatedAt, Value: -1}, {Key: fieldID, Value: 1}}},
		{Keys: bson.D{{Key: fieldVendorID, Value: 1}, {Key: fieldCreatedAt, Value: -1}}},
		{Keys: bson.D{{Key: domain.FieldAvailable, Value: 1}}},
	}
	for _, cat := range domain.Categories() {
		if _, err := r.coll(cat).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("%s indexes: %w", cat.Collection, err)
		}
	}
	return nil
}

// itemFilter matches either id format. Generated ids are stored as
// ObjectIDs, but a 24-hex string _id is matched as well.
func itemFilter(id, vendorID string) bson.M {
	filter := bson.M{fieldID: id}
	if domain.IsObjectIDHex(id) {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			filter[fieldID] = bson.M{"$in": bson.A{oid, id}}
		}
	}
	if vendorID != "" {
		filter[fieldVendorID] = vendorID
	}
	return filter
}

// decodeItem maps a raw document onto the category schema. Stored values
// that no longer fit the schema are dropped.
func decodeItem(cat domain.CategoryDescriptor, raw bson.M) *domain.Item {
	attrs := make(map[string]any, len(raw))
	for k, v := range raw {
		attrs[k] = plainValue(v)
	}

	item := cat.NewItem(cat.Normalize(attrs))
	switch id := raw[fieldID].(type) {
	case primitive.ObjectID:
		item.ID = id.Hex()
	case string:
		item.ID = id
	}
	item.VendorID, _ = raw[fieldVendorID].(string)
	item.CreatedAt = timeValue(raw[fieldCreatedAt])
	item.UpdatedAt = timeValue(raw[fieldUpdatedAt])
	if item.Tags == nil {
		item.Tags = []string{}
	}
	if item.Images == nil {
		item.Images = []string{}
	}
	return item
}

func plainValue(v any) any {
	switch t := v.(type) {
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	case primitive.Decimal128:
		return t.String()
	}
	return v
}

func timeValue(v any) time.Time {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	}
	return time.Time{}
}
