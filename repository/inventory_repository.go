package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adrijadey5/Smart-Home-Inventory/models"
)

// MongoInventoryRepository implements InventoryRepository on two MongoDB
// collections: inventory_items and inventory_history, both scoped per user
// by a user_id field. Each mutation commits the primary write and its
// history record inside one session transaction.
type MongoInventoryRepository struct {
	client  *mongo.Client
	items   *mongo.Collection
	history *mongo.Collection
}

// NewMongoInventoryRepository creates a Mongo-backed inventory repository.
func NewMongoInventoryRepository(client *mongo.Client, db *mongo.Database) *MongoInventoryRepository {
	return &MongoInventoryRepository{
		client:  client,
		items:   db.Collection("inventory_items"),
		history: db.Collection("inventory_history"),
	}
}

// itemDoc is the wire shape of an item. ExpiryDate and RecurringCycle have
// no omitempty on purpose: absence is persisted as an explicit null.
type itemDoc struct {
	ID                primitive.ObjectID `bson:"_id"`
	UserID            string             `bson:"user_id"`
	Name              string             `bson:"name"`
	Quantity          int                `bson:"quantity"`
	ExpiryDate        *time.Time         `bson:"expiry_date"`
	LowStockThreshold int                `bson:"low_stock_threshold"`
	IsRecurring       bool               `bson:"is_recurring"`
	RecurringCycle    *string            `bson:"recurring_cycle"`
	Barcode           string             `bson:"barcode,omitempty"`
}

type historyDoc struct {
	ID            primitive.ObjectID `bson:"_id"`
	UserID        string             `bson:"user_id"`
	ItemID        primitive.ObjectID `bson:"item_id"`
	ChangeType    string             `bson:"change_type"`
	ChangedFields []string           `bson:"changed_fields,omitempty"`
	OldData       bson.M             `bson:"old_data,omitempty"`
	NewData       bson.M             `bson:"new_data,omitempty"`
	Timestamp     time.Time          `bson:"timestamp"`
}

func toItemDoc(userID string, item *models.InventoryItem) (itemDoc, error) {
	oid, err := primitive.ObjectIDFromHex(item.ID)
	if err != nil {
		return itemDoc{}, fmt.Errorf("invalid item id %q: %w", item.ID, err)
	}
	doc := itemDoc{
		ID:                oid,
		UserID:            userID,
		Name:              item.Name,
		Quantity:          item.Quantity,
		LowStockThreshold: item.LowStockThreshold,
		IsRecurring:       item.IsRecurring,
		Barcode:           item.Barcode,
	}
	if item.ExpiryDate != nil {
		d := item.ExpiryDate.UTC()
		doc.ExpiryDate = &d
	}
	if item.RecurringCycle != nil {
		c := string(*item.RecurringCycle)
		doc.RecurringCycle = &c
	}
	return doc, nil
}

func fromItemDoc(doc itemDoc) models.InventoryItem {
	item := models.InventoryItem{
		ID:                doc.ID.Hex(),
		Name:              doc.Name,
		Quantity:          doc.Quantity,
		LowStockThreshold: doc.LowStockThreshold,
		IsRecurring:       doc.IsRecurring,
		Barcode:           doc.Barcode,
	}
	if doc.ExpiryDate != nil {
		d := doc.ExpiryDate.UTC()
		item.ExpiryDate = &d
	}
	if doc.RecurringCycle != nil {
		c := models.RecurringCycle(*doc.RecurringCycle)
		item.RecurringCycle = &c
	}
	return item
}

func toHistoryDoc(userID string, h *models.ItemHistory) (historyDoc, error) {
	itemID, err := primitive.ObjectIDFromHex(h.ItemID)
	if err != nil {
		return historyDoc{}, fmt.Errorf("invalid history item id %q: %w", h.ItemID, err)
	}
	return historyDoc{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		ItemID:        itemID,
		ChangeType:    string(h.ChangeType),
		ChangedFields: h.ChangedFields,
		OldData:       bson.M(h.OldData),
		NewData:       bson.M(h.NewData),
		Timestamp:     time.Now().UTC(),
	}, nil
}

// decodeHistoryData rewrites BSON datetimes back into time.Time so history
// snapshots round-trip the same types the diff recorded.
func decodeHistoryData(data bson.M) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		if dt, ok := v.(primitive.DateTime); ok {
			out[k] = dt.Time().UTC()
			continue
		}
		out[k] = v
	}
	return out
}

func fromHistoryDoc(doc historyDoc) models.ItemHistory {
	return models.ItemHistory{
		ID:            doc.ID.Hex(),
		ItemID:        doc.ItemID.Hex(),
		ChangeType:    models.ChangeType(doc.ChangeType),
		ChangedFields: doc.ChangedFields,
		OldData:       decodeHistoryData(doc.OldData),
		NewData:       decodeHistoryData(doc.NewData),
		Timestamp:     doc.Timestamp,
	}
}

// NextID generates a new document identifier prior to write.
func (r *MongoInventoryRepository) NextID() string {
	return primitive.NewObjectID().Hex()
}

// List returns all of a user's items, unordered; the service layer owns the
// published sort order.
func (r *MongoInventoryRepository) List(ctx context.Context, userID string) ([]models.InventoryItem, error) {
	cursor, err := r.items.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("find inventory items: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []itemDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode inventory items: %w", err)
	}

	items := make([]models.InventoryItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, fromItemDoc(doc))
	}
	return items, nil
}

// FindByID returns a single item or ErrNotFound.
func (r *MongoInventoryRepository) FindByID(ctx context.Context, userID, itemID string) (*models.InventoryItem, error) {
	oid, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc itemDoc
	err = r.items.FindOne(ctx, bson.M{"_id": oid, "user_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find inventory item: %w", err)
	}

	item := fromItemDoc(doc)
	return &item, nil
}

// InsertWithHistory writes the item document and its "created" audit record
// in one transaction.
func (r *MongoInventoryRepository) InsertWithHistory(ctx context.Context, userID string, item *models.InventoryItem, h *models.ItemHistory) error {
	doc, err := toItemDoc(userID, item)
	if err != nil {
		return err
	}
	hdoc, err := toHistoryDoc(userID, h)
	if err != nil {
		return err
	}

	return r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.items.InsertOne(sc, doc); err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
		if _, err := r.history.InsertOne(sc, hdoc); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
		return nil
	})
}

// UpdateWithHistory overwrites the item document. With a history record the
// two writes share one transaction; with h nil (empty diff) the primary
// document is still overwritten but no history is created.
func (r *MongoInventoryRepository) UpdateWithHistory(ctx context.Context, userID string, item *models.InventoryItem, h *models.ItemHistory) error {
	doc, err := toItemDoc(userID, item)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": doc.ID, "user_id": userID}

	if h == nil {
		if _, err := r.items.ReplaceOne(ctx, filter, doc); err != nil {
			return fmt.Errorf("replace item: %w", err)
		}
		return nil
	}

	hdoc, err := toHistoryDoc(userID, h)
	if err != nil {
		return err
	}
	return r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.items.ReplaceOne(sc, filter, doc); err != nil {
			return fmt.Errorf("replace item: %w", err)
		}
		if _, err := r.history.InsertOne(sc, hdoc); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
		return nil
	})
}

// DeleteWithHistory removes the item document and writes its "deleted" audit
// record in one transaction. The history record outlives the item.
func (r *MongoInventoryRepository) DeleteWithHistory(ctx context.Context, userID, itemID string, h *models.ItemHistory) error {
	oid, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return ErrNotFound
	}
	hdoc, err := toHistoryDoc(userID, h)
	if err != nil {
		return err
	}

	return r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.items.DeleteOne(sc, bson.M{"_id": oid, "user_id": userID}); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		if _, err := r.history.InsertOne(sc, hdoc); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
		return nil
	})
}

// History lists an item's audit trail, newest first.
func (r *MongoInventoryRepository) History(ctx context.Context, userID, itemID string) ([]models.ItemHistory, error) {
	oid, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return nil, ErrNotFound
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.history.Find(ctx, bson.M{"user_id": userID, "item_id": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("find history: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []historyDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}

	entries := make([]models.ItemHistory, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, fromHistoryDoc(doc))
	}
	return entries, nil
}

// Watch opens a change stream over the items collection. Insert and update
// events are filtered to the user's documents; delete events carry no full
// document and pass through for every user, which at worst triggers a
// redundant reload on the subscriber side.
func (r *MongoInventoryRepository) Watch(ctx context.Context, userID string) (ChangeFeed, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "fullDocument.user_id", Value: userID}},
			bson.D{{Key: "operationType", Value: "delete"}},
		}}}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := r.items.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, fmt.Errorf("watch inventory items: %w", err)
	}
	return stream, nil
}

// EnsureIndexes creates the supporting indexes for per-user queries.
func (r *MongoInventoryRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.items.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "name", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create items index: %w", err)
	}
	_, err = r.history.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "item_id", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create history index: %w", err)
	}
	return nil
}

func (r *MongoInventoryRepository) inTransaction(ctx context.Context, fn func(mongo.SessionContext) error) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
