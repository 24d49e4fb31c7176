package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agentstation/productmap/pkg/constants"
	pmerrors "github.com/agentstation/productmap/pkg/errors"
	"github.com/agentstation/productmap/pkg/logging"
	"github.com/agentstation/productmap/pkg/products"
	"github.com/agentstation/productmap/pkg/sources"
)

var (
	_ sources.Source = (*Source)(nil)
	_ sources.Seeder = (*Source)(nil)
)

// Source is a sources.Source backed by MongoDB.
type Source struct {
	db        *DB
	products  *mongo.Collection
	favorites *mongo.Collection
}

// New creates a Source over db and ensures the favorites index exists.
func New(ctx context.Context, db *DB) (*Source, error) {
	s := &Source{
		db:        db,
		products:  db.Database.Collection(constants.ProductsCollection),
		favorites: db.Database.Collection(constants.FavoritesCollection),
	}
	if err := s.createIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Open connects with cfg and returns a ready Source.
func Open(ctx context.Context, cfg Config) (*Source, error) {
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s, err := New(ctx, db)
	if err != nil {
		_ = db.Close(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Source) createIndexes(ctx context.Context) error {
	favoriteIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "product_id", Value: 1},
		},
		Options: options.Index().
			SetUnique(true).
			SetName("user_product"),
	}
	nameIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetName("name"),
	}

	if _, err := s.favorites.Indexes().CreateOne(ctx, favoriteIndex); err != nil {
		return pmerrors.WrapResource("create_index", "favorites", "user_product", err)
	}
	if _, err := s.products.Indexes().CreateOne(ctx, nameIndex); err != nil {
		return pmerrors.WrapResource("create_index", "products", "name", err)
	}
	return nil
}

// ID implements sources.Source.
func (s *Source) ID() sources.ID {
	return sources.MongoDBID
}

// ListProducts implements sources.Source.
func (s *Source) ListProducts(ctx context.Context, opts sources.ListOptions) ([]products.Product, error) {
	opts = opts.Normalized()
	field := opts.OrderBy
	if field == "id" {
		field = "_id"
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: field, Value: 1}}).
		SetLimit(int64(opts.Limit))

	cursor, err := s.products.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, pmerrors.WrapResource("find", "products", "", err)
	}
	var docs []productDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, pmerrors.WrapResource("decode", "products", "", err)
	}

	out := make([]products.Product, 0, len(docs))
	for _, d := range docs {
		p := d.toProduct()
		if p.ID == "" {
			logging.FromContext(ctx).Warn().Str("type", d.ID.Type.String()).Msg("Skipping product with unsupported id type")
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// FavoriteIDs implements sources.Source.
func (s *Source) FavoriteIDs(ctx context.Context, userID string) (products.FavoriteSet, error) {
	findOpts := options.Find().SetProjection(bson.M{"product_id": 1})
	cursor, err := s.favorites.Find(ctx, bson.M{"user_id": userID}, findOpts)
	if err != nil {
		return nil, pmerrors.WrapResource("find", "favorites", userID, err)
	}
	var docs []favoriteDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, pmerrors.WrapResource("decode", "favorites", userID, err)
	}

	set := make(products.FavoriteSet, len(docs))
	for _, d := range docs {
		set.Add(d.ProductID)
	}
	return set, nil
}

// HasFavorite implements sources.Source.
func (s *Source) HasFavorite(ctx context.Context, userID, productID string) (bool, error) {
	var doc favoriteDoc
	err := s.favorites.FindOne(ctx, favoriteFilter(userID, productID)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, pmerrors.WrapResource("find", "favorites", productID, err)
	}
	return true, nil
}

// SetFavorite implements sources.Source.
func (s *Source) SetFavorite(ctx context.Context, userID string, product products.Product, present bool) error {
	if userID == "" || product.ID == "" {
		return pmerrors.NewValidationError("favorite", product.ID, "user and product id are required")
	}
	filter := favoriteFilter(userID, product.ID)

	if !present {
		if _, err := s.favorites.DeleteOne(ctx, filter); err != nil {
			return pmerrors.WrapResource("delete", "favorites", product.ID, err)
		}
		return nil
	}

	now := nowUTC()
	update := bson.M{
		"$set": bson.M{
			"name":       product.Name,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}
	if _, err := s.favorites.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return pmerrors.WrapResource("upsert", "favorites", product.ID, err)
	}
	return nil
}

// UpsertProducts implements sources.Seeder.
func (s *Source) UpsertProducts(ctx context.Context, items []products.Product) error {
	if len(items) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(items))
	for _, p := range items {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": p.ID}).
			SetReplacement(newProductWrite(p)).
			SetUpsert(true))
	}
	if _, err := s.products.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return pmerrors.WrapResource("upsert", "products", "", err)
	}
	return nil
}

// Close implements sources.Source.
func (s *Source) Close(ctx context.Context) error {
	return s.db.Close(ctx)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func favoriteFilter(userID, productID string) bson.M {
	return bson.M{"user_id": userID, "product_id": productID}
}
