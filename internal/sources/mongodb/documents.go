package mongodb

import (
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/agentstation/productmap/pkg/products"
)

// productDoc is a document of the products collection. The id may be stored
// either as a string or as an ObjectID.
type productDoc struct {
	ID          bson.RawValue `bson:"_id"`
	Name        string        `bson:"name"`
	Description string        `bson:"description,omitempty"`
	Images      []string      `bson:"images,omitempty"`
}

// productID renders a stored _id as the opaque product id.
func productID(raw bson.RawValue) string {
	switch raw.Type {
	case bsontype.String:
		return raw.StringValue()
	case bsontype.ObjectID:
		return raw.ObjectID().Hex()
	case bsontype.Int32:
		return strconv.FormatInt(int64(raw.Int32()), 10)
	case bsontype.Int64:
		return strconv.FormatInt(raw.Int64(), 10)
	default:
		return ""
	}
}

func (d productDoc) toProduct() products.Product {
	return products.Product{
		ID:          productID(d.ID),
		Name:        d.Name,
		Description: d.Description,
		Images:      d.Images,
	}
}

// productWrite is the shape written by UpsertProducts.
type productWrite struct {
	ID          string   `bson:"_id"`
	Name        string   `bson:"name"`
	Description string   `bson:"description,omitempty"`
	Images      []string `bson:"images,omitempty"`
}

func newProductWrite(p products.Product) productWrite {
	return productWrite{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Images:      p.Images,
	}
}

// favoriteDoc is a document of the favorites collection.
type favoriteDoc struct {
	UserID    string    `bson:"user_id"`
	ProductID string    `bson:"product_id"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}
