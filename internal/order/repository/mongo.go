package repository

import (
	"context"
	"time"

	"github.com/fekuna/storefront-service/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const archiveCollection = "orders_archive"

type MongoArchive struct {
	Collection *mongo.Collection
}

func NewMongoArchive(db *mongo.Database) *MongoArchive {
	return &MongoArchive{Collection: db.Collection(archiveCollection)}
}

type archivedItem struct {
	ProductID   string `bson:"product_id"`
	ProductName string `bson:"product_name"`
	Quantity    int    `bson:"quantity"`
	UnitPrice   string `bson:"unit_price"`
}

type archivedOrder struct {
	OrderID         string         `bson:"_id"`
	OrderNumber     string         `bson:"order_number"`
	CustomerName    string         `bson:"customer_name"`
	CustomerEmail   string         `bson:"customer_email"`
	CustomerPhone   string         `bson:"customer_phone"`
	CustomerAddress *string        `bson:"customer_address,omitempty"`
	Subtotal        string         `bson:"subtotal"`
	DiscountCode    *string        `bson:"discount_code,omitempty"`
	DiscountAmount  string         `bson:"discount_amount"`
	DeliveryFee     string         `bson:"delivery_fee"`
	TotalAmount     string         `bson:"total_amount"`
	Notes           string         `bson:"notes"`
	Status          string         `bson:"status"`
	UserID          *string        `bson:"user_id,omitempty"`
	Items           []archivedItem `bson:"items"`
	CreatedAt       time.Time      `bson:"created_at"`
	DeletedAt       time.Time      `bson:"deleted_at"`
	DeletedBy       string         `bson:"deleted_by"`
}

// ArchiveOrder upserts the snapshot keyed by order ID, so a retried delete
// does not duplicate it.
func (a *MongoArchive) ArchiveOrder(ctx context.Context, o *model.Order, deletedBy string, deletedAt time.Time) error {
	doc := archivedOrder{
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		CustomerAddress: o.CustomerAddress,
		Subtotal:        o.Subtotal.StringFixed(2),
		DiscountCode:    o.DiscountCode,
		DiscountAmount:  o.DiscountAmount.StringFixed(2),
		DeliveryFee:     o.DeliveryFee.StringFixed(2),
		TotalAmount:     o.TotalAmount.StringFixed(2),
		Notes:           o.Notes,
		Status:          string(o.Status),
		UserID:          o.UserID,
		CreatedAt:       o.CreatedAt,
		DeletedAt:       deletedAt,
		DeletedBy:       deletedBy,
	}
	for _, item := range o.Items {
		doc.Items = append(doc.Items, archivedItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
		})
	}

	_, err := a.Collection.ReplaceOne(ctx, bson.M{"_id": o.ID}, doc, options.Replace().SetUpsert(true))
	return err
}
