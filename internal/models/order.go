package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. The spellings are the values stored by existing deployments.
const (
	StatusNotProcessed = "Not Process"
	StatusProcessing   = "Processing"
	StatusShipped      = "Shipped"
	StatusDelivered    = "deliverd"
	StatusCancelled    = "cancel"
)

var OrderStatuses = []string{StatusNotProcessed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

func ValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Payment records the gateway outcome for an order. Amount is a decimal string.
type Payment struct {
	TransactionID string `bson:"transactionId" json:"transactionId"`
	Amount        string `bson:"amount" json:"amount"`
	Success       bool   `bson:"success" json:"success"`
}

type Order struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Products  []primitive.ObjectID `bson:"products" json:"products"`
	Payment   Payment              `bson:"payment" json:"payment"`
	Buyer     primitive.ObjectID   `bson:"buyer" json:"buyer"`
	Status    string               `bson:"status" json:"status"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// OrderView is an order with products and buyer populated for listings.
type OrderView struct {
	ID        primitive.ObjectID `json:"_id"`
	Products  []Product          `json:"products"`
	Payment   Payment            `json:"payment"`
	Buyer     *Buyer             `json:"buyer"`
	Status    string             `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
