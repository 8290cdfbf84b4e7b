package orders

import (
	"github.com/angelmondragon/attire-backend/pkg/enums"
	"github.com/angelmondragon/attire-backend/pkg/pagination"
)

// ListAllInput filters the admin order listing.
type ListAllInput struct {
	Status     *enums.OrderStatus
	Pagination pagination.Params
}

// UpdateStatusInput moves an order through fulfillment. A nil tracking
// number leaves the stored one untouched.
type UpdateStatusInput struct {
	Status         enums.OrderStatus `json:"orderStatus" validate:"required"`
	TrackingNumber *string           `json:"trackingNumber"`
}

// UpdatePaymentInput records the collection outcome for an order.
type UpdatePaymentInput struct {
	PaymentStatus enums.PaymentStatus `json:"paymentStatus" validate:"required"`
}
