// services/checkout_service.go
package services

import (
	"errors"

	"github.com/playvault/server/events"
	"github.com/playvault/server/format"
	"github.com/playvault/server/models"
	"github.com/playvault/server/monitor"
	"github.com/playvault/server/persistence"
)

var ErrEmptyCart = errors.New("Giỏ hàng trống!")

// CheckoutReceipt is returned to the buyer after a successful checkout.
type CheckoutReceipt struct {
	Items        []models.PurchasedGame `json:"items"`
	Total        int64                  `json:"total"`
	DisplayTotal string                 `json:"display_total"`
}

// CheckoutService turns cart selections into purchase records. The
// purchase write and the cart clear commit in one transaction; a failure
// leaves the cart exactly as it was.
type CheckoutService struct {
	db        persistence.Database
	publisher events.Publisher
	mon       *monitor.Monitor
}

func NewCheckoutService(db persistence.Database, publisher events.Publisher, mon *monitor.Monitor) *CheckoutService {
	return &CheckoutService{db: db, publisher: publisher, mon: mon}
}

// Checkout purchases the selected game ids, or the entire cart when
// gameIDs is empty.
func (s *CheckoutService) Checkout(userID int64, gameIDs []int64) (*CheckoutReceipt, error) {
	result, err := s.db.Checkout(userID, gameIDs)
	if err != nil {
		if errors.Is(err, persistence.ErrEmptyCheckout) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}

	if s.mon != nil {
		s.mon.IncCheckouts()
		s.mon.AddRevenue(result.Total)
	}
	if s.publisher != nil {
		s.publisher.Publish(events.Event{
			Type: events.TypePurchaseCompleted,
			Payload: map[string]interface{}{
				"user_id": userID,
				"items":   result.Items,
				"total":   result.Total,
			},
		})
	}

	return &CheckoutReceipt{
		Items:        result.Items,
		Total:        result.Total,
		DisplayTotal: format.VND(result.Total),
	}, nil
}

// Purchases returns the user's assembled purchase record, or an empty
// record if they have never bought anything.
func (s *CheckoutService) Purchases(userID int64) (*models.Purchase, error) {
	record, err := s.db.GetPurchase(userID)
	if err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return &models.Purchase{ID: userID, UserID: userID, GamesPurchased: []models.PurchasedGame{}}, nil
		}
		return nil, err
	}
	return record, nil
}
