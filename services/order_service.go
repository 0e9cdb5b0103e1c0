package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/menumate/menumate/models"
	"github.com/menumate/menumate/realtime"
)

var (
	ErrEmptyCart         = errors.New("cart must contain at least one item")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// CartLine is one requested menu item in an incoming order.
type CartLine struct {
	MenuItemID uint `json:"menu_item_id" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required"`
}

// CreateOrderInput is the customer-facing order payload.
type CreateOrderInput struct {
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone"`
	Notes         string     `json:"notes"`
	Items         []CartLine `json:"items" binding:"required"`
}

// Forward-only transitions; paid is reached through the payment flows only.
var orderTransitions = map[string][]string{
	models.OrderStatusPending: {models.OrderStatusCooking, models.OrderStatusCancelled},
	models.OrderStatusCooking: {models.OrderStatusReady, models.OrderStatusCancelled},
}

// OrderService validates carts against the live menu, snapshots item data
// and creates orders against an active session.
type OrderService struct {
	db       *gorm.DB
	notifier realtime.Notifier
	sessions *SessionService
}

func NewOrderService(db *gorm.DB, notifier realtime.Notifier, sessions *SessionService) *OrderService {
	return &OrderService{db: db, notifier: notifier, sessions: sessions}
}

// CreateOrder places a cart against the session's restaurant. The whole
// cart is rejected on the first bad line; nothing is written for a
// partially valid cart.
func (s *OrderService) CreateOrder(sessionToken string, input CreateOrderInput) (*models.Order, error) {
	session, err := s.sessions.ActiveByToken(sessionToken)
	if err != nil {
		return nil, err
	}

	if len(input.Items) == 0 {
		return nil, ErrEmptyCart
	}

	var order models.Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Items))

		for _, line := range input.Items {
			if line.Quantity <= 0 {
				return ErrInvalidQuantity
			}

			var menuItem models.MenuItem
			if err := tx.First(&menuItem, line.MenuItemID).Error; err != nil {
				return fmt.Errorf("menu item %d not found", line.MenuItemID)
			}
			if menuItem.RestaurantID != session.RestaurantID {
				return fmt.Errorf("menu item %d does not belong to this restaurant", line.MenuItemID)
			}
			if !menuItem.IsAvailable {
				return fmt.Errorf("%s is currently unavailable", menuItem.Name)
			}

			lineTotal := menuItem.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(lineTotal)

			items = append(items, models.OrderItem{
				MenuItemID: menuItem.ID,
				ItemName:   menuItem.Name,
				Price:      menuItem.Price,
				Quantity:   line.Quantity,
			})
		}

		order = models.Order{
			RestaurantID:  session.RestaurantID,
			SessionID:     &session.ID,
			CustomerName:  input.CustomerName,
			CustomerPhone: input.CustomerPhone,
			Notes:         input.Notes,
			Status:        models.OrderStatusPending,
			PaymentStatus: models.PaymentStatusUnpaid,
			TotalAmount:   total,
			Items:         items,
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}

	order.Session = session
	s.notifier.OrderCreated(order)
	return &order, nil
}

// UpdateStatus moves an owner's order along the kitchen flow. The update is
// conditional on the status the caller saw, so two concurrent transitions
// cannot both win.
func (s *OrderService) UpdateStatus(restaurantID, orderID uint, newStatus string) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").
		Where("id = ? AND restaurant_id = ?", orderID, restaurantID).
		First(&order).Error; err != nil {
		return nil, ErrOrderNotFound
	}

	allowed := false
	for _, next := range orderTransitions[order.Status] {
		if next == newStatus {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, newStatus)
	}

	res := s.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Update("status", newStatus)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: order changed concurrently", ErrInvalidTransition)
	}

	order.Status = newStatus
	if order.SessionID != nil {
		var session models.TableSession
		if err := s.db.First(&session, *order.SessionID).Error; err == nil {
			order.Session = &session
		}
	}
	s.notifier.OrderUpdated(order)
	return &order, nil
}
