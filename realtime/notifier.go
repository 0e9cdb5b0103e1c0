package realtime

import (
	"fmt"

	"github.com/menumate/menumate/models"
)

// Event names carried on both restaurant and session channels.
const (
	EventOrderCreated            = "order_created"
	EventOrderUpdated            = "order_updated"
	EventSessionUpdated          = "session_updated"
	EventCounterPaymentRequested = "counter_payment_requested"
)

// Notifier is the fan-out capability used by the services. Delivery is
// best effort: implementations log failures and never return them, so a
// dropped notification can never fail the triggering request.
type Notifier interface {
	OrderCreated(order models.Order)
	OrderUpdated(order models.Order)
	SessionUpdated(session models.TableSession)
	CounterPaymentRequested(session models.TableSession)
}

// RestaurantChannel names the owner-facing channel for a restaurant.
func RestaurantChannel(restaurantID uint) string {
	return fmt.Sprintf("restaurant:%d", restaurantID)
}

// SessionChannel names the customer-facing channel for a session token.
func SessionChannel(token string) string {
	return "session:" + token
}

// PushNotifier relays events through the WebSocket hub.
type PushNotifier struct {
	hub *Hub
}

func NewPushNotifier(hub *Hub) *PushNotifier {
	return &PushNotifier{hub: hub}
}

func (n *PushNotifier) OrderCreated(order models.Order) {
	n.hub.Broadcast(RestaurantChannel(order.RestaurantID), EventOrderCreated, order)
	if order.Session != nil {
		n.hub.Broadcast(SessionChannel(order.Session.SessionToken), EventOrderCreated, order)
	}
}

func (n *PushNotifier) OrderUpdated(order models.Order) {
	n.hub.Broadcast(RestaurantChannel(order.RestaurantID), EventOrderUpdated, order)
	if order.Session != nil {
		n.hub.Broadcast(SessionChannel(order.Session.SessionToken), EventOrderUpdated, order)
	}
}

func (n *PushNotifier) SessionUpdated(session models.TableSession) {
	n.hub.Broadcast(RestaurantChannel(session.RestaurantID), EventSessionUpdated, session)
	n.hub.Broadcast(SessionChannel(session.SessionToken), EventSessionUpdated, session)
}

func (n *PushNotifier) CounterPaymentRequested(session models.TableSession) {
	n.hub.Broadcast(RestaurantChannel(session.RestaurantID), EventCounterPaymentRequested, session)
}

// NoopNotifier is used in poll mode: clients learn about changes by
// re-fetching the snapshot endpoints instead.
type NoopNotifier struct{}

func (NoopNotifier) OrderCreated(models.Order)                   {}
func (NoopNotifier) OrderUpdated(models.Order)                   {}
func (NoopNotifier) SessionUpdated(models.TableSession)          {}
func (NoopNotifier) CounterPaymentRequested(models.TableSession) {}
