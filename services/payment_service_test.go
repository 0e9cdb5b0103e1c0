package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/menumate/menumate/models"
)

const testGatewaySecret = "test-gateway-secret"

func signPayment(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testGatewaySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func paymentFixture(t *testing.T) (*PaymentService, *SessionService, *recordingNotifier, *models.TableSession, *models.Order) {
	t.Helper()
	db := newTestDB(t)
	restaurant := seedRestaurant(t, db, "pay-test")
	item := seedMenuItem(t, db, restaurant.ID, "Mie Ayam", 100, true)

	notifier := &recordingNotifier{}
	sessions := NewSessionService(db, notifier, testIdleTimeout)
	orders := NewOrderService(db, notifier, sessions)
	payments := NewPaymentService(db, notifier, sessions, testGatewaySecret)

	session, _, err := sessions.OpenSession(restaurant.ID, "T1")
	assert.NoError(t, err)
	order, err := orders.CreateOrder(session.SessionToken, CreateOrderInput{
		Items: []CartLine{{MenuItemID: item.ID, Quantity: 2}},
	})
	assert.NoError(t, err)

	return payments, sessions, notifier, session, order
}

func TestVerifySignature(t *testing.T) {
	sig := signPayment("ord_1", "pay_1")
	assert.True(t, VerifySignature("ord_1", "pay_1", sig, testGatewaySecret))
	assert.False(t, VerifySignature("ord_1", "pay_2", sig, testGatewaySecret))
	assert.False(t, VerifySignature("ord_1", "pay_1", "deadbeef", testGatewaySecret))
	assert.False(t, VerifySignature("ord_1", "pay_1", sig, "other-secret"))
}

func TestVerifyOnlinePaymentMarksSessionAndOrdersPaid(t *testing.T) {
	payments, sessions, notifier, session, order := paymentFixture(t)

	sig := signPayment("ord_42", "pay_42")
	paid, err := payments.VerifyOnlinePayment(session.SessionToken, "ord_42", "pay_42", sig)
	assert.NoError(t, err)
	assert.Equal(t, models.SessionStatusPaid, paid.Status)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, models.PaymentMethodOnline, paid.PaymentMethod)
	assert.Equal(t, "200", paid.TotalAmount.String())

	orders, err := sessions.Orders(session.ID)
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
	assert.Equal(t, models.OrderStatusPaid, orders[0].Status)
	assert.Equal(t, "pay_42", orders[0].PaymentRef)

	assert.GreaterOrEqual(t, notifier.sessionUpdated, 1)
}

func TestForgedSignatureMutatesNothing(t *testing.T) {
	payments, sessions, _, session, order := paymentFixture(t)

	_, err := payments.VerifyOnlinePayment(session.SessionToken, "ord_42", "pay_42", "forged")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	fetched, err := sessions.GetByToken(session.SessionToken)
	assert.NoError(t, err)
	assert.Equal(t, models.SessionStatusActive, fetched.Status)
	assert.Equal(t, models.PaymentStatusUnpaid, fetched.PaymentStatus)

	orders, _ := sessions.Orders(session.ID)
	assert.Equal(t, models.OrderStatusPending, orders[0].Status)
	assert.Equal(t, order.ID, orders[0].ID)
}

func TestVerifyOnlinePaymentRejectsDoubleProcessing(t *testing.T) {
	payments, _, _, session, _ := paymentFixture(t)

	sig := signPayment("ord_1", "pay_1")
	_, err := payments.VerifyOnlinePayment(session.SessionToken, "ord_1", "pay_1", sig)
	assert.NoError(t, err)

	_, err = payments.VerifyOnlinePayment(session.SessionToken, "ord_1", "pay_1", sig)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestConfirmCounterPayment(t *testing.T) {
	payments, sessions, _, session, _ := paymentFixture(t)

	_, err := sessions.CloseSession(session.SessionToken, models.PaymentMethodCounter)
	assert.NoError(t, err)

	paid, err := payments.ConfirmCounterPayment(session.RestaurantID, session.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.SessionStatusPaid, paid.Status)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)

	orders, _ := sessions.Orders(session.ID)
	assert.Equal(t, models.OrderStatusPaid, orders[0].Status)
	assert.Contains(t, orders[0].PaymentRef, "counter-")

	// Confirming again is a conflict, not a second transition.
	_, err = payments.ConfirmCounterPayment(session.RestaurantID, session.ID)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestConfirmCounterPaymentScopedToRestaurant(t *testing.T) {
	payments, _, _, session, _ := paymentFixture(t)

	_, err := payments.ConfirmCounterPayment(session.RestaurantID+1, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
