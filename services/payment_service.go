package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/menumate/menumate/models"
	"github.com/menumate/menumate/realtime"
)

var (
	ErrInvalidSignature = errors.New("payment signature verification failed")
	ErrAlreadyPaid      = errors.New("session is already paid")
)

// PaymentService reconciles gateway callbacks and counter confirmations
// into the session/order paid state.
type PaymentService struct {
	db            *gorm.DB
	notifier      realtime.Notifier
	sessions      *SessionService
	gatewaySecret string
}

func NewPaymentService(db *gorm.DB, notifier realtime.Notifier, sessions *SessionService, gatewaySecret string) *PaymentService {
	return &PaymentService{
		db:            db,
		notifier:      notifier,
		sessions:      sessions,
		gatewaySecret: gatewaySecret,
	}
}

// VerifySignature recomputes the keyed hash over "orderID|paymentID" and
// compares constant-time against the supplied value.
func VerifySignature(gatewayOrderID, gatewayPaymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyOnlinePayment checks the gateway signature and, only on a match,
// transitions the session and all its orders to paid in one transaction.
// A forged signature mutates nothing.
func (s *PaymentService) VerifyOnlinePayment(sessionToken, gatewayOrderID, gatewayPaymentID, signature string) (*models.TableSession, error) {
	session, err := s.sessions.GetByToken(sessionToken)
	if err != nil {
		return nil, err
	}

	if !VerifySignature(gatewayOrderID, gatewayPaymentID, signature, s.gatewaySecret) {
		return nil, ErrInvalidSignature
	}

	if err := s.markPaid(session, models.PaymentMethodOnline, gatewayPaymentID); err != nil {
		return nil, err
	}

	s.notifier.SessionUpdated(*session)
	return session, nil
}

// ConfirmCounterPayment is the owner-side paid transition for a counter
// session. The session must belong to the caller's restaurant and must not
// already be paid.
func (s *PaymentService) ConfirmCounterPayment(restaurantID, sessionID uint) (*models.TableSession, error) {
	var session models.TableSession
	if err := s.db.Where("id = ? AND restaurant_id = ?", sessionID, restaurantID).
		First(&session).Error; err != nil {
		return nil, ErrSessionNotFound
	}

	ref := "counter-" + uuid.NewString()
	if err := s.markPaid(&session, models.PaymentMethodCounter, ref); err != nil {
		return nil, err
	}

	s.notifier.SessionUpdated(session)
	return &session, nil
}

// markPaid transitions session + orders in a single transaction. The
// session update is conditional on not being paid yet; a concurrent
// duplicate loses on RowsAffected and surfaces ErrAlreadyPaid.
func (s *PaymentService) markPaid(session *models.TableSession, method, paymentRef string) error {
	if session.PaymentStatus == models.PaymentStatusPaid {
		return ErrAlreadyPaid
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		total, err := RecomputeSessionTotal(tx, session.ID)
		if err != nil {
			return err
		}

		res := tx.Model(&models.TableSession{}).
			Where("id = ? AND payment_status <> ?", session.ID, models.PaymentStatusPaid).
			Updates(map[string]interface{}{
				"status":         models.SessionStatusPaid,
				"payment_status": models.PaymentStatusPaid,
				"payment_method": method,
				"total_amount":   total,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyPaid
		}

		if err := tx.Model(&models.Order{}).
			Where("session_id = ? AND status <> ?", session.ID, models.OrderStatusCancelled).
			Updates(map[string]interface{}{
				"status":         models.OrderStatusPaid,
				"payment_status": models.PaymentStatusPaid,
				"payment_ref":    paymentRef,
			}).Error; err != nil {
			return err
		}

		session.Status = models.SessionStatusPaid
		session.PaymentStatus = models.PaymentStatusPaid
		session.PaymentMethod = method
		session.TotalAmount = total
		return nil
	})
}
