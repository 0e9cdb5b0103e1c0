package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/menumate/menumate/models"
	"github.com/menumate/menumate/realtime"
	"github.com/menumate/menumate/utils"
)

var (
	ErrRestaurantNotFound = errors.New("restaurant not found or inactive")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionNotActive   = errors.New("session is no longer active")
	ErrInvalidMethod      = errors.New("payment method must be online or counter")
)

// SessionService owns the table-session lifecycle: idempotent open, idle
// expiry, close with a payment method, and total recomputation.
type SessionService struct {
	db          *gorm.DB
	notifier    realtime.Notifier
	idleTimeout time.Duration
	stopChan    chan struct{}
}

func NewSessionService(db *gorm.DB, notifier realtime.Notifier, idleTimeout time.Duration) *SessionService {
	return &SessionService{
		db:          db,
		notifier:    notifier,
		idleTimeout: idleTimeout,
		stopChan:    make(chan struct{}),
	}
}

// OpenSession returns the active session for (restaurant, table), creating
// one if none exists. The lookup locks the row inside a transaction so two
// concurrent opens for the same table collapse to one session.
func (s *SessionService) OpenSession(restaurantID uint, tableNumber string) (*models.TableSession, bool, error) {
	var restaurant models.Restaurant
	if err := s.db.Where("id = ? AND is_active = ?", restaurantID, true).First(&restaurant).Error; err != nil {
		return nil, false, ErrRestaurantNotFound
	}

	var session models.TableSession
	created := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		lookup := tx
		// SQLite serializes writers on its own and rejects FOR UPDATE.
		if tx.Dialector.Name() == "mysql" {
			lookup = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		err := lookup.
			Where("restaurant_id = ? AND table_number = ? AND status = ?",
				restaurantID, tableNumber, models.SessionStatusActive).
			First(&session).Error

		if err == nil {
			if s.expireIfIdle(tx, &session) {
				// stale row just closed, fall through to create a fresh one
			} else {
				return nil
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		token, err := utils.GenerateSessionToken()
		if err != nil {
			return err
		}

		session = models.TableSession{
			RestaurantID:  restaurantID,
			TableNumber:   tableNumber,
			SessionToken:  token,
			Status:        models.SessionStatusActive,
			PaymentStatus: models.PaymentStatusUnpaid,
			TotalAmount:   decimal.Zero,
		}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.notifier.SessionUpdated(session)
	}
	return &session, created, nil
}

// GetByToken loads a session, lazily expiring it first.
func (s *SessionService) GetByToken(token string) (*models.TableSession, error) {
	var session models.TableSession
	if err := s.db.Where("session_token = ?", token).First(&session).Error; err != nil {
		return nil, ErrSessionNotFound
	}

	if s.expireIfIdle(s.db, &session) {
		s.notifier.SessionUpdated(session)
	}
	return &session, nil
}

// ActiveByToken is GetByToken plus an active-status check; order placement
// and close both go through it.
func (s *SessionService) ActiveByToken(token string) (*models.TableSession, error) {
	session, err := s.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionStatusActive {
		return nil, ErrSessionNotActive
	}
	return session, nil
}

// Orders returns all orders attached to a session.
func (s *SessionService) Orders(sessionID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("Items").
		Where("session_id = ?", sessionID).
		Order("created_at asc").
		Find(&orders).Error
	return orders, err
}

// CloseSession records the chosen payment method. Counter closes the
// session immediately (payment pending at the counter); online keeps it
// active until the gateway callback is verified. The total is recomputed
// from the order set in both cases.
func (s *SessionService) CloseSession(token, method string) (*models.TableSession, error) {
	if method != models.PaymentMethodOnline && method != models.PaymentMethodCounter {
		return nil, ErrInvalidMethod
	}

	session, err := s.ActiveByToken(token)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		total, err := RecomputeSessionTotal(tx, session.ID)
		if err != nil {
			return err
		}

		session.TotalAmount = total
		session.PaymentMethod = method
		if method == models.PaymentMethodCounter {
			session.Status = models.SessionStatusClosed
			session.PaymentStatus = models.PaymentStatusPending
		}
		return tx.Save(session).Error
	})
	if err != nil {
		return nil, err
	}

	if method == models.PaymentMethodCounter {
		s.notifier.CounterPaymentRequested(*session)
	}
	s.notifier.SessionUpdated(*session)
	return session, nil
}

// expireIfIdle closes an active session past the idle threshold. Returns
// true when the session was just closed.
func (s *SessionService) expireIfIdle(tx *gorm.DB, session *models.TableSession) bool {
	if session.Status != models.SessionStatusActive {
		return false
	}
	if time.Since(session.CreatedAt) < s.idleTimeout {
		return false
	}

	res := tx.Model(&models.TableSession{}).
		Where("id = ? AND status = ?", session.ID, models.SessionStatusActive).
		Update("status", models.SessionStatusClosed)
	if res.Error != nil {
		utils.ErrorLogger.Printf("expire session %d: %v", session.ID, res.Error)
		return false
	}
	session.Status = models.SessionStatusClosed
	return res.RowsAffected > 0
}

// StartExpirySweeper closes idle sessions on a ticker so abandoned tables
// do not wait for the next read to be reaped.
func (s *SessionService) StartExpirySweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweepIdleSessions()
			case <-s.stopChan:
				return
			}
		}
	}()
	utils.InfoLogger.Println("session expiry sweeper started")
}

func (s *SessionService) Stop() {
	close(s.stopChan)
}

func (s *SessionService) sweepIdleSessions() {
	cutoff := time.Now().Add(-s.idleTimeout)

	var stale []models.TableSession
	if err := s.db.Where("status = ? AND created_at < ?", models.SessionStatusActive, cutoff).
		Find(&stale).Error; err != nil {
		utils.ErrorLogger.Printf("sweep idle sessions: %v", err)
		return
	}

	for i := range stale {
		if s.expireIfIdle(s.db, &stale[i]) {
			s.notifier.SessionUpdated(stale[i])
		}
	}
}

// RecomputeSessionTotal sums the non-cancelled orders of a session, so the
// stored total always matches the order set at the moment of closing.
func RecomputeSessionTotal(tx *gorm.DB, sessionID uint) (decimal.Decimal, error) {
	var orders []models.Order
	if err := tx.Where("session_id = ? AND status <> ?", sessionID, models.OrderStatusCancelled).
		Find(&orders).Error; err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.TotalAmount)
	}
	return total, nil
}
