package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/menumate/menumate/models"
	"github.com/menumate/menumate/realtime"
	"github.com/menumate/menumate/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.InitLogger()

	// Named shared-cache memory DB: one database for the whole pool,
	// isolated from other tests.
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.Category{},
		&models.MenuItem{},
		&models.TableSession{},
		&models.Order{},
		&models.OrderItem{},
		&models.PlatformSetting{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedRestaurant(t *testing.T, db *gorm.DB, slug string) models.Restaurant {
	t.Helper()
	owner := models.User{
		Name:     "Owner " + slug,
		Email:    slug + "@example.com",
		Password: "x",
		Role:     models.RoleOwner,
		Status:   models.UserStatusActive,
	}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	restaurant := models.Restaurant{
		OwnerID:  owner.ID,
		Name:     slug,
		Slug:     slug,
		IsActive: true,
	}
	if err := db.Create(&restaurant).Error; err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}
	return restaurant
}

func seedMenuItem(t *testing.T, db *gorm.DB, restaurantID uint, name string, price int64, available bool) models.MenuItem {
	t.Helper()
	category := models.Category{RestaurantID: restaurantID, Name: "Mains", SortOrder: 1}
	if err := db.Where("restaurant_id = ? AND name = ?", restaurantID, "Mains").
		FirstOrCreate(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	item := models.MenuItem{
		RestaurantID: restaurantID,
		CategoryID:   category.ID,
		Name:         name,
		Price:        decimal.NewFromInt(price),
		IsAvailable:  available,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed menu item: %v", err)
	}
	// The default:true tag makes GORM omit a false IsAvailable on insert,
	// so sold-out seeds need an explicit update.
	if !available {
		if err := db.Model(&item).Update("is_available", false).Error; err != nil {
			t.Fatalf("seed menu item availability: %v", err)
		}
		item.IsAvailable = false
	}
	return item
}

// recordingNotifier counts fan-out calls so tests can assert delivery is
// attempted without a live hub.
type recordingNotifier struct {
	orderCreated    int
	orderUpdated    int
	sessionUpdated  int
	counterRequests int
}

func (n *recordingNotifier) OrderCreated(models.Order)                   { n.orderCreated++ }
func (n *recordingNotifier) OrderUpdated(models.Order)                   { n.orderUpdated++ }
func (n *recordingNotifier) SessionUpdated(models.TableSession)          { n.sessionUpdated++ }
func (n *recordingNotifier) CounterPaymentRequested(models.TableSession) { n.counterRequests++ }

var _ realtime.Notifier = (*recordingNotifier)(nil)

const testIdleTimeout = time.Hour

func newSessionService(db *gorm.DB) (*SessionService, *recordingNotifier) {
	notifier := &recordingNotifier{}
	return NewSessionService(db, notifier, testIdleTimeout), notifier
}
