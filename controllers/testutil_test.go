package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/menumate/menumate/middlewares"
	"github.com/menumate/menumate/models"
	"github.com/menumate/menumate/realtime"
	"github.com/menumate/menumate/services"
	"github.com/menumate/menumate/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

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

type testEnv struct {
	db       *gorm.DB
	sessions *services.SessionService
	orders   *services.OrderService
	payments *services.PaymentService
	subs     *services.SubscriptionService
}

func newTestEnv(t *testing.T) *testEnv {
	db := newTestDB(t)
	notifier := realtime.NoopNotifier{}
	sessions := services.NewSessionService(db, notifier, time.Hour)
	return &testEnv{
		db:       db,
		sessions: sessions,
		orders:   services.NewOrderService(db, notifier, sessions),
		payments: services.NewPaymentService(db, notifier, sessions, "test-gateway-secret"),
		subs:     services.NewSubscriptionService(db),
	}
}

func (e *testEnv) seedRestaurant(t *testing.T, slug string) models.Restaurant {
	t.Helper()
	owner := models.User{
		Name:     "Owner " + slug,
		Email:    slug + "@example.com",
		Password: "x",
		Role:     models.RoleOwner,
		Status:   models.UserStatusActive,
	}
	if err := e.db.Create(&owner).Error; err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	restaurant := models.Restaurant{OwnerID: owner.ID, Name: slug, Slug: slug, IsActive: true}
	if err := e.db.Create(&restaurant).Error; err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}
	return restaurant
}

func (e *testEnv) seedMenuItem(t *testing.T, restaurantID uint, name string, price int64) models.MenuItem {
	t.Helper()
	category := models.Category{RestaurantID: restaurantID, Name: "Mains", SortOrder: 1}
	if err := e.db.Where("restaurant_id = ? AND name = ?", restaurantID, "Mains").
		FirstOrCreate(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	item := models.MenuItem{
		RestaurantID: restaurantID,
		CategoryID:   category.ID,
		Name:         name,
		Price:        decimal.NewFromInt(price),
		IsAvailable:  true,
	}
	if err := e.db.Create(&item).Error; err != nil {
		t.Fatalf("seed menu item: %v", err)
	}
	return item
}

// asOwner fakes the auth + restaurant-scope middlewares for a route group.
func asOwner(userID, restaurantID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middlewares.ContextUserID, userID)
		c.Set(middlewares.ContextRole, models.RoleOwner)
		c.Set(middlewares.ContextRestaurantID, restaurantID)
		c.Next()
	}
}

func asSuperAdmin(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middlewares.ContextUserID, userID)
		c.Set(middlewares.ContextRole, models.RoleSuperAdmin)
		c.Next()
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	return resp
}
