package records

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/TinoSanchez/app-achatrevente/pkg/db/models"
	"github.com/TinoSanchez/app-achatrevente/pkg/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A unique shared-cache name keeps the database alive across the
	// pooled connections while isolating tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.ProductRecord{}, &models.Preference{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return conn
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(logger.Options{ServiceName: "records-test", Level: zerolog.ErrorLevel})
}

// fakeFeed records publishes and lets tests inject change signals.
type fakeFeed struct {
	mu        sync.Mutex
	published int
	signals   chan struct{}
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{signals: make(chan struct{}, 8)}
}

func (f *fakeFeed) Publish(ctx context.Context, ownerID string) {
	f.mu.Lock()
	f.published++
	f.mu.Unlock()
	select {
	case f.signals <- struct{}{}:
	default:
	}
}

func (f *fakeFeed) Subscribe(ctx context.Context, ownerID string) (<-chan struct{}, func(), error) {
	return f.signals, func() {}, nil
}

func (f *fakeFeed) publishCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.published
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func chairInput() RecordInput {
	return RecordInput{
		Nom:       "Chaise vintage",
		Categorie: "Mobilier",
		Quantite:  2,
		PrixAchat: dec("10"),
		PrixVente: dec("25"),
		Frais:     dec("1.5"),
	}
}
