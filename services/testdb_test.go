// services/testdb_test.go
package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kennel-backend/models"
)

// newTestDB opens a throwaway in-memory database with the full schema.
// The sqlite driver drops row-locking clauses, so these tests cover
// transactional behavior, not lock contention.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the in-memory database alive for the test.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Location{},
		&models.Owner{},
		&models.Pet{},
		&models.AccountSetting{},
		&models.CapacityRule{},
		&models.Reservation{},
		&models.WaitlistEntry{},
		&models.ConfirmationToken{},
	))
	return db
}

type testWorld struct {
	db    *gorm.DB
	loc   models.Location
	owner models.Owner
	pets  []models.Pet
}

func seedWorld(t *testing.T, db *gorm.DB, petCount int) testWorld {
	t.Helper()

	loc := models.Location{Name: "Main Facility", Timezone: "UTC"}
	require.NoError(t, db.Create(&loc).Error)

	owner := models.Owner{FullName: "Jamie Rivera", Email: "jamie@example.com"}
	require.NoError(t, db.Create(&owner).Error)

	pets := make([]models.Pet, 0, petCount)
	for i := 0; i < petCount; i++ {
		p := models.Pet{OwnerID: owner.ID, Name: fmt.Sprintf("Pet %d", i+1)}
		require.NoError(t, db.Create(&p).Error)
		pets = append(pets, p)
	}
	return testWorld{db: db, loc: loc, owner: owner, pets: pets}
}

func (w testWorld) petIDs() []uint {
	ids := make([]uint, 0, len(w.pets))
	for _, p := range w.pets {
		ids = append(ids, p.ID)
	}
	return ids
}

func seedRule(t *testing.T, db *gorm.DB, locationID uint, serviceType string, maxActive int) models.CapacityRule {
	t.Helper()
	rule := models.CapacityRule{LocationID: locationID, ServiceType: serviceType, MaxActive: maxActive}
	require.NoError(t, db.Create(&rule).Error)
	return rule
}

func seedOpenEntry(t *testing.T, w testWorld, start, end time.Time) models.WaitlistEntry {
	t.Helper()
	entry := models.WaitlistEntry{
		OwnerID:     w.owner.ID,
		LocationID:  w.loc.ID,
		ServiceType: models.ServiceBoarding,
		Status:      models.WaitlistOpen,
		StartDate:   start,
		EndDate:     end,
		PetIDs:      models.EncodeIDs(w.petIDs()),
	}
	require.NoError(t, w.db.Create(&entry).Error)
	return entry
}
