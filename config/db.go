package config

import (
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"kennel-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func envOrDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// SeedDatabase fills reference data on an empty schema: default manager,
// account settings, locations, lodging types and capacity rules.
func SeedDatabase() {
	// ---------------- Staff ----------------
	var staffCount int64
	DB.Model(&models.Staff{}).Count(&staffCount)
	if staffCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(envOrDefault("MANAGER_PASSWORD", "manager123")), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("warning: failed to hash default manager password: %v", err)
		} else {
			manager := models.Staff{
				FullName: "Default Manager",
				Username: "manager@kennel.local",
				Password: string(hash),
				Role:     models.RoleManager,
			}
			if err := DB.Create(&manager).Error; err != nil {
				log.Printf("warning: failed to create default manager: %v", err)
			} else {
				log.Println("Default manager seeded")
			}
		}
	}

	// ---------------- Account settings ----------------
	var settingCount int64
	DB.Model(&models.AccountSetting{}).Count(&settingCount)
	if settingCount == 0 {
		setting := models.AccountSetting{
			DefaultHoldMinutes: 240,
			ReminderLeadHours:  2,
			PromotionStatus:    string(models.StatusConfirmed),
		}
		if err := DB.Create(&setting).Error; err != nil {
			log.Printf("warning: failed to seed account settings: %v", err)
		} else {
			log.Println("Account settings seeded")
		}
	}

	// ---------------- Lodging types ----------------
	var ltCount int64
	DB.Model(&models.LodgingType{}).Count(&ltCount)
	if ltCount == 0 {
		lodgingTypes := []models.LodgingType{
			{Name: "Standard Kennel", Description: "Standard indoor kennel"},
			{Name: "Large Run", Description: "Indoor/outdoor run for large dogs"},
			{Name: "Suite", Description: "Private suite with webcam"},
			{Name: "Cattery", Description: "Cat condo section"},
		}
		DB.Create(&lodgingTypes)
		log.Println("Lodging types seeded")
	}

	// ---------------- Locations + capacity rules ----------------
	var locCount int64
	DB.Model(&models.Location{}).Count(&locCount)
	if locCount == 0 {
		loc := models.Location{Name: "Main Facility", Timezone: "America/Denver"}
		if err := DB.Create(&loc).Error; err != nil {
			log.Printf("warning: failed to seed location: %v", err)
		} else {
			waitlistCap := 50
			rules := []models.CapacityRule{
				{LocationID: loc.ID, ServiceType: models.ServiceBoarding, MaxActive: 40, WaitlistLimit: &waitlistCap},
				{LocationID: loc.ID, ServiceType: models.ServiceDaycare, MaxActive: 25},
				{LocationID: loc.ID, ServiceType: models.ServiceGrooming, MaxActive: 6},
			}
			if err := DB.Create(&rules).Error; err != nil {
				log.Printf("warning: failed to seed capacity rules: %v", err)
			} else {
				log.Println("Location and capacity rules seeded")
			}
		}
	}
}

func mysqlDSNFromURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode())
	return dsn, dbName, nil
}

func resolveMySQLDSN() (string, string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, strings.TrimSpace(os.Getenv("DB_NAME")), nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "kennel_db")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName,
	)
	return dsn, dbName, nil
}

// ensureOpenEntryConstraint installs the stored generated column + unique
// index enforcing "one open waitlist entry per (owner, service, span)".
// AutoMigrate cannot express a status-scoped unique index, so this runs as
// raw DDL; skipped when the column already exists.
func ensureOpenEntryConstraint(sqlDB *sql.DB, dbName string) {
	if dbName == "" {
		log.Println("info: db name unknown, skipping open-entry constraint check")
		return
	}

	var count int
	err := sqlDB.QueryRow(`
SELECT COUNT(*)
FROM information_schema.COLUMNS
WHERE TABLE_SCHEMA = ? AND TABLE_NAME = 'waitlist_entries' AND COLUMN_NAME = 'open_uniq';
`, dbName).Scan(&count)
	if err != nil {
		log.Printf("info: error querying information_schema for open_uniq: %v", err)
		return
	}
	if count > 0 {
		return
	}

	if _, err := sqlDB.Exec(`
ALTER TABLE waitlist_entries
ADD COLUMN open_uniq VARCHAR(191)
GENERATED ALWAYS AS (
  CASE WHEN status = 'open' AND deleted_at IS NULL
  THEN CONCAT(owner_id, ':', service_type, ':', DATE_FORMAT(start_date, '%Y-%m-%d'), ':', DATE_FORMAT(end_date, '%Y-%m-%d'))
  ELSE NULL END
) STORED;
`); err != nil {
		log.Printf("warning: failed to add open_uniq column: %v", err)
		return
	}

	if _, err := sqlDB.Exec(`CREATE UNIQUE INDEX uniq_open_entry ON waitlist_entries (open_uniq);`); err != nil {
		log.Printf("warning: failed to create uniq_open_entry index: %v", err)
		return
	}

	log.Println("info: open-entry uniqueness constraint installed")
}

func ConnectDatabase() error {
	dsn, dbName, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return err
	}

	DB = db

	// AutoMigrate in parent->child order
	if err := DB.AutoMigrate(
		&models.Staff{},
		&models.AccountSetting{},
		&models.Location{},
		&models.LodgingType{},
		&models.Owner{},
		&models.Pet{},
		&models.CapacityRule{},
		&models.WaitlistEntry{},
		&models.Reservation{},
		&models.ConfirmationToken{},
	); err != nil {
		return err
	}

	// Raw DDL the migrator can't express.
	if sqlDB, dbErr := db.DB(); dbErr == nil {
		ensureOpenEntryConstraint(sqlDB, dbName)
	} else {
		log.Printf("info: cannot get raw sql.DB: %v", dbErr)
	}

	SeedDatabase()
	return nil
}
