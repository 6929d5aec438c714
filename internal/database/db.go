package database

import (
	"log"
	"os"
	"time"

	"github.com/chenlehua/tara-sub000/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(dsn string) {
	var err error

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		log.Printf("trying to connect to DB (attempt %d/%d)...", i, maxAttempts)

		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			log.Println("connected to DB successfully")
			break
		}

		log.Printf("failed to connect to DB: %v", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Fatalf("failed to connect to db after %d attempts: %v", maxAttempts, err)
	}

	// миграции
	err = DB.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Document{},
		&models.Asset{},
		&models.Threat{},
		&models.RiskRecord{},
		&models.ControlMeasure{},
		&models.Report{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	createDefaultAdmin()
	seedDefaultUsers()
	seedMeasureCatalog()
}

// админ только из кода/конфига
func createDefaultAdmin() {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin@tara.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "Admin123!"
	}

	var count int64
	if err := DB.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		log.Printf("failed to check admin user: %v", err)
		return
	}
	if count > 0 {
		// админ уже есть — ничего не делаем
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("failed to hash default admin password: %v", err)
		return
	}

	admin := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}

	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("failed to create default admin: %v", err)
		return
	}

	log.Printf("created default admin user: %s", username)
}

// пара тестовых аккаунтов для демо (analyst и viewer)
func seedDefaultUsers() {
	type seedUser struct {
		Username string
		Password string
		Role     models.UserRole
	}

	users := []seedUser{
		{
			Username: "analyst@tara.local",
			Password: "Analyst123!",
			Role:     models.RoleAnalyst,
		},
		{
			Username: "viewer@tara.local",
			Password: "Viewer123!",
			Role:     models.RoleViewer,
		},
	}

	for _, u := range users {
		var count int64
		if err := DB.Model(&models.User{}).
			Where("username = ?", u.Username).
			Count(&count).Error; err != nil {
			log.Printf("failed to check seed user %s: %v", u.Username, err)
			continue
		}
		if count > 0 {
			// уже есть — пропускаем
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("failed to hash password for %s: %v", u.Username, err)
			continue
		}

		user := models.User{
			Username:     u.Username,
			PasswordHash: string(hash),
			Role:         u.Role,
		}

		if err := DB.Create(&user).Error; err != nil {
			log.Printf("failed to create seed user %s: %v", u.Username, err)
			continue
		}

		log.Printf("created seed user: %s (role=%s)", u.Username, u.Role)
	}
}

// стартовый каталог мер защиты по категориям STRIDE
func seedMeasureCatalog() {
	measures := []models.ControlMeasure{
		{Code: "M-SEC-01", Name: "Аутентификация сообщений бортовой сети (SecOC)",
			Standard: "AUTOSAR SecOC / ISO 21434", ThreatCategory: "spoofing",
			Description: "MAC на критичных кадрах CAN/Ethernet со счётчиком свежести"},
		{Code: "M-SEC-02", Name: "Подписанные обновления и защищённая загрузка",
			Standard: "UNECE R156", ThreatCategory: "tampering",
			Description: "Проверка подписи прошивки на каждом старте и при обновлении"},
		{Code: "M-SEC-03", Name: "Защищённый журнал событий безопасности",
			Standard: "ISO/SAE 21434", ThreatCategory: "repudiation",
			Description: "Неизменяемый журнал диагностических и сервисных операций"},
		{Code: "M-SEC-04", Name: "Шифрование данных в хранении и при передаче",
			Standard: "ISO/SAE 21434", ThreatCategory: "information_disclosure",
			Description: "TLS для внешних каналов, шифрование персональных данных"},
		{Code: "M-SEC-05", Name: "Фильтрация и ограничение частоты на шлюзе",
			Standard: "UNECE R155", ThreatCategory: "denial_of_service",
			Description: "Ограничение частоты кадров и фильтрация межсегментного трафика"},
		{Code: "M-SEC-06", Name: "Контроль доступа к диагностическим сервисам",
			Standard: "ISO 14229 / ISO 21434", ThreatCategory: "elevation_of_privilege",
			Description: "Security Access (0x27/0x29), минимизация привилегий сервисов UDS"},
	}

	for _, m := range measures {
		var count int64
		if err := DB.Model(&models.ControlMeasure{}).
			Where("code = ?", m.Code).
			Count(&count).Error; err != nil {
			log.Printf("failed to check measure %s: %v", m.Code, err)
			continue
		}
		if count > 0 {
			continue
		}
		if err := DB.Create(&m).Error; err != nil {
			log.Printf("failed to seed measure %s: %v", m.Code, err)
		}
	}
}
