package models

import "gorm.io/gorm"

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Pet{},
		&MedicalRecord{},
		&Vaccine{},
		&Category{},
		&Product{},
		&StockMovement{},
		&Order{},
		&OrderItem{},
		&Payment{},
		&Membership{},
		&Appointment{},
		&Notification{},
		&ChatRoom{},
		&ChatMessage{},
	)
}
