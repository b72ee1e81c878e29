package model

import "gorm.io/gorm"

// AutoMigrate выполняет миграцию всех сущностей финансового ядра бронирований.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&TravelPlan{},
		&Booking{},
		&Guest{},
		&PartialPayment{},
		&Payout{},
		&Event{},
	)
}
