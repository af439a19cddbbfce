package model

// ReservationRow is one line of the reservation sheet. Every cell is kept as
// text, the way the sheet stores it; conversion happens in the store layer.
type ReservationRow struct {
	Position      int    `gorm:"primaryKey;autoIncrement:false"` // Sheet order
	ID            string `gorm:"column:id;size:32;not null;index"`
	Applicant     string `gorm:"size:128;not null"`
	EquipmentTask string `gorm:"size:512;not null"`
	Date          string `gorm:"size:32;not null"`
	Time          string `gorm:"size:16;not null"`
	Duration      string `gorm:"size:16;not null"`
	Password      string `gorm:"size:128;not null"`
	Status        string `gorm:"size:16;not null;index"`
}
