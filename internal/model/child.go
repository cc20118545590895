package model

// swagger:model Child
type Child struct {
	UUIDBase
	CaregiverID uint   `gorm:"index;type:bigint unsigned" json:"caregiverId"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Age         int    `gorm:"default:0" json:"age"`
	Diagnosis   string `gorm:"size:255" json:"diagnosis"`
	Notes       string `gorm:"type:text" json:"notes"`
}

func (Child) TableName() string {
	return "children"
}
