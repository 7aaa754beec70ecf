package model

type Personality struct {
	Id        string `gorm:"type:varchar(64);primaryKey"`
	Name      string `gorm:"type:varchar(255);not null"`
	NameKey   string `gorm:"type:varchar(255);not null;default:''"`
	Details   string `gorm:"type:text;not null"`
	IsDefault bool   `gorm:"not null;default:false"`
}

func (Personality) TableName() string {
	return "personalities"
}
