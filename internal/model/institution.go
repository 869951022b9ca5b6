package model

// swagger:model Institution
type Institution struct {
	BaseModel
	Name    string `gorm:"size:255;not null" json:"name"`
	Code    string `gorm:"size:50;unique;not null" json:"code"`
	Address string `gorm:"type:text" json:"address"`
	Active  bool   `gorm:"default:true" json:"active"`
}

func (Institution) TableName() string {
	return "institutions"
}

// swagger:model Department
type Department struct {
	BaseModel
	InstitutionID uint   `gorm:"index;not null" json:"institutionId"`
	Name          string `gorm:"size:255;not null" json:"name"`
	Code          string `gorm:"size:50;not null" json:"code"`
}

func (Department) TableName() string {
	return "departments"
}
