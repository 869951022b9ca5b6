package repository

import (
	"exam_portal_backend/internal/model"

	"gorm.io/gorm"
)

type InstitutionRepository struct {
	DB *gorm.DB
}

func NewInstitutionRepository(db *gorm.DB) *InstitutionRepository {
	return &InstitutionRepository{DB: db}
}

func (r *InstitutionRepository) Create(inst *model.Institution) error {
	return r.DB.Create(inst).Error
}

func (r *InstitutionRepository) FindByID(id uint) (*model.Institution, error) {
	var inst model.Institution
	err := r.DB.First(&inst, id).Error
	return &inst, err
}

func (r *InstitutionRepository) FindByCode(code string) (*model.Institution, error) {
	var inst model.Institution
	err := r.DB.Where("code = ?", code).First(&inst).Error
	return &inst, err
}

func (r *InstitutionRepository) Update(inst *model.Institution) error {
	return r.DB.Save(inst).Error
}

func (r *InstitutionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Institution{}, id).Error
}

func (r *InstitutionRepository) List(page, limit int) ([]model.Institution, int64, error) {
	var total int64
	if err := r.DB.Model(&model.Institution{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var insts []model.Institution
	offset := (page - 1) * limit
	err := r.DB.Order("created_at desc").Offset(offset).Limit(limit).Find(&insts).Error
	return insts, total, err
}

type DepartmentRepository struct {
	DB *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{DB: db}
}

func (r *DepartmentRepository) Create(dept *model.Department) error {
	return r.DB.Create(dept).Error
}

func (r *DepartmentRepository) FindByID(id uint) (*model.Department, error) {
	var dept model.Department
	err := r.DB.First(&dept, id).Error
	return &dept, err
}

func (r *DepartmentRepository) Update(dept *model.Department) error {
	return r.DB.Save(dept).Error
}

func (r *DepartmentRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Department{}, id).Error
}

func (r *DepartmentRepository) ListByInstitution(institutionID uint) ([]model.Department, error) {
	var depts []model.Department
	err := r.DB.Where("institution_id = ?", institutionID).Order("name asc").Find(&depts).Error
	return depts, err
}
