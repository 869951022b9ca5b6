package service

import (
	"errors"

	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"

	"gorm.io/gorm"
)

type InstitutionService struct {
	InstitutionRepo *repository.InstitutionRepository
	DepartmentRepo  *repository.DepartmentRepository
}

func NewInstitutionService(ir *repository.InstitutionRepository, dr *repository.DepartmentRepository) *InstitutionService {
	return &InstitutionService{InstitutionRepo: ir, DepartmentRepo: dr}
}

type InstitutionCreateReq struct {
	Name    string `json:"name" binding:"required"`
	Code    string `json:"code" binding:"required"`
	Address string `json:"address"`
}

func (s *InstitutionService) CreateInstitution(req InstitutionCreateReq) (*model.Institution, error) {
	if _, err := s.InstitutionRepo.FindByCode(req.Code); err == nil {
		return nil, util.ErrInstitutionCodeTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	inst := &model.Institution{
		Name:    req.Name,
		Code:    req.Code,
		Address: req.Address,
		Active:  true,
	}
	if err := s.InstitutionRepo.Create(inst); err != nil {
		return nil, err
	}
	return inst, nil
}

func (s *InstitutionService) GetInstitution(id uint) (*model.Institution, error) {
	inst, err := s.InstitutionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInstitutionNotFound
		}
		return nil, err
	}
	return inst, nil
}

func (s *InstitutionService) ListInstitutions(page, limit int) ([]model.Institution, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	return s.InstitutionRepo.List(page, limit)
}

type InstitutionUpdateReq struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Active  *bool   `json:"active"`
}

func (s *InstitutionService) UpdateInstitution(id uint, req InstitutionUpdateReq) (*model.Institution, error) {
	inst, err := s.GetInstitution(id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		inst.Name = *req.Name
	}
	if req.Address != nil {
		inst.Address = *req.Address
	}
	if req.Active != nil {
		inst.Active = *req.Active
	}
	if err := s.InstitutionRepo.Update(inst); err != nil {
		return nil, err
	}
	return inst, nil
}

type DepartmentCreateReq struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
}

func (s *InstitutionService) CreateDepartment(institutionID uint, req DepartmentCreateReq) (*model.Department, error) {
	if _, err := s.GetInstitution(institutionID); err != nil {
		return nil, err
	}
	dept := &model.Department{
		InstitutionID: institutionID,
		Name:          req.Name,
		Code:          req.Code,
	}
	if err := s.DepartmentRepo.Create(dept); err != nil {
		return nil, err
	}
	return dept, nil
}

func (s *InstitutionService) ListDepartments(institutionID uint) ([]model.Department, error) {
	return s.DepartmentRepo.ListByInstitution(institutionID)
}

func (s *InstitutionService) DeleteDepartment(institutionID, departmentID uint) error {
	dept, err := s.DepartmentRepo.FindByID(departmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrDepartmentNotFound
		}
		return err
	}
	if dept.InstitutionID != institutionID {
		return util.ErrDepartmentNotFound
	}
	return s.DepartmentRepo.Delete(departmentID)
}
