package service

import (
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	Repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{Repo: repo}
}

func (s *UserService) GetUser(id uint) (*model.User, error) {
	return s.Repo.FindByID(id)
}

func (s *UserService) ListUsers(f repository.UserFilter) ([]model.User, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	return s.Repo.List(f)
}

type UserUpdateReq struct {
	Name         *string         `json:"name"`
	Role         *model.UserRole `json:"role"`
	DepartmentID *uint           `json:"departmentId"`
	RollNumber   *string         `json:"rollNumber"`
}

func (s *UserService) UpdateUser(id uint, req UserUpdateReq) (*model.User, error) {
	user, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.DepartmentID != nil {
		user.DepartmentID = req.DepartmentID
	}
	if req.RollNumber != nil {
		user.RollNumber = *req.RollNumber
	}

	if err := s.Repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(id uint) error {
	return s.Repo.Delete(id)
}

func (s *UserService) SetDisabled(id uint, disabled bool) error {
	return s.Repo.SetDisabled(id, disabled)
}

func (s *UserService) ResetPassword(id uint, newPassword string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(id, string(hashed))
}
