package repository

import (
	"context"
	"errors"
	"strconv"

	"study_planner_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.Preload("Mentor").First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByLoginID(loginID string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("login_id = ?", loginID).First(&user).Error
	return &user, err
}

// FindMentees lists the mentees assigned to mentorID, oldest account first.
func (r *UserRepository) FindMentees(mentorID uint) ([]model.User, error) {
	var users []model.User
	err := r.DB.Where("mentor_id = ? AND role = ?", mentorID, model.Mentee).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

// Manages implements the planner roster on top of users.mentor_id.
func (r *UserRepository) Manages(ctx context.Context, mentorID, menteeID string) (bool, error) {
	mid, err := strconv.ParseUint(mentorID, 10, 64)
	if err != nil {
		return false, nil
	}
	eid, err := strconv.ParseUint(menteeID, 10, 64)
	if err != nil {
		return false, nil
	}
	var count int64
	err = r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND mentor_id = ? AND role = ?", eid, mid, model.Mentee).
		Count(&count).Error
	return count > 0, err
}

// Upsert creates the user or refreshes its profile and password by login id.
func (r *UserRepository) Upsert(user *model.User) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "login_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "password", "role", "mentor_id", "updated_at"}),
	}).Create(user).Error
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
