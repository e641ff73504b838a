package mysql

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"kama_chat_client/internal/model"
	"kama_chat_client/pkg/errorx"
)

// userRow user_account 表
type userRow struct {
	UUID         string    `gorm:"column:uuid;primaryKey;size:64"`
	Email        string    `gorm:"column:email;uniqueIndex;size:255;not null"`
	FullName     string    `gorm:"column:full_name;size:64"`
	Bio          string    `gorm:"column:bio;size:255"`
	ProfilePic   string    `gorm:"column:profile_pic;type:mediumtext"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;index"`
}

func (userRow) TableName() string { return "user_account" }

func (r userRow) account() model.Account {
	return model.Account{
		User: model.User{
			ID:         r.UUID,
			Email:      r.Email,
			FullName:   r.FullName,
			Bio:        r.Bio,
			ProfilePic: r.ProfilePic,
		},
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

// Create 创建账号，邮箱统一转小写
func (r *userRepository) Create(account *model.Account) error {
	row := userRow{
		UUID:         account.ID,
		Email:        strings.ToLower(strings.TrimSpace(account.Email)),
		FullName:     account.FullName,
		Bio:          account.Bio,
		ProfilePic:   account.ProfilePic,
		PasswordHash: account.PasswordHash,
		CreatedAt:    account.CreatedAt,
	}
	if err := r.db.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errorx.New(errorx.CodeUserExist, "Account already exists")
		}
		return wrapDBError(err, "创建用户")
	}
	return nil
}

// FindByEmail 按邮箱查找用户
func (r *userRepository) FindByEmail(email string) (*model.Account, error) {
	var row userRow
	email = strings.ToLower(strings.TrimSpace(email))
	if err := r.db.First(&row, "email = ?", email).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 email=%s", email)
	}
	a := row.account()
	return &a, nil
}

// FindByID 按 UUID 查找用户
func (r *userRepository) FindByID(id string) (*model.Account, error) {
	var row userRow
	if err := r.db.First(&row, "uuid = ?", id).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 uuid=%s", id)
	}
	a := row.account()
	return &a, nil
}

// FindAllExcept 查找除指定用户外的所有用户
func (r *userRepository) FindAllExcept(excludeID string) ([]model.Account, error) {
	var rows []userRow
	if err := r.db.Where("uuid != ?", excludeID).Order("created_at, uuid").Find(&rows).Error; err != nil {
		return nil, wrapDBError(err, "查询用户列表")
	}
	out := make([]model.Account, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.account())
	}
	return out, nil
}

// UpdateProfile 更新名字和简介，pic 非空时同时更新头像
// MySQL 在值未变化时影响行数为 0，所以先查存在性
func (r *userRepository) UpdateProfile(id, fullName, bio, pic string) (*model.Account, error) {
	if _, err := r.FindByID(id); err != nil {
		return nil, err
	}
	updates := map[string]any{
		"full_name": fullName,
		"bio":       bio,
	}
	if pic != "" {
		updates["profile_pic"] = pic
	}
	if err := r.db.Model(&userRow{}).Where("uuid = ?", id).Updates(updates).Error; err != nil {
		return nil, wrapDBErrorf(err, "更新用户 uuid=%s", id)
	}
	return r.FindByID(id)
}
