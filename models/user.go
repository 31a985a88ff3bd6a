package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/regulens/synapse_backend/config"
	"github.com/regulens/synapse_backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID          int        `gorm:"primary_key" json:"id"`
	Username    string     `gorm:"size:100;not null;unique" json:"username" binding:"required"`
	Name        string     `gorm:"size:100;not null" json:"name" binding:"required"`
	Email       *string    `gorm:"size:100;unique" json:"email"`
	Phone       string     `gorm:"size:20" json:"phone"`
	Password    string     `gorm:"size:255;not null" json:"password"`
	IsActive    *bool      `gorm:"not null" json:"is_active"`
	Role        UserRole   `gorm:"size:20;not null" json:"role"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string   `json:"username" binding:"required"`
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Password string   `json:"password" binding:"required"`
	Role     UserRole `json:"role" binding:"required"`
}

/*
caches:
	User:$username
*/

func (user User) RemoveInstanceRedis() error {
	if err := config.RemoveRedisKey("User:" + user.Username); err != nil {
		return err
	}
	return nil
}

type LoginInfo struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (result *User) PrepareGive() {
	result.Password = ""
}

func (input *NewUser) validate(ctx context.Context, id int) error {
	if !input.Role.Valid() {
		return NewBusinessError("invalid role")
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return NewBusinessError("invalid email")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return NewBusinessError("invalid phone number")
		}
	}
	if err := utils.ValidateUnique[User](ctx, "username", input.Username, id); err != nil {
		return NewBusinessError(err.Error())
	}
	return nil
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		Username: input.Username,
		Name:     input.Name,
		Email:    utils.NilOrElse(input.Email == "", input.Email),
		Phone:    input.Phone,
		Password: string(hashed),
		IsActive: utils.NewTrue(),
		Role:     input.Role,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	user.PrepareGive()
	return &user, nil
}

func Login(ctx context.Context, username string, password string) (*LoginInfo, error) {

	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New("invalid username or password")
		}
		return nil, err
	}

	if err := utils.ComparePassword(user.Password, password); err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return nil, errors.New("invalid username or password")
		}
		return nil, err
	}
	if !*user.IsActive {
		return nil, errors.New("user is disabled")
	}

	token, err := utils.JwtGenerate(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	if err := db.WithContext(ctx).Model(&User{}).Where("id = ?", user.ID).
		UpdateColumn("last_login_at", time.Now()).Error; err != nil {
		return nil, err
	}

	// cache the user for the token lifespan so auth middleware skips the DB
	token_lifespan, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err == nil {
		_ = config.SetRedisObject("User:"+user.Username, &user, time.Duration(token_lifespan)*time.Hour)
	}

	return &LoginInfo{
		Token: token,
		Name:  user.Name,
		Role:  string(user.Role),
	}, nil
}

// GetUserById retrieves a user from redis or db.
func GetUserById(ctx context.Context, id int) (*User, error) {
	var user User
	exists, err := config.GetRedisObject("UserId:"+fmt.Sprint(id), &user)
	if err != nil {
		return nil, err
	}
	if !exists {
		db := config.GetDB()
		if err := db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Take(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, utils.ErrorRecordNotFound
			}
			return nil, err
		}
		if err := config.SetRedisObject("UserId:"+fmt.Sprint(id), &user, utils.GetCacheLifespan()); err != nil {
			return nil, err
		}
	}
	return &user, nil
}

func GetUsers(ctx context.Context) ([]*User, error) {
	users, err := utils.FetchAllModels[User](ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		u.PrepareGive()
	}
	return users, nil
}

func ToggleActiveUser(ctx context.Context, id int, isActive bool) (*User, error) {
	db := config.GetDB()
	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(user).UpdateColumn("IsActive", isActive).Error; err != nil {
		return nil, err
	}
	if err := user.RemoveInstanceRedis(); err != nil {
		return nil, err
	}
	user.PrepareGive()
	return user, nil
}
