package controllers

import (
	"errors"
	"log"
	"net/http"

	"pms/src/db"
	"pms/src/models"
	"pms/src/types"
	"pms/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegisterUser creates a new account. The role defaults to customer;
// operator and admin accounts are provisioned by an admin.
func RegisterUser(ctx *gin.Context) (user *models.User, status int, err error) {
	var body types.RegisterUserRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	role := body.Role
	if role == "" {
		role = types.ROLE_CUSTOMER
	}
	if role != types.ROLE_CUSTOMER {
		if ctx.GetString("role") != types.ROLE_ADMIN {
			return nil, http.StatusForbidden, errors.New("only admins may create staff accounts")
		}
	}
	hash, err := utils.HashPassword(body.Password)
	if err != nil {
		log.Printf("Could not hash password: %s\n", err.Error())
		return nil, http.StatusInternalServerError, err
	}

	newUser := models.User{
		Name:         body.Name,
		Email:        body.Email,
		PasswordHash: hash,
		Role:         role,
		UID:          uuid.NewString(),
	}
	db := db.GetDb()
	if err := db.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where(&models.User{Email: body.Email}).First(&existing).Error
		if err == nil {
			return errors.New("email is already registered")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&newUser).Error
	}); err != nil {
		return nil, http.StatusBadRequest, err
	}
	return &newUser, http.StatusCreated, nil
}

func LoginUser(ctx *gin.Context) (token *string, status int, err error) {
	var body types.LoginUserRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	var user models.User
	db := db.GetDb()
	if err := db.Where(&models.User{Email: body.Email}).First(&user).Error; err != nil {
		log.Printf("Login failed for [%s]: %s\n", body.Email, err.Error())
		return nil, http.StatusUnauthorized, errors.New("invalid credentials")
	}
	if !utils.VerifyPassword(user.PasswordHash, body.Password) {
		return nil, http.StatusUnauthorized, errors.New("invalid credentials")
	}
	jwt, err := utils.GenerateJWT(user.Email, user.ID, user.Role)
	if err != nil {
		log.Printf("Could not sign token: %s\n", err.Error())
		return nil, http.StatusInternalServerError, err
	}
	return &jwt, http.StatusOK, nil
}
