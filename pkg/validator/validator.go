package validator

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	errprocess "ping_chat_service/pkg/err"
)

const (
	// MaxContentLength message content 上限 (rune)
	MaxContentLength = 2000
	minNameLength    = 2
	maxNameLength    = 50
)

// Validator input validation for member and message requests
type Validator struct{}

// New create a Validator
func New() *Validator {
	return &Validator{}
}

// ValidateName 2~50 字元
func (v *Validator) ValidateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < minNameLength || n > maxNameLength {
		return errprocess.Validation("name must be between 2 and 50 characters")
	}
	return nil
}

// ValidateEmail email format
func (v *Validator) ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errprocess.Validation("invalid email address")
	}
	return nil
}

// ValidateGender empty or MALE / FEMALE
func (v *Validator) ValidateGender(gender string) error {
	switch gender {
	case "", "MALE", "FEMALE":
		return nil
	default:
		return errprocess.Validation("gender must be MALE or FEMALE")
	}
}

// ValidateRegister name, email, gender (password 強度由 encrypt 檢查)
func (v *Validator) ValidateRegister(name, email, gender string) error {
	if err := v.ValidateName(name); err != nil {
		return err
	}
	if err := v.ValidateEmail(email); err != nil {
		return err
	}
	return v.ValidateGender(gender)
}

// ValidateContent non blank and within MaxContentLength
func (v *Validator) ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errprocess.Validation("content cannot be empty")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return errprocess.Validation("content exceeds maximum length of 2000 characters")
	}
	return nil
}

// ValidateMessage sender, recipient and content
func (v *Validator) ValidateMessage(senderID, recipientID, content string) error {
	if strings.TrimSpace(senderID) == "" {
		return errprocess.Validation("senderId is required")
	}
	if strings.TrimSpace(recipientID) == "" {
		return errprocess.Validation("recipientId is required")
	}
	return v.ValidateContent(content)
}
