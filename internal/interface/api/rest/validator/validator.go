package validator

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"filevault-api/internal/application/services"
	"filevault-api/internal/domain/file"
	"filevault-api/internal/interface/api/rest/dto/auth"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt safe
)

func IsUUID(s string) (bool, uuid.UUID) {
	id, err := uuid.Parse(s)
	return err == nil, id
}

func ValidateLogin(r auth.LoginRequest) map[string]string {
	errs := make(map[string]string)

	email := strings.ToLower(strings.TrimSpace(r.Email))

	if email == "" {
		errs["email"] = "email is required"
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "invalid email format"
	}

	if strings.TrimSpace(r.Password) == "" {
		errs["password"] = "password is required"
	} else if l := utf8.RuneCountInString(r.Password); l < minPasswordLen || l > maxPasswordLen {
		errs["password"] = "password length must be 8-72 characters"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func ValidateSignup(r auth.SignupRequest) map[string]string {
	errs := make(map[string]string)

	email := strings.ToLower(strings.TrimSpace(r.Email))
	name := strings.TrimSpace(r.Name)

	if email == "" {
		errs["email"] = "email is required"
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "invalid email format"
	}

	if name == "" {
		errs["name"] = "name is required"
	} else if l := utf8.RuneCountInString(name); l < 2 || l > 64 {
		errs["name"] = "name length must be 2-64 characters"
	}

	if strings.TrimSpace(r.Password) == "" {
		errs["password"] = "password is required"
	} else if l := utf8.RuneCountInString(r.Password); l < minPasswordLen || l > maxPasswordLen {
		errs["password"] = "password length must be 8-72 characters"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateListQuery normalizes the list-view query parameters, falling back
// to sensible defaults for absent values.
func ValidateListQuery(category, sortKey, sortOrder string) (string, services.SortKey, services.SortOrder, string) {
	if category == "" {
		category = "all"
	}
	if !file.ValidCategory(category) {
		return "", "", "", "category must be one of all, images, videos, documents, others"
	}

	key := services.SortKey(sortKey)
	switch key {
	case "":
		key = services.SortByDate
	case services.SortByName, services.SortBySize, services.SortByDate, services.SortByCategory:
	default:
		return "", "", "", "sort must be one of name, size, date, category"
	}

	order := services.SortOrder(sortOrder)
	switch order {
	case "":
		order = services.SortDesc
	case services.SortAsc, services.SortDesc:
	default:
		return "", "", "", "order must be asc or desc"
	}

	return category, key, order, ""
}
