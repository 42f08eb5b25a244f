package auth

import (
	"errors"

	"github.com/genypos/api/internal/enum"
	"golang.org/x/crypto/bcrypt"
)

var ErrMismatch = errors.New("credentials do not match")

// HashSecret hashes a staff password or console passphrase.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckSecret compares secret against a stored bcrypt hash. Any failure,
// including a malformed hash, is reported as ErrMismatch.
func CheckSecret(hash, secret string) error {
	if hash == "" {
		return ErrMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		return ErrMismatch
	}
	return nil
}

// IsConsoleRole reports whether role signs in by passphrase.
func IsConsoleRole(role string) bool {
	switch role {
	case enum.RoleAdmin, enum.RoleKitchen, enum.RoleMG:
		return true
	}
	return false
}

// PassphraseSetting is the app setting key holding a console role's
// passphrase hash, or "" for roles without one.
func PassphraseSetting(role string) string {
	switch role {
	case enum.RoleAdmin:
		return enum.SettingAdminPassphrase
	case enum.RoleKitchen:
		return enum.SettingKitchenPassphrase
	case enum.RoleMG:
		return enum.SettingMGPassphrase
	}
	return ""
}

// IsPassphraseSetting reports whether key stores a passphrase hash.
func IsPassphraseSetting(key string) bool {
	switch key {
	case enum.SettingAdminPassphrase, enum.SettingKitchenPassphrase, enum.SettingMGPassphrase:
		return true
	}
	return false
}
