package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Document number series. Numbers are the prefix plus a 5-digit zero-padded
// suffix (ORC00001, VND00042) and are assigned exactly once, inside the
// transaction that first persists the document. A unique index on the number
// column plus bounded retry on conflict keeps concurrent creations from
// sharing a suffix.
const (
	QuoteNumberPrefix = "ORC"
	SaleNumberPrefix  = "VND"

	numberRetries = 3
)

// nextNumber returns the next number in the series for model's table. Must
// run inside the transaction that will persist the numbered row.
func nextNumber(tx *gorm.DB, model interface{}, prefix string) (string, error) {
	var maxSuffix int64
	err := tx.Model(model).
		Select(fmt.Sprintf("COALESCE(MAX(CAST(SUBSTR(number, %d) AS INTEGER)), 0)", len(prefix)+1)).
		Scan(&maxSuffix).Error
	if err != nil {
		return "", fmt.Errorf("read %s series: %w", prefix, err)
	}
	return fmt.Sprintf("%s%05d", prefix, maxSuffix+1), nil
}

// isUniqueViolation matches duplicate-key failures across sqlite and postgres.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
