package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/noel1334/ums-backend-sub003/models"
	"gorm.io/gorm"
)

const referenceSuffixLength = 10
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateUniqueReference produces a globally unique payment reference
// (prefix HB, checked against existing receipts). The unique constraint
// on payment_receipts.reference is the final arbiter for races.
func GenerateUniqueReference(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, referenceSuffixLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		reference := fmt.Sprintf("HB-%s", string(b))

		var receipt models.PaymentReceipt
		err := tx.Where("reference = ?", reference).First(&receipt).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return reference, nil
			}
			return "", err
		}
	}
}
