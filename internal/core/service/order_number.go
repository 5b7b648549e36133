package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber returns a number like ORD-20260829-3FA85F64: a
// calendar-date component plus an opaque suffix. Collisions are
// possible; the unique index on orders catches them and the checkout
// retries with a fresh number.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}
