package utils

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

func ProcessValidationErrors(err error) map[string]string {

	validationErrors := err.(validator.ValidationErrors)

	errorResponse := make(map[string]string)

	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

// SafeDiv returns a/b, or zero when b is zero. Currency math throughout the
// calculators substitutes zero instead of failing on a missing rate.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// DecimalOrOne treats a zero/unset conversion rate or factor as one.
func DecimalOrOne(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.NewFromInt(1)
	}
	return d
}

// ParseIdList accepts a JSON array ("[1,2]"), a comma-separated string
// ("1, 2") or an already-typed []int and returns the ids.
func ParseIdList(input any) []int {
	switch v := input.(type) {
	case []int:
		return v
	case []any:
		ids := make([]int, 0, len(v))
		for _, entry := range v {
			switch n := entry.(type) {
			case float64:
				ids = append(ids, int(n))
			case string:
				if id, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
					ids = append(ids, id)
				}
			}
		}
		return ids
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		var parsed []int
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			return parsed
		}
		var ids []int
		for _, part := range strings.Split(trimmed, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if id, err := strconv.Atoi(part); err == nil {
				ids = append(ids, id)
			}
		}
		return ids
	default:
		return nil
	}
}
