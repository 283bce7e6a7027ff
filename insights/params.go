package insights

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// CityParams selects the city a view is computed for.
type CityParams struct {
	City string `param:"city" validate:"required"`
}

// StarParams selects the minimum review rating of the feedback view.
type StarParams struct {
	MinStar int `param:"min_star" validate:"min=1,max=5"`
}

// CategoryParams selects one category.
type CategoryParams struct {
	Category string `param:"category" validate:"required"`
}

// BusinessParams selects one business.
type BusinessParams struct {
	BusinessID string `param:"business_id" validate:"required"`
}

// Availability values accepted by Recommend.
const (
	AvailabilityOpen   = "open"
	AvailabilityClosed = "closed"
)

// DefaultMaxReviews is the upper review_count bound of Recommend when
// none is given.
const DefaultMaxReviews = 99999

// RecommendParams filters the recommendation view. Zero values of the
// optional fields do not filter; MaxReviews 0 means DefaultMaxReviews.
type RecommendParams struct {
	City         string `param:"city" validate:"required"`
	Category     string `param:"category"`
	Availability string `param:"availability" validate:"omitempty,oneof=open closed"`
	MinReviews   int    `param:"min_reviews" validate:"min=0"`
	MaxReviews   int    `param:"max_reviews" validate:"min=0"`
}

func (p RecommendParams) maxReviews() int {
	if p.MaxReviews == 0 {
		return DefaultMaxReviews
	}
	return p.MaxReviews
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name := f.Tag.Get("param"); name != "" {
				return name
			}
			return f.Name
		})
	})
	return validate
}

// validateParams checks p against its validate tags and returns the first
// failure as a *ValidationError.
func validateParams(p any) error {
	err := getValidator().Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Field: "params", Message: err.Error()}
	}
	fe := verrs[0]
	return &ValidationError{Field: fe.Field(), Message: describe(fe)}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}
