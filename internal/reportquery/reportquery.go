// Package reportquery parses and validates the reporting window parameters
// shared by the recommendation and overview endpoints.
package reportquery

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/inventory-dashboard/internal/inventoryapi"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report errors under the query parameter name
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("query"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Query is a validated reporting window plus the ML forecast horizon.
type Query struct {
	inventoryapi.Window
	HorizonDays int
}

// Defaults fill parameters the caller left out.
type Defaults struct {
	WindowDays  int
	HorizonDays int
}

type rawParams struct {
	From        string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To          string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	BranchID    string `query:"branchId" validate:"omitempty,number"`
	HorizonDays string `query:"horizonDays" validate:"omitempty,number"`
}

type bounds struct {
	BranchID    *int64 `query:"branchId" validate:"omitnil,gt=0"`
	HorizonDays int    `query:"horizonDays" validate:"min=1,max=365"`
}

// Parse reads from, to, branchId and horizonDays from the query string.
// The returned map is keyed by parameter name and is nil when the query is valid.
func Parse(c *fiber.Ctx, d Defaults, now time.Time) (Query, map[string]string) {
	var raw rawParams
	if err := c.QueryParser(&raw); err != nil {
		return Query{}, map[string]string{"query": err.Error()}
	}
	if errs := check(raw); errs != nil {
		return Query{}, errs
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	q := Query{HorizonDays: d.HorizonDays}
	q.To = today
	if raw.To != "" {
		q.To, _ = time.Parse(inventoryapi.DateLayout, raw.To)
	}
	q.From = q.To.AddDate(0, 0, -d.WindowDays)
	if raw.From != "" {
		q.From, _ = time.Parse(inventoryapi.DateLayout, raw.From)
	}

	var b bounds
	b.HorizonDays = q.HorizonDays
	if raw.BranchID != "" {
		id, err := strconv.ParseInt(raw.BranchID, 10, 64)
		if err != nil {
			return Query{}, map[string]string{"branchId": "branchId is out of range"}
		}
		b.BranchID = &id
	}
	if raw.HorizonDays != "" {
		h, err := strconv.Atoi(raw.HorizonDays)
		if err != nil {
			return Query{}, map[string]string{"horizonDays": "horizonDays is out of range"}
		}
		b.HorizonDays = h
	}

	errs := check(b)
	if q.From.After(q.To) {
		if errs == nil {
			errs = map[string]string{}
		}
		errs["from"] = "from must not be after to"
	}
	if errs != nil {
		return Query{}, errs
	}

	q.BranchID = b.BranchID
	q.HorizonDays = b.HorizonDays
	return q, nil
}

// Limit reads a positive integer query parameter, falling back to def and
// capping at ceiling.
func Limit(c *fiber.Ctx, name string, def, ceiling int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v <= 0 {
		return def
	}
	if v > ceiling {
		return ceiling
	}
	return v
}

func check(s any) map[string]string {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"query": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "number":
		return fmt.Sprintf("%s must be a positive integer", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
