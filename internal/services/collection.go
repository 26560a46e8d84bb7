package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

var requiredColumns = []string{"set", "collector_number", "qty", "finish"}

var collectionValidate = newCollectionValidator()

func newCollectionValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("csv")
	})
	_ = v.RegisterValidation("qty", validateQty)
	_ = v.RegisterValidation("finish", validateFinish)
	return v
}

func validateQty(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Field().String())
	return err == nil && n > 0
}

func validateFinish(fl validator.FieldLevel) bool {
	_, err := models.ParseFinish(fl.Field().String())
	return err == nil
}

// LoadCollection reads the owned-positions CSV at path.
func LoadCollection(path string) ([]models.Position, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCollection, err)
	}
	defer f.Close()

	return ParseCollection(f)
}

// ParseCollection reads CSV with columns set, collector_number, qty, finish and an
// optional acquired_price_usd. Every row must validate or nothing is returned.
// Rows are kept as given; duplicates are not merged.
func ParseCollection(r io.Reader) ([]models.Position, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidCollection)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCollection, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns %v (found %v)", ErrInvalidCollection, missing, header)
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var positions []models.Position
	var problems []string
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCollection, err)
		}

		row := models.CollectionRow{
			Line:             line,
			Set:              field(record, "set"),
			CollectorNumber:  field(record, "collector_number"),
			Qty:              field(record, "qty"),
			Finish:           field(record, "finish"),
			AcquiredPriceUSD: field(record, "acquired_price_usd"),
		}
		if err := collectionValidate.Struct(row); err != nil {
			problems = append(problems, describeRowError(row.Line, err))
			continue
		}
		positions = append(positions, rowToPosition(row))
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCollection, strings.Join(problems, "; "))
	}
	return positions, nil
}

func describeRowError(line int, err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Sprintf("line %d: %v", line, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "finish":
			msgs = append(msgs, fmt.Sprintf("invalid finish %q (allowed: nonfoil, foil)", fe.Value()))
		case "qty":
			msgs = append(msgs, fmt.Sprintf("qty must be a positive integer, got %q", fe.Value()))
		default:
			msgs = append(msgs, fe.Field()+" failed "+fe.Tag())
		}
	}
	return fmt.Sprintf("line %d: %s", line, strings.Join(msgs, ", "))
}

// rowToPosition converts a validated row. An unparseable acquired price is
// treated as unknown rather than rejected.
func rowToPosition(row models.CollectionRow) models.Position {
	qty, _ := strconv.Atoi(row.Qty)
	finish, _ := models.ParseFinish(row.Finish)
	return models.Position{
		Key:           models.NewItemKey(row.Set, row.CollectorNumber),
		Finish:        finish,
		Quantity:      qty,
		AcquiredPrice: models.ParsePrice(&row.AcquiredPriceUSD),
	}
}
