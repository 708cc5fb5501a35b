package ingest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"reelfake-backend/models"

	"github.com/go-playground/validator/v10"
)

// DuplicateChecker answers the uniqueness questions asked for every row.
type DuplicateChecker interface {
	TmdbIDExists(ctx context.Context, tmdbID int) (bool, error)
	ImdbIDExists(ctx context.Context, imdbID string) (bool, error)
}

// ValidationOutcome is the verdict for one row.
type ValidationOutcome struct {
	IsValid bool     `json:"isValid"`
	Reasons []string `json:"reasons"`
}

var (
	imdbIDPattern   = regexp.MustCompile(`^tt\d{7,8}$`)
	dateLikePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	indexSuffix     = regexp.MustCompile(`\[(\d+)\]$`)
)

var schema = newSchema()

func newSchema() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("csv")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("movie_status", func(fl validator.FieldLevel) bool {
		return models.MovieStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("imdb_id", func(fl validator.FieldLevel) bool {
		return imdbIDPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validator checks rows against the catalog schema and the existing catalog.
type Validator struct {
	store DuplicateChecker
}

func NewValidator(store DuplicateChecker) *Validator {
	return &Validator{store: store}
}

// Validate runs Check for rowNumber and flattens the result into reasons.
func (v *Validator) Validate(ctx context.Context, rowNumber int, raw RawRow) ValidationOutcome {
	raw.Index = rowNumber
	_, errs := v.Check(ctx, raw)
	if len(errs) > 0 {
		return ValidationOutcome{IsValid: false, Reasons: reasons(errs)}
	}
	return ValidationOutcome{IsValid: true, Reasons: []string{}}
}

// Check parses raw and returns every schema violation, or else the first
// duplicate key found. A failed lookup is reported as a single
// UnhandledException carrying the lookup error's message.
func (v *Validator) Check(ctx context.Context, raw RawRow) (parsed ParsedRow, errs []*UploadError) {
	defer func() {
		if r := recover(); r != nil {
			errs = []*UploadError{newUploadError(KindUnhandledException, raw.Index, fmt.Sprint(r))}
		}
	}()

	parsed = Parse(raw)

	if errs = schemaErrors(raw, &parsed); len(errs) > 0 {
		return parsed, errs
	}

	tmdbRaw := strings.TrimSpace(raw.Get(ColTmdbID))
	exists, err := v.store.TmdbIDExists(ctx, *parsed.TmdbID)
	if err != nil {
		return parsed, []*UploadError{newUploadError(KindUnhandledException, raw.Index, err.Error())}
	}
	if exists {
		return parsed, []*UploadError{
			newUploadError(KindDuplicateTmdbID, raw.Index,
				fmt.Sprintf("Movie with tmdb_id %q already exists", tmdbRaw)).
				withField(ColTmdbID, tmdbRaw),
		}
	}

	if parsed.ImdbID != nil {
		exists, err := v.store.ImdbIDExists(ctx, *parsed.ImdbID)
		if err != nil {
			return parsed, []*UploadError{newUploadError(KindUnhandledException, raw.Index, err.Error())}
		}
		if exists {
			return parsed, []*UploadError{
				newUploadError(KindDuplicateImdbID, raw.Index,
					fmt.Sprintf("Movie with imdb_id %q already exists", *parsed.ImdbID)).
					withField(ColImdbID, *parsed.ImdbID),
			}
		}
	}

	return parsed, nil
}

func schemaErrors(raw RawRow, parsed *ParsedRow) []*UploadError {
	err := schema.Struct(parsed)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []*UploadError{newUploadError(KindUnhandledException, raw.Index, err.Error())}
	}

	out := make([]*UploadError, 0, len(fieldErrs))
	seen := make(map[string]bool, len(fieldErrs))
	for _, fe := range fieldErrs {
		column, index := splitIndex(fe.Field())
		value := raw.Get(column)
		msg := fieldMessage(column, value, index, fe)

		key := column + "\x00" + msg
		if seen[key] {
			continue
		}
		seen[key] = true

		out = append(out, newUploadError(KindValidationFailed, raw.Index,
			fmt.Sprintf("Invalid value %q for field %q: %s", value, column, msg)).
			withField(column, value))
	}
	return out
}

// splitIndex turns "genres[2]" into ("genres", 2); index is -1 when absent.
func splitIndex(field string) (string, int) {
	m := indexSuffix.FindStringSubmatchIndex(field)
	if m == nil {
		return field, -1
	}
	idx, _ := strconv.Atoi(field[m[2]:m[3]])
	return field[:m[0]], idx
}

func fieldMessage(column, value string, index int, fe validator.FieldError) string {
	blank := strings.TrimSpace(value) == ""

	switch column {
	case ColReleaseDate:
		switch {
		case blank:
			return "is required"
		case dateLikePattern.MatchString(strings.TrimSpace(value)):
			return "is not a valid calendar date (expected YYYY-MM-DD)"
		default:
			return "must be a date in YYYY-MM-DD format"
		}
	case ColGenres, ColCountriesOfOrigin:
		noun := "genre"
		if column == ColCountriesOfOrigin {
			noun = "country"
		}
		switch {
		case blank:
			return "is required"
		case fe.Tag() == "gt" && index >= 0:
			names := parseTagList(value)
			if index < len(names) {
				return fmt.Sprintf("unknown %s %q", noun, names[index])
			}
			return "contains an unknown " + noun
		case fe.Tag() == "min":
			return fmt.Sprintf("must list at least one %s", noun)
		default:
			return fmt.Sprintf("must be a list such as ['A','B'] of %s names", noun)
		}
	case ColLanguage:
		if blank {
			return "is required"
		}
		return "is not a supported language"
	}

	switch fe.Tag() {
	case "required":
		if blank {
			return "is required"
		}
		t := fe.Type()
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		switch t.Kind() {
		case reflect.Int, reflect.Int64:
			return "must be a whole number"
		case reflect.Float64:
			return "must be a number"
		}
		return "is invalid"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "url":
		return "must be a valid URL"
	case "imdb_id":
		return "must be an IMDb id such as tt0111161"
	case "movie_status":
		statuses := make([]string, len(models.MovieStatuses))
		for i, s := range models.MovieStatuses {
			statuses[i] = string(s)
		}
		return "must be one of: " + strings.Join(statuses, ", ")
	}
	return "is invalid"
}
