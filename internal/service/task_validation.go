package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/validation"
)

var ErrInvalidID = errors.New("valid task ID is required")

// ValidationError carries every rule a payload broke.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, ", ")
}

func (e *ValidationError) add(msg string) {
	e.Problems = append(e.Problems, msg)
}

// ParseID accepts only positive decimal identifiers.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// ValidateTask applies the create/update rules to a decoded JSON body and
// returns the normalized input. Type errors found by the schema and rule
// violations are all collected before returning.
func ValidateTask(v *validation.Validator, doc any) (domain.TaskInput, error) {
	verr := &ValidationError{}
	skip := make(map[string]bool)
	for _, fe := range v.Task(doc) {
		verr.add(fe.Message)
		skip[fe.Field] = true
	}
	if skip[""] {
		return domain.TaskInput{}, verr
	}
	body, _ := doc.(map[string]any)

	var in domain.TaskInput

	title, ok := body["title"].(string)
	title = strings.TrimSpace(title)
	switch {
	case !ok || title == "":
		verr.add("title is required")
	case strings.ContainsRune(title, 0):
		verr.add("title cannot contain null characters")
	case utf8.RuneCountInString(title) > domain.MaxTitleLength:
		verr.add(fmt.Sprintf("title cannot exceed %d characters", domain.MaxTitleLength))
	default:
		in.Title = title
	}

	if desc, ok := body["description"].(string); ok && !skip["description"] {
		if utf8.RuneCountInString(desc) > domain.MaxDescriptionLength {
			verr.add(fmt.Sprintf("description cannot exceed %d characters", domain.MaxDescriptionLength))
		}
		if strings.ContainsRune(desc, 0) {
			verr.add("description cannot contain null characters")
		}
		in.Description = desc
	}

	if done, ok := body["completed"].(bool); ok {
		in.Completed = done
	}

	// an empty string clears the date, same as null
	if due, ok := body["dueDate"].(string); ok && due != "" && !skip["dueDate"] {
		if _, err := domain.ParseDueDate(due); err != nil {
			verr.add(err.Error())
		} else {
			in.DueDate = &due
		}
	}

	if n, ok := body["sortOrder"].(json.Number); ok && !skip["sortOrder"] {
		order, err := parseSortOrder(n)
		if err != nil {
			verr.add(err.Error())
		} else {
			in.SortOrder = order
		}
	}

	if len(verr.Problems) > 0 {
		return domain.TaskInput{}, verr
	}
	return in, nil
}

// ValidateStatus extracts the completed flag from a PATCH body.
func ValidateStatus(v *validation.Validator, doc any) (bool, error) {
	if errs := v.Status(doc); len(errs) > 0 {
		verr := &ValidationError{}
		for _, fe := range errs {
			verr.add(fe.Message)
		}
		return false, verr
	}
	body, _ := doc.(map[string]any)
	completed, _ := body["completed"].(bool)
	return completed, nil
}

// parseSortOrder accepts any integral JSON number that fits in int64,
// including forms like 1.0 and 1e2.
func parseSortOrder(n json.Number) (int64, error) {
	if v, err := n.Int64(); err == nil {
		return v, nil
	}
	errNotInt := errors.New("sortOrder must be an integer")

	// bound the magnitude before handing the text to big.Rat
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return 0, errNotInt
	}
	r, ok := new(big.Rat).SetString(n.String())
	if !ok || !r.IsInt() || !r.Num().IsInt64() {
		return 0, errNotInt
	}
	return r.Num().Int64(), nil
}
