package runner

import (
	"context"
	"strconv"
	"strings"

	"github.com/aretw0/questionnaire/pkg/domain"
)

// InputFilter rewrites a raw response before it is sent as an ANSWER.
// Returning an error rejects the input and the question is asked again.
type InputFilter func(ctx context.Context, q domain.Question, input string) (string, error)

// MultiFilter chains multiple filters, feeding each the output of the previous one.
func MultiFilter(filters ...InputFilter) InputFilter {
	return func(ctx context.Context, q domain.Question, input string) (string, error) {
		var err error
		for _, filter := range filters {
			if input, err = filter(ctx, q, input); err != nil {
				return "", err
			}
		}
		return input, nil
	}
}

// OptionNumberFilter lets respondents pick a multiple choice option by its
// 1-based position. Input that is also a literal option is left untouched.
func OptionNumberFilter() InputFilter {
	return func(ctx context.Context, q domain.Question, input string) (string, error) {
		if q.Kind != domain.KindMultipleChoice {
			return input, nil
		}
		trimmed := strings.TrimSpace(input)
		for _, opt := range q.Options {
			if strings.EqualFold(opt, trimmed) {
				return input, nil
			}
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil || n < 1 || n > len(q.Options) {
			return input, nil
		}
		return q.Options[n-1], nil
	}
}

// PassThrough leaves input unchanged.
func PassThrough() InputFilter {
	return func(ctx context.Context, q domain.Question, input string) (string, error) {
		return input, nil
	}
}
