package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionNumberFilter(t *testing.T) {
	mc := domain.Question{Kind: domain.KindMultipleChoice, Options: []string{"red", "2", "blue"}}
	text := domain.Question{Kind: domain.KindText}
	filter := OptionNumberFilter()
	ctx := context.Background()

	tests := []struct {
		name  string
		q     domain.Question
		input string
		want  string
	}{
		{"number picks option", mc, "1", "red"},
		{"literal option wins over position", mc, "2", "2"},
		{"out of range is left alone", mc, "9", "9"},
		{"text is left alone", mc, "blue", "blue"},
		{"text questions untouched", text, "1", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := filter(ctx, tt.q, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMultiFilter(t *testing.T) {
	upper := func(ctx context.Context, q domain.Question, in string) (string, error) { return in + "!", nil }
	reject := func(ctx context.Context, q domain.Question, in string) (string, error) { return "", errors.New("nope") }

	got, err := MultiFilter(PassThrough(), upper, upper)(context.Background(), domain.Question{}, "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi!!", got)

	_, err = MultiFilter(upper, reject)(context.Background(), domain.Question{}, "hi")
	assert.EqualError(t, err, "nope")
}
