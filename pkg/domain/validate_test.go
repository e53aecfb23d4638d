package domain_test

import (
	"errors"
	"testing"

	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{"Two Options", "Red,Blue", []string{"Red", "Blue"}, false},
		{"Trimmed", " Red , Blue ,Green", []string{"Red", "Blue", "Green"}, false},
		{"Single Option", "Red", nil, true},
		{"Empty Entry", "Red,,Blue", nil, true},
		{"Trailing Comma", "Red,Blue,", nil, true},
		{"Inner Space", "Light Red,Blue", nil, true},
		{"Blank", "   ", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParseOptions(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidOptions)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDraft(t *testing.T) {
	t.Run("Text Ignores Options", func(t *testing.T) {
		d, err := domain.ParseDraft("  Color?  ", "text", "a,b")
		require.NoError(t, err)
		assert.Equal(t, "Color?", d.Text)
		assert.Equal(t, domain.KindText, d.Kind)
		assert.Empty(t, d.Options)
	})

	t.Run("Multiple Choice", func(t *testing.T) {
		d, err := domain.ParseDraft("Age?", "multiple-choice", "18-25,26-35")
		require.NoError(t, err)
		assert.Equal(t, domain.KindMultipleChoice, d.Kind)
		assert.Equal(t, []string{"18-25", "26-35"}, d.Options)
	})

	t.Run("Missing Text", func(t *testing.T) {
		_, err := domain.ParseDraft(" ", "text", "")
		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, domain.MsgQuestionRequired, ve.Message)
	})

	t.Run("Unknown Kind", func(t *testing.T) {
		_, err := domain.ParseDraft("Q", "slider", "")
		assert.ErrorIs(t, err, domain.ErrInvalidKind)
	})

	t.Run("Multiple Choice Without Options", func(t *testing.T) {
		_, err := domain.ParseDraft("Q", "mcq", "")
		assert.ErrorIs(t, err, domain.ErrInvalidOptions)
		assert.Equal(t, domain.MsgOptionsRequired, domain.Message(err))
	})
}

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name string
		q    domain.Question
		want error
	}{
		{"Valid Text", domain.Question{ID: "1", Text: "Q", Kind: domain.KindText}, nil},
		{"Valid Choice", domain.Question{ID: "1", Text: "Q", Kind: domain.KindMultipleChoice, Options: []string{"a", "b"}}, nil},
		{"Blank Text", domain.Question{ID: "1", Text: " ", Kind: domain.KindText}, domain.ErrInvalidQuestion},
		{"Unknown Kind", domain.Question{ID: "1", Text: "Q", Kind: "rating"}, domain.ErrInvalidKind},
		{"Text With Options", domain.Question{ID: "1", Text: "Q", Kind: domain.KindText, Options: []string{"a"}}, domain.ErrInvalidOptions},
		{"Choice Too Few", domain.Question{ID: "1", Text: "Q", Kind: domain.KindMultipleChoice, Options: []string{"a"}}, domain.ErrInvalidOptions},
		{"Choice Blank Option", domain.Question{ID: "1", Text: "Q", Kind: domain.KindMultipleChoice, Options: []string{"a", ""}}, domain.ErrInvalidOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.ValidateQuestion(tt.q)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateList(t *testing.T) {
	ok := []domain.Question{
		{ID: "1", Text: "A", Kind: domain.KindText},
		{ID: "2", Text: "B", Kind: domain.KindText},
	}
	assert.NoError(t, domain.ValidateList(ok))
	assert.NoError(t, domain.ValidateList(nil))

	dupID := []domain.Question{
		{ID: "1", Text: "A", Kind: domain.KindText},
		{ID: "1", Text: "B", Kind: domain.KindText},
	}
	assert.ErrorIs(t, domain.ValidateList(dupID), domain.ErrInvalidInitialList)

	dupText := []domain.Question{
		{ID: "1", Text: "Color?", Kind: domain.KindText},
		{ID: "2", Text: "COLOR?", Kind: domain.KindText},
	}
	err := domain.ValidateList(dupText)
	assert.ErrorIs(t, err, domain.ErrInvalidInitialList)
	assert.ErrorIs(t, err, domain.ErrDuplicateQuestion)

	noID := []domain.Question{{Text: "A", Kind: domain.KindText}}
	assert.ErrorIs(t, domain.ValidateList(noID), domain.ErrInvalidInitialList)
}

func TestValidateList_AgreesWithSameText(t *testing.T) {
	pairs := [][2]string{
		{"i?", "İ?"},
		{"s?", "ſ?"},
		{"k?", "\u212a?"}, // Kelvin sign
		{"Straße?", "STRASSE?"},
		{"ÉCOLE?", "école?"},
		{"Σ?", "ς?"},
	}
	for _, p := range pairs {
		t.Run(p[0]+"/"+p[1], func(t *testing.T) {
			list := []domain.Question{
				{ID: "1", Text: p[0], Kind: domain.KindText},
				{ID: "2", Text: p[1], Kind: domain.KindText},
			}
			err := domain.ValidateList(list)
			if domain.SameText(p[0], p[1]) {
				assert.ErrorIs(t, err, domain.ErrDuplicateQuestion)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, raw := range []string{"multiple-choice", "Multiple_Choice", "MCQ"} {
		k, err := domain.ParseKind(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, domain.KindMultipleChoice, k)
	}
	k, err := domain.ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, domain.KindText, k)
}
