package validator

import (
	"strings"
	"testing"

	"github.com/futig/explainer-backend/internal/config"
	"github.com/futig/explainer-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator() *Validator {
	return New(config.FileUploadConfig{
		MaxFileSize:       1024,
		AllowedExtensions: []string{"txt", "pdf", "docx", "md"},
	})
}

func TestValidateQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     entity.QueryRequest
		wantErr error
	}{
		{name: "ok", req: entity.QueryRequest{Question: "What is light?", Level: entity.LevelChild}},
		{name: "default level", req: entity.QueryRequest{Question: "What is light?"}},
		{name: "blank", req: entity.QueryRequest{Question: "   "}, wantErr: entity.ErrEmptyQuestion},
		{name: "too short", req: entity.QueryRequest{Question: " why "}, wantErr: entity.ErrQuestionLength},
		{name: "too long", req: entity.QueryRequest{Question: strings.Repeat("a", 501)}, wantErr: entity.ErrQuestionLength},
		{name: "bad level", req: entity.QueryRequest{Question: "What is light?", Level: "toddler"}, wantErr: entity.ErrInvalidLevel},
	}

	v := newValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := v.ValidateQuery(&req)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, entity.ErrValidation)
		})
	}
}

func TestValidateQueryNormalizes(t *testing.T) {
	t.Parallel()

	req := entity.QueryRequest{Question: "  What is light?  "}
	require.NoError(t, newValidator().ValidateQuery(&req))
	assert.Equal(t, "What is light?", req.Question)
	assert.Equal(t, entity.LevelUndergraduate, req.Level)
}

func TestValidateUpload(t *testing.T) {
	t.Parallel()

	v := newValidator()
	assert.NoError(t, v.ValidateUpload("notes.TXT", 10))
	assert.ErrorIs(t, v.ValidateUpload("notes.exe", 10), entity.ErrInvalidExtension)
	assert.ErrorIs(t, v.ValidateUpload("notes", 10), entity.ErrInvalidExtension)
	assert.ErrorIs(t, v.ValidateUpload("notes.pdf", 1025), entity.ErrFileTooLarge)
	assert.ErrorIs(t, v.ValidateUpload("notes.pdf", 0), entity.ErrInvalidFile)
	assert.ErrorIs(t, v.ValidateUpload("", 10), entity.ErrInvalidFilename)
	assert.ErrorIs(t, v.ValidateUpload(strings.Repeat("a", 252)+".txt", 10), entity.ErrInvalidFilename)
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "my_notes_v2.md", SanitizeFilename("dir/my notes (v2).md"))
}
