package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		wantErr error
	}{
		{"plain text", []byte("hello world"), nil},
		{"markdown", []byte("# Title\n\nSome **bold** text"), nil},
		{"unicode", []byte("héllo wörld 世界"), nil},
		{"nil content", nil, ErrEmptyDocument},
		{"empty content", []byte{}, ErrEmptyDocument},
		{"whitespace only", []byte("  \n\t  "), ErrEmptyDocument},
		{"invalid utf8", []byte{0xff, 0xfe, 0xfd}, ErrBinaryDocument},
		{"embedded nul", []byte("hello\x00world"), ErrBinaryDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.content)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateStatus(t *testing.T) {
	for _, s := range []Status{StatusQueued, StatusProcessing, StatusDone, StatusFailed} {
		assert.NoError(t, ValidateStatus(s))
	}
	assert.ErrorIs(t, ValidateStatus(Status("running")), ErrInvalidStatus)
	assert.ErrorIs(t, ValidateStatus(Status("")), ErrInvalidStatus)
}

func TestValidateTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusQueued, StatusProcessing},
		{StatusProcessing, StatusDone},
		{StatusProcessing, StatusFailed},
		{StatusQueued, StatusQueued},
		{StatusProcessing, StatusProcessing},
	}
	for _, tt := range allowed {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.NoError(t, ValidateTransition(tt.from, tt.to))
		})
	}

	denied := []struct{ from, to Status }{
		{StatusQueued, StatusDone},
		{StatusQueued, StatusFailed},
		{StatusProcessing, StatusQueued},
		{StatusDone, StatusProcessing},
		{StatusDone, StatusQueued},
		{StatusDone, StatusFailed},
		{StatusDone, StatusDone},
		{StatusFailed, StatusProcessing},
		{StatusFailed, StatusQueued},
		{StatusFailed, StatusDone},
		{StatusFailed, StatusFailed},
	}
	for _, tt := range denied {
		t.Run(string(tt.from)+"_to_"+string(tt.to)+"_denied", func(t *testing.T) {
			assert.ErrorIs(t, ValidateTransition(tt.from, tt.to), ErrInvalidTransition)
		})
	}

	t.Run("unknown target status", func(t *testing.T) {
		err := ValidateTransition(StatusQueued, Status(strings.ToUpper(string(StatusDone))))
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}
