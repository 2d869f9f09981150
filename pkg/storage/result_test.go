package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-resume-feedback/pkg/storage"
)

func TestNormalizeUploadResult(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "bare object with Key", body: `{"Key":"resumes/a.pdf"}`, want: "resumes/a.pdf"},
		{name: "bare object with path", body: `{"path":"a.pdf"}`, want: "a.pdf"},
		{name: "array wrapper", body: `[{"name":"b.pdf"}]`, want: "b.pdf"},
		{name: "file envelope", body: `{"file":{"path":"c.pdf"}}`, want: "c.pdf"},
		{name: "empty array", body: `[]`, wantErr: true},
		{name: "object without path field", body: `{"ok":true}`, wantErr: true},
		{name: "scalar", body: `42`, wantErr: true},
		{name: "not json", body: `uh oh`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item, err := storage.NormalizeUploadResult([]byte(tc.body))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, item.Path)
		})
	}
}
