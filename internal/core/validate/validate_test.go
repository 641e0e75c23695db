package validate_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusupport/datafeeder/internal/core/validate"
)

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	return path
}

func securityKind(t *testing.T, err error) validate.Kind {
	t.Helper()
	var se *validate.SecurityError
	require.True(t, errors.As(err, &se), "expected *SecurityError, got %v", err)
	return se.Kind
}

func TestValidator_Validate(t *testing.T) {
	dir := t.TempDir()
	goodPDF := writeFile(t, dir, "report.pdf", 128)

	v := validate.NewValidator(100)

	tests := []struct {
		name     string
		path     string
		wantKind validate.Kind
	}{
		{name: "empty path", path: "", wantKind: validate.KindEmptyPath},
		{name: "whitespace path", path: "   ", wantKind: validate.KindEmptyPath},
		{name: "traversal relative", path: "../etc/passwd.pdf", wantKind: validate.KindTraversal},
		{name: "traversal embedded", path: dir + "/../x.pdf", wantKind: validate.KindTraversal},
		{name: "missing file", path: filepath.Join(dir, "nope.pdf"), wantKind: validate.KindNotFound},
		{name: "directory", path: dir + string(filepath.Separator), wantKind: validate.KindNotAFile},
		{name: "wrong extension", path: writeFile(t, dir, "notes.txt", 16), wantKind: validate.KindInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vp, err := v.Validate(tt.path)
			require.Error(t, err)
			assert.Nil(t, vp)
			assert.Equal(t, tt.wantKind, securityKind(t, err))
		})
	}

	t.Run("valid pdf", func(t *testing.T) {
		vp, err := v.Validate(goodPDF)
		require.NoError(t, err)
		assert.Equal(t, goodPDF, vp.Path())
		assert.Equal(t, "report.pdf", vp.Base())
		assert.True(t, filepath.IsAbs(vp.Path()))
	})

	t.Run("relative path resolves to absolute", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(dir))
		t.Cleanup(func() { _ = os.Chdir(wd) })

		vp, err := v.Validate("report.pdf")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(vp.Path()))
	})
}

func TestValidator_WrongExtensionRejectedRegardlessOfContent(t *testing.T) {
	dir := t.TempDir()
	// Real PDF header, wrong extension: content must not matter.
	path := filepath.Join(dir, "disguised.doc")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0o644))

	_, err := validate.NewValidator(100).Validate(path)
	assert.Equal(t, validate.KindInvalidType, securityKind(t, err))
}

func TestValidator_SizeCeiling(t *testing.T) {
	dir := t.TempDir()
	v := validate.NewValidator(1) // 1 MB ceiling for a fast test

	t.Run("exactly at ceiling passes", func(t *testing.T) {
		path := writeFile(t, dir, "exact.pdf", 1024*1024)
		_, err := v.Validate(path)
		assert.NoError(t, err)
	})

	t.Run("one byte over fails", func(t *testing.T) {
		path := writeFile(t, dir, "over.pdf", 1024*1024+1)
		_, err := v.Validate(path)
		assert.Equal(t, validate.KindTooLarge, securityKind(t, err))
	})
}

func TestValidator_SymlinkToDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(target, 0o755))
	link := filepath.Join(dir, "link.pdf")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, err := validate.NewValidator(100).Validate(link)
	assert.Equal(t, validate.KindNotAFile, securityKind(t, err))
}
