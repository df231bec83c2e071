package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	slipwayerrors "github.com/slipway-io/slipway/pkg/errors"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestReadVersion(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cases := []struct {
		name     string
		file     string
		contents string
		want     string
		wantErr  bool
	}{
		{
			name:     "yaml descriptor",
			file:     "module.yaml",
			contents: "name: mylib\nversion: 1.2.3\n",
			want:     "1.2.3",
		},
		{
			name:     "yml descriptor",
			file:     "module.yml",
			contents: "version: \"0.9.0\"\n",
			want:     "0.9.0",
		},
		{
			name:     "json descriptor",
			file:     "package.json",
			contents: `{"name": "mylib", "version": "2.0.1"}`,
			want:     "2.0.1",
		},
		{
			name:     "missing version property",
			file:     "empty.yaml",
			contents: "name: mylib\n",
			wantErr:  true,
		},
		{
			name:     "blank version property",
			file:     "blank.yaml",
			contents: "version: \"  \"\n",
			wantErr:  true,
		},
		{
			name:     "unsupported format",
			file:     "module.toml",
			contents: "version = \"1.0.0\"\n",
			wantErr:  true,
		},
		{
			name:     "undecodable json",
			file:     "broken.json",
			contents: "{",
			wantErr:  true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := writeFile(t, dir, tc.file, tc.contents)
			version, err := ReadVersion(path)
			if tc.wantErr {
				require.Error(t, err)
				var validationErr *slipwayerrors.ValidationError
				require.ErrorAs(t, err, &validationErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, version)
		})
	}
}

func TestReadVersionMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ReadVersion(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	var validationErr *slipwayerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestResolveFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "module.yaml", "version: 1.0.0\n")
	writeFile(t, dir, "extra.yaml", "version: 1.0.0\n")

	t.Run("explicit path", func(t *testing.T) {
		t.Parallel()

		files, err := ResolveFiles(dir, []string{"module.yaml"})
		require.NoError(t, err)
		require.Equal(t, []string{filepath.Join(dir, "module.yaml")}, files)
	})

	t.Run("glob pattern with dedupe", func(t *testing.T) {
		t.Parallel()

		files, err := ResolveFiles(dir, []string{"module.yaml", "*.yaml"})
		require.NoError(t, err)
		require.Len(t, files, 2)
		require.Equal(t, filepath.Join(dir, "module.yaml"), files[0], "explicit pattern keeps first position")
	})

	t.Run("nothing matched is fatal", func(t *testing.T) {
		t.Parallel()

		_, err := ResolveFiles(dir, []string{"absent-*.yaml"})
		require.Error(t, err)

		var validationErr *slipwayerrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}
