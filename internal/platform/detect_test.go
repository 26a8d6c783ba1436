package platform

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigPathFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		goos    string
		home    string
		xdg     string
		want    string
		wantErr bool
	}{
		{name: "linux xdg", goos: "linux", home: "/home/dev", xdg: "/tmp/xdg-config", want: "/tmp/xdg-config/vidtranslate/config.yaml"},
		{name: "linux default", goos: "linux", home: "/home/dev", want: "/home/dev/.config/vidtranslate/config.yaml"},
		{name: "macos", goos: "darwin", home: "/Users/dev", want: "/Users/dev/Library/Application Support/vidtranslate/config.yaml"},
		{name: "unsupported", goos: "windows", home: "C:/Users/dev", wantErr: true},
		{name: "empty home", goos: "linux", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DefaultConfigPathFor(tt.goos, tt.home, tt.xdg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestResolveConfigPathPrefersOverride(t *testing.T) {
	t.Parallel()

	got, err := ResolveConfigPath("./conf/../vidtranslate.yaml")
	require.NoError(t, err)
	require.Equal(t, filepath.Clean("vidtranslate.yaml"), got)
}
