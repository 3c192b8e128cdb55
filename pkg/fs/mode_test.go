package fs

import (
	"os"
	"testing"
)

func TestTypeOf(t *testing.T) {
	cases := []struct {
		mode os.FileMode
		want FileType
	}{
		{0644, FileTypeRegular},
		{os.ModeDir | 0755, FileTypeDirectory},
		{os.ModeSymlink | 0777, FileTypeSymlink},
		{os.ModeDevice | 0600, FileTypeBlock},
		{os.ModeDevice | os.ModeCharDevice | 0600, FileTypeChar},
		{os.ModeNamedPipe | 0644, FileTypeFIFO},
		{os.ModeSocket | 0644, FileTypeSocket},
	}

	for _, tc := range cases {
		if got := TypeOf(tc.mode); got != tc.want {
			t.Errorf("TypeOf(%v) = %v, want %v", tc.mode, got, tc.want)
		}
	}
}

func TestModeRoundTrip(t *testing.T) {
	cases := []os.FileMode{
		0644,
		0755,
		os.ModeSetuid | 0755,
		os.ModeSetgid | 0750,
		os.ModeSticky | 0777,
	}

	for _, mode := range cases {
		if got := ModeOf(mode).OSMode(); got != mode {
			t.Errorf("round trip of %v: got %v", mode, got)
		}
	}
}

func TestFileInfoOSMode(t *testing.T) {
	fi := FileInfo{Type: FileTypeDirectory, Mode: 0755}
	if got := fi.OSMode(); got != os.ModeDir|0755 {
		t.Errorf("OSMode() = %v, want %v", got, os.ModeDir|0755)
	}

	fi = FileInfo{Type: FileTypeSymlink, Mode: 0777}
	if got := fi.OSMode(); got != os.ModeSymlink|0777 {
		t.Errorf("OSMode() = %v, want %v", got, os.ModeSymlink|0777)
	}

	fi = FileInfo{Type: FileTypeChar, Mode: 0620}
	want := os.ModeDevice | os.ModeCharDevice | 0620
	if got := fi.OSMode(); got != want {
		t.Errorf("OSMode() = %v, want %v", got, want)
	}
}
