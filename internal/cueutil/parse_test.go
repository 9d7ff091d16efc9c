// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Lib: {
	path?: string
	arch?: "x86" | "x64" | "arm64"
}

#Doc: {
	name:  string
	count: int
	libs?: [...#Lib]
}
`

type (
	testLib struct {
		Path string `json:"path,omitempty"`
		Arch string `json:"arch,omitempty"`
	}

	testDoc struct {
		Name  string    `json:"name"`
		Count int       `json:"count"`
		Libs  []testLib `json:"libs,omitempty"`
	}
)

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		opts    []Option
		wantErr []string
	}{
		{name: "valid", data: `name: "x", count: 2, libs: [{path: "out", arch: "x64"}]`},
		{name: "optional omitted", data: `name: "x", count: 1`},
		{name: "wrong type", data: `name: "x", count: "two"`, wantErr: []string{"<input>", "count"}},
		{name: "missing field", data: `name: "x"`, wantErr: []string{"count"}},
		{
			name:    "nested path",
			data:    `name: "x", count: 1, libs: [{}, {arch: "sparc"}]`,
			opts:    []Option{WithFilename("natpack.cue")},
			wantErr: []string{"natpack.cue", "libs[1].arch"},
		},
		{name: "syntax", data: `name: `, wantErr: []string{"<input>"}},
		{name: "too large", data: `name: "x", count: 1`, opts: []Option{WithMaxFileSize(4)}, wantErr: []string{"exceeds maximum"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(tt.data), "#Doc", tt.opts...)
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if res.Value == nil {
					t.Fatal("nil value")
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q should contain %q", err, want)
				}
			}
		})
	}
}

func TestParseAndDecode_Values(t *testing.T) {
	t.Parallel()

	res, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`
name:  "natpack"
count: 3
libs: [{path: "out", arch: "arm64"}, {}]
`), "#Doc")
	if err != nil {
		t.Fatal(err)
	}
	if res.Value.Name != "natpack" || res.Value.Count != 3 {
		t.Errorf("got %+v", res.Value)
	}
	if len(res.Value.Libs) != 2 || res.Value.Libs[0].Arch != "arm64" || res.Value.Libs[1].Path != "" {
		t.Errorf("libs = %+v", res.Value.Libs)
	}
	if !res.Unified.Exists() {
		t.Error("unified value should be available")
	}
}

func TestParseAndDecode_BadSchemaPath(t *testing.T) {
	t.Parallel()

	_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "x", count: 1`), "#Missing")
	if err == nil || !strings.Contains(err.Error(), "#Missing") {
		t.Errorf("expected schema lookup error, got %v", err)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"name"}, "name"},
		{[]string{"dynamic_libs", "0", "implibs", "12", "arch"}, "dynamic_libs[0].implibs[12].arch"},
		{[]string{"0"}, "0"},
	}
	for _, tt := range tests {
		if got := formatPath(tt.in); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatError_Nil(t *testing.T) {
	t.Parallel()

	if FormatError(nil, "x") != nil {
		t.Error("nil in, nil out")
	}
}
