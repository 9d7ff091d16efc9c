// SPDX-License-Identifier: MPL-2.0

package defaults

import (
	"maps"
	"path/filepath"
	"strings"
	"testing"

	"github.com/magiconair/properties"

	"github.com/natpack/natpack/pkg/source"
)

func props(t *testing.T, lines ...string) *properties.Properties {
	t.Helper()
	p, err := ParseProperties([]byte(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("ParseProperties: %v", err)
	}
	return p
}

func header(path, pattern string) *source.HeaderFile {
	return &source.HeaderFile{Source: source.Source{Path: path, Pattern: pattern}}
}

func assertDescriptors[T source.Descriptor](t *testing.T, got, want []T) {
	t.Helper()
	if (got == nil) != (want == nil) || len(got) != len(want) {
		t.Fatalf("got %v, want %v", source.Descriptors(got), source.Descriptors(want))
	}
	for i := range got {
		if !source.Equal(got[i], want[i]) {
			t.Errorf("element %d: got %s, want %s", i, source.String(got[i]), source.String(want[i]))
		}
	}
}

func mustApply(t *testing.T, d *Document, items ...source.Descriptor) {
	t.Helper()
	if err := d.ApplyTo(items...); err != nil {
		t.Fatalf("ApplyTo: %v", err)
	}
}

func TestGet_MissingAndEmptyNames(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", "foo"} {
		doc, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}
		if doc.Identifier != NoneIdentifier {
			t.Errorf("Get(%q).Identifier = %q, want %q", name, doc.Identifier, NoneIdentifier)
		}
	}
}

func TestGet_Windows(t *testing.T) {
	t.Parallel()

	doc, err := Get("windows")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Identifier != "windows" {
		t.Errorf("Identifier = %q", doc.Identifier)
	}

	lib := &source.StaticLib{}
	dll := &source.DynamicLib{}
	exe := &source.Executable{}
	mustApply(t, doc, lib, dll, exe)

	include := header(filepath.Join("target", "include"), "*.h")

	wantLib := &source.StaticLib{}
	wantLib.Path, wantLib.Pattern = filepath.Join("target", "lib"), "*.lib"
	wantLib.SetHeaders([]*source.HeaderFile{include})
	if !source.Equal(lib, wantLib) {
		t.Errorf("static lib = %s, want %s", lib, wantLib)
	}

	implib := &source.StaticLib{}
	implib.Path, implib.Pattern = filepath.Join("target", "dll"), "*.lib"
	wantDll := &source.DynamicLib{}
	wantDll.Path, wantDll.Pattern = filepath.Join("target", "dll"), "*.dll"
	wantDll.SetHeaders([]*source.HeaderFile{include})
	wantDll.SetImplibs([]*source.StaticLib{implib})
	if !source.Equal(dll, wantDll) {
		t.Errorf("dynamic lib = %s, want %s", dll, wantDll)
	}

	execLib := &source.StaticLib{}
	execLib.Path, execLib.Pattern = filepath.Join("target", "bin"), "*.lib"
	execDll := &source.DynamicLib{}
	execDll.Path, execDll.Pattern = filepath.Join("target", "bin"), "*.dll"
	wantExe := &source.Executable{}
	wantExe.Path, wantExe.Pattern = filepath.Join("target", "bin"), "*.exe"
	wantExe.SetLibraries([]source.Arch{execLib, execDll})
	if !source.Equal(exe, wantExe) {
		t.Errorf("executable = %s, want %s", exe, wantExe)
	}
}

func TestStockProfiles_Load(t *testing.T) {
	t.Parallel()

	names, err := NewRegistry().Names()
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	for _, want := range []string{"linux", "macos", "windows"} {
		found := false
		for _, n := range names {
			found = found || n == want
		}
		if !found {
			t.Errorf("stock profile %q missing from %v", want, names)
		}
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			doc, err := Get(name)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if doc.Identifier != name {
				t.Errorf("Identifier = %q", doc.Identifier)
			}
			if doc.BuildCommand == "" {
				t.Error("stock profiles carry a build command")
			}
		})
	}
}

func TestSourceDefaults_Fill(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		props []string
		bean  *source.HeaderFile
		want  string
	}{
		{"path kept", []string{"header.path=Bar"}, header("Foo", "*"), "HeaderFile, path:Foo, pattern:*"},
		{"path filled", []string{"header.path=Bar"}, header("", ""), "HeaderFile, path:Bar"},
		{"pattern kept", []string{"header.pattern=*.bar"}, header("Foo", "*.foo"), "HeaderFile, path:Foo, pattern:*.foo"},
		{"pattern filled", []string{"header.pattern=*.bar"}, header("", ""), "HeaderFile, pattern:*.bar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc := Load("test", props(t, tt.props...))
			mustApply(t, doc, tt.bean)
			if got := source.String(tt.bean); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArchSourceDefaults_Arch(t *testing.T) {
	t.Parallel()

	doc := Load("test", props(t, "static.arch=i386"))
	bean1 := &source.StaticLib{}
	bean1.Path, bean1.Arch = "Foo", "x64"
	bean2 := &source.StaticLib{}
	mustApply(t, doc, bean1, bean2)

	if got := bean1.String(); got != "StaticLib, path:Foo, arch:x64" {
		t.Errorf("bean1 = %q", got)
	}
	if got := bean2.String(); got != "StaticLib, arch:i386" {
		t.Errorf("bean2 = %q", got)
	}
}

func TestSave_SingleEntries(t *testing.T) {
	t.Parallel()

	p := NewProperties()
	empty := &ArchSourceDefaults{}
	if err := empty.Save(p, "x"); err != nil {
		t.Fatal(err)
	}
	if p.Len() != 0 {
		t.Errorf("empty defaults wrote %v", p.Map())
	}

	src := &ArchSourceDefaults{SourceDefaults: SourceDefaults{Path: "Foo", Pattern: "*.foo"}}
	if err := src.Save(p, "x"); err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"x.path": "Foo", "x.pattern": "*.foo"}
	if !maps.Equal(p.Map(), want) {
		t.Errorf("got %v, want %v", p.Map(), want)
	}

	p = NewProperties()
	arch := &ArchSourceDefaults{SourceDefaults: SourceDefaults{Path: "foo"}, Arch: "i386"}
	if err := arch.Save(p, "x"); err != nil {
		t.Fatal(err)
	}
	want = map[string]string{"x.path": "foo", "x.arch": "i386"}
	if !maps.Equal(p.Map(), want) {
		t.Errorf("got %v, want %v", p.Map(), want)
	}
}

func twoHeaders() []*HeaderFileDefaults {
	return []*HeaderFileDefaults{
		{SourceDefaults: SourceDefaults{Pattern: "*.h"}},
		{SourceDefaults: SourceDefaults{Pattern: "*.hh"}},
	}
}

func TestSave_NestedEntries(t *testing.T) {
	t.Parallel()

	static := &StaticLibDefaults{ArchSourceDefaults: ArchSourceDefaults{Arch: "i386"}, Headers: twoHeaders()}

	dynamic := &DynamicLibDefaults{ArchSourceDefaults: ArchSourceDefaults{Arch: "i386"}, Headers: twoHeaders()}
	dynamic.Implibs = []*StaticLibDefaults{{ArchSourceDefaults: ArchSourceDefaults{SourceDefaults: SourceDefaults{Pattern: "*.lib"}}}}

	exec := &ExecutableDefaults{ArchSourceDefaults: ArchSourceDefaults{Arch: "i386"}, Headers: twoHeaders()}
	exec.Libraries = []LibraryDefaults{
		&StaticLibDefaults{ArchSourceDefaults: ArchSourceDefaults{SourceDefaults: SourceDefaults{Pattern: "*.foo"}}},
		&DynamicLibDefaults{},
		&ArchSourceDefaults{},
	}

	tests := []struct {
		name string
		save func(p *properties.Properties) error
		want map[string]string
	}{
		{
			name: "static",
			save: func(p *properties.Properties) error { return static.Save(p, "x") },
			want: map[string]string{"x.header": "h1;h2", "h1.pattern": "*.h", "h2.pattern": "*.hh", "x.arch": "i386"},
		},
		{
			name: "dynamic",
			save: func(p *properties.Properties) error { return dynamic.Save(p, "x") },
			want: map[string]string{
				"x.implib": "i3", "x.header": "h1;h2", "i3.pattern": "*.lib",
				"h2.pattern": "*.hh", "h1.pattern": "*.h", "x.arch": "i386",
			},
		},
		{
			name: "executable",
			save: func(p *properties.Properties) error { return exec.Save(p, "x") },
			want: map[string]string{
				"l3.pattern": "*.foo", "x.library": "l3;l4;l5", "x.header": "h1;h2",
				"l4.type": "dynamic", "l3.type": "static", "h2.pattern": "*.hh",
				"h1.pattern": "*.h", "x.arch": "i386",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := NewProperties()
			if err := tt.save(p); err != nil {
				t.Fatal(err)
			}
			if !maps.Equal(p.Map(), tt.want) {
				t.Errorf("got %v, want %v", p.Map(), tt.want)
			}
		})
	}
}

func TestHeaders_SynthesizedOrCompacted(t *testing.T) {
	t.Parallel()

	all := header("A", "*.a")
	nothing := header("include", "*.h")
	partial := header("C", "*.h")
	list := []string{"all.path=A", "all.pattern=*.a", "partial.path=C", "header.path=include", "header.pattern=*.h"}

	t.Run("dynamic", func(t *testing.T) {
		t.Parallel()
		doc := Load("test", props(t, append(list, "dynamic.header=all;nothing;partial")...))
		bean1 := &source.DynamicLib{}
		bean1.Arch = "i386"
		bean1.SetHeaders([]*source.HeaderFile{})
		bean2 := &source.DynamicLib{}
		bean2.Arch = "x64"
		mustApply(t, doc, bean1, bean2)
		if bean1.Headers() != nil {
			t.Errorf("explicitly empty headers = %v, want nil", bean1.Headers())
		}
		assertDescriptors(t, bean2.Headers(), []*source.HeaderFile{all, nothing, partial})
	})

	t.Run("executable", func(t *testing.T) {
		t.Parallel()
		doc := Load("test", props(t, append(list, "exec.header=all;nothing;partial")...))
		bean1 := &source.Executable{}
		bean1.SetHeaders([]*source.HeaderFile{})
		bean2 := &source.Executable{}
		mustApply(t, doc, bean1, bean2)
		if bean1.Headers() != nil {
			t.Errorf("explicitly empty headers = %v, want nil", bean1.Headers())
		}
		assertDescriptors(t, bean2.Headers(), []*source.HeaderFile{all, nothing, partial})
	})

	t.Run("static keeps caller headers", func(t *testing.T) {
		t.Parallel()
		doc := Load("test", props(t, append(list, "static.header=all;nothing;partial")...))
		inc := header("", "*.inc")
		bean1 := &source.StaticLib{}
		bean1.SetHeaders([]*source.HeaderFile{inc})
		bean2 := &source.StaticLib{}
		mustApply(t, doc, bean1, bean2)
		assertDescriptors(t, bean1.Headers(), []*source.HeaderFile{header("include", "*.inc")})
		if inc.Path != "include" {
			t.Errorf("caller header path = %q, want include", inc.Path)
		}
		assertDescriptors(t, bean2.Headers(), []*source.HeaderFile{all, nothing, partial})
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()
		doc := Load("test", props(t, "dynamic.header=", "header.path=include"))
		bean := &source.DynamicLib{}
		mustApply(t, doc, bean)
		if bean.Headers() != nil {
			t.Errorf("headers = %v, want nil", bean.Headers())
		}
	})
}

func TestHeaders_InheritParentPath(t *testing.T) {
	t.Parallel()

	doc := Load("test", props(t, "static.header=h1", "header.path=include", "header.pattern=*.h"))
	lib := &source.StaticLib{}
	lib.Path = "out"
	mustApply(t, doc, lib)

	assertDescriptors(t, lib.Headers(), []*source.HeaderFile{header("out", "*.h")})
}

func TestDynamicLibDefaults_Implibs(t *testing.T) {
	t.Parallel()

	doc := Load("test", props(t,
		"dynamic.implib=all;nothing;partial",
		"all.path=A", "all.pattern=*.a", "all.arch=i386",
		"partial.path=C",
		"static.path=lib", "static.pattern=*.lib",
	))
	bean1 := &source.DynamicLib{}
	bean1.Arch = "i386"
	bean1.SetImplibs([]*source.StaticLib{})
	bean2 := &source.DynamicLib{}
	bean2.Arch = "x64"
	mustApply(t, doc, bean1, bean2)

	if bean1.Implibs() != nil {
		t.Errorf("explicitly empty implibs = %v, want nil", bean1.Implibs())
	}

	all := &source.StaticLib{}
	all.Path, all.Pattern, all.Arch = "A", "*.a", "i386"
	nothing := &source.StaticLib{}
	nothing.Path, nothing.Pattern = "lib", "*.lib"
	partial := &source.StaticLib{}
	partial.Path, partial.Pattern = "C", "*.lib"
	assertDescriptors(t, bean2.Implibs(), []*source.StaticLib{all, nothing, partial})
}

func TestExecutableDefaults_Libraries(t *testing.T) {
	t.Parallel()

	doc := Load("test", props(t,
		"exec.library=dynamic-lib;static-lib;misc-lib",
		"dynamic-lib.type=dynamic", "dynamic-lib.path=A", "dynamic-lib.pattern=*.a",
		"static-lib.type=static",
		"misc-lib.path=C", "misc-lib.pattern=*.c",
		"static.path=lib", "static.pattern=*.lib",
	))
	bean1 := &source.Executable{}
	bean1.SetLibraries([]source.Arch{})
	bean2 := &source.Executable{}
	mustApply(t, doc, bean1, bean2)

	if bean1.Libraries() != nil {
		t.Errorf("explicitly empty libraries = %v, want nil", bean1.Libraries())
	}

	dynamicLib := &source.DynamicLib{}
	dynamicLib.Path, dynamicLib.Pattern = "A", "*.a"
	staticLib := &source.StaticLib{}
	staticLib.Path, staticLib.Pattern = "lib", "*.lib"
	miscLib := &source.ArchSource{Source: source.Source{Path: "C", Pattern: "*.c"}}
	assertDescriptors(t, bean2.Libraries(), []source.Arch{dynamicLib, staticLib, miscLib})
}

func TestCreateDefaults(t *testing.T) {
	t.Parallel()

	doc := Load("test", props(t,
		"dynamic=a;b", "exec=a;b", "static=a;b", "header=a;b",
		"a.path=A", "b.path=B",
	))

	headers, err := doc.CreateDefaultHeaderFiles()
	if err != nil {
		t.Fatal(err)
	}
	assertDescriptors(t, headers, []*source.HeaderFile{header("A", ""), header("B", "")})

	statics, err := doc.CreateDefaultStaticLibs()
	if err != nil {
		t.Fatal(err)
	}
	wantStatic := []*source.StaticLib{{}, {}}
	wantStatic[0].Path, wantStatic[1].Path = "A", "B"
	assertDescriptors(t, statics, wantStatic)

	dynamics, err := doc.CreateDefaultDynamicLibs()
	if err != nil {
		t.Fatal(err)
	}
	wantDynamic := []*source.DynamicLib{{}, {}}
	wantDynamic[0].Path, wantDynamic[1].Path = "A", "B"
	assertDescriptors(t, dynamics, wantDynamic)

	execs, err := doc.CreateDefaultExecutables()
	if err != nil {
		t.Fatal(err)
	}
	wantExec := []*source.Executable{{}, {}}
	wantExec[0].Path, wantExec[1].Path = "A", "B"
	assertDescriptors(t, execs, wantExec)

	none := None()
	if got, _ := none.CreateDefaultExecutables(); got != nil {
		t.Errorf("none document synthesized %v", got)
	}
}

func TestApplyTo_Idempotent(t *testing.T) {
	t.Parallel()

	doc, err := Get("windows")
	if err != nil {
		t.Fatal(err)
	}

	build := func() []source.Descriptor {
		dll := &source.DynamicLib{}
		dll.SetHeaders([]*source.HeaderFile{})
		exe := &source.Executable{}
		exe.Arch = "x64"
		return []source.Descriptor{&source.Source{}, &source.HeaderFile{}, &source.StaticLib{}, dll, exe}
	}

	once := build()
	mustApply(t, doc, once...)
	twice := build()
	mustApply(t, doc, twice...)
	mustApply(t, doc, twice...)

	for i := range once {
		if !source.Equal(once[i], twice[i]) {
			t.Errorf("element %d: once %s, twice %s", i, source.String(once[i]), source.String(twice[i]))
		}
	}
}

func TestApplyTo_NilElement(t *testing.T) {
	t.Parallel()

	lib := &source.StaticLib{}
	lib.SetHeaders([]*source.HeaderFile{nil})
	if err := None().ApplyTo(lib); err == nil {
		t.Error("expected error for nil nested header")
	}
}

func TestDocument_SaveRoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"windows", "linux", "macos"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			orig, err := Get(name)
			if err != nil {
				t.Fatal(err)
			}
			orig.DefaultHeaderFiles = []*HeaderFileDefaults{{SourceDefaults: SourceDefaults{Path: "api"}}}

			p := NewProperties()
			if err := orig.Save(p); err != nil {
				t.Fatal(err)
			}
			reloaded := Load("other", p)
			assertSameBehaviour(t, orig, reloaded)
		})
	}
}

// assertSameBehaviour checks that two documents default the same descriptors identically.
func assertSameBehaviour(t *testing.T, a, b *Document) {
	t.Helper()

	if a.Identifier != b.Identifier || a.BuildCommand != b.BuildCommand {
		t.Errorf("identity differs: %q/%q vs %q/%q", a.Identifier, a.BuildCommand, b.Identifier, b.BuildCommand)
	}

	build := func() []source.Descriptor {
		return []source.Descriptor{&source.HeaderFile{}, &source.StaticLib{}, &source.DynamicLib{}, &source.Executable{}}
	}
	left, right := build(), build()
	mustApply(t, a, left...)
	mustApply(t, b, right...)
	for i := range left {
		if !source.Equal(left[i], right[i]) {
			t.Errorf("element %d: %s vs %s", i, source.String(left[i]), source.String(right[i]))
		}
	}

	ah, _ := a.CreateDefaultHeaderFiles()
	bh, _ := b.CreateDefaultHeaderFiles()
	assertDescriptors(t, ah, bh)
	as, _ := a.CreateDefaultStaticLibs()
	bs, _ := b.CreateDefaultStaticLibs()
	assertDescriptors(t, as, bs)
	ad, _ := a.CreateDefaultDynamicLibs()
	bd, _ := b.CreateDefaultDynamicLibs()
	assertDescriptors(t, ad, bd)
	ae, _ := a.CreateDefaultExecutables()
	be, _ := b.CreateDefaultExecutables()
	assertDescriptors(t, ae, be)
}
