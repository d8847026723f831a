package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnnotationIgnoresPlainLines(t *testing.T) {
	a, err := parseAnnotation("var<uniform> frame: FrameUniforms;", 1)
	require.NoError(t, err)
	assert.Nil(t, a)

	a, err = parseAnnotation("// ordinary comment", 2)
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestParseAnnotationInclude(t *testing.T) {
	a, err := parseAnnotation("//@kiss:include frame", 7)
	require.NoError(t, err)
	require.NotNil(t, a)

	assert.Equal(t, annotationTypeInclude, a.Type)
	assert.Equal(t, []AnnotationArg{AnnotationArgFrame}, a.Args)
	assert.Equal(t, 7, a.Line)
	assert.Nil(t, a.Group)
	assert.Nil(t, a.Binding)
}

func TestParseAnnotationIncludeAcceptsHelperSource(t *testing.T) {
	a, err := parseAnnotation("//@kiss:include expand", 1)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, []AnnotationArg{annotationArgExpand}, a.Args)
}

func TestParseAnnotationGroup(t *testing.T) {
	a, err := parseAnnotation("//@kiss:group 0 0 storage_uniform frame frame", 3)
	require.NoError(t, err)
	require.NotNil(t, a)

	assert.Equal(t, AnnotationTypeBindingGroup, a.Type)
	require.NotNil(t, a.Group)
	require.NotNil(t, a.Binding)
	assert.Equal(t, 0, *a.Group)
	assert.Equal(t, 0, *a.Binding)
	assert.Equal(t, annotationArgStorageTypeUniform, a.Args[0])
	assert.Equal(t, AnnotationArg("frame"), a.Args[1])
	assert.Equal(t, AnnotationArgFrame, a.Args[2])
}

func TestParseAnnotationGroupArrayType(t *testing.T) {
	a, err := parseAnnotation("//@kiss:group 1 0 storage_read edges array<edge>", 5)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, AnnotationArg("array<edge>"), a.Args[2])
}

func TestParseAnnotationProvider(t *testing.T) {
	a, err := parseAnnotation("//@kiss:provider 2 0 material albedo_texture", 9)
	require.NoError(t, err)
	require.NotNil(t, a)

	assert.Equal(t, AnnotationTypeProvider, a.Type)
	assert.Equal(t, 2, *a.Group)
	assert.Equal(t, 0, *a.Binding)
	require.Len(t, a.Args, 2)
	assert.Equal(t, AnnotationArgMaterial, a.Args[0])
	assert.Equal(t, AnnotationArgAlbedoTexture, a.Args[1])
}

func TestParseAnnotationErrors(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"empty annotation", "//@kiss:"},
		{"unknown type", "//@kiss:bind 0 0 frame"},
		{"include missing arg", "//@kiss:include"},
		{"include unknown struct", "//@kiss:include nonsense"},
		{"group expand helper", "//@kiss:group 0 0 storage_uniform helpers expand"},
		{"group wrong arity", "//@kiss:group 0 0 storage_uniform frame"},
		{"group bad index", "//@kiss:group zero 0 storage_uniform frame frame"},
		{"group bad address space", "//@kiss:group 0 0 push_constant frame frame"},
		{"group unknown array element", "//@kiss:group 0 0 storage_read xs array<nonsense>"},
		{"provider wrong arity", "//@kiss:provider 0 frame_data"},
		{"provider unknown identity", "//@kiss:provider 0 0 nonsense"},
		{"provider unknown role", "//@kiss:provider 2 0 material shiny_texture"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := parseAnnotation(tc.line, 12)
			assert.Error(t, err)
			assert.Nil(t, a)
			if err != nil {
				assert.Contains(t, err.Error(), "line 12")
			}
		})
	}
}

func TestProcessInjectsIncludedStruct(t *testing.T) {
	p := NewPreProcessor()

	out, err := p.Process("//@kiss:include view\n@vertex\nfn vs_main() {}\n")
	require.NoError(t, err)

	assert.Contains(t, out, "struct ViewUniforms")
	assert.NotContains(t, out, annotationPrefix)
	assert.Empty(t, p.Declarations())
}

func TestProcessGeneratesGroupDeclaration(t *testing.T) {
	p := NewPreProcessor()

	out, err := p.Process("//@kiss:group 0 0 storage_uniform view_data view\n")
	require.NoError(t, err)

	assert.Contains(t, out, "@group(0) @binding(0) var<uniform> view_data: ViewUniforms;")

	decls := p.Declarations()
	require.Len(t, decls, 1)
	assert.Equal(t, AnnotationTypeBindingGroup, decls[0].Type)
	assert.Equal(t, 0, *decls[0].Group)
}

func TestProcessGeneratesArrayGroupDeclaration(t *testing.T) {
	p := NewPreProcessor()

	out, err := p.Process("//@kiss:group 1 0 storage_read edges array<edge>\n")
	require.NoError(t, err)

	assert.Contains(t, out, "@group(1) @binding(0) var<storage, read> edges: array<Edge>;")
}

func TestProcessRecordsProviderWithoutOutput(t *testing.T) {
	p := NewPreProcessor()
	src := strings.Join([]string{
		"//@kiss:provider 1 0 text_atlas",
		"@group(1) @binding(0) var atlas: texture_2d<f32>;",
	}, "\n")

	out, err := p.Process(src)
	require.NoError(t, err)

	// The hand-written declaration stays, the annotation line disappears.
	assert.Contains(t, out, "var atlas: texture_2d<f32>;")
	assert.NotContains(t, out, annotationPrefix)

	decls := p.Declarations()
	require.Len(t, decls, 1)
	assert.Equal(t, AnnotationTypeProvider, decls[0].Type)
	assert.Equal(t, AnnotationArgTextAtlas, decls[0].Args[0])
}

func TestProcessResetsDeclarationsBetweenCalls(t *testing.T) {
	p := NewPreProcessor()

	_, err := p.Process("//@kiss:provider 0 0 frame_data\n")
	require.NoError(t, err)
	require.Len(t, p.Declarations(), 1)

	_, err = p.Process("fn noop() {}\n")
	require.NoError(t, err)
	assert.Empty(t, p.Declarations())
}

func TestProcessReportsAnnotationErrors(t *testing.T) {
	p := NewPreProcessor()

	_, err := p.Process("fn ok() {}\n//@kiss:include nonsense\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestBuiltinShaderSourcesProcessCleanly(t *testing.T) {
	p := NewPreProcessor()
	sources := map[string]string{
		"screen_expand": screenExpandSource,
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			out, err := p.Process(src)
			require.NoError(t, err)
			assert.NotContains(t, out, annotationPrefix)
		})
	}
}
