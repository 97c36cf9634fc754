package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnnotationIgnoresPlainLines(t *testing.T) {
	for _, line := range []string{"", "struct Foo {", "// ordinary comment", "@group(0) @binding(0) var<uniform> c: C;"} {
		a, err := parseAnnotation(line, 1)
		assert.NoError(t, err)
		assert.Nil(t, a)
	}
}

func TestParseAnnotationInclude(t *testing.T) {
	a, err := parseAnnotation("  //@oxy:include camera", 3)
	require.NoError(t, err)
	require.NotNil(t, a)

	assert.Equal(t, annotationTypeInclude, a.Type)
	assert.Equal(t, []AnnotationArg{AnnotationArgCamera}, a.Args)
	assert.Equal(t, 3, a.Line)
	assert.Nil(t, a.Group)
	assert.Nil(t, a.Binding)
}

func TestParseAnnotationGroup(t *testing.T) {
	a, err := parseAnnotation("//@oxy:group 1 1 storage_read particles array<particle>", 7)
	require.NoError(t, err)
	require.NotNil(t, a)

	assert.Equal(t, AnnotationTypeBindingGroup, a.Type)
	assert.Equal(t, []AnnotationArg{"storage_read", "particles", "array<particle>"}, a.Args)
	require.NotNil(t, a.Group)
	require.NotNil(t, a.Binding)
	assert.Equal(t, 1, *a.Group)
	assert.Equal(t, 1, *a.Binding)
}

func TestParseAnnotationProvider(t *testing.T) {
	a, err := parseAnnotation("//@oxy:provider 1 0 field", 2)
	require.NoError(t, err)
	require.NotNil(t, a)

	assert.Equal(t, AnnotationTypeProvider, a.Type)
	assert.Equal(t, []AnnotationArg{AnnotationArgField}, a.Args)
	assert.Equal(t, 1, *a.Group)
	assert.Equal(t, 0, *a.Binding)
}

func TestParseAnnotationErrors(t *testing.T) {
	cases := map[string]string{
		"empty":            "//@oxy:",
		"unknown type":     "//@oxy:texture 0 0",
		"include no arg":   "//@oxy:include",
		"include unknown":  "//@oxy:include skeleton",
		"group short":      "//@oxy:group 0 0 storage_uniform camera",
		"group bad number": "//@oxy:group x 0 storage_uniform camera camera",
		"group bad space":  "//@oxy:group 0 0 storage_write camera camera",
		"group bad type":   "//@oxy:group 0 0 storage_uniform bones array<bone>",
		"provider short":   "//@oxy:provider 0 field",
		"provider unknown": "//@oxy:provider 0 0 shadow",
	}
	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			a, err := parseAnnotation(line, 9)
			assert.Error(t, err)
			assert.Nil(t, a)
			assert.Contains(t, err.Error(), "line 9")
		})
	}
}
