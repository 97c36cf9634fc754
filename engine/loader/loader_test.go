package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-scroll/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangleBuffer returns three XY-plane positions followed by three uint16 indices.
func triangleBuffer() []byte {
	var buf bytes.Buffer
	for _, v := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(v))
	}
	for _, i := range []uint16{0, 1, 2} {
		_ = binary.Write(&buf, binary.LittleEndian, i)
	}
	return buf.Bytes()
}

// triangleDoc builds a single-triangle document. uri may be empty for GLB use.
func triangleDoc(uri string, extra map[string]any) map[string]any {
	doc := map[string]any{
		"asset":  map[string]any{"version": "2.0"},
		"scene":  0,
		"scenes": []any{map[string]any{"name": "triangle", "nodes": []int{0}}},
		"nodes":  []any{map[string]any{"mesh": 0, "translation": []float32{1, 0, 0}}},
		"meshes": []any{map[string]any{"primitives": []any{map[string]any{
			"attributes": map[string]int{"POSITION": 0},
			"indices":    1,
			"material":   0,
		}}}},
		"materials": []any{map[string]any{"pbrMetallicRoughness": map[string]any{
			"baseColorFactor": []float32{1, 0, 0, 1},
		}}},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			map[string]any{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"},
		},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			map[string]any{"buffer": 0, "byteOffset": 36, "byteLength": 6},
		},
	}
	buffer := map[string]any{"byteLength": 42}
	if uri != "" {
		buffer["uri"] = uri
	}
	doc["buffers"] = []any{buffer}
	for k, v := range extra {
		doc[k] = v
	}
	return doc
}

func triangleGLTF(t *testing.T, extra map[string]any) []byte {
	t.Helper()
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(triangleBuffer())
	data, err := json.Marshal(triangleDoc(uri, extra))
	require.NoError(t, err)
	return data
}

func triangleGLB(t *testing.T) []byte {
	t.Helper()
	jsonData, err := json.Marshal(triangleDoc("", nil))
	require.NoError(t, err)
	for len(jsonData)%4 != 0 {
		jsonData = append(jsonData, ' ')
	}
	bin := triangleBuffer()
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	var out bytes.Buffer
	total := 12 + 8 + len(jsonData) + 8 + len(bin)
	_ = binary.Write(&out, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)})
	_ = binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(jsonData)), ChunkType: gltfGLBChunkJSON})
	out.Write(jsonData)
	_ = binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(bin)), ChunkType: gltfGLBChunkBIN})
	out.Write(bin)
	return out.Bytes()
}

func assertTriangle(t *testing.T, m model.Model) {
	t.Helper()
	require.Len(t, m.Vertices(), 3)
	assert.Equal(t, []uint32{0, 1, 2}, m.Indices())

	// Node translation is baked into the positions.
	assert.Equal(t, [3]float32{1, 0, 0}, m.Vertices()[0].Position)
	assert.Equal(t, [3]float32{2, 0, 0}, m.Vertices()[1].Position)

	// Missing normals are generated from the counter-clockwise winding.
	for _, v := range m.Vertices() {
		assert.InDelta(t, 1, v.Normal[2], 1e-6)
		assert.Equal(t, [4]float32{1, 0, 0, 1}, v.Color)
	}

	bmin, bmax := m.Bounds()
	assert.Equal(t, [3]float32{1, 0, 0}, bmin)
	assert.Equal(t, [3]float32{2, 1, 0}, bmax)
}

func TestLoadReaderGLTF(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	m, err := l.LoadReader("tri", bytes.NewReader(triangleGLTF(t, nil)), false)
	require.NoError(t, err)
	assert.Equal(t, "triangle", m.Name())
	assertTriangle(t, m)
	assert.Same(t, m, l.Get("tri"))
}

func TestLoadGLB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.glb")
	require.NoError(t, os.WriteFile(path, triangleGLB(t), 0o644))

	m, err := NewLoader(BackendTypeGLTF).Load(path)
	require.NoError(t, err)
	assertTriangle(t, m)
}

func TestLoadRejectsDraco(t *testing.T) {
	data := triangleGLTF(t, map[string]any{
		"extensionsUsed":     []string{gltfExtensionDraco},
		"extensionsRequired": []string{gltfExtensionDraco},
	})
	_, err := NewLoader(BackendTypeGLTF).LoadReader("draco", bytes.NewReader(data), false)
	assert.True(t, errors.Is(err, ErrUnsupportedExtension))
}

func TestLoadIsOneShot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.gltf")
	l := NewLoader(BackendTypeGLTF)

	_, first := l.Load(path)
	require.Error(t, first)

	// Creating the file afterwards does not trigger a retry.
	require.NoError(t, os.WriteFile(path, triangleGLTF(t, nil), 0o644))
	_, second := l.Load(path)
	assert.Equal(t, first, second)
	assert.Empty(t, l.Models())
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := NewLoader(BackendTypeGLTF).Load("model.obj")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestLoadAsyncDispatchesResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.gltf")
	require.NoError(t, os.WriteFile(path, triangleGLTF(t, nil), 0o644))

	dispatched := make(chan func(), 1)
	l := NewLoader(BackendTypeGLTF,
		WithWorkers(2),
		WithDispatcher(func(f func()) { dispatched <- f }),
		WithModelOptions(model.WithScale([3]float32{2, 2, 2})),
	)

	var got model.Model
	var gotErr error
	l.LoadAsync(path, func(m model.Model, err error) {
		got, gotErr = m, err
	})

	select {
	case f := <-dispatched:
		f()
	case <-time.After(5 * time.Second):
		t.Fatal("load did not complete")
	}

	require.NoError(t, gotErr)
	assertTriangle(t, got)
	assert.Equal(t, [3]float32{2, 2, 2}, got.Scale())
}

func TestLoadAsyncReportsFailure(t *testing.T) {
	done := make(chan error, 1)
	l := NewLoader(BackendTypeGLTF)
	l.LoadAsync(filepath.Join(t.TempDir(), "nope.glb"), func(m model.Model, err error) {
		assert.Nil(t, m)
		done <- err
	})

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("load did not complete")
	}
}
