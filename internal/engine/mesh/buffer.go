// Package mesh owns the GPU-resident copy of a parsed mesh.
package mesh

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/splatworks/splatview/internal/logger"
	"github.com/splatworks/splatview/pkg/formats"
)

// ErrEmptyMesh is returned when a mesh with no vertices is uploaded.
var ErrEmptyMesh = errors.New("mesh has no vertices")

// Buffer is the GPU-resident form of a mesh: one static upload, one indexed
// draw per frame, released once at shutdown. All methods must run on the
// goroutine that owns the OpenGL context.
type Buffer struct {
	vao      uint32
	posVBO   uint32
	colorVBO uint32
	ebo      uint32

	vertexCount int32
	indexCount  int32
}

// Upload creates GPU buffers for the parsed mesh. Positions and colors go
// into separate vertex buffers (locations 0 and 1), triangle indices into an
// element buffer. A mesh without triangles is still uploaded and drawn as a
// point cloud.
func Upload(m *formats.Mesh) (*Buffer, error) {
	if m.VertexCount() == 0 {
		return nil, ErrEmptyMesh
	}

	b := &Buffer{
		vertexCount: int32(m.VertexCount()),
		indexCount:  int32(len(m.Indices)),
	}

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.posVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.posVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Positions)*4, unsafe.Pointer(&m.Positions[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 0, nil)
	gl.EnableVertexAttribArray(0)

	gl.GenBuffers(1, &b.colorVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.colorVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Colors)*4, unsafe.Pointer(&m.Colors[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 0, nil)
	gl.EnableVertexAttribArray(1)

	if b.indexCount > 0 {
		gl.GenBuffers(1, &b.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		b.Release()
		return nil, fmt.Errorf("mesh upload failed: GL error 0x%04x", glErr)
	}

	logger.Info("mesh uploaded",
		zap.Int32("vertices", b.vertexCount),
		zap.Int32("triangles", b.indexCount/3),
	)
	return b, nil
}

// Draw issues one draw call for the whole mesh. Indexed triangles when the
// mesh has faces, points otherwise.
func (b *Buffer) Draw() {
	gl.BindVertexArray(b.vao)
	if b.indexCount > 0 {
		gl.DrawElements(gl.TRIANGLES, b.indexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.POINTS, 0, b.vertexCount)
	}
	gl.BindVertexArray(0)
}

// TriangleCount returns the number of triangles resident on the GPU.
func (b *Buffer) TriangleCount() int {
	return int(b.indexCount / 3)
}

// Release frees the GPU-side storage. Safe to call once; the buffer must
// not be drawn afterwards.
func (b *Buffer) Release() {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		b.vao = 0
	}
	if b.posVBO != 0 {
		gl.DeleteBuffers(1, &b.posVBO)
		b.posVBO = 0
	}
	if b.colorVBO != 0 {
		gl.DeleteBuffers(1, &b.colorVBO)
		b.colorVBO = 0
	}
	if b.ebo != 0 {
		gl.DeleteBuffers(1, &b.ebo)
		b.ebo = 0
	}
}
