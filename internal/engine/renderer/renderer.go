// Package renderer provides OpenGL rendering for the viewer: the 3D mesh
// pass and the 2D loading-screen overlay.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/splatworks/splatview/internal/engine/mesh"
	"github.com/splatworks/splatview/internal/engine/shader"
	"github.com/splatworks/splatview/internal/logger"
	"github.com/splatworks/splatview/pkg/math"
)

const sceneVertexShader = `#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aColor;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vColor;

void main() {
    gl_Position = uProjection * uView * uModel * vec4(aPos, 1.0);
    vColor = aColor;
}
`

const sceneFragmentShader = `#version 410 core
in vec3 vColor;
out vec4 FragColor;

void main() {
    FragColor = vec4(vColor, 1.0);
}
`

const solidVertexShader = `#version 410 core
layout (location = 0) in vec2 aPos;
layout (location = 1) in vec4 aColor;

uniform mat4 uProjection;

out vec4 vColor;

void main() {
    gl_Position = uProjection * vec4(aPos, 0.0, 1.0);
    vColor = aColor;
}
`

const solidFragmentShader = `#version 410 core
in vec4 vColor;
out vec4 FragColor;

void main() {
    FragColor = vColor;
}
`

// Progress bar geometry and palette, centered on screen.
const (
	barWidth  = 400.0
	barHeight = 30.0
)

// Config holds renderer configuration.
type Config struct {
	Width     int
	Height    int
	FOV       float32 // vertical field of view, degrees
	NearPlane float32
	FarPlane  float32
}

// Renderer handles all OpenGL rendering. It must be created and used on the
// goroutine that owns the OpenGL context.
type Renderer struct {
	config Config

	// 3D mesh pass
	sceneProgram  uint32
	locModel      int32
	locView       int32
	locProjection int32
	projection    math.Mat4

	// 2D overlay pass (loading/error screens)
	solidProgram  uint32
	locOrtho      int32
	solidVAO      uint32
	solidVBO      uint32
	solidVertices []float32
}

// New creates a renderer. The OpenGL context must already exist.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:        cfg,
		solidVertices: make([]float32, 0, 256),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	var err error
	r.sceneProgram, err = shader.CompileProgram(sceneVertexShader, sceneFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("scene shader: %w", err)
	}
	r.locModel = shader.MustGetUniform(r.sceneProgram, "uModel")
	r.locView = shader.MustGetUniform(r.sceneProgram, "uView")
	r.locProjection = shader.MustGetUniform(r.sceneProgram, "uProjection")

	r.solidProgram, err = shader.CompileProgram(solidVertexShader, solidFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("overlay shader: %w", err)
	}
	r.locOrtho = shader.MustGetUniform(r.solidProgram, "uProjection")

	gl.GenVertexArrays(1, &r.solidVAO)
	gl.BindVertexArray(r.solidVAO)
	gl.GenBuffers(1, &r.solidVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.solidVBO)
	// 2 position + 4 color floats per vertex
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 6*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, 6*4, unsafe.Pointer(uintptr(2*4)))
	gl.EnableVertexAttribArray(1)
	gl.BindVertexArray(0)

	r.updateProjection()

	return r, nil
}

// Close frees renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.solidVAO != 0 {
		gl.DeleteVertexArrays(1, &r.solidVAO)
	}
	if r.solidVBO != 0 {
		gl.DeleteBuffers(1, &r.solidVBO)
	}
	if r.sceneProgram != 0 {
		gl.DeleteProgram(r.sceneProgram)
	}
	if r.solidProgram != 0 {
		gl.DeleteProgram(r.solidProgram)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.updateProjection()
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

func (r *Renderer) updateProjection() {
	aspect := float32(r.config.Width) / float32(r.config.Height)
	r.projection = math.Perspective(
		math.Radians(r.config.FOV), aspect,
		r.config.NearPlane, r.config.FarPlane,
	)
}

// DrawScene clears the frame and draws the mesh with the given model and
// view transforms.
func (r *Renderer) DrawScene(buf *mesh.Buffer, model, view math.Mat4) {
	gl.ClearColor(0.1, 0.1, 0.1, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(r.sceneProgram)
	gl.UniformMatrix4fv(r.locModel, 1, false, model.Ptr())
	gl.UniformMatrix4fv(r.locView, 1, false, view.Ptr())
	gl.UniformMatrix4fv(r.locProjection, 1, false, r.projection.Ptr())

	buf.Draw()
}

// DrawLoadingScreen clears the frame and draws a centered progress bar
// filled proportionally to progress (0..1).
func (r *Renderer) DrawLoadingScreen(progress float32) {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	r.beginOverlay(25.0/255.0, 25.0/255.0, 25.0/255.0)

	barX := (float32(r.config.Width) - barWidth) / 2
	barY := (float32(r.config.Height) - barHeight) / 2

	r.queueRect(barX, barY, barWidth, barHeight, 50.0/255.0, 50.0/255.0, 50.0/255.0, 1)
	r.queueRect(barX, barY, barWidth*progress, barHeight, 100.0/255.0, 200.0/255.0, 1, 1)

	r.flushOverlay()
}

// DrawErrorScreen clears the frame and draws a full red bar where the
// progress bar was, signalling a failed load until the user exits.
func (r *Renderer) DrawErrorScreen() {
	r.beginOverlay(40.0/255.0, 15.0/255.0, 15.0/255.0)

	barX := (float32(r.config.Width) - barWidth) / 2
	barY := (float32(r.config.Height) - barHeight) / 2
	r.queueRect(barX, barY, barWidth, barHeight, 200.0/255.0, 60.0/255.0, 60.0/255.0, 1)

	r.flushOverlay()
}

func (r *Renderer) beginOverlay(cr, cg, cb float32) {
	gl.ClearColor(cr, cg, cb, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	r.solidVertices = r.solidVertices[:0]
}

// queueRect appends two triangles for an axis-aligned rectangle in screen
// coordinates (origin top-left).
func (r *Renderer) queueRect(x, y, w, h, cr, cg, cb, ca float32) {
	x2, y2 := x+w, y+h
	r.solidVertices = append(r.solidVertices,
		x, y, cr, cg, cb, ca,
		x2, y, cr, cg, cb, ca,
		x2, y2, cr, cg, cb, ca,
		x, y, cr, cg, cb, ca,
		x2, y2, cr, cg, cb, ca,
		x, y2, cr, cg, cb, ca,
	)
}

func (r *Renderer) flushOverlay() {
	if len(r.solidVertices) == 0 {
		return
	}

	gl.Disable(gl.DEPTH_TEST)
	defer gl.Enable(gl.DEPTH_TEST)

	ortho := math.Ortho(0, float32(r.config.Width), float32(r.config.Height), 0, -1, 1)

	gl.UseProgram(r.solidProgram)
	gl.UniformMatrix4fv(r.locOrtho, 1, false, ortho.Ptr())

	gl.BindVertexArray(r.solidVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.solidVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(r.solidVertices)*4, unsafe.Pointer(&r.solidVertices[0]), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(r.solidVertices)/6))
	gl.BindVertexArray(0)
}
