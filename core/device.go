package core

// ShaderStage identifies one programmable pipeline stage.
type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StageFragment
)

func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	}
	return "unknown"
}

type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

type PolygonFace int

const (
	FaceFront PolygonFace = iota
	FaceFrontAndBack
)

type PolygonMode int

const (
	PolygonFill PolygonMode = iota
	PolygonLine
)

// Device is the slice of the graphics API the viewer core drives. Every call
// must happen on the goroutine that owns the rendering context.
//
// Handles are plain uint32 values; zero is never a valid handle. Location
// lookups return -1 for names the program does not expose.
type Device interface {
	Version() string

	CreateShader(stage ShaderStage) uint32
	// CompileShader sets the source of shader and compiles it, returning the
	// compile status and the info log.
	CompileShader(shader uint32, source string) (bool, string)
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	LinkProgram(program uint32) (bool, string)
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	CurrentProgram() uint32

	UniformLocation(program uint32, name string) int32
	AttribLocation(program uint32, name string) int32

	// Uniform* upload 1 to 4 components to a single uniform.
	Uniformf(location int32, v ...float32)
	Uniformd(location int32, v ...float64)
	Uniformi(location int32, v ...int32)
	Uniformui(location int32, v ...uint32)
	// Uniform*v upload count elements of a components-wide vector array.
	Uniformfv(location int32, components int, count int32, v []float32)
	Uniformdv(location int32, components int, count int32, v []float64)
	Uniformiv(location int32, components int, count int32, v []int32)
	Uniformuiv(location int32, components int, count int32, v []uint32)
	// UniformMatrixfv uploads count dim x dim matrices, column-major unless
	// transpose is set.
	UniformMatrixfv(location int32, dim int, count int32, transpose bool, v []float32)

	VertexAttribf(index uint32, v ...float32)
	VertexAttribd(index uint32, v ...float64)
	VertexAttribIi(index uint32, v ...int32)
	VertexAttribIui(index uint32, v ...uint32)

	GenVertexArray() uint32
	DeleteVertexArray(vao uint32)
	BindVertexArray(vao uint32)
	GenBuffer() uint32
	DeleteBuffer(buffer uint32)
	BindBuffer(target BufferTarget, buffer uint32)
	BufferFloat32(target BufferTarget, data []float32)
	BufferUint32(target BufferTarget, data []uint32)
	// VertexAttribPointer describes a float attribute; stride and offset
	// are in floats.
	VertexAttribPointer(index uint32, size, stride, offset int)

	DrawElements(count int32)

	// UploadTexture2D creates a mipmapped, repeat-wrapped RGB texture from
	// tightly packed pixels and returns its handle.
	UploadTexture2D(width, height int, rgb []byte) uint32
	DeleteTexture(texture uint32)
	ActiveTexture(unit uint32)
	BindTexture2D(texture uint32)

	Viewport(x, y, width, height int32)
	Clear(color Color)
	SetDepthTest(enabled bool)
	SetPolygonMode(face PolygonFace, mode PolygonMode)
}
