package testbed

import (
	"path/filepath"

	"github.com/glint3d/glint/engine"
	"github.com/glint3d/glint/engine/assets/loaders"
	"github.com/glint3d/glint/engine/config"
	"github.com/glint3d/glint/engine/containers"
	"github.com/glint3d/glint/engine/core"
	"github.com/glint3d/glint/engine/math"
	"github.com/glint3d/glint/engine/scene"
)

// Optional demo content, picked up when present under the asset root.
const (
	cubeTexturePath = "textures/crate.png"
	demoModelPath   = "models/demo.glb"
)

// inputQueueSize bounds how many camera deltas can pile up between frames.
// Overflow drops the oldest-unprocessed input rather than stalling.
const inputQueueSize = 64

// cubeSpinRate is the demo cube's rotation speed in radians per second.
const cubeSpinRate = math.K_PI / 10.0

// markerScale keeps the light marker cube small next to the scene.
const markerScale = 0.1

type TestGame struct {
	*engine.Game
}

type gameState struct {
	camera     *scene.Camera
	inputQueue *containers.RingQueue[scene.InputDelta]

	moveSpeed   float32
	rotateSpeed float32

	light scene.PointLight

	cube    *scene.Renderable
	model   *scene.Renderable
	marker  *scene.Renderable
	overlay *scene.Renderable

	cubeAngle    float32
	elapsed      float32
	metricsTimer float64

	width  uint32
	height uint32

	lastMouseX int32
	lastMouseY int32
	dragging   bool
}

func NewTestGame(cfg *config.Config) (*TestGame, error) {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: engine.NewApplicationConfig(cfg),
			State: &gameState{
				camera: scene.NewCamera(
					math.DegToRad(cfg.Camera.FovDegrees),
					cfg.Camera.NearPlane,
					cfg.Camera.FarPlane,
				),
				inputQueue:  containers.NewRingQueue[scene.InputDelta](inputQueueSize),
				moveSpeed:   cfg.Camera.MoveSpeed,
				rotateSpeed: cfg.Camera.RotateSpeed,
				light: scene.PointLight{
					Color:     math.NewVec4(cfg.Light.Color[0], cfg.Light.Color[1], cfg.Light.Color[2], cfg.Light.Color[3]),
					Intensity: cfg.Light.Intensity,
				},
				width:  cfg.Window.Width,
				height: cfg.Window.Height,
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	state := g.State.(*gameState)

	vertices, indices := scene.NewCubeMesh()
	state.cube = scene.NewLitMesh(&scene.LitMesh{
		Vertices: vertices,
		Indices:  indices,
		Material: scene.Material{
			Diffuse:  math.NewVec4(0.8, 0.3, 0.2, 1.0),
			Specular: math.NewVec4(1.0, 1.0, 1.0, 1.0),
		},
		Transform: math.NewMat4Translation(math.NewVec3(0, -2, 0)),
	})

	root := g.ApplicationConfig.AssetRoot
	if tex, err := loaders.LoadTexture(filepath.Join(root, cubeTexturePath)); err == nil {
		state.cube.Mesh.Material.Texture = tex
	} else {
		core.LogDebug("cube texture unavailable, rendering untextured: %s", err)
	}

	if mesh, err := loaders.LoadModel(filepath.Join(root, demoModelPath)); err == nil {
		mesh.Transform = math.NewMat4Translation(math.NewVec3(3, -2, 0))
		state.model = scene.NewLitMesh(mesh)
	} else {
		core.LogDebug("demo model unavailable: %s", err)
	}

	state.marker = scene.NewLightMarker(&scene.LightMarker{
		Transform: math.NewMat4Identity(),
	})

	state.overlay = scene.NewOverlay(scene.NewTriangleOverlay(math.NewVec4(0.1, 0.9, 0.3, 0.6)))

	core.EventRegister(core.EVENT_CODE_MOUSE_MOVED, g.onMouseMoved)
	core.EventRegister(core.EVENT_CODE_BUTTON_PRESSED, g.onMouseButton)
	core.EventRegister(core.EVENT_CODE_BUTTON_RELEASED, g.onMouseButton)

	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)

	g.queueMovement(state, deltaTime)

	// Apply all buffered camera input at the frame boundary so a frame sees
	// one consistent pose.
	state.inputQueue.Drain(func(d scene.InputDelta) {
		d.Apply(state.camera)
	})

	state.elapsed += float32(deltaTime)

	// Spin the demo cube in place.
	state.cubeAngle = math.WrapAngle(state.cubeAngle + cubeSpinRate*float32(deltaTime))
	state.cube.Mesh.Transform = math.NewMat4Translation(math.NewVec3(0, -2, 0)).
		Mul(math.NewMat4RotationY(state.cubeAngle))

	// The light wanders its orbit; the marker follows it.
	state.light.Position = scene.OrbitPosition(state.elapsed)
	state.marker.Marker.Transform = math.NewMat4Translation(state.light.Position).
		Mul(math.NewMat4Scale(math.NewVec3(markerScale, markerScale, markerScale)))

	state.metricsTimer += deltaTime
	if state.metricsTimer >= 5.0 {
		state.metricsTimer = 0
		fps, frameTime := core.MetricsFrame()
		core.LogInfo("FPS: %.1f (%.2fms avg)", fps, frameTime)
	}

	if core.InputIsKeyUp(core.KEY_P) && core.InputWasKeyDown(core.KEY_P) {
		pos := state.camera.Position()
		core.LogInfo("Pos:[%.2f, %.2f, %.2f]", pos.X, pos.Y, pos.Z)
	}

	return nil
}

// queueMovement translates held keys into camera move deltas for this frame.
func (g *TestGame) queueMovement(state *gameState, deltaTime float64) {
	magnitude := state.moveSpeed * float32(deltaTime)

	enqueueMove := func(dir scene.MoveDirection) {
		state.inputQueue.Enqueue(scene.InputDelta{
			Move:      true,
			Direction: dir,
			Magnitude: magnitude,
		})
	}

	if core.InputIsKeyDown(core.KEY_W) || core.InputIsKeyDown(core.KEY_UP) {
		enqueueMove(scene.MoveForward)
	}
	if core.InputIsKeyDown(core.KEY_S) || core.InputIsKeyDown(core.KEY_DOWN) {
		enqueueMove(scene.MoveBackward)
	}
	if core.InputIsKeyDown(core.KEY_A) || core.InputIsKeyDown(core.KEY_LEFT) {
		enqueueMove(scene.MoveLeft)
	}
	if core.InputIsKeyDown(core.KEY_D) || core.InputIsKeyDown(core.KEY_RIGHT) {
		enqueueMove(scene.MoveRight)
	}
	if core.InputIsKeyDown(core.KEY_Z) {
		enqueueMove(scene.MoveUp)
	}
	if core.InputIsKeyDown(core.KEY_X) {
		enqueueMove(scene.MoveDown)
	}
}

func (g *TestGame) Render(deltaTime float64) (*scene.FramePacket, error) {
	state := g.State.(*gameState)

	aspect := float32(state.width) / float32(max(state.height, 1))

	packet := &scene.FramePacket{
		DeltaTime: deltaTime,
		State: scene.FrameState{
			View:           state.camera.ViewMatrix(),
			Projection:     state.camera.ProjectionMatrix(aspect),
			CameraPosition: state.camera.Position(),
			Light:          state.light,
		},
		Renderables: make([]*scene.Renderable, 0, 4),
	}
	packet.Renderables = append(packet.Renderables, state.cube)
	if state.model != nil {
		packet.Renderables = append(packet.Renderables, state.model)
	}
	packet.Renderables = append(packet.Renderables, state.marker, state.overlay)
	return packet, nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	return nil
}

// onMouseButton tracks the middle-button drag that drives camera look.
func (g *TestGame) onMouseButton(context core.EventContext) {
	me, ok := context.Data.(*core.MouseEvent)
	if !ok || me.Button != core.BUTTON_MIDDLE {
		return
	}
	state := g.State.(*gameState)
	if context.Type == core.EVENT_CODE_BUTTON_PRESSED {
		state.dragging = true
		state.lastMouseX, state.lastMouseY = core.InputGetMousePosition()
	} else {
		state.dragging = false
	}
}

func (g *TestGame) onMouseMoved(context core.EventContext) {
	me, ok := context.Data.(*core.MouseEvent)
	if !ok {
		return
	}
	state := g.State.(*gameState)
	if !state.dragging {
		return
	}

	dx := me.PosX - state.lastMouseX
	dy := me.PosY - state.lastMouseY
	state.lastMouseX = me.PosX
	state.lastMouseY = me.PosY

	// Dragging right yaws right, dragging down pitches down.
	state.inputQueue.Enqueue(scene.InputDelta{
		DeltaYaw:   float32(dx) * state.rotateSpeed,
		DeltaPitch: -float32(dy) * state.rotateSpeed,
	})
}
