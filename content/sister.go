package content

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/audio"
	"github.com/lixenwraith/vignettes/body"
	"github.com/lixenwraith/vignettes/core"
	"github.com/lixenwraith/vignettes/grab"
	"github.com/lixenwraith/vignettes/physics"
	"github.com/lixenwraith/vignettes/scene"
	"github.com/lixenwraith/vignettes/trigger"
	"github.com/lixenwraith/vignettes/vignette"
	"github.com/lixenwraith/vignettes/vmath"
)

const (
	cubeSpin       = 1.0 // radians per second about Y
	cubeHalfSize   = 0.15
	sensorRadius   = 0.3
	ballRadius     = 0.08
	ballMass       = 1
	fallResetDepth = -1.0
)

var (
	pedestalHalfExtents = mgl64.Vec3{0.15, 0.45, 0.15}
	sisterPlayerPos     = mgl64.Vec3{0, 0.5, 1.5}
)

// Sister is the rescue scene's state
type Sister struct {
	cubeNode *scene.Node
	ballNode *scene.Node
	ballHome mgl64.Vec3
	cubeRot  mgl64.Quat

	Cube     core.Entity
	Sensor   trigger.Subject
	Ball     core.Entity
	BallGrab core.Entity
	Pedestal core.Entity
	Saved    bool
}

// NewSister returns the sister vignette factory
func NewSister() vignette.Factory {
	return vignette.New(vignette.Spec[Sister]{
		Name:   "sister",
		Scene:  "sister",
		Setup:  setupSister,
		Update: updateSister,
	})
}

func setupSister(ctx *vignette.Context, s *Sister) error {
	g := ctx.Scene
	ctx.SetPlayerPosition(sisterPlayerPos)

	s.cubeNode = g.Find("Cube")
	s.ballNode = g.Find("Ball")
	pedestal := g.Find("Pedestal")
	if s.cubeNode == nil || s.ballNode == nil || pedestal == nil {
		return fmt.Errorf("sister scene incomplete: %w", core.ErrUnknownName)
	}

	if _, err := addFloor(ctx); err != nil {
		return err
	}

	var err error
	s.Pedestal, err = ctx.Bodies.CreateCuboidBody(vmath.PoseAt(pedestal.WorldPosition()), 0, pedestalHalfExtents, vmath.IdentityPose())
	if err != nil {
		return err
	}
	ctx.Defer(removeBody(ctx, s.Pedestal))

	cubePose := s.cubeNode.WorldPose()
	s.cubeRot = cubePose.Rotation
	half := cubeHalfSize
	s.Cube, err = ctx.Bodies.CreateCuboidBody(cubePose, 1, mgl64.Vec3{half, half, half}, vmath.IdentityPose())
	if err != nil {
		return err
	}
	ctx.Defer(removeBody(ctx, s.Cube))
	if err := ctx.Bodies.SetBodyKind(s.Cube, body.KinematicPositioned); err != nil {
		return err
	}
	idx, err := ctx.Bodies.AttachCollider(s.Cube, physics.Ball(sensorRadius), vmath.IdentityPose(), true)
	if err != nil {
		return err
	}
	if s.Sensor, err = ctx.Triggers.EnableSensor(s.Cube, idx); err != nil {
		return err
	}

	s.ballHome = s.ballNode.WorldPosition()
	shape := physics.Ball(ballRadius)
	s.Ball, err = ctx.Bodies.CreateBody(body.Spec{Position: s.ballHome, Mass: ballMass, Shape: &shape})
	if err != nil {
		return err
	}
	ctx.Defer(removeBody(ctx, s.Ball))

	ball := s.Ball
	s.BallGrab, err = ctx.Grabs.Register("ball", grab.TargetFunc(func() (vmath.Pose, bool) {
		p, err := ctx.Bodies.Pose(ball)
		return p, err == nil
	}), 0)
	if err != nil {
		return err
	}
	ctx.Defer(func() { ctx.Grabs.Unregister(s.BallGrab) })

	ctx.ShowText("Carry the ball to the spinning cube", 4)
	return nil
}

func updateSister(ctx *vignette.Context, s *Sister) bool {
	s.cubeRot = s.cubeRot.Mul(mgl64.QuatRotate(cubeSpin*ctx.DT, mgl64.Vec3{0, 1, 0})).Normalize()
	if p, err := ctx.Bodies.Pose(s.Cube); err == nil {
		logFailure("sister", "spin cube", ctx.Bodies.SetKinematicTarget(s.Cube, p.Position, s.cubeRot))
	}
	logFailure("sister", "sync cube", ctx.Bodies.SyncVisual(s.cubeNode, s.Cube))

	if g, ok := ctx.Grabs.Get(s.BallGrab); ok && g.IsGrabbed {
		logFailure("sister", "hold ball", ctx.Bodies.SetBodyKind(s.Ball, body.KinematicPositioned))
		logFailure("sister", "move ball", ctx.Bodies.SetKinematicTarget(s.Ball, g.GrabPose.Position, g.GrabPose.Rotation))
	} else {
		logFailure("sister", "drop ball", ctx.Bodies.SetBodyKind(s.Ball, body.Dynamic))
		if p, err := ctx.Bodies.Pose(s.Ball); err == nil && p.Position[1] < fallResetDepth {
			logFailure("sister", "reset ball", ctx.Bodies.ResetDynamicBody(s.Ball, s.ballHome))
		}
	}
	logFailure("sister", "sync ball", ctx.Bodies.SyncVisual(s.ballNode, s.Ball))

	events, err := ctx.Triggers.Drain(s.Sensor)
	logFailure("sister", "drain sensor", err)
	for _, ev := range events {
		if ev.Kind == trigger.Enter && ev.Other == s.Ball {
			s.Saved = true
		}
	}
	if s.Saved {
		ctx.ShowText("You saved her!", 3)
		ctx.Play(audio.CueDone)
	}
	return s.Saved
}
