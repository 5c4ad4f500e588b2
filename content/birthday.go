package content

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/audio"
	"github.com/lixenwraith/vignettes/body"
	"github.com/lixenwraith/vignettes/core"
	"github.com/lixenwraith/vignettes/grab"
	"github.com/lixenwraith/vignettes/particle"
	"github.com/lixenwraith/vignettes/scene"
	"github.com/lixenwraith/vignettes/trigger"
	"github.com/lixenwraith/vignettes/vignette"
	"github.com/lixenwraith/vignettes/vmath"
)

const (
	// PassesToBlowOut is how many paddle passes through a blow zone put a candle out
	PassesToBlowOut = 3

	candleCount      = 3
	zoneHalfHeight   = 0.06
	zoneRadius       = 0.07
	puffDuration     = 0.25
	paddleMass       = 10
	tableHalfHeight  = 0.07
	tableRadius      = 1.55
	flickerBase      = 0.8
	flickerRange     = 0.4
	candleLightBase  = 1.0
	candleLightRange = 0.2
)

var (
	paddleHalfExtents = mgl64.Vec3{0.1, 0.02, 0.2}
	paddleOffset      = vmath.PoseAt(mgl64.Vec3{0, 0, 0.1})
	birthdayPlayerPos = mgl64.Vec3{0, 0.5, 2}
)

type candle struct {
	fire      *scene.Node
	initScale mgl64.Vec3
	zone      trigger.Subject
	passes    int
	out       bool
}

type puff struct {
	emitter   core.Entity
	remaining float64
}

// Birthday is the cake scene's state
type Birthday struct {
	light   *scene.Node
	paddle  *scene.Node
	candles []*candle
	puffs   []puff

	Paddle     core.Entity
	PaddleGrab core.Entity
	Table      core.Entity
	Floor      core.Entity
}

// CandlesOut returns how many candles are out
func (b *Birthday) CandlesOut() int {
	n := 0
	for _, c := range b.candles {
		if c.out {
			n++
		}
	}
	return n
}

// Zones returns each candle's blow-zone trigger
func (b *Birthday) Zones() []trigger.Subject {
	out := make([]trigger.Subject, len(b.candles))
	for i, c := range b.candles {
		out[i] = c.zone
	}
	return out
}

// NewBirthday returns the birthday vignette factory
func NewBirthday() vignette.Factory {
	return vignette.New(vignette.Spec[Birthday]{
		Name:     "birthday",
		Scene:    "birthday",
		Setup:    setupBirthday,
		Update:   updateBirthday,
		Teardown: teardownBirthday,
	})
}

func setupBirthday(ctx *vignette.Context, b *Birthday) error {
	g := ctx.Scene
	ctx.SetPlayerPosition(birthdayPlayerPos)

	b.light = g.Find("CandleLight")
	b.paddle = g.Find("Paddle")
	table := g.Find("Table")
	if b.light == nil || b.paddle == nil || table == nil {
		return fmt.Errorf("birthday scene incomplete: %w", core.ErrUnknownName)
	}

	var err error
	if b.Floor, err = addFloor(ctx); err != nil {
		return err
	}

	b.Table, err = ctx.Bodies.CreateCylinderBody(vmath.PoseAt(table.WorldPosition()), 0, tableHalfHeight, tableRadius, vmath.IdentityPose())
	if err != nil {
		return err
	}
	ctx.Defer(removeBody(ctx, b.Table))

	b.Paddle, err = ctx.Bodies.CreateCuboidBody(b.paddle.WorldPose(), paddleMass, paddleHalfExtents, paddleOffset)
	if err != nil {
		return err
	}
	ctx.Defer(removeBody(ctx, b.Paddle))

	paddle := b.Paddle
	b.PaddleGrab, err = ctx.Grabs.Register("paddle", grab.TargetFunc(func() (vmath.Pose, bool) {
		p, err := ctx.Bodies.Pose(paddle)
		return p, err == nil
	}), 0)
	if err != nil {
		return err
	}
	ctx.Defer(func() { ctx.Grabs.Unregister(b.PaddleGrab) })

	for i := 1; i <= candleCount; i++ {
		fire := g.Find(fmt.Sprintf("CandleFire%d", i))
		if fire == nil {
			return fmt.Errorf("candle fire %d: %w", i, core.ErrUnknownName)
		}
		zone, err := ctx.Triggers.CreateCylinderTrigger(zoneHalfHeight, zoneRadius, vmath.PoseAt(fire.WorldPosition()))
		if err != nil {
			return err
		}
		ctx.Defer(func() { ctx.Triggers.RemoveTrigger(zone) })
		b.candles = append(b.candles, &candle{fire: fire, initScale: fire.Scale, zone: zone})
	}

	ctx.ShowText("Blow out the candles", 4)
	ctx.Defer(func() {
		for _, p := range b.puffs {
			ctx.Particles.Remove(p.emitter)
		}
		b.puffs = nil
	})
	return nil
}

func updateBirthday(ctx *vignette.Context, b *Birthday) bool {
	b.light.Intensity = ctx.Rand.Float64()*candleLightRange + candleLightBase

	logFailure("birthday", "sync paddle", ctx.Bodies.SyncVisual(b.paddle, b.Paddle))
	if g, ok := ctx.Grabs.Get(b.PaddleGrab); ok && g.IsGrabbed {
		logFailure("birthday", "hold paddle", ctx.Bodies.SetBodyKind(b.Paddle, body.KinematicPositioned))
		logFailure("birthday", "move paddle", ctx.Bodies.SetKinematicTarget(b.Paddle, g.GrabPose.Position, g.GrabPose.Rotation))
	} else {
		logFailure("birthday", "drop paddle", ctx.Bodies.SetBodyKind(b.Paddle, body.Dynamic))
	}

	for _, c := range b.candles {
		events, err := ctx.Triggers.Drain(c.zone)
		if err != nil {
			logFailure("birthday", "drain blow zone", err)
			continue
		}
		if c.out {
			continue
		}
		for _, ev := range events {
			if ev.Kind != trigger.Enter || ev.Other != b.Paddle {
				continue
			}
			c.passes++
			b.startPuff(ctx, c.fire.WorldPosition())
			if c.passes >= PassesToBlowOut {
				c.out = true
				c.fire.Visible = false
				ctx.Play(audio.CueCandleOut)
				break
			}
		}
		if !c.out {
			v := ctx.Rand.Float64()*flickerRange + flickerBase
			c.fire.Scale = c.initScale.Mul(v)
		}
	}

	b.expirePuffs(ctx)

	if b.CandlesOut() == len(b.candles) {
		b.light.Intensity = 0
		ctx.ShowText("Happy birthday!", 3)
		ctx.Play(audio.CueDone)
		return true
	}
	return false
}

func teardownBirthday(ctx *vignette.Context, b *Birthday) {
	if b.light != nil {
		b.light.Intensity = 0
	}
}

// startPuff runs a short smoke emitter at pos; it is removed once its time is up
// and destroyed by the particle system after its last particle dies
func (b *Birthday) startPuff(ctx *vignette.Context, pos mgl64.Vec3) {
	ctx.Play(audio.CuePuff)
	p := smokeParams(pos)
	h, err := ctx.Particles.CreateEmitter(p)
	if err != nil {
		logFailure("birthday", "create puff", err)
		return
	}
	if err := ctx.Particles.Start(h); err != nil {
		logFailure("birthday", "start puff", err)
		ctx.Particles.Remove(h)
		return
	}
	b.puffs = append(b.puffs, puff{emitter: h, remaining: puffDuration})
}

func (b *Birthday) expirePuffs(ctx *vignette.Context) {
	kept := b.puffs[:0]
	for _, p := range b.puffs {
		p.remaining -= ctx.DT
		if p.remaining <= 0 {
			ctx.Particles.Remove(p.emitter)
			continue
		}
		kept = append(kept, p)
	}
	b.puffs = kept
}

func smokeParams(pos mgl64.Vec3) particle.Params {
	return particle.Params{
		TimeBetweenEmissions: 0.05,
		MinEmitCount:         2,
		MaxEmitCount:         6,
		LifeMin:              0.4,
		LifeMax:              0.9,
		VelMin:               mgl64.Vec3{-0.05, 0.2, -0.05},
		VelMax:               mgl64.Vec3{0.05, 0.5, 0.05},
		EmitRadius:           0.02,
		MaxParticles:         64,
		Position:             pos,
		ScaleForT:            func(t float64) float64 { return 0.02 + 0.06*t },
		ColorForT: func(t float64) particle.Color {
			return particle.Color{0.8, 0.8, 0.8, 1 - t}
		},
	}
}
