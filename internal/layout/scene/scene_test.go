package scene

import (
	"math"
	"testing"

	"github.com/lumipallolabs/fsview/internal/model"
	"github.com/stretchr/testify/assert"
)

type recorder struct {
	broken []model.NodeID
	camera int
}

func (r *recorder) BreakMorph(id model.NodeID) { r.broken = append(r.broken, id) }
func (r *recorder) CoreRadiusChanged() { r.camera++ }

func TestDirtySet(t *testing.T) {
	d := NewDirtySet()
	assert.False(t, d.Dirty())

	d.MarkDirty(5)
	d.MarkDirty(2)
	d.MarkDirty(5)
	assert.True(t, d.Dirty())
	assert.True(t, d.Has(5))
	assert.Equal(t, 2, d.Len())

	assert.Equal(t, []model.NodeID{2, 5}, d.Take())
	assert.False(t, d.Dirty())

	d.Invalidate()
	assert.True(t, d.Dirty())
	assert.Empty(t, d.Take())
	assert.False(t, d.Dirty())
}

func TestSnapDeployment(t *testing.T) {
	tree := model.NewTree("/r")
	a := tree.Add(model.RootDir, "a", model.KindDirectory, 0)
	tree.Finalize()
	tree.SetDeployment(a, 0.4)

	rec := &recorder{}
	env := &Env{
		Tree:    tree,
		Browser: BrowserFunc(func(id model.NodeID) bool { return id == model.RootDir }),
		Morph:   rec,
		Camera:  rec,
		Dirty:   NewDirtySet(),
	}

	env.SnapDeployment(a)
	env.SnapDeployment(model.RootDir)
	env.NotifyCoreRadius()

	assert.Equal(t, 0.0, tree.Deployment(a))
	assert.Equal(t, 1.0, tree.Deployment(model.RootDir))
	assert.Equal(t, []model.NodeID{a, model.RootDir}, rec.broken)
	assert.True(t, env.Dirty.Has(a))
	assert.Equal(t, 1, rec.camera)
}

func TestSnapDeploymentWithoutHooks(t *testing.T) {
	tree := model.NewTree("/r")
	env := &Env{Tree: tree, Browser: BrowserFunc(func(model.NodeID) bool { return true }), Dirty: NewDirtySet()}

	assert.NotPanics(t, func() {
		env.SnapDeployment(model.RootDir)
		env.NotifyCoreRadius()
	})
}

func TestPolar(t *testing.T) {
	p := Polar(2, 90)
	assert.InDelta(t, 0, p.X, 1e-12)
	assert.InDelta(t, 2, p.Y, 1e-12)
	assert.InDelta(t, math.Pi, Rad(180), 1e-15)
	assert.InDelta(t, 180, Deg(math.Pi), 1e-12)
	assert.Equal(t, XY{4, 6}, XY{1, 2}.Add(XY{3, 4}))
	assert.Equal(t, XY{-2, -2}, XY{1, 2}.Sub(XY{3, 4}))
}
