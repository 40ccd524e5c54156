package collision

import (
	"sync"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec3(t *testing.T, want, got mgl32.Vec3, delta float64, msgAndArgs ...any) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, msgAndArgs...)
	}
}

func TestNewChamferCylinderDimensions(t *testing.T) {
	tests := []struct {
		name           string
		radius, height float32
		wantR, wantH   float32
	}{
		{"reference", 2, 1, 1.5, 0.5},
		{"negative inputs", -2, -1, 1.5, 0.5},
		{"flat disk", 3, 0, 3, 0},
		{"rounding eats radius", 0.2, 1, minChamferRadius, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChamferCylinder(tt.radius, tt.height, mgl32.Ident4())
			defer c.Release()
			assert.InDelta(t, tt.wantR, c.Radius(), 1e-6)
			assert.InDelta(t, tt.wantH, c.HalfHeight(), 1e-6)

			s := c.Silhouette()
			assert.Equal(t, mgl32.Vec2{tt.wantH, tt.wantR}, s[0])
			assert.Equal(t, mgl32.Vec2{-tt.wantH, -tt.wantR}, s[2])
		})
	}
}

func TestSupportVertexReference(t *testing.T) {
	c := newTestCylinder(t)

	assertVec3(t, mgl32.Vec3{0.5, 0, 1.5}, c.SupportVertex(mgl32.Vec3{1, 0, 0}), 1e-5)
	assertVec3(t, mgl32.Vec3{-0.5, 0, 1.5}, c.SupportVertex(mgl32.Vec3{-1, 0, 0}), 1e-5)
	// Transverse directions reach the outer radius: core radius plus rounding.
	assertVec3(t, mgl32.Vec3{0, 2, 0}, c.SupportVertex(mgl32.Vec3{0, 1, 0}), 1e-5)
	assertVec3(t, mgl32.Vec3{0, 0, -2}, c.SupportVertex(mgl32.Vec3{0, 0, -1}), 1e-5)
}

func TestSupportVertexIsBoundaryMaximum(t *testing.T) {
	shapes := []struct{ radius, height float32 }{
		{2, 1},
		{1, 1.8},
		{5, 0.1},
	}
	dirs := fibonacciDirections(200)
	dirs = append(dirs, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{-1, 0, 0})

	for _, s := range shapes {
		c := NewChamferCylinder(s.radius, s.height, mgl32.Ident4())

		points := make([]mgl32.Vec3, len(dirs))
		for i, d := range dirs {
			points[i] = c.SupportVertex(d)
			assert.InDelta(t, 0, c.SignedDistance(points[i]), 1e-4,
				"support %v of shape %v is off the boundary", d, s)
		}
		for _, v := range c.hull.vertices {
			points = append(points, v)
		}

		for i, d := range dirs {
			best := d.Dot(points[i])
			for j, p := range points {
				if d.Dot(p) > best+1e-4 {
					t.Errorf("shape %v dir %v: point %d beats support (%v > %v)", s, d, j, d.Dot(p), best)
					break
				}
			}
		}
		c.Release()
	}
}

func TestSignedDistance(t *testing.T) {
	c := newTestCylinder(t)
	tests := []struct {
		p    mgl32.Vec3
		want float32
	}{
		{mgl32.Vec3{0, 0, 0}, -0.5},
		{mgl32.Vec3{0.5, 0, 0}, 0},
		{mgl32.Vec3{0, 2, 0}, 0},
		{mgl32.Vec3{0, 3, 0}, 1},
		{mgl32.Vec3{2, 0, 0}, 1.5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, c.SignedDistance(tt.p), 1e-5, "point %v", tt.p)
	}
}

func TestRayCastCaps(t *testing.T) {
	c := newTestCylinder(t)
	c.SetUserID(42)

	tests := []struct {
		name       string
		q0, q1     mgl32.Vec3
		wantT      float32
		wantNormal mgl32.Vec3
	}{
		{"positive cap", mgl32.Vec3{3, 0, 0}, mgl32.Vec3{-3, 0, 0}, 2.5 / 6, mgl32.Vec3{1, 0, 0}},
		{"negative cap", mgl32.Vec3{-3, 0.5, 0.5}, mgl32.Vec3{3, 0.5, 0.5}, 2.5 / 6, mgl32.Vec3{-1, 0, 0}},
		{"oblique cap", mgl32.Vec3{1.5, 1, 0}, mgl32.Vec3{-0.5, 0, 0}, 0.5, mgl32.Vec3{1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var contact ContactPoint
			got := c.RayCast(tt.q0, tt.q1, &contact, nil, nil, nil)
			require.Less(t, got, float32(1), "expected a hit")
			assert.InDelta(t, tt.wantT, got, 1e-5)
			assertVec3(t, tt.wantNormal, contact.Normal, 1e-6)
			assert.Equal(t, uint32(42), contact.UserID)
			assert.InDelta(t, math32.Abs(contact.Point[0]), c.HalfHeight(), 1e-5)
		})
	}
}

func TestRayCastLateral(t *testing.T) {
	c := newTestCylinder(t)

	t.Run("through equator vertex", func(t *testing.T) {
		var contact ContactPoint
		got := c.RayCast(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, -5, 0}, &contact, nil, nil, nil)
		assert.InDelta(t, 0.3, got, 1e-3)
		assertVec3(t, mgl32.Vec3{0, 1, 0}, contact.Normal, 1e-2)
	})

	t.Run("oblique", func(t *testing.T) {
		var contact ContactPoint
		q0 := mgl32.Vec3{0, 5, 5}
		got := c.RayCast(q0, q0.Mul(-1), &contact, nil, nil, nil)
		want := (q0.Len() - 2) / (2 * q0.Len())
		assert.InDelta(t, want, got, 5e-3)
		assert.InDelta(t, 0, c.SignedDistance(contact.Point), 2e-2)
		assert.InDelta(t, 1, contact.Normal.Len(), 1e-5)
		assert.Greater(t, contact.Normal.Dot(q0.Normalize()), float32(0.99))
	})

	t.Run("rounded rim", func(t *testing.T) {
		var contact ContactPoint
		q0 := mgl32.Vec3{3, 3, 0}
		q1 := mgl32.Vec3{0, 1.5, 0}
		got := c.RayCast(q0, q1, &contact, nil, nil, nil)
		require.Less(t, got, float32(1))
		assert.InDelta(t, 0, c.SignedDistance(contact.Point), 2e-2)
		assert.Greater(t, contact.Normal[0], float32(0))
		assert.Greater(t, contact.Normal[1], float32(0))
	})
}

func TestRayCastMisses(t *testing.T) {
	c := newTestCylinder(t)
	tests := []struct {
		name   string
		q0, q1 mgl32.Vec3
	}{
		{"outside bounds", mgl32.Vec3{3, 5, 5}, mgl32.Vec3{-3, 5, 5}},
		{"stops short", mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, 3, 0}},
		{"starts inside", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 5, 0}},
		{"leaving through cap", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{3, 0, 0}},
		{"beyond outer radius", mgl32.Vec3{3, 0, 2.1}, mgl32.Vec3{-3, 0, 2.1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var contact ContactPoint
			got := c.RayCast(tt.q0, tt.q1, &contact, nil, nil, nil)
			assert.Greater(t, got, float32(1))
			assert.Equal(t, ContactPoint{}, contact)
		})
	}
}

func TestRayCastPreFilter(t *testing.T) {
	c := newTestCylinder(t)
	body, userData := "body", 7

	var gotShape Shape
	reject := func(b any, s Shape, u any) bool {
		assert.Equal(t, body, b)
		assert.Equal(t, userData, u)
		gotShape = s
		return false
	}
	contact := ContactPoint{UserID: 9}
	got := c.RayCast(mgl32.Vec3{3, 0, 0}, mgl32.Vec3{-3, 0, 0}, &contact, reject, body, userData)
	assert.Equal(t, RayMiss, got)
	assert.Same(t, c, gotShape)
	assert.Equal(t, ContactPoint{UserID: 9}, contact, "rejected cast must not touch the contact")

	accept := func(any, Shape, any) bool { return true }
	got = c.RayCast(mgl32.Vec3{3, 0, 0}, mgl32.Vec3{-3, 0, 0}, nil, accept, body, userData)
	assert.Less(t, got, float32(1), "a nil contact is allowed")
}

func TestVolume(t *testing.T) {
	tests := []struct {
		name           string
		radius, height float32
		want           float32
	}{
		{"flat disk", 3, 0, 0},
		{"sphere", 1, 2, 4.0 / 3.0 * math32.Pi},
		{"reference", 2, 1, 2*math32.Pi*1.5*1.5*0.5 + math32.Pi*math32.Pi*1.5*0.25 + 4.0/3.0*math32.Pi*0.125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChamferCylinder(tt.radius, tt.height, mgl32.Ident4())
			defer c.Release()
			assert.InDelta(t, tt.want, c.Volume(), 2e-2)
		})
	}
}

func TestCalcAABB(t *testing.T) {
	c := newTestCylinder(t)

	min, max := c.CalcAABB(mgl32.Ident4())
	assertVec3(t, mgl32.Vec3{-0.5, -2, -2}, min, 1e-4)
	assertVec3(t, mgl32.Vec3{0.5, 2, 2}, max, 1e-4)

	m := mgl32.Translate3D(10, 0, 0).Mul4(mgl32.HomogRotate3DZ(math32.Pi / 2))
	min, max = c.CalcAABB(m)
	assertVec3(t, mgl32.Vec3{8, -0.5, -2}, min, 1e-4)
	assertVec3(t, mgl32.Vec3{12, 0.5, 2}, max, 1e-4)
}

func TestCalcAABBUsesOffset(t *testing.T) {
	c := NewChamferCylinder(2, 1, mgl32.Translate3D(0, 0, 5))
	defer c.Release()
	min, max := c.CalcAABB(mgl32.Ident4())
	assert.InDelta(t, 3, min[2], 1e-4)
	assert.InDelta(t, 7, max[2], 1e-4)
}

func TestInfo(t *testing.T) {
	offset := mgl32.Translate3D(1, 2, 3)
	c := NewChamferCylinder(2, 1, offset)
	defer c.Release()
	c.SetUserID(5)

	info := c.Info()
	assert.Equal(t, ChamferCylinderShape, info.Type)
	assert.InDelta(t, 2, info.Radius, 1e-6)
	assert.InDelta(t, 1, info.Height, 1e-6)
	assert.Equal(t, offset, info.Offset)
	assert.Equal(t, uint32(5), info.UserID)
	assert.Equal(t, "chamfer-cylinder", info.Type.String())
}

func TestConcurrentQueries(t *testing.T) {
	c := newTestCylinder(t)
	dirs := fibonacciDirections(64)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var contacts [2]mgl32.Vec3
			for _, d := range dirs {
				p := c.SupportVertex(d)
				c.RayCast(p.Mul(3), p.Mul(-3), nil, nil, nil, nil)
				c.CalculatePlaneIntersection(d, p.Sub(d.Mul(0.05)), contacts[:])
			}
		}()
	}
	wg.Wait()
}
