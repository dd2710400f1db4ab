package rigid2d

// Filter carries collision-filtering data: normally exactly one category
// bit is set; MaskBits states which categories this fixture accepts
// collisions from; a non-zero GroupIndex overrides both (positive always
// collides, negative never collides) for fixtures sharing that group.
type Filter struct {
	CategoryBits uint16
	MaskBits     uint16
	GroupIndex   int16
}

// DefaultFilter matches every category against every mask by default.
func DefaultFilter() Filter {
	return Filter{CategoryBits: 0x0001, MaskBits: 0xFFFF}
}

// shouldCollideFilters applies the standard group/category/mask precedence:
// a shared non-zero group always wins; otherwise both sides' category/mask
// pairs must accept each other.
func shouldCollideFilters(a, b Filter) bool {
	if a.GroupIndex == b.GroupIndex && a.GroupIndex != 0 {
		return a.GroupIndex > 0
	}
	return a.CategoryBits&b.MaskBits != 0 && a.MaskBits&b.CategoryBits != 0
}

// FixtureDef is used to create a Fixture; safe to reuse across calls.
type FixtureDef struct {
	Shape       Shape
	UserData    interface{}
	Friction    float64
	Restitution float64
	Density     float64
	IsSensor    bool
	Filter      Filter
}

// DefaultFixtureDef returns a FixtureDef with the teacher's default values.
func DefaultFixtureDef() FixtureDef {
	return FixtureDef{Friction: 0.2, Filter: DefaultFilter()}
}

// fixtureProxy is one child shape's broad-phase registration: the
// unfattened (swept) AABB last computed for it, which broad-phase proxy id
// it owns, and which child index of the shape it covers.
type fixtureProxy struct {
	aabb       AABB
	proxyID    int
	childIndex int
}

// Fixture attaches a Shape to a body for collision detection, adding
// friction, restitution, sensor and filter data the shape itself doesn't
// carry.
type Fixture struct {
	id     FixtureID
	bodyID BodyID
	world  *World

	shape Shape

	friction    float64
	restitution float64
	density     float64
	isSensor    bool
	filter      Filter

	proxies []fixtureProxy

	userData interface{}
}

func (f *Fixture) ID() FixtureID          { return f.id }
func (f *Fixture) BodyID() BodyID         { return f.bodyID }
func (f *Fixture) Shape() Shape           { return f.shape }
func (f *Fixture) IsSensor() bool         { return f.isSensor }
func (f *Fixture) FilterData() Filter     { return f.filter }
func (f *Fixture) UserData() interface{}  { return f.userData }
func (f *Fixture) Density() float64       { return f.density }
func (f *Fixture) Friction() float64      { return f.friction }
func (f *Fixture) Restitution() float64   { return f.restitution }

func (f *Fixture) SetDensity(density float64) {
	assertf(isValidFloat(density) && density >= 0, "fixture: invalid density")
	f.density = density
}

func (f *Fixture) SetFriction(v float64)    { f.friction = v }
func (f *Fixture) SetRestitution(v float64) { f.restitution = v }

func (f *Fixture) MassData() MassData { return f.shape.ComputeMass(f.density) }

// AABB reports the fat AABB the broad phase currently holds for the given
// child shape.
func (f *Fixture) AABB(childIndex int) AABB {
	assertf(childIndex >= 0 && childIndex < len(f.proxies), "fixture: child index out of range")
	return f.world.broadPhase.GetFatAABB(f.proxies[childIndex].proxyID)
}

func newFixture(bodyID BodyID, world *World, def FixtureDef) *Fixture {
	return &Fixture{
		bodyID:      bodyID,
		world:       world,
		shape:       def.Shape,
		friction:    def.Friction,
		restitution: def.Restitution,
		density:     def.Density,
		isSensor:    def.IsSensor,
		filter:      def.Filter,
		userData:    def.UserData,
	}
}

// SetFilterData replaces the fixture's filter data and re-flags any
// existing contacts touching it for a fresh ShouldCollide test, plus
// touches its broad-phase proxies so new pairs can form.
func (f *Fixture) SetFilterData(filter Filter) {
	f.filter = filter
	f.refilter()
}

func (f *Fixture) refilter() {
	body := f.world.bodies.Get(int(f.bodyID))
	for _, cid := range body.contacts {
		c := f.world.contacts.Get(int(cid))
		if c.fixtureA == f.id || c.fixtureB == f.id {
			c.flagForFiltering()
		}
	}
	for _, p := range f.proxies {
		f.world.broadPhase.TouchProxy(p.proxyID)
	}
}

// SetSensor toggles sensor status, waking the owning body since sensor
// transitions can change what contacts generate a solid response.
func (f *Fixture) SetSensor(sensor bool) {
	if sensor == f.isSensor {
		return
	}
	f.isSensor = sensor
	f.world.bodies.Get(int(f.bodyID)).SetAwake(true)
}

func (f *Fixture) createProxies(bp *BroadPhase, xf Transform) {
	assertf(len(f.proxies) == 0, "fixture: proxies already created")
	n := f.shape.ChildCount()
	f.proxies = make([]fixtureProxy, n)
	for i := 0; i < n; i++ {
		aabb := f.shape.ComputeAABB(xf, i)
		id := bp.CreateProxy(aabb, fixtureProxyKey{FixtureID: f.id, ChildIndex: i})
		f.proxies[i] = fixtureProxy{aabb: aabb, proxyID: id, childIndex: i}
	}
}

func (f *Fixture) destroyProxies(bp *BroadPhase) {
	for _, p := range f.proxies {
		bp.DestroyProxy(p.proxyID)
	}
	f.proxies = nil
}

// synchronize recomputes the swept fat AABB covering the shape at both
// transform1 and transform2 and moves the broad-phase proxy to match.
func (f *Fixture) synchronize(bp *BroadPhase, transform1, transform2 Transform) {
	if len(f.proxies) == 0 {
		return
	}
	for i := range f.proxies {
		p := &f.proxies[i]
		aabb1 := f.shape.ComputeAABB(transform1, p.childIndex)
		aabb2 := f.shape.ComputeAABB(transform2, p.childIndex)
		p.aabb = Combine(aabb1, aabb2)
		bp.MoveProxy(p.proxyID, p.aabb, transform2.P.Sub(transform1.P))
	}
}

// fixtureProxyKey is the broad-phase proxy's user data: enough to resolve
// back to the owning fixture and which of its children the proxy covers.
type fixtureProxyKey struct {
	FixtureID  FixtureID
	ChildIndex int
}
