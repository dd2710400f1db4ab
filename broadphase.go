package rigid2d

import "sort"

// pairKey identifies one candidate contact between two broad-phase proxies,
// always ordered so ProxyA < ProxyB.
type pairKey struct {
	ProxyA, ProxyB int
}

func lessPairKey(a, b pairKey) bool {
	if a.ProxyA != b.ProxyA {
		return a.ProxyA < b.ProxyA
	}
	return a.ProxyB < b.ProxyB
}

// BroadPhase wraps a DynamicTree with the move-buffering and pair-discovery
// bookkeeping the world's contact-creation phase relies on: proxies queued
// by CreateProxy/MoveProxy/TouchProxy are the only ones re-queried on the
// next UpdatePairs call.
type BroadPhase struct {
	tree *DynamicTree

	proxyCount int

	moveBuffer []int

	queryProxyID int
	pairBuffer   []pairKey
}

func NewBroadPhase(aabbExtension, aabbMultiplier float64) *BroadPhase {
	return &BroadPhase{tree: NewDynamicTree(aabbExtension, aabbMultiplier)}
}

func (bp *BroadPhase) CreateProxy(aabb AABB, userData interface{}) int {
	id := bp.tree.CreateProxy(aabb, userData)
	bp.proxyCount++
	bp.bufferMove(id)
	return id
}

func (bp *BroadPhase) DestroyProxy(id int) {
	bp.unbufferMove(id)
	bp.proxyCount--
	bp.tree.DestroyProxy(id)
}

func (bp *BroadPhase) MoveProxy(id int, aabb AABB, displacement Vec2) {
	if bp.tree.MoveProxy(id, aabb, displacement) {
		bp.bufferMove(id)
	}
}

func (bp *BroadPhase) TouchProxy(id int) { bp.bufferMove(id) }

func (bp *BroadPhase) bufferMove(id int) { bp.moveBuffer = append(bp.moveBuffer, id) }

func (bp *BroadPhase) unbufferMove(id int) {
	for i, v := range bp.moveBuffer {
		if v == id {
			bp.moveBuffer[i] = nullNode
		}
	}
}

func (bp *BroadPhase) GetUserData(id int) interface{} { return bp.tree.GetUserData(id) }
func (bp *BroadPhase) GetFatAABB(id int) AABB          { return bp.tree.GetFatAABB(id) }
func (bp *BroadPhase) ProxyCount() int                 { return bp.proxyCount }

func (bp *BroadPhase) TestOverlap(idA, idB int) bool {
	return Overlaps(bp.tree.GetFatAABB(idA), bp.tree.GetFatAABB(idB))
}

// UpdatePairs re-queries every proxy buffered since the last call, sorts
// and deduplicates the resulting candidate pairs, and reports each unique
// pair once via addPair. This is the concrete algorithm behind the world's
// contact-creation phase.
func (bp *BroadPhase) UpdatePairs(addPair func(userDataA, userDataB interface{})) {
	var pairs []pairKey

	for _, moveID := range bp.moveBuffer {
		if moveID == nullNode {
			continue
		}
		bp.queryProxyID = moveID
		fatAABB := bp.tree.GetFatAABB(moveID)

		bp.tree.Query(func(proxyID int) bool {
			if proxyID == bp.queryProxyID {
				return true
			}
			a, b := proxyID, bp.queryProxyID
			if a > b {
				a, b = b, a
			}
			pairs = append(pairs, pairKey{ProxyA: a, ProxyB: b})
			return true
		}, fatAABB)
	}

	bp.moveBuffer = bp.moveBuffer[:0]

	sort.Slice(pairs, func(i, j int) bool { return lessPairKey(pairs[i], pairs[j]) })

	i := 0
	for i < len(pairs) {
		primary := pairs[i]
		addPair(bp.tree.GetUserData(primary.ProxyA), bp.tree.GetUserData(primary.ProxyB))
		i++
		for i < len(pairs) && pairs[i] == primary {
			i++
		}
	}
}

func (bp *BroadPhase) Query(callback TreeQueryCallback, aabb AABB) { bp.tree.Query(callback, aabb) }

func (bp *BroadPhase) RayCast(callback TreeRayCastCallback, input RayCastInput) {
	bp.tree.RayCast(callback, input)
}

func (bp *BroadPhase) ShiftOrigin(newOrigin Vec2) { bp.tree.ShiftOrigin(newOrigin) }

func (bp *BroadPhase) TreeHeight() int       { return bp.tree.Height() }
func (bp *BroadPhase) TreeBalance() int      { return bp.tree.MaxBalance() }
func (bp *BroadPhase) TreeAreaRatio() float64 { return bp.tree.AreaRatio() }
