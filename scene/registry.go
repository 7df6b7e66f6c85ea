package scene

// MeshHandle refers to a mesh owned by a MeshRegistry. The zero value is
// never valid.
type MeshHandle struct {
	index      uint32
	generation uint32
}

func (h MeshHandle) IsZero() bool { return h.generation == 0 }

type meshSlot struct {
	mesh       *Mesh
	generation uint32
}

// MeshRegistry owns meshes shared by several objects. Removing a mesh bumps
// its slot generation so that outstanding handles stop resolving.
type MeshRegistry struct {
	slots []meshSlot
	free  []uint32
	live  int
}

func NewMeshRegistry() *MeshRegistry {
	return &MeshRegistry{}
}

func (r *MeshRegistry) Add(m *Mesh) MeshHandle {
	r.live++
	if n := len(r.free); n > 0 {
		idx := r.free[n-1]
		r.free = r.free[:n-1]
		r.slots[idx].mesh = m
		return MeshHandle{index: idx, generation: r.slots[idx].generation}
	}
	r.slots = append(r.slots, meshSlot{mesh: m, generation: 1})
	return MeshHandle{index: uint32(len(r.slots) - 1), generation: 1}
}

// Get returns the mesh for h, or false when h is zero or stale.
func (r *MeshRegistry) Get(h MeshHandle) (*Mesh, bool) {
	if h.IsZero() || int(h.index) >= len(r.slots) {
		return nil, false
	}
	s := r.slots[h.index]
	if s.generation != h.generation || s.mesh == nil {
		return nil, false
	}
	return s.mesh, true
}

// Remove clears the mesh, releasing its GPU buffers, and invalidates h.
func (r *MeshRegistry) Remove(h MeshHandle) bool {
	m, ok := r.Get(h)
	if !ok {
		return false
	}
	m.Clear()
	s := &r.slots[h.index]
	s.mesh = nil
	s.generation++
	r.free = append(r.free, h.index)
	r.live--
	return true
}

func (r *MeshRegistry) Len() int { return r.live }
