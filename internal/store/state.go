package store

import (
	"maps"
	"slices"

	"github.com/aweris/symstash/internal/sdk"
)

// SyncState is what the local cache believes it holds. Keys are always the
// canonical filename of the value's identity.
//
// A SyncState handed out by StateFile is a shared snapshot and must not be
// modified; use Clone to get a working copy.
type SyncState struct {
	SDKs     map[string]sdk.Remote `json:"sdks"`
	Revision *uint64               `json:"revision"`
}

// NewSyncState returns a never-synced state.
func NewSyncState() *SyncState {
	return &SyncState{SDKs: make(map[string]sdk.Remote)}
}

// Get returns the entry recorded for info.
func (s *SyncState) Get(info sdk.Info) (sdk.Remote, bool) {
	r, ok := s.SDKs[info.Filename()]
	return r, ok
}

// Put records r under its identity's filename.
func (s *SyncState) Put(r sdk.Remote) {
	if s.SDKs == nil {
		s.SDKs = make(map[string]sdk.Remote)
	}
	s.SDKs[r.Info.Filename()] = r
}

// Remove forgets info.
func (s *SyncState) Remove(info sdk.Info) {
	delete(s.SDKs, info.Filename())
}

// Len returns the number of recorded databases.
func (s *SyncState) Len() int { return len(s.SDKs) }

// Infos returns all recorded identities in ascending order.
func (s *SyncState) Infos() []sdk.Info {
	infos := make([]sdk.Info, 0, len(s.SDKs))
	for _, r := range s.SDKs {
		infos = append(infos, r.Info)
	}
	slices.SortFunc(infos, sdk.Compare)
	return infos
}

// Rev returns the revision, or 0 for a never-synced state.
func (s *SyncState) Rev() uint64 {
	if s.Revision == nil {
		return 0
	}
	return *s.Revision
}

// Bump increments the revision and returns the new value.
func (s *SyncState) Bump() uint64 {
	next := s.Rev() + 1
	s.Revision = &next
	return next
}

// Clone returns a deep copy.
func (s *SyncState) Clone() *SyncState {
	c := &SyncState{SDKs: maps.Clone(s.SDKs)}
	if c.SDKs == nil {
		c.SDKs = make(map[string]sdk.Remote)
	}
	if s.Revision != nil {
		rev := *s.Revision
		c.Revision = &rev
	}
	return c
}
