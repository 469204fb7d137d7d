package state

import (
	"context"

	"social-wallet-client-go/internal/api"
	"social-wallet-client-go/internal/models"
	"social-wallet-client-go/internal/validation"

	"go.uber.org/zap"
)

const (
	keyProfile = "profile"
	keySelf    = "self"
)

// ProfileView is the single resident profile slot.
type ProfileView struct {
	Username string
	Data     *models.ProfileDetail
	Loading  bool
	Error    string
}

// SelfView holds the signed-in user's own profile.
type SelfView struct {
	Data    *models.ProfileDetail
	Loading bool
	Error   string
}

type ProfileStore struct {
	base
	client *api.Client
	auth   TokenSource
	view   ProfileView
	self   SelfView
}

func NewProfileStore(client *api.Client, auth TokenSource, hub *Hub, logger *zap.Logger) *ProfileStore {
	s := &ProfileStore{client: client, auth: auth}
	s.init(SliceProfile, hub, logger)
	return s
}

func (s *ProfileStore) Snapshot() ProfileView {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.view
	snap.Data = copyProfile(s.view.Data)
	snap.Loading = s.inFlightLocked(keyProfile)
	return snap
}

func (s *ProfileStore) SelfSnapshot() SelfView {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.self
	snap.Data = copyProfile(s.self.Data)
	snap.Loading = s.inFlightLocked(keySelf)
	return snap
}

// FetchProfile loads username into the resident slot. Only the most recently
// issued fetch may apply its result; older ones are canceled.
func (s *ProfileStore) FetchProfile(ctx context.Context, username string) error {
	const action = "fetchProfile"

	if username == "" {
		err := &validation.ValidationError{Field: "username", Message: "Please enter a username"}
		s.mu.Lock()
		s.view.Error = err.Message
		s.mu.Unlock()
		return s.rejectLocal(action, err)
	}

	s.mu.Lock()
	t := s.beginLocked(ctx, keyProfile, action)
	if s.view.Username != username {
		s.view.Data = nil
	}
	s.view.Username = username
	s.view.Error = ""
	s.mu.Unlock()
	s.publish(action, PhasePending, "")

	profile, err := s.client.GetProfile(t.ctx, s.auth.Token(), username)

	s.mu.Lock()
	phase := s.settleLocked(t, err)
	switch phase {
	case PhaseFulfilled:
		s.view.Data = profile
	case PhaseRejected:
		s.view.Error = errorMessage(err)
	}
	s.mu.Unlock()

	return s.report(t, phase, err)
}

// ClearProfile empties the slot and cancels a pending fetch.
func (s *ProfileStore) ClearProfile() {
	s.mu.Lock()
	if t, ok := s.tasks[keyProfile]; ok {
		t.cancel()
		delete(s.tasks, keyProfile)
	}
	s.view = ProfileView{}
	s.mu.Unlock()
	s.publish("clearProfile", PhaseLocal, "")
}

// FetchSelf loads the signed-in user's profile into the Self slot.
func (s *ProfileStore) FetchSelf(ctx context.Context) error {
	const action = "fetchSelf"

	token := s.auth.Token()
	if token == "" {
		s.mu.Lock()
		s.self.Error = ErrNotAuthenticated.Error()
		s.mu.Unlock()
		return s.rejectLocal(action, ErrNotAuthenticated)
	}

	s.mu.Lock()
	t := s.beginLocked(ctx, keySelf, action)
	s.self.Error = ""
	s.mu.Unlock()
	s.publish(action, PhasePending, "")

	profile, err := s.client.Me(t.ctx, token)

	s.mu.Lock()
	phase := s.settleLocked(t, err)
	switch phase {
	case PhaseFulfilled:
		s.self.Data = profile
	case PhaseRejected:
		s.self.Error = errorMessage(err)
	}
	s.mu.Unlock()

	return s.report(t, phase, err)
}

func copyProfile(p *models.ProfileDetail) *models.ProfileDetail {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
