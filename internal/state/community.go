package state

import (
	"context"
	"sort"
	"time"

	"social-wallet-client-go/internal/api"
	"social-wallet-client-go/internal/models"
	"social-wallet-client-go/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	keyCommunitiesMine   = "mine"
	keyCommunityDetail   = "detail"
	keyCommunityActionNS = "action:"
)

// UserCommunities is the caller's founded, creator and following lists.
type UserCommunities struct {
	Statistics models.CommunityStatistics
	Founded    []models.Community
	Creator    []models.Community
	Following  []models.Community
	Loaded     bool
	Loading    bool
	Error      string
}

// CurrentCommunity is the community detail being viewed.
type CurrentCommunity struct {
	Data    *models.Community
	Loading bool
	Error   string
}

// ActionStatus is shared by follow, become-creator and create. It is not
// self-clearing; consumers call ClearActionStatus after reading it.
type ActionStatus struct {
	Loading bool
	Error   string
	Success bool
	Message string
}

type CommunityState struct {
	UserCommunities UserCommunities
	Current         CurrentCommunity
	Action          ActionStatus
}

type membership struct {
	seq      uint64
	joinedAt *time.Time
}

// communityEntry is the single record per community id. List membership and
// the detail flags are both read from it.
type communityEntry struct {
	data      models.Community
	founded   *membership
	creator   *membership
	following *membership
}

func (e *communityEntry) empty() bool {
	return e.founded == nil && e.creator == nil && e.following == nil
}

type CommunityStore struct {
	base
	client  *api.Client
	auth    TokenSource
	now     func() time.Time
	entries map[string]*communityEntry
	order   uint64

	currentId    string
	loaded       bool
	listError    string
	currentError string
	action       ActionStatus
}

func NewCommunityStore(client *api.Client, auth TokenSource, hub *Hub, logger *zap.Logger) *CommunityStore {
	s := &CommunityStore{
		client:  client,
		auth:    auth,
		now:     time.Now,
		entries: make(map[string]*communityEntry),
	}
	s.init(SliceCommunity, hub, logger)
	return s
}

func (s *CommunityStore) Snapshot() CommunityState {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists := s.listsLocked()
	lists.Loaded = s.loaded
	lists.Loading = s.inFlightLocked(keyCommunitiesMine)
	lists.Error = s.listError

	current := CurrentCommunity{
		Loading: s.inFlightLocked(keyCommunityDetail),
		Error:   s.currentError,
	}
	if e, ok := s.entries[s.currentId]; ok && s.currentId != "" {
		c := e.view(nil)
		current.Data = &c
	}

	action := s.action
	action.Loading = s.inFlightLocked(keyCommunityActionNS)

	return CommunityState{UserCommunities: lists, Current: current, Action: action}
}

// view renders the entry with flags derived from its memberships; m, when
// set, supplies the list-specific joinedAt.
func (e *communityEntry) view(m *membership) models.Community {
	c := e.data
	c.IsFollowing = e.following != nil
	c.IsCreator = e.creator != nil
	c.IsFounder = e.founded != nil || e.data.IsFounder
	if e.data.Founder != nil {
		founder := *e.data.Founder
		c.Founder = &founder
	}
	joinedAt := e.data.JoinedAt
	if m != nil {
		joinedAt = m.joinedAt
	}
	c.JoinedAt = nil
	if joinedAt != nil {
		joined := *joinedAt
		c.JoinedAt = &joined
	}
	return c
}

type listed struct {
	seq       uint64
	community models.Community
}

func (s *CommunityStore) listsLocked() UserCommunities {
	var founded, creator, following []listed
	for _, e := range s.entries {
		if e.founded != nil {
			founded = append(founded, listed{e.founded.seq, e.view(e.founded)})
		}
		if e.creator != nil {
			creator = append(creator, listed{e.creator.seq, e.view(e.creator)})
		}
		if e.following != nil {
			following = append(following, listed{e.following.seq, e.view(e.following)})
		}
	}

	out := UserCommunities{
		Founded:   sortListed(founded),
		Creator:   sortListed(creator),
		Following: sortListed(following),
	}
	out.Statistics = models.CommunityStatistics{
		FoundedCount:   len(out.Founded),
		CreatorCount:   len(out.Creator),
		FollowingCount: len(out.Following),
	}
	return out
}

func sortListed(items []listed) []models.Community {
	sort.Slice(items, func(i, j int) bool { return items[i].seq < items[j].seq })
	out := make([]models.Community, len(items))
	for i, it := range items {
		out[i] = it.community
	}
	return out
}

func (s *CommunityStore) entryLocked(id string) *communityEntry {
	e, ok := s.entries[id]
	if !ok {
		e = &communityEntry{data: models.Community{Id: id}}
		s.entries[id] = e
	}
	return e
}

func (s *CommunityStore) membershipLocked(joinedAt *time.Time) *membership {
	s.order++
	m := &membership{seq: s.order}
	if joinedAt != nil {
		t := *joinedAt
		m.joinedAt = &t
	}
	return m
}

func (s *CommunityStore) joinedNowLocked() *membership {
	now := s.now().UTC()
	return s.membershipLocked(&now)
}

// pruneLocked drops entries that are in no list and not being viewed.
func (s *CommunityStore) pruneLocked() {
	for id, e := range s.entries {
		if e.empty() && id != s.currentId {
			delete(s.entries, id)
		}
	}
}

// FetchUserCommunities replaces all three lists with the server's.
func (s *CommunityStore) FetchUserCommunities(ctx context.Context) error {
	const action = "fetchUserCommunities"

	token := s.auth.Token()
	if token == "" {
		s.mu.Lock()
		s.listError = ErrNotAuthenticated.Error()
		s.mu.Unlock()
		return s.rejectLocal(action, ErrNotAuthenticated)
	}

	s.mu.Lock()
	t := s.beginLocked(ctx, keyCommunitiesMine, action)
	s.listError = ""
	s.mu.Unlock()
	s.publish(action, PhasePending, "")

	resp, err := s.client.GetUserCommunities(t.ctx, token)

	s.mu.Lock()
	phase := s.settleLocked(t, err)
	switch phase {
	case PhaseFulfilled:
		s.replaceListsLocked(resp)
		s.loaded = true
	case PhaseRejected:
		s.listError = errorMessage(err)
	}
	s.mu.Unlock()

	return s.report(t, phase, err)
}

func (s *CommunityStore) replaceListsLocked(resp *models.UserCommunitiesPayload) {
	for _, e := range s.entries {
		e.founded, e.creator, e.following = nil, nil, nil
	}

	absorb := func(c models.Community) *communityEntry {
		e := s.entryLocked(c.Id)
		// The viewed detail is richer than a list row.
		if c.Id != s.currentId {
			e.data = c
		}
		return e
	}
	for _, c := range resp.Founded {
		absorb(c).founded = s.membershipLocked(c.JoinedAt)
	}
	for _, c := range resp.Creator {
		absorb(c).creator = s.membershipLocked(c.JoinedAt)
	}
	for _, c := range resp.Following {
		absorb(c).following = s.membershipLocked(c.JoinedAt)
	}
	s.pruneLocked()
}

// FetchCommunityByID replaces the viewed community. Its isFollowing and
// isCreator flags update the caller's memberships.
func (s *CommunityStore) FetchCommunityByID(ctx context.Context, id string) error {
	const action = "fetchCommunityById"

	if id == "" {
		err := &validation.ValidationError{Field: "id", Message: "Community id is required"}
		s.mu.Lock()
		s.currentError = err.Message
		s.mu.Unlock()
		return s.rejectLocal(action, err)
	}

	s.mu.Lock()
	t := s.beginLocked(ctx, keyCommunityDetail, action)
	s.currentError = ""
	s.mu.Unlock()
	s.publish(action, PhasePending, "")

	detail, err := s.client.GetCommunity(t.ctx, s.auth.Token(), id)

	s.mu.Lock()
	phase := s.settleLocked(t, err)
	switch phase {
	case PhaseFulfilled:
		if detail.Id == "" {
			detail.Id = id
		}
		s.applyDetailLocked(*detail)
	case PhaseRejected:
		s.currentError = errorMessage(err)
	}
	s.mu.Unlock()

	return s.report(t, phase, err)
}

func (s *CommunityStore) applyDetailLocked(detail models.Community) {
	e := s.entryLocked(detail.Id)
	e.data = detail

	switch {
	case detail.IsFollowing && e.following == nil:
		e.following = s.membershipLocked(detail.JoinedAt)
	case !detail.IsFollowing && e.following != nil:
		e.following = nil
	}
	switch {
	case detail.IsCreator && e.creator == nil:
		e.creator = s.membershipLocked(detail.JoinedAt)
	case !detail.IsCreator && e.creator != nil:
		e.creator = nil
	}
	if detail.IsFounder && e.founded == nil {
		e.founded = s.membershipLocked(nil)
	}

	s.currentId = detail.Id
	s.pruneLocked()
}

func (s *CommunityStore) beginActionLocked(ctx context.Context, action string) *task {
	t := s.beginLocked(ctx, keyCommunityActionNS+action+":"+uuid.NewString(), action)
	s.action.Error = ""
	return t
}

// ToggleFollowCommunity flips the follow state of id on the server, then
// locally: membership, followersCount and statistics all follow from one
// read of the previous state.
func (s *CommunityStore) ToggleFollowCommunity(ctx context.Context, id string) error {
	const action = "toggleFollowCommunity"

	if err := s.requireIdLocal(action, id); err != nil {
		return err
	}

	s.mu.Lock()
	t := s.beginActionLocked(ctx, action)
	s.mu.Unlock()
	s.publish(action, PhasePending, "")

	resp, err := s.client.ToggleFollow(t.ctx, s.auth.Token(), id)

	unknown := false
	s.mu.Lock()
	phase := s.settleLocked(t, err)
	switch phase {
	case PhaseFulfilled:
		if e, ok := s.entries[id]; ok {
			if e.following != nil {
				e.following = nil
				e.data.FollowersCount--
			} else {
				e.following = s.joinedNowLocked()
				e.data.FollowersCount++
			}
			s.pruneLocked()
		} else {
			unknown = true
		}
		s.action.Success = true
		s.action.Message = resp.Message
	case PhaseRejected:
		s.action.Error = errorMessage(err)
	}
	s.mu.Unlock()

	if err := s.report(t, phase, err); err != nil {
		return err
	}
	if unknown {
		s.refreshAfterAction(ctx, action)
	}
	return nil
}

// BecomeCreator is one-way. creatorsCount only moves when the caller was not
// already a creator.
func (s *CommunityStore) BecomeCreator(ctx context.Context, id string) error {
	const action = "becomeCreator"

	if err := s.requireIdLocal(action, id); err != nil {
		return err
	}

	s.mu.Lock()
	t := s.beginActionLocked(ctx, action)
	s.mu.Unlock()
	s.publish(action, PhasePending, "")

	resp, err := s.client.BecomeCreator(t.ctx, s.auth.Token(), id)

	unknown := false
	s.mu.Lock()
	phase := s.settleLocked(t, err)
	switch phase {
	case PhaseFulfilled:
		if e, ok := s.entries[id]; ok {
			if e.creator == nil {
				e.creator = s.joinedNowLocked()
				e.data.CreatorsCount++
			}
		} else {
			unknown = true
		}
		s.action.Success = true
		s.action.Message = resp.Message
	case PhaseRejected:
		s.action.Error = errorMessage(err)
	}
	s.mu.Unlock()

	if err := s.report(t, phase, err); err != nil {
		return err
	}
	if unknown {
		s.refreshAfterAction(ctx, action)
	}
	return nil
}

// requireIdLocal rejects an action on an empty community id before any
// request is made.
func (s *CommunityStore) requireIdLocal(action, id string) error {
	if id != "" {
		return nil
	}
	err := &validation.ValidationError{Field: "id", Message: "Community id is required"}
	s.mu.Lock()
	s.action.Error = err.Message
	s.mu.Unlock()
	return s.rejectLocal(action, err)
}

// refreshAfterAction reloads the lists when an action touched a community
// that is neither viewed nor listed, so no nameless row is shown.
func (s *CommunityStore) refreshAfterAction(ctx context.Context, action string) {
	if err := s.FetchUserCommunities(ctx); err != nil {
		s.logger.Warn("Unable to refresh communities", zap.String("action", action), zap.Error(err))
	}
}

// CreateCommunity founds a community and then refreshes the lists.
func (s *CommunityStore) CreateCommunity(ctx context.Context, form models.NewCommunity) error {
	const action = "createCommunity"

	token := s.auth.Token()
	err := validation.NewCommunity(form)
	if err == nil && token == "" {
		err = ErrNotAuthenticated
	}
	if err != nil {
		s.mu.Lock()
		s.action.Error = errorMessage(err)
		s.mu.Unlock()
		return s.rejectLocal(action, err)
	}

	s.mu.Lock()
	t := s.beginActionLocked(ctx, action)
	s.mu.Unlock()
	s.publish(action, PhasePending, "")

	created, err := s.client.CreateCommunity(t.ctx, token, form)

	s.mu.Lock()
	phase := s.settleLocked(t, err)
	switch phase {
	case PhaseFulfilled:
		if created.Id != "" {
			e := s.entryLocked(created.Id)
			e.data = *created
			if e.founded == nil {
				e.founded = s.joinedNowLocked()
			}
		}
		s.action.Success = true
		s.action.Message = "Community created successfully!"
	case PhaseRejected:
		s.action.Error = errorMessage(err)
	}
	s.mu.Unlock()

	if err := s.report(t, phase, err); err != nil {
		return err
	}

	s.logger.Info("Community created",
		zap.String("community_id", created.Id),
		zap.String("name", form.Name))

	if err := s.FetchUserCommunities(ctx); err != nil {
		s.logger.Warn("Unable to refresh communities after create", zap.Error(err))
	}
	return nil
}

func (s *CommunityStore) ClearActionStatus() {
	s.mu.Lock()
	s.action = ActionStatus{}
	s.mu.Unlock()
	s.publish("clearActionStatus", PhaseLocal, "")
}
