/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"social-wallet-client-go/internal/api"
	"social-wallet-client-go/internal/models"
	"social-wallet-client-go/internal/store"
	"social-wallet-client-go/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const persistTimeout = 5 * time.Second

// Stage is the position of a session in the sign-in flow.
type Stage string

const (
	StageAnonymous         Stage = "anonymous"
	StageOtpRequested      Stage = "otp_requested"
	StageRegistered        Stage = "registered"
	StageNeedsRegistration Stage = "needs_registration"
	StageAuthenticated     Stage = "authenticated"
)

// Session is the AuthStore slice. Token is empty when no session is held;
// User is only set while Token is.
type Session struct {
	User         *models.UserSummary
	Token        string
	Loading      bool
	Error        string
	OtpSent      bool
	PhoneNumber  string
	IsRegistered bool
	OtpVerified  bool
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Stage derives the sign-in stage. A verified OTP resolves to Registered or
// NeedsRegistration in the same transition.
func (s Session) Stage() Stage {
	switch {
	case s.Token != "":
		return StageAuthenticated
	case s.OtpVerified && s.IsRegistered:
		return StageRegistered
	case s.OtpVerified:
		return StageNeedsRegistration
	case s.OtpSent:
		return StageOtpRequested
	default:
		return StageAnonymous
	}
}

// TokenSource exposes the session credential to the other stores.
type TokenSource interface {
	Token() string
}

// AuthStore owns the session: phone OTP sign-in, registration, logout and
// the persisted bearer token.
type AuthStore struct {
	base
	client  *api.Client
	tokens  store.TokenStore
	session Session

	// epoch advances on every logout. Sign-in work begun under an older
	// epoch must not touch the session or the persisted token.
	epoch uint64
	// persistMu orders writes to the token store.
	persistMu sync.Mutex
}

func NewAuthStore(client *api.Client, tokens store.TokenStore, hub *Hub, logger *zap.Logger) *AuthStore {
	s := &AuthStore{client: client, tokens: tokens}
	s.init(SliceAuth, hub, logger)
	return s
}

func (s *AuthStore) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.session
	if s.session.User != nil {
		user := *s.session.User
		snap.User = &user
	}
	snap.Loading = s.inFlightLocked("")
	return snap
}

func (s *AuthStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Token
}

// Rehydrate seeds the session from the persisted token. A JWT whose exp
// claim has passed is discarded instead.
func (s *AuthStore) Rehydrate(ctx context.Context) error {
	token, err := s.tokens.LoadToken(ctx)
	if errors.Is(err, store.ErrTokenNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("unable to load persisted token: %w", err)
	}

	if tokenExpired(token, time.Now()) {
		s.logger.Info("Discarding expired persisted token")
		s.mu.Lock()
		epoch := s.epoch
		s.mu.Unlock()
		s.deletePersisted(ctx, epoch)
		return nil
	}

	s.mu.Lock()
	s.session.Token = token
	s.mu.Unlock()

	s.logger.Debug("Session rehydrated")
	s.publish("rehydrate", PhaseLocal, "")
	return nil
}

// tokenExpired inspects the exp claim without verifying the signature.
// Opaque tokens never count as expired.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}

// SetPhoneNumber assigns the phone number and invalidates a sent OTP.
func (s *AuthStore) SetPhoneNumber(phone string) {
	s.mu.Lock()
	s.session.PhoneNumber = phone
	s.session.OtpSent = false
	s.mu.Unlock()
	s.publish("setPhoneNumber", PhaseLocal, "")
}

// ChangePhoneNumber returns to phone entry, dropping the sent OTP.
func (s *AuthStore) ChangePhoneNumber() {
	s.mu.Lock()
	s.session.OtpSent = false
	s.session.PhoneNumber = ""
	s.mu.Unlock()
	s.publish("changePhoneNumber", PhaseLocal, "")
}

func (s *AuthStore) SendOtp(ctx context.Context, phone string) error {
	const action = "sendOtp"
	if err := validation.Phone(phone); err != nil {
		s.mu.Lock()
		s.session.Error = errorMessage(err)
		s.session.OtpSent = false
		s.mu.Unlock()
		return s.rejectLocal(action, err)
	}

	s.mu.Lock()
	t := s.beginLocked(ctx, action, action)
	s.session.Error = ""
	s.mu.Unlock()
	s.publish(action, PhasePending, "")

	_, err := s.client.SendOtp(t.ctx, phone)

	s.mu.Lock()
	phase := s.settleLocked(t, err)
	switch phase {
	case PhaseFulfilled:
		s.session.OtpSent = true
		s.session.PhoneNumber = phone
	case PhaseRejected:
		s.session.Error = errorMessage(err)
		s.session.OtpSent = false
	}
	s.mu.Unlock()

	if phase == PhaseFulfilled {
		s.logger.Info("OTP sent", zap.String("phone", maskPhone(phone)))
	}
	return s.report(t, phase, err)
}

// VerifyOtp checks the code for phone (the session's number when empty).
// A registered phone persists the returned token and completes the session
// through Login; an unregistered one moves to registration.
func (s *AuthStore) VerifyOtp(ctx context.Context, phone, code string) error {
	const action = "verifyOtp"

	s.mu.Lock()
	if phone == "" {
		phone = s.session.PhoneNumber
	}
	s.mu.Unlock()

	if err := validation.Otp(code); err != nil {
		s.mu.Lock()
		s.session.Error = errorMessage(err)
		s.mu.Unlock()
		return s.rejectLocal(action, err)
	}

	s.mu.Lock()
	t := s.beginLocked(ctx, action, action)
	epoch := s.epoch
	s.session.Error = ""
	s.mu.Unlock()
	s.publish(action, PhasePending, "")

	resp, err := s.client.VerifyOtp(t.ctx, phone, code)

	s.mu.Lock()
	phase := s.settleLocked(t, err)
	switch phase {
	case PhaseFulfilled:
		s.session.PhoneNumber = phone
		s.session.OtpVerified = true
		s.session.IsRegistered = resp.IsRegistered
	case PhaseRejected:
		s.session.Error = errorMessage(err)
	}
	s.mu.Unlock()

	if err := s.report(t, phase, err); err != nil {
		return err
	}

	if !resp.IsRegistered {
		s.logger.Info("Phone verified, registration required", zap.String("phone", maskPhone(phone)))
		return nil
	}

	if resp.Token != "" && !s.persistToken(ctx, epoch, resp.Token) {
		return s.abandoned(action)
	}
	if err := s.login(ctx, phone, epoch); err != nil {
		if resp.Token != "" {
			s.deletePersisted(ctx, epoch)
		}
		return err
	}
	return nil
}

// Login exchanges the verified phone for a token and user in one transition.
func (s *AuthStore) Login(ctx context.Context, phone string) error {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()
	return s.login(ctx, phone, epoch)
}

// login runs only while no logout has happened since epoch was read.
func (s *AuthStore) login(ctx context.Context, phone string, epoch uint64) error {
	const action = "login"

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return s.abandoned(action)
	}
	if phone == "" {
		phone = s.session.PhoneNumber
	}
	t := s.beginLocked(ctx, action, action)
	s.session.Error = ""
	s.mu.Unlock()
	s.publish(action, PhasePending, "")

	resp, err := s.client.Login(t.ctx, phone)
	if err == nil && resp.Token == "" {
		err = &api.RequestError{Op: action, Message: "Login failed"}
	}

	s.mu.Lock()
	phase := s.settleLocked(t, err)
	switch phase {
	case PhaseFulfilled:
		s.establishLocked(resp)
	case PhaseRejected:
		s.session.Error = errorMessage(err)
		s.session.IsRegistered = false
		s.session.OtpVerified = false
	}
	s.mu.Unlock()

	if phase == PhaseFulfilled {
		s.persistToken(ctx, epoch, resp.Token)
		s.logger.Info("Logged in", zap.String("username", resp.Data.User.Username))
	}
	return s.report(t, phase, err)
}

// Register submits the signup form. The session's phone number is used
// when the form carries none.
func (s *AuthStore) Register(ctx context.Context, form models.Registration) error {
	const action = "register"

	s.mu.Lock()
	if form.Phone == "" {
		form.Phone = s.session.PhoneNumber
	}
	s.mu.Unlock()

	if err := validation.Registration(form); err != nil {
		s.mu.Lock()
		s.session.Error = errorMessage(err)
		s.mu.Unlock()
		return s.rejectLocal(action, err)
	}

	s.mu.Lock()
	t := s.beginLocked(ctx, action, action)
	epoch := s.epoch
	s.session.Error = ""
	s.mu.Unlock()
	s.publish(action, PhasePending, "")

	resp, err := s.client.Register(t.ctx, form)
	if err == nil && resp.Token == "" {
		err = &api.RequestError{Op: action, Message: "Registration failed"}
	}

	s.mu.Lock()
	phase := s.settleLocked(t, err)
	switch phase {
	case PhaseFulfilled:
		s.establishLocked(resp)
	case PhaseRejected:
		s.session.Error = errorMessage(err)
	}
	s.mu.Unlock()

	if phase == PhaseFulfilled {
		s.persistToken(ctx, epoch, resp.Token)
		s.logger.Info("Registered", zap.String("username", resp.Data.User.Username))
	}
	return s.report(t, phase, err)
}

func (s *AuthStore) establishLocked(resp *models.AuthResponse) {
	user := resp.Data.User
	s.session.Token = resp.Token
	s.session.User = &user
	s.session.IsRegistered = true
	s.session.OtpVerified = true
	s.session.Error = ""
}

// Logout clears the session and the persisted token. It cancels in-flight
// auth requests and is safe to call at any time.
func (s *AuthStore) Logout() {
	s.mu.Lock()
	epoch := s.resetLocked()
	s.mu.Unlock()

	s.deletePersisted(context.Background(), epoch)
	s.logger.Info("Logged out")
	s.publish("logout", PhaseLocal, "")
}

// resetLocked ends the session and starts a new epoch, which it returns.
func (s *AuthStore) resetLocked() uint64 {
	s.cancelAllLocked()
	s.session = Session{}
	s.epoch++
	return s.epoch
}

// abandoned reports sign-in work dropped because a logout happened first.
func (s *AuthStore) abandoned(action string) error {
	s.logger.Debug("Sign-in abandoned after logout", zap.String("action", action))
	s.publish(action, PhaseCanceled, "")
	return ErrSuperseded
}

// FetchMe refreshes the session user. A 401 ends the session.
func (s *AuthStore) FetchMe(ctx context.Context) error {
	const action = "fetchMe"

	s.mu.Lock()
	token := s.session.Token
	if token == "" {
		s.session.Error = ErrNotAuthenticated.Error()
		s.mu.Unlock()
		return s.rejectLocal(action, ErrNotAuthenticated)
	}
	t := s.beginLocked(ctx, action, action)
	s.session.Error = ""
	s.mu.Unlock()
	s.publish(action, PhasePending, "")

	profile, err := s.client.Me(t.ctx, token)

	expired := false
	var epoch uint64
	s.mu.Lock()
	phase := s.settleLocked(t, err)
	switch phase {
	case PhaseFulfilled:
		// A result for a token that was replaced meanwhile belongs to
		// another session.
		if s.session.Token == token {
			user := profile.Summary()
			s.session.User = &user
		}
	case PhaseRejected:
		if api.IsUnauthorized(err) && s.session.Token == token {
			err = &SessionExpiredError{Err: err}
			epoch = s.resetLocked()
			expired = true
		}
		s.session.Error = errorMessage(err)
	}
	s.mu.Unlock()

	if expired {
		s.deletePersisted(ctx, epoch)
		s.logger.Info("Session expired, logged out")
		s.publish("logout", PhaseLocal, "")
	}
	return s.report(t, phase, err)
}

// persistToken saves token unless a logout happened since epoch or another
// session replaced it. It reports whether the session is still current.
func (s *AuthStore) persistToken(parent context.Context, epoch uint64, token string) bool {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	current := s.epoch == epoch && (s.session.Token == "" || s.session.Token == token)
	s.mu.Unlock()
	if !current {
		s.logger.Debug("Skipping token persist for a stale session")
		return false
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), persistTimeout)
	defer cancel()
	if err := s.tokens.SaveToken(ctx, token); err != nil {
		s.logger.Warn("Unable to persist token", zap.Error(err))
	}
	return true
}

// deletePersisted removes the stored token while epoch is current and no
// session holds a token; a newer sign-in keeps its own.
func (s *AuthStore) deletePersisted(parent context.Context, epoch uint64) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	current := s.epoch == epoch && s.session.Token == ""
	s.mu.Unlock()
	if !current {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), persistTimeout)
	defer cancel()
	if err := s.tokens.DeleteToken(ctx); err != nil {
		s.logger.Warn("Unable to remove persisted token", zap.Error(err))
	}
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	masked := make([]byte, len(phone))
	for i := range phone {
		if i < len(phone)-4 && phone[i] != '+' {
			masked[i] = '*'
		} else {
			masked[i] = phone[i]
		}
	}
	return string(masked)
}
