package services

import (
	"context"
	"time"

	"communityhub/internal/domain"
)

// Map-backed fakes for the domain ports, shared across the service tests.

type fakeEventRepo struct {
	events    map[string]*domain.Event
	created   []*domain.Event
	statusSet map[string]string
	inWindow  []*domain.Event
	err       error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: map[string]*domain.Event{}, statusSet: map[string]string{}}
}

func (m *fakeEventRepo) CreateWithHost(ctx context.Context, e *domain.Event) error {
	if m.err != nil {
		return m.err
	}
	if e.ID == "" {
		e.ID = "event-new"
	}
	m.events[e.ID] = e
	m.created = append(m.created, e)
	return nil
}

func (m *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	ev, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

func (m *fakeEventRepo) ListByCommunityID(ctx context.Context, communityID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, ev := range m.events {
		if ev.CommunityID == communityID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *fakeEventRepo) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	ev, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Title != nil {
		ev.Title = *upd.Title
	}
	if upd.StartTime != nil {
		ev.StartTime = upd.StartTime
	}
	if upd.EndTime != nil {
		ev.EndTime = upd.EndTime
	}
	return ev, nil
}

func (m *fakeEventRepo) SetStatus(ctx context.Context, id, status string, publishedAt *time.Time) error {
	ev, ok := m.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	ev.Status = status
	if publishedAt != nil {
		ev.PublishedAt = publishedAt
	}
	m.statusSet[id] = status
	return nil
}

func (m *fakeEventRepo) ListPublishedStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.inWindow, nil
}

func (m *fakeEventRepo) Delete(ctx context.Context, id string) error {
	delete(m.events, id)
	return nil
}

type fakeRegistrationRepo struct {
	byID      map[string]*domain.EventRegistration
	byEmail   map[string]*domain.EventRegistration // key eventID:email
	byToken   map[string]*domain.EventRegistration // key eventID:token
	approved  map[string][]*domain.EventRegistration
	created   []*domain.EventRegistration
	verified  []string
	approvals map[string]string
	deleted   []string
	createErr error
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{
		byID:      map[string]*domain.EventRegistration{},
		byEmail:   map[string]*domain.EventRegistration{},
		byToken:   map[string]*domain.EventRegistration{},
		approved:  map[string][]*domain.EventRegistration{},
		approvals: map[string]string{},
	}
}

func (m *fakeRegistrationRepo) Create(ctx context.Context, reg *domain.EventRegistration) error {
	if m.createErr != nil {
		return m.createErr
	}
	if reg.ID == "" {
		reg.ID = "reg-new"
	}
	m.byID[reg.ID] = reg
	m.created = append(m.created, reg)
	return nil
}

func (m *fakeRegistrationRepo) GetByID(ctx context.Context, id string) (*domain.EventRegistration, error) {
	reg, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return reg, nil
}

func (m *fakeRegistrationRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.EventRegistration, error) {
	for _, reg := range m.byID {
		if reg.EventID == eventID && reg.UserID == userID {
			return reg, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *fakeRegistrationRepo) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.EventRegistration, error) {
	reg, ok := m.byEmail[eventID+":"+email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return reg, nil
}

func (m *fakeRegistrationRepo) GetByEventAndToken(ctx context.Context, eventID, token string) (*domain.EventRegistration, error) {
	reg, ok := m.byToken[eventID+":"+token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return reg, nil
}

func (m *fakeRegistrationRepo) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.EventRegistration, int, error) {
	var out []*domain.EventRegistration
	for _, reg := range m.byID {
		if reg.EventID == eventID {
			out = append(out, reg)
		}
	}
	return out, len(out), nil
}

func (m *fakeRegistrationRepo) ListApprovedGoing(ctx context.Context, eventID string) ([]*domain.EventRegistration, error) {
	return m.approved[eventID], nil
}

func (m *fakeRegistrationRepo) SetVerified(ctx context.Context, id string) error {
	m.verified = append(m.verified, id)
	return nil
}

func (m *fakeRegistrationRepo) SetApprovalStatus(ctx context.Context, id, status string) error {
	m.approvals[id] = status
	return nil
}

func (m *fakeRegistrationRepo) DeleteByEventAndUser(ctx context.Context, eventID, userID string) error {
	for id, reg := range m.byID {
		if reg.EventID == eventID && reg.UserID == userID {
			delete(m.byID, id)
			m.deleted = append(m.deleted, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *fakeRegistrationRepo) DeleteByEventAndEmail(ctx context.Context, eventID, email string) error {
	for id, reg := range m.byID {
		if reg.EventID == eventID && reg.Email == email {
			delete(m.byID, id)
			m.deleted = append(m.deleted, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeCommunityRepo struct {
	byID       map[string]*domain.Community
	bySlug     map[string]*domain.Community
	getByIDErr error
}

func newFakeCommunityRepo() *fakeCommunityRepo {
	return &fakeCommunityRepo{byID: map[string]*domain.Community{}, bySlug: map[string]*domain.Community{}}
}

func (m *fakeCommunityRepo) add(c *domain.Community) {
	m.byID[c.ID] = c
	if c.Slug != "" {
		m.bySlug[c.Slug] = c
	}
}

func (m *fakeCommunityRepo) Create(ctx context.Context, c *domain.Community) error {
	if c.ID == "" {
		c.ID = "community-new"
	}
	if _, exists := m.bySlug[c.Slug]; exists {
		return domain.ErrDuplicateSlug
	}
	m.add(c)
	return nil
}

func (m *fakeCommunityRepo) GetByID(ctx context.Context, id string) (*domain.Community, error) {
	if m.getByIDErr != nil {
		return nil, m.getByIDErr
	}
	c, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (m *fakeCommunityRepo) GetBySlug(ctx context.Context, slug string) (*domain.Community, error) {
	c, ok := m.bySlug[slug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (m *fakeCommunityRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Community, error) {
	return nil, nil
}

type fakeMemberRepo struct {
	members map[string]*domain.CommunityMember // key communityID:userID
	added   []string
	removed []string
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: map[string]*domain.CommunityMember{}}
}

func (m *fakeMemberRepo) addMember(communityID, userID, role, email string) {
	m.members[communityID+":"+userID] = &domain.CommunityMember{
		CommunityID: communityID,
		UserID:      userID,
		Role:        role,
		Email:       email,
	}
}

func (m *fakeMemberRepo) Add(ctx context.Context, communityID, userID, role string) error {
	key := communityID + ":" + userID
	if _, exists := m.members[key]; exists {
		return domain.ErrAlreadyMember
	}
	m.addMember(communityID, userID, role, "")
	m.added = append(m.added, key)
	return nil
}

func (m *fakeMemberRepo) Get(ctx context.Context, communityID, userID string) (*domain.CommunityMember, error) {
	member, ok := m.members[communityID+":"+userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return member, nil
}

func (m *fakeMemberRepo) ListByCommunityID(ctx context.Context, communityID string) ([]*domain.CommunityMember, error) {
	var out []*domain.CommunityMember
	for _, member := range m.members {
		if member.CommunityID == communityID {
			out = append(out, member)
		}
	}
	return out, nil
}

func (m *fakeMemberRepo) Remove(ctx context.Context, communityID, userID string) error {
	key := communityID + ":" + userID
	if _, ok := m.members[key]; !ok {
		return domain.ErrNotFound
	}
	delete(m.members, key)
	m.removed = append(m.removed, key)
	return nil
}

type fakeUserRepo struct {
	byID map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*domain.User{}}
}

func (m *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = "user-new"
	}
	for _, u := range m.byID {
		if u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	m.byID[user.ID] = user
	return nil
}

func (m *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

type fakeCollabRepo struct {
	byID      map[string]*domain.EventCollaboration
	created   []*domain.EventCollaboration
	statusSet map[string]string
	deleted   []string
}

func newFakeCollabRepo() *fakeCollabRepo {
	return &fakeCollabRepo{byID: map[string]*domain.EventCollaboration{}, statusSet: map[string]string{}}
}

func (m *fakeCollabRepo) Create(ctx context.Context, collab *domain.EventCollaboration) error {
	if collab.ID == "" {
		collab.ID = "collab-new"
	}
	for _, c := range m.byID {
		if c.EventID == collab.EventID && c.CommunityID == collab.CommunityID {
			return domain.ErrCollaborationExists
		}
	}
	m.byID[collab.ID] = collab
	m.created = append(m.created, collab)
	return nil
}

func (m *fakeCollabRepo) GetByID(ctx context.Context, id string) (*domain.EventCollaboration, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (m *fakeCollabRepo) GetByEventAndCommunity(ctx context.Context, eventID, communityID string) (*domain.EventCollaboration, error) {
	for _, c := range m.byID {
		if c.EventID == eventID && c.CommunityID == communityID {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *fakeCollabRepo) GetHostByEventID(ctx context.Context, eventID string) (*domain.EventCollaboration, error) {
	for _, c := range m.byID {
		if c.EventID == eventID && c.Role == domain.CollabRoleHost {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *fakeCollabRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventCollaboration, error) {
	var out []*domain.EventCollaboration
	for _, c := range m.byID {
		if c.EventID == eventID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *fakeCollabRepo) SetStatus(ctx context.Context, id, status string, acceptedAt *time.Time) error {
	c, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Status = status
	if acceptedAt != nil {
		c.AcceptedAt = acceptedAt
	}
	m.statusSet[id] = status
	return nil
}

func (m *fakeCollabRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type fakeSentReminderRepo struct {
	claims   map[string]bool // key registrationID:bucket
	released []string
	claimErr error
}

func newFakeSentReminderRepo() *fakeSentReminderRepo {
	return &fakeSentReminderRepo{claims: map[string]bool{}}
}

func (m *fakeSentReminderRepo) Claim(ctx context.Context, registrationID, bucket string, sentAt time.Time) (bool, error) {
	if m.claimErr != nil {
		return false, m.claimErr
	}
	key := registrationID + ":" + bucket
	if m.claims[key] {
		return false, nil
	}
	m.claims[key] = true
	return true, nil
}

func (m *fakeSentReminderRepo) Release(ctx context.Context, registrationID, bucket string) error {
	delete(m.claims, registrationID+":"+bucket)
	m.released = append(m.released, registrationID+":"+bucket)
	return nil
}

// fakeEmailService records every send and can fail selected methods.
type fakeEmailService struct {
	verifications []*domain.VerificationEmailData
	confirmations []*domain.ConfirmationEmailData
	subscriptions []*domain.ConfirmationEmailData
	approvals     []*domain.ApprovalStatusEmailData
	invites       []*domain.CollaborationInviteEmailData
	accepted      []*domain.CollaborationAcceptedEmailData
	reminders     []*domain.ReminderEmailData
	announcements []*domain.AnnouncementEmailData
	notices       []*domain.RegistrationNoticeEmailData
	reminderErr   error
	announceErr   error
}

func (m *fakeEmailService) SendVerification(ctx context.Context, data *domain.VerificationEmailData) error {
	m.verifications = append(m.verifications, data)
	return nil
}

func (m *fakeEmailService) SendRegistrationConfirmation(ctx context.Context, data *domain.ConfirmationEmailData) error {
	m.confirmations = append(m.confirmations, data)
	return nil
}

func (m *fakeEmailService) SendSubscriptionConfirmation(ctx context.Context, data *domain.ConfirmationEmailData) error {
	m.subscriptions = append(m.subscriptions, data)
	return nil
}

func (m *fakeEmailService) SendApprovalStatus(ctx context.Context, data *domain.ApprovalStatusEmailData) error {
	m.approvals = append(m.approvals, data)
	return nil
}

func (m *fakeEmailService) SendCollaborationInvite(ctx context.Context, data *domain.CollaborationInviteEmailData) error {
	m.invites = append(m.invites, data)
	return nil
}

func (m *fakeEmailService) SendCollaborationAccepted(ctx context.Context, data *domain.CollaborationAcceptedEmailData) error {
	m.accepted = append(m.accepted, data)
	return nil
}

func (m *fakeEmailService) SendEventReminder(ctx context.Context, data *domain.ReminderEmailData) error {
	if m.reminderErr != nil {
		return m.reminderErr
	}
	m.reminders = append(m.reminders, data)
	return nil
}

func (m *fakeEmailService) SendMemberAnnouncement(ctx context.Context, data *domain.AnnouncementEmailData) error {
	if m.announceErr != nil {
		return m.announceErr
	}
	m.announcements = append(m.announcements, data)
	return nil
}

func (m *fakeEmailService) SendRegistrationNotice(ctx context.Context, data *domain.RegistrationNoticeEmailData) error {
	m.notices = append(m.notices, data)
	return nil
}

type fakeDispatcher struct {
	jobs []*domain.NotificationJob
	err  error
}

func (m *fakeDispatcher) Dispatch(ctx context.Context, job *domain.NotificationJob) error {
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}
