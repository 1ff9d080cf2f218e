package services

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"communityhub/internal/domain"
)

type notificationFixture struct {
	svc         domain.NotificationService
	events      *fakeEventRepo
	collabs     *fakeCollabRepo
	communities *fakeCommunityRepo
	members     *fakeMemberRepo
	regs        *fakeRegistrationRepo
	users       *fakeUserRepo
	email       *fakeEmailService
}

func newNotificationFixture() *notificationFixture {
	f := &notificationFixture{
		events:      newFakeEventRepo(),
		collabs:     newFakeCollabRepo(),
		communities: newFakeCommunityRepo(),
		members:     newFakeMemberRepo(),
		regs:        newFakeRegistrationRepo(),
		users:       newFakeUserRepo(),
		email:       &fakeEmailService{},
	}
	f.svc = NewNotificationService(f.events, f.collabs, f.communities, f.members, f.regs, f.users, f.email, "https://app.example.com")

	f.communities.add(&domain.Community{ID: "community-1", Name: "Gophers Madrid"})
	f.communities.add(&domain.Community{ID: "community-2", Name: "Gophers Sevilla"})
	f.events.events["event-1"] = publishedEvent("event-1")
	f.collabs.byID["collab-1"] = &domain.EventCollaboration{
		ID: "collab-1", EventID: "event-1", CommunityID: "community-2",
		Role: domain.CollabRoleCoHost, Status: domain.CollabStatusAccepted,
	}
	return f
}

func announcedEmails(email *fakeEmailService) []string {
	var out []string
	for _, a := range email.announcements {
		out = append(out, a.Email)
	}
	sort.Strings(out)
	return out
}

func TestProcess_collab_accepted_new_event(t *testing.T) {
	f := newNotificationFixture()
	f.members.addMember("community-1", "h1", domain.RoleOwner, "host1@example.com")
	f.members.addMember("community-1", "h2", domain.RoleMember, "host2@example.com")
	f.members.addMember("community-2", "c1", domain.RoleOwner, "cohost1@example.com")
	// Same person belongs to both communities; one email only.
	f.members.addMember("community-2", "h2", domain.RoleMember, "host2@example.com")

	result, err := f.svc.Process(context.Background(), &domain.NotificationJob{
		Type:            domain.NotifyCollabAcceptedNewEvent,
		CollaborationID: "collab-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Notified)
	assert.Empty(t, result.Failures)
	assert.Equal(t, []string{"cohost1@example.com", "host1@example.com", "host2@example.com"}, announcedEmails(f.email))
	for _, a := range f.email.announcements {
		assert.True(t, a.IsNewEvent)
		assert.Equal(t, "https://app.example.com/events/event-1", a.EventURL)
	}
}

func TestProcess_collab_accepted_existing_event(t *testing.T) {
	f := newNotificationFixture()
	f.members.addMember("community-1", "h1", domain.RoleOwner, "host1@example.com")
	f.members.addMember("community-2", "c1", domain.RoleOwner, "cohost1@example.com")

	result, err := f.svc.Process(context.Background(), &domain.NotificationJob{
		Type:            domain.NotifyCollabAcceptedExistingEvent,
		CollaborationID: "collab-1",
	})
	require.NoError(t, err)
	// Host members already know the event; only co-host members hear about it.
	assert.Equal(t, 1, result.Notified)
	assert.Equal(t, []string{"cohost1@example.com"}, announcedEmails(f.email))
	assert.False(t, f.email.announcements[0].IsNewEvent)
}

func TestProcess_collab_accepted_send_failures_collected(t *testing.T) {
	f := newNotificationFixture()
	f.members.addMember("community-2", "c1", domain.RoleOwner, "cohost1@example.com")
	f.email.announceErr = errors.New("ses down")

	result, err := f.svc.Process(context.Background(), &domain.NotificationJob{
		Type:            domain.NotifyCollabAcceptedExistingEvent,
		CollaborationID: "collab-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Notified)
	assert.Equal(t, []string{"cohost1@example.com"}, result.Failures)
}

func TestProcess_registration_notice(t *testing.T) {
	f := newNotificationFixture()
	f.members.addMember("community-1", "owner-1", domain.RoleOwner, "owner@example.com")
	f.members.addMember("community-1", "admin-1", domain.RoleAdmin, "admin@example.com")
	f.members.addMember("community-1", "member-1", domain.RoleMember, "member@example.com")
	f.regs.byID["reg-1"] = &domain.EventRegistration{
		ID: "reg-1", EventID: "event-1", Name: "Ada", Email: "ada@example.com",
	}

	result, err := f.svc.Process(context.Background(), &domain.NotificationJob{
		Type:           domain.NotifyRegistration,
		RegistrationID: "reg-1",
	})
	require.NoError(t, err)
	// Owners and admins only; plain members are not organizers.
	assert.Equal(t, 2, result.Notified)
	require.Len(t, f.email.notices, 2)
	for _, n := range f.email.notices {
		assert.NotEqual(t, "member@example.com", n.Email)
		assert.Equal(t, "Ada", n.RegistrantName)
		assert.Equal(t, "ada@example.com", n.RegistrantEmail)
	}
}

func TestProcess_registration_notice_resolves_user(t *testing.T) {
	f := newNotificationFixture()
	f.members.addMember("community-1", "owner-1", domain.RoleOwner, "owner@example.com")
	f.users.byID["user-1"] = &domain.User{ID: "user-1", Email: "u@example.com", Name: "Uma", LastName: "Ueda"}
	f.regs.byID["reg-1"] = &domain.EventRegistration{ID: "reg-1", EventID: "event-1", UserID: "user-1"}

	_, err := f.svc.Process(context.Background(), &domain.NotificationJob{
		Type:           domain.NotifyRegistration,
		RegistrationID: "reg-1",
	})
	require.NoError(t, err)
	require.Len(t, f.email.notices, 1)
	assert.Equal(t, "Uma Ueda", f.email.notices[0].RegistrantName)
	assert.Equal(t, "u@example.com", f.email.notices[0].RegistrantEmail)
}

func TestProcess_unknown_type(t *testing.T) {
	f := newNotificationFixture()
	_, err := f.svc.Process(context.Background(), &domain.NotificationJob{Type: "weekly-digest"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProcess_unknown_collaboration(t *testing.T) {
	f := newNotificationFixture()
	_, err := f.svc.Process(context.Background(), &domain.NotificationJob{
		Type:            domain.NotifyCollabAcceptedNewEvent,
		CollaborationID: "collab-missing",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
