package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"communityhub/internal/domain"
)

func newEventFixture() (domain.EventService, *fakeEventRepo, *fakeMemberRepo) {
	events := newFakeEventRepo()
	members := newFakeMemberRepo()
	return NewEventService(events, members, time.Second), events, members
}

func draftEventInput() *domain.Event {
	start := time.Now().Add(48 * time.Hour)
	end := start.Add(2 * time.Hour)
	return &domain.Event{
		CommunityID:      "community-1",
		Title:            "Go Meetup",
		EventType:        domain.EventTypeInPerson,
		RegistrationType: domain.RegistrationTypeInternal,
		StartTime:        &start,
		EndTime:          &end,
	}
}

func TestCreateEvent(t *testing.T) {
	svc, events, members := newEventFixture()
	members.addMember("community-1", "admin-1", domain.RoleAdmin, "a@example.com")

	ev := draftEventInput()
	require.NoError(t, svc.CreateEvent(context.Background(), ev, "admin-1"))
	assert.Equal(t, domain.EventStatusDraft, ev.Status)
	assert.Equal(t, "admin-1", ev.CreatorID)
	assert.Len(t, events.created, 1)
}

func TestCreateEvent_validation(t *testing.T) {
	svc, _, members := newEventFixture()
	members.addMember("community-1", "admin-1", domain.RoleAdmin, "a@example.com")

	cases := []struct {
		name   string
		mutate func(*domain.Event)
	}{
		{"empty title", func(e *domain.Event) { e.Title = "  " }},
		{"bad event type", func(e *domain.Event) { e.EventType = "metaverse" }},
		{"bad registration type", func(e *domain.Event) { e.RegistrationType = "phone" }},
		{"external without url", func(e *domain.Event) { e.RegistrationType = domain.RegistrationTypeExternal }},
		{"end before start", func(e *domain.Event) { e.EndTime = e.StartTime }},
		{"unknown reminder bucket", func(e *domain.Event) { e.ReminderBuckets = []string{"2-weeks"} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := draftEventInput()
			tc.mutate(ev)
			err := svc.CreateEvent(context.Background(), ev, "admin-1")
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestCreateEvent_requires_manager(t *testing.T) {
	svc, _, members := newEventFixture()
	members.addMember("community-1", "member-1", domain.RoleMember, "m@example.com")

	err := svc.CreateEvent(context.Background(), draftEventInput(), "member-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateEvent_time_consistency(t *testing.T) {
	svc, events, members := newEventFixture()
	members.addMember("community-1", "admin-1", domain.RoleAdmin, "a@example.com")
	events.events["event-1"] = publishedEvent("event-1")

	// Moving the start past the stored end is rejected.
	badStart := events.events["event-1"].EndTime.Add(time.Hour)
	_, err := svc.UpdateEvent(context.Background(), "event-1", "admin-1", domain.EventUpdate{StartTime: &badStart})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	title := "Renamed"
	updated, err := svc.UpdateEvent(context.Background(), "event-1", "admin-1", domain.EventUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestPublishEvent(t *testing.T) {
	svc, events, members := newEventFixture()
	members.addMember("community-1", "admin-1", domain.RoleAdmin, "a@example.com")
	ev := publishedEvent("event-1")
	ev.Status = domain.EventStatusDraft
	ev.PublishedAt = nil
	events.events["event-1"] = ev

	published, err := svc.PublishEvent(context.Background(), "event-1", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)
	first := *published.PublishedAt

	// Re-publishing is a no-op and keeps the original timestamp.
	again, err := svc.PublishEvent(context.Background(), "event-1", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, first, *again.PublishedAt)
}

func TestPublishEvent_cancelled(t *testing.T) {
	svc, events, members := newEventFixture()
	members.addMember("community-1", "admin-1", domain.RoleAdmin, "a@example.com")
	ev := publishedEvent("event-1")
	ev.Status = domain.EventStatusCancelled
	events.events["event-1"] = ev

	_, err := svc.PublishEvent(context.Background(), "event-1", "admin-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCancelEvent(t *testing.T) {
	svc, events, members := newEventFixture()
	members.addMember("community-1", "admin-1", domain.RoleAdmin, "a@example.com")
	events.events["event-1"] = publishedEvent("event-1")

	require.NoError(t, svc.CancelEvent(context.Background(), "event-1", "admin-1"))
	assert.Equal(t, domain.EventStatusCancelled, events.statusSet["event-1"])
}

func TestGetEvent_not_found(t *testing.T) {
	svc, _, _ := newEventFixture()
	_, err := svc.GetEvent(context.Background(), "event-missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
