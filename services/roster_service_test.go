package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-events/models"
)

func TestRosterService_Count_CacheHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	store := &fakeStore{}
	service := NewRosterService(store, db, 30*time.Second)

	mock.ExpectGet("event:count:evt1").SetVal("42")

	count, err := service.Count(context.Background(), "evt1")

	require.NoError(t, err)
	assert.Equal(t, 42, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterService_Count_CacheMissFallsThrough(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	store := &fakeStore{
		participants: []models.Participant{
			{ID: "p1", EventID: "evt1", Email: "a@college.edu"},
			{ID: "p2", EventID: "evt1", Email: "b@college.edu"},
		},
	}
	service := NewRosterService(store, db, 30*time.Second)

	mock.ExpectGet("event:count:evt1").RedisNil()
	mock.ExpectSet("event:count:evt1", 2, 30*time.Second).SetVal("OK")

	count, err := service.Count(context.Background(), "evt1")

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterService_Count_RedisDownUsesStore(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	store := &fakeStore{
		participants: []models.Participant{
			{ID: "p1", EventID: "evt1", Email: "a@college.edu"},
		},
	}
	service := NewRosterService(store, db, 30*time.Second)

	mock.ExpectGet("event:count:evt1").SetErr(errors.New("connection refused"))
	mock.ExpectSet("event:count:evt1", 1, 30*time.Second).SetErr(errors.New("connection refused"))

	count, err := service.Count(context.Background(), "evt1")

	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRosterService_Count_StoreError(t *testing.T) {
	store := &fakeStore{countErr: errors.New("db locked")}
	service := NewRosterService(store, nil, 30*time.Second)

	_, err := service.Count(context.Background(), "evt1")

	var persistence *PersistenceError
	assert.ErrorAs(t, err, &persistence)
}

func TestRosterService_InvalidateCount(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	service := NewRosterService(&fakeStore{}, db, 30*time.Second)

	mock.ExpectDel("event:count:evt1").SetVal(1)

	service.InvalidateCount(context.Background(), "evt1")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterService_FindByEmail_NormalizesLookup(t *testing.T) {
	store := &fakeStore{
		participants: []models.Participant{
			{ID: "p1", EventID: "evt1", Email: "priya@college.edu"},
		},
	}
	service := NewRosterService(store, nil, 30*time.Second)

	p, err := service.FindByEmail(context.Background(), "evt1", "  PRIYA@College.edu ")

	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "p1", p.ID)
}

func TestRosterService_FindByEmail_AbsenceIsNil(t *testing.T) {
	service := NewRosterService(&fakeStore{}, nil, 30*time.Second)

	p, err := service.FindByEmail(context.Background(), "evt1", "nobody@college.edu")

	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestRosterService_WriteCSV(t *testing.T) {
	service := NewRosterService(&fakeStore{}, nil, 30*time.Second)

	roster := []models.Participant{
		{
			Name:         "Priya Sharma",
			Email:        "priya@college.edu",
			MobileNumber: "9876543210",
			Class:        "TE-B",
			Department:   "Computer Engineering",
			RegisteredAt: time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC),
		},
		{
			Name:         "Arjun Mehta",
			Email:        "arjun@college.edu",
			MobileNumber: "9123456780",
			Class:        "BE-A",
			Department:   "Information Technology",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, service.WriteCSV(&buf, roster))

	expected := "Name,Email,Mobile Number,Class,Department,Registration Date\n" +
		"Priya Sharma,priya@college.edu,9876543210,TE-B,Computer Engineering,2026-09-01\n" +
		"Arjun Mehta,arjun@college.edu,9123456780,BE-A,Information Technology,N/A\n"
	assert.Equal(t, expected, buf.String())
}

func TestRosterService_WriteCSV_EmptyRoster(t *testing.T) {
	service := NewRosterService(&fakeStore{}, nil, 30*time.Second)

	var buf bytes.Buffer
	require.NoError(t, service.WriteCSV(&buf, nil))

	assert.Equal(t, "Name,Email,Mobile Number,Class,Department,Registration Date\n", buf.String())
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "Tech_Symposium_participants_2026-09-01.csv", ExportFilename("Tech Symposium", now))
	assert.Equal(t, "Annual_Tech_Fest_participants_2026-09-01.csv", ExportFilename("  Annual   Tech Fest ", now))
	assert.Equal(t, "event_participants_2026-09-01.csv", ExportFilename("", now))
}
