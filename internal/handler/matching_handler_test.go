package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/FranciscoSoares0/WatchMatch-Backend/internal/database"
	"github.com/FranciscoSoares0/WatchMatch-Backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testShows = []models.Show{
	{ID: 101, Title: "Severance", Overview: "Work-life balance, surgically", VoteAverage: 8.5},
	{ID: 102, Title: "Dark", Overview: "Time travel in Winden", VoteAverage: 8.7},
}

func TestStartMatching(t *testing.T) {
	router, _ := setupTest(t)
	u1 := createUser(t, "Ana", "u1@x.com", "Str0ng!Pass")
	u2 := createUser(t, "Ben", "u2@x.com", "Str0ng!Pass")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/matching", StartMatchingInput{
		User2ID: u2.ID,
		Shows:   testShows,
	}, accessCookie(t, u1.ID))
	require.Equal(t, http.StatusCreated, rec.Code)

	var session models.MatchingSession
	decodeBody(t, rec, &session)
	assert.Equal(t, u1.ID, session.User1ID)
	assert.Equal(t, u2.ID, session.User2ID)
	assert.Equal(t, models.MatchingPending, session.Status)
	assert.Len(t, session.Shows, 2)
	assert.Empty(t, session.User1Approved)
	assert.Empty(t, session.User2Approved)
}

func TestStartMatchingRejections(t *testing.T) {
	router, _ := setupTest(t)
	u1 := createUser(t, "Ana", "u1@x.com", "Str0ng!Pass")
	u2 := createUser(t, "Ben", "u2@x.com", "Str0ng!Pass")

	// Unknown counterpart.
	rec := doRequest(t, router, http.MethodPost, "/api/v1/matching", StartMatchingInput{
		User2ID: 9999,
		Shows:   testShows,
	}, accessCookie(t, u1.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Self match.
	rec = doRequest(t, router, http.MethodPost, "/api/v1/matching", StartMatchingInput{
		User2ID: u1.ID,
		Shows:   testShows,
	}, accessCookie(t, u1.ID))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Empty candidate list.
	rec = doRequest(t, router, http.MethodPost, "/api/v1/matching", StartMatchingInput{
		User2ID: u2.ID,
		Shows:   []models.Show{},
	}, accessCookie(t, u1.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Open a session, then try both directions again while it is pending.
	rec = doRequest(t, router, http.MethodPost, "/api/v1/matching", StartMatchingInput{
		User2ID: u2.ID,
		Shows:   testShows,
	}, accessCookie(t, u1.ID))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/matching", StartMatchingInput{
		User2ID: u2.ID,
		Shows:   testShows,
	}, accessCookie(t, u1.ID))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/matching", StartMatchingInput{
		User2ID: u1.ID,
		Shows:   testShows,
	}, accessCookie(t, u2.ID))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body ErrorResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, "Matching session already exists. Please complete the current one first", body.Error)
}

func TestStartMatchingAfterCompletion(t *testing.T) {
	router, _ := setupTest(t)
	u1 := createUser(t, "Ana", "u1@x.com", "Str0ng!Pass")
	u2 := createUser(t, "Ben", "u2@x.com", "Str0ng!Pass")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/matching", StartMatchingInput{
		User2ID: u2.ID,
		Shows:   testShows,
	}, accessCookie(t, u1.ID))
	require.Equal(t, http.StatusCreated, rec.Code)
	var session models.MatchingSession
	decodeBody(t, rec, &session)

	// Completion is driven from outside this service; emulate it directly.
	require.NoError(t, database.DB.Model(&models.MatchingSession{}).
		Where("id = ?", session.ID).
		Update("status", models.MatchingCompleted).Error)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/matching", StartMatchingInput{
		User2ID: u1.ID,
		Shows:   testShows,
	}, accessCookie(t, u2.ID))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestApproveShow(t *testing.T) {
	router, _ := setupTest(t)
	u1 := createUser(t, "Ana", "u1@x.com", "Str0ng!Pass")
	u2 := createUser(t, "Ben", "u2@x.com", "Str0ng!Pass")
	u3 := createUser(t, "Cat", "u3@x.com", "Str0ng!Pass")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/matching", StartMatchingInput{
		User2ID: u2.ID,
		Shows:   testShows,
	}, accessCookie(t, u1.ID))
	require.Equal(t, http.StatusCreated, rec.Code)
	var session models.MatchingSession
	decodeBody(t, rec, &session)

	approvalPath := fmt.Sprintf("/api/v1/matching/%d/approvals", session.ID)

	// Outsiders cannot approve.
	rec = doRequest(t, router, http.MethodPost, approvalPath,
		ApproveShowInput{Show: testShows[0]}, accessCookie(t, u3.ID))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A show outside the candidate list is refused.
	rec = doRequest(t, router, http.MethodPost, approvalPath,
		ApproveShowInput{Show: models.Show{ID: 999, Title: "Not Here"}}, accessCookie(t, u1.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Each side's approvals land on its own list.
	rec = doRequest(t, router, http.MethodPost, approvalPath,
		ApproveShowInput{Show: testShows[0]}, accessCookie(t, u1.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, approvalPath,
		ApproveShowInput{Show: testShows[1]}, accessCookie(t, u2.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	// Re-approving the same show is a no-op.
	rec = doRequest(t, router, http.MethodPost, approvalPath,
		ApproveShowInput{Show: testShows[0]}, accessCookie(t, u1.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.MatchingSession
	require.NoError(t, database.DB.First(&stored, session.ID).Error)
	require.Len(t, stored.User1Approved, 1)
	assert.Equal(t, 101, stored.User1Approved[0].ID)
	require.Len(t, stored.User2Approved, 1)
	assert.Equal(t, 102, stored.User2Approved[0].ID)

	// Approvals never complete the session from inside this service.
	assert.Equal(t, models.MatchingPending, stored.Status)
}

func TestApproveShowRequiresPendingSession(t *testing.T) {
	router, _ := setupTest(t)
	u1 := createUser(t, "Ana", "u1@x.com", "Str0ng!Pass")
	u2 := createUser(t, "Ben", "u2@x.com", "Str0ng!Pass")

	session := models.MatchingSession{
		User1ID: u1.ID,
		User2ID: u2.ID,
		Status:  models.MatchingCompleted,
		Shows:   testShows,
	}
	require.NoError(t, database.DB.Create(&session).Error)

	rec := doRequest(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/matching/%d/approvals", session.ID),
		ApproveShowInput{Show: testShows[0]}, accessCookie(t, u1.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMatchingSessions(t *testing.T) {
	router, _ := setupTest(t)
	u1 := createUser(t, "Ana", "u1@x.com", "Str0ng!Pass")
	u2 := createUser(t, "Ben", "u2@x.com", "Str0ng!Pass")
	u3 := createUser(t, "Cat", "u3@x.com", "Str0ng!Pass")

	for _, pair := range [][2]uint{{u1.ID, u2.ID}, {u3.ID, u1.ID}, {u2.ID, u3.ID}} {
		session := models.MatchingSession{
			User1ID: pair[0],
			User2ID: pair[1],
			Status:  models.MatchingPending,
			Shows:   testShows,
		}
		require.NoError(t, database.DB.Create(&session).Error)
	}

	rec := doRequest(t, router, http.MethodGet, "/api/v1/matching", nil, accessCookie(t, u1.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	var page PaginatedResponse[models.MatchingSession]
	decodeBody(t, rec, &page)
	assert.Len(t, page.Data, 2)
	assert.EqualValues(t, 2, page.Meta.TotalItems)

	// The third user's unrelated session stays out of the listing.
	for _, s := range page.Data {
		assert.True(t, s.User1ID == u1.ID || s.User2ID == u1.ID)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/v1/matching?page=1&limit=1", nil, accessCookie(t, u1.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &page)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 2, page.Meta.TotalPages)
}
