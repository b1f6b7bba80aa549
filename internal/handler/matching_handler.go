package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/FranciscoSoares0/WatchMatch-Backend/internal/database"
	"github.com/FranciscoSoares0/WatchMatch-Backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

// StartMatchingInput defines the structure for opening a matching session.
type StartMatchingInput struct {
	User2ID uint          `json:"user2Id" binding:"required" example:"2"`
	Shows   []models.Show `json:"shows" binding:"required,min=1,dive"`
}

// ApproveShowInput defines the structure for recording one approval.
type ApproveShowInput struct {
	Show models.Show `json:"show" binding:"required"`
}

// endregion

// region --- Matching Handlers ---

// StartMatching godoc
// @Summary      Start a matching session
// @Description  Opens a pending session with another user over a shared candidate show list. Only one pending session may exist per pair; a new one can start once the previous completes.
// @Tags         matching
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body StartMatchingInput true "Counterpart and candidate shows"
// @Success      201  {object}  models.MatchingSession
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse "Self match or pending session exists"
// @Failure      404  {object}  ErrorResponse "Counterpart not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /matching [post]
func StartMatching(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input StartMatchingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var counterpart models.User
	if err := database.DB.First(&counterpart, input.User2ID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if counterpart.ID == viewerID.(uint) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "You cannot match with yourself"})
		return
	}

	var existing models.MatchingSession
	err := database.DB.
		Where("pair_key = ? AND status = ?", models.PairKey(viewerID.(uint), counterpart.ID), models.MatchingPending).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Matching session already exists. Please complete the current one first"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing sessions"})
		return
	}

	session := models.MatchingSession{
		User1ID:       viewerID.(uint),
		User2ID:       counterpart.ID,
		Status:        models.MatchingPending,
		Shows:         input.Shows,
		User1Approved: []models.Show{},
		User2Approved: []models.Show{},
	}
	if err := database.DB.Create(&session).Error; err != nil {
		// The partial unique index on pending pairs closes the race between
		// two simultaneous starts.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Matching session already exists. Please complete the current one first"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create matching session"})
		return
	}

	c.JSON(http.StatusCreated, session)
}

// ApproveShow godoc
// @Summary      Approve a candidate show
// @Description  Records that the caller approves one of the session's candidate shows. Approvals accumulate per side; re-approving is a no-op. Nothing here completes the session.
// @Tags         matching
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Param        input body ApproveShowInput true "Approved show"
// @Success      200  {object}  models.MatchingSession
// @Failure      400  {object}  ErrorResponse "Show not in candidate list"
// @Failure      401  {object}  ErrorResponse "Caller is not part of the session"
// @Failure      404  {object}  ErrorResponse "Session not found or not pending"
// @Failure      500  {object}  ErrorResponse
// @Router       /matching/{id}/approvals [post]
func ApproveShow(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}

	var input ApproveShowInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var session models.MatchingSession
	err = database.DB.
		Where("id = ? AND status = ?", uint(sessionID), models.MatchingPending).
		First(&session).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Matching session not found"})
		return
	}

	if session.User1ID != viewerID.(uint) && session.User2ID != viewerID.(uint) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "You are not part of this matching session"})
		return
	}

	if !containsShow(session.Shows, input.Show.ID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Show is not part of this session"})
		return
	}

	column := "user1_approved"
	approved := &session.User1Approved
	if session.User2ID == viewerID.(uint) {
		column = "user2_approved"
		approved = &session.User2Approved
	}

	if !containsShow(*approved, input.Show.ID) {
		*approved = append(*approved, input.Show)
		// Updating through the struct keeps the json serializer in play;
		// writing the slice by column name would hand the driver raw structs.
		if err := database.DB.Model(&session).Select(column).Updates(&session).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record approval"})
			return
		}
	}

	c.JSON(http.StatusOK, session)
}

// GetMatchingSessions godoc
// @Summary      List the caller's matching sessions
// @Description  Returns the sessions the caller takes part in, newest first, paginated.
// @Tags         matching
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Page number" default(1)
// @Param        limit query     int  false  "Items per page" default(10)
// @Success      200  {object}  PaginatedResponse[models.MatchingSession]
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /matching [get]
func GetMatchingSessions(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	page, limit := parsePagination(c)

	query := database.DB.
		Where("user1_id = ? OR user2_id = ?", viewerID, viewerID).
		Order("created_at DESC")

	response, err := Paginate[models.MatchingSession](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch matching sessions"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// endregion

func containsShow(shows []models.Show, id int) bool {
	for _, s := range shows {
		if s.ID == id {
			return true
		}
	}
	return false
}
