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

// SendFriendRequestInput defines the structure for sending a friend request.
type SendFriendRequestInput struct {
	FriendEmail string `json:"friendEmail" binding:"required,email" example:"friend@example.com"`
}

// RespondFriendRequestInput defines the structure for answering a request.
type RespondFriendRequestInput struct {
	Accept *bool `json:"accept" binding:"required"`
}

// FriendResponse is one entry of the caller's friend list.
type FriendResponse struct {
	FriendshipID uint   `json:"friendshipId" example:"1"`
	FriendID     uint   `json:"friendId" example:"2"`
	FriendName   string `json:"friendName" example:"Ana"`
	FriendEmail  string `json:"friendEmail" example:"ana@example.com"`
}

// FriendRequestResponse is one pending request, incoming or outgoing.
type FriendRequestResponse struct {
	FriendshipID uint   `json:"friendshipId" example:"1"`
	UserID       uint   `json:"userId" example:"2"`
	Name         string `json:"name" example:"Ana"`
	Email        string `json:"email" example:"ana@example.com"`
}

// endregion

// region --- Friend Handlers ---

// GetFriends godoc
// @Summary      List friends
// @Description  Returns every accepted friendship of the caller, resolved to the counterpart's profile.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   FriendResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /friends [get]
func GetFriends(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var friendships []models.Friendship
	err := database.DB.
		Where("(from_user_id = ? OR to_user_id = ?) AND status = ?", viewerID, viewerID, models.StatusAccepted).
		Preload("FromUser").
		Preload("ToUser").
		Find(&friendships).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friends"})
		return
	}

	friends := make([]FriendResponse, 0, len(friendships))
	for _, f := range friendships {
		counterpart := f.FromUser
		if f.FromUserID == viewerID.(uint) {
			counterpart = f.ToUser
		}
		friends = append(friends, FriendResponse{
			FriendshipID: f.ID,
			FriendID:     counterpart.ID,
			FriendName:   counterpart.Name,
			FriendEmail:  counterpart.Email,
		})
	}

	c.JSON(http.StatusOK, friends)
}

// SendFriendRequest godoc
// @Summary      Send a friend request
// @Description  Addresses the target by email and creates a pending friendship. At most one relation ever exists per pair, no matter the direction.
// @Tags         friends
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body SendFriendRequestInput true "Target email"
// @Success      201  {object}  FriendResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse "Self request or duplicate relation"
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /friends/requests [post]
func SendFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input SendFriendRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var friend models.User
	if err := database.DB.Where("email = ?", input.FriendEmail).First(&friend).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if friend.ID == viewerID.(uint) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Cannot add yourself"})
		return
	}

	var existing models.Friendship
	err := database.DB.
		Where("pair_key = ?", models.PairKey(viewerID.(uint), friend.ID)).
		First(&existing).Error
	if err == nil {
		if existing.Status == models.StatusAccepted {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Already friends"})
		} else {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Friend request already sent or received"})
		}
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing friendship"})
		return
	}

	friendship := models.Friendship{
		FromUserID: viewerID.(uint),
		ToUserID:   friend.ID,
		Status:     models.StatusPending,
	}
	if err := database.DB.Create(&friendship).Error; err != nil {
		// Losing the race against the counterpart's own request trips the
		// pair_key unique index; report it like the pre-check would have.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Friend request already sent or received"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create friend request"})
		return
	}

	c.JSON(http.StatusCreated, FriendResponse{
		FriendshipID: friendship.ID,
		FriendID:     friend.ID,
		FriendName:   friend.Name,
		FriendEmail:  friend.Email,
	})
}

// GetFriendRequests godoc
// @Summary      List incoming friend requests
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   FriendRequestResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /friends/requests [get]
func GetFriendRequests(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	listPendingRequests(c, "to_user_id = ?", viewerID.(uint), true)
}

// GetSentRequests godoc
// @Summary      List outgoing friend requests
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   FriendRequestResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /friends/sent-requests [get]
func GetSentRequests(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	listPendingRequests(c, "from_user_id = ?", viewerID.(uint), false)
}

// RespondToFriendRequest godoc
// @Summary      Accept or reject a friend request
// @Description  Only the recipient of a pending request may respond. Accepting flips the status; rejecting deletes the record so the pair is free again.
// @Tags         friends
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        requestorId path int true "Requesting User ID"
// @Param        input body RespondFriendRequestInput true "Decision"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Friend request not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /friends/requests/{requestorId} [patch]
func RespondToFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	requestorID, err := strconv.ParseUint(c.Param("requestorId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid requestor ID"})
		return
	}

	var input RespondFriendRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Only a request addressed to the viewer can be answered by them.
	var request models.Friendship
	err = database.DB.
		Where("from_user_id = ? AND to_user_id = ? AND status = ?", uint(requestorID), viewerID, models.StatusPending).
		First(&request).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Friend request not found"})
		return
	}

	if *input.Accept {
		if err := database.DB.Model(&request).Update("status", models.StatusAccepted).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept friend request"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Friend request accepted"})
		return
	}

	if err := database.DB.Delete(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject friend request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Friend request rejected"})
}

// RemoveFriend godoc
// @Summary      Remove a friendship
// @Description  Deletes the relation with the given user in either direction and any status (cancels a sent request, dismisses a received one, or unfriends).
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        friendId path int true "Counterpart User ID"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse "Invalid friend ID"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Friendship not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /friends/{friendId} [delete]
func RemoveFriend(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	friendID, err := strconv.ParseUint(c.Param("friendId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid friend ID"})
		return
	}

	result := database.DB.
		Where("pair_key = ?", models.PairKey(viewerID.(uint), uint(friendID))).
		Delete(&models.Friendship{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove friendship"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Friendship not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend removed successfully"})
}

// endregion

// listPendingRequests renders the pending relations matching the side filter,
// resolved to the other side's profile.
func listPendingRequests(c *gin.Context, sideFilter string, viewerID uint, incoming bool) {
	query := database.DB.Where(sideFilter, viewerID).Where("status = ?", models.StatusPending)
	if incoming {
		query = query.Preload("FromUser")
	} else {
		query = query.Preload("ToUser")
	}

	var requests []models.Friendship
	if err := query.Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friend requests"})
		return
	}

	responses := make([]FriendRequestResponse, 0, len(requests))
	for _, r := range requests {
		counterpart := r.FromUser
		if !incoming {
			counterpart = r.ToUser
		}
		responses = append(responses, FriendRequestResponse{
			FriendshipID: r.ID,
			UserID:       counterpart.ID,
			Name:         counterpart.Name,
			Email:        counterpart.Email,
		})
	}

	c.JSON(http.StatusOK, responses)
}
