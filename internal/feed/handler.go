package feed

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daily-bread/daily-bread-api/pkg/response"
)

type FeedHandler struct {
	service *Service
}

func NewFeedHandler(service *Service) FeedHandler {
	return FeedHandler{service: service}
}

func (h *FeedHandler) GenerateBatchHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.GenerateFeedBatch(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to generate feed batch", err.Error())
		return
	}

	if entries == nil {
		entries = []FeedEntry{}
	}

	response.Success(w, entries, "successfully")
}

func (h *FeedHandler) GetFeedHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.VisibleFeed(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to get feed", err.Error())
		return
	}

	if entries == nil {
		entries = []FeedEntry{}
	}

	response.Success(w, entries, "successfully")
}

func (h *FeedHandler) ToggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	var req FeedItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return
	}

	if req.FeedItemID == "" {
		response.Error(w, http.StatusBadRequest, "Missing required fields", map[string]string{
			"feed_item_id": "feed_item_id is required",
		})
		return
	}

	if err := h.service.ToggleLike(r.Context(), req.FeedItemID); err != nil {
		if errors.Is(err, ErrFeedItemNotFound) {
			response.Error(w, http.StatusNotFound, "Feed item not found", err.Error())
			return
		}
		response.Error(w, http.StatusInternalServerError, "Failed to toggle like", err.Error())
		return
	}

	response.Success(w, "Ok", "successfully")
}

func (h *FeedHandler) HideFeedItemHandler(w http.ResponseWriter, r *http.Request) {
	var req FeedItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return
	}

	if req.FeedItemID == "" {
		response.Error(w, http.StatusBadRequest, "Missing required fields", map[string]string{
			"feed_item_id": "feed_item_id is required",
		})
		return
	}

	if err := h.service.HideFeedItem(r.Context(), req.FeedItemID); err != nil {
		if errors.Is(err, ErrFeedItemNotFound) {
			response.Error(w, http.StatusNotFound, "Feed item not found", err.Error())
			return
		}
		response.Error(w, http.StatusInternalServerError, "Failed to hide feed item", err.Error())
		return
	}

	response.Success(w, "Ok", "successfully")
}

func (h *FeedHandler) GetCommentsHandler(w http.ResponseWriter, r *http.Request) {
	feedItemID := chi.URLParam(r, "feedItemID")

	comments, err := h.service.CommentsForItem(r.Context(), feedItemID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to get comments", err.Error())
		return
	}

	if comments == nil {
		comments = []Comment{}
	}

	response.Success(w, comments, "successfully")
}

func (h *FeedHandler) AddCommentHandler(w http.ResponseWriter, r *http.Request) {
	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return
	}

	if req.FeedItemID == "" {
		response.Error(w, http.StatusBadRequest, "Missing required fields", map[string]string{
			"feed_item_id": "feed_item_id is required",
		})
		return
	}

	comment, err := h.service.AddComment(r.Context(), req.FeedItemID, req.Text, req.ParentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyComment):
			response.Error(w, http.StatusBadRequest, "Comment text is required", err.Error())
		case errors.Is(err, ErrFeedItemNotFound):
			response.Error(w, http.StatusNotFound, "Feed item not found", err.Error())
		case errors.Is(err, ErrParentMismatch):
			response.Error(w, http.StatusBadRequest, "Invalid parent comment", err.Error())
		default:
			response.Error(w, http.StatusInternalServerError, "Failed to add comment", err.Error())
		}
		return
	}

	response.Success(w, comment, "successfully")
}

func (h *FeedHandler) DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "commentID")

	if err := h.service.DeleteComment(r.Context(), commentID); err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to delete comment", err.Error())
		return
	}

	response.Success(w, "Ok", "successfully")
}

func (h *FeedHandler) GetCacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.CacheStats(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to get cache stats", err.Error())
		return
	}

	response.Success(w, stats, "successfully")
}
