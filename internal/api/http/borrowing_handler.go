package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"library-service-backend/internal/domain"
	"library-service-backend/internal/service"
)

type BorrowingHandler struct {
	borrowings service.BorrowingService
}

func NewBorrowingHandler(borrowings service.BorrowingService) *BorrowingHandler {
	return &BorrowingHandler{borrowings: borrowings}
}

type createBorrowingRequest struct {
	BookID             int32  `json:"book_id"`
	ExpectedReturnDate string `json:"expected_return_date"`
}

// borrowingResponse pairs a borrowing with the checkout session opened for
// it. Payment is null when the processor was unreachable at creation time.
type borrowingResponse struct {
	Borrowing *domain.Borrowing `json:"borrowing"`
	Payment   *domain.Payment   `json:"payment,omitempty"`
}

type borrowingListResponse struct {
	Borrowings []domain.Borrowing `json:"borrowings"`
	Total      int32              `json:"total"`
	Page       int32              `json:"page"`
	PageSize   int32              `json:"page_size"`
}

func (h *BorrowingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBorrowingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &domain.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	borrowing, payment, err := h.borrowings.CreateBorrowing(r.Context(), actorFromContext(r.Context()), req.BookID, req.ExpectedReturnDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, borrowingResponse{Borrowing: borrowing, Payment: payment})
}

func (h *BorrowingHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	borrowing, fine, err := h.borrowings.ReturnBorrowing(r.Context(), actorFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, borrowingResponse{Borrowing: borrowing, Payment: fine})
}

func (h *BorrowingHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	filter := borrowingFilter(r)

	borrowings, total, err := h.borrowings.ListBorrowings(r.Context(), actorFromContext(r.Context()), filter, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, borrowingListResponse{Borrowings: borrowings, Total: total, Page: page, PageSize: pageSize})
}

func (h *BorrowingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	borrowing, err := h.borrowings.GetBorrowing(r.Context(), actorFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, borrowing)
}

func (h *BorrowingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.borrowings.DeleteBorrowing(r.Context(), actorFromContext(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// borrowingFilter reads the user_id and is_active query parameters. The
// service enforces that only staff may filter by another user's ID.
func borrowingFilter(r *http.Request) domain.BorrowingFilter {
	var filter domain.BorrowingFilter
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil && v > 0 {
			id := int32(v)
			filter.UserID = &id
		}
	}
	if raw := r.URL.Query().Get("is_active"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filter.IsActive = &v
		}
	}
	return filter
}
