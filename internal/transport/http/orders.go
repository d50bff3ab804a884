package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cfblade77/Devforge-sub000/internal/app"
	"github.com/cfblade77/Devforge-sub000/internal/domain"
)

// OrderCreator is the minimal interface needed to start checkout.
type OrderCreator interface {
	CreateOrder(ctx context.Context, in app.CreateOrderInput) (app.CreateOrderResult, error)
}

// OrderConfirmer confirms payment for an order.
type OrderConfirmer interface {
	ConfirmOrder(ctx context.Context, in app.ConfirmOrderInput) (app.ConfirmOrderResult, error)
}

// OrderViewer serves the details view.
type OrderViewer interface {
	GetOrderDetails(ctx context.Context, requesterID, orderID int64) (app.OrderDetails, error)
}

// RepositoryCreator is the seller-initiated provisioning entry point.
type RepositoryCreator interface {
	CreateRepositoryForOrder(ctx context.Context, requesterID, orderID int64) (app.CreateRepositoryResult, error)
}

// HandleCreateOrder returns the handler for POST /orders. The buyer is the
// authenticated requester.
func HandleCreateOrder(svc OrderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		buyerID, ok := UserID(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}

		var req createOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.GigID <= 0 {
			writeError(w, http.StatusBadRequest, codeInvalidID, "gig_id is required")
			return
		}

		res, err := svc.CreateOrder(r.Context(), app.CreateOrderInput{
			BuyerID: buyerID,
			GigID:   req.GigID,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrGigNotFound):
				writeError(w, http.StatusNotFound, codeGigNotFound, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		status := http.StatusCreated
		if res.Reused {
			status = http.StatusOK
		}
		writeJSON(w, status, createOrderResponse{
			OrderID:           res.OrderID,
			PaymentHandle:     res.PaymentHandle,
			ConfirmationToken: res.ConfirmationToken,
			Reused:            res.Reused,
		})
	}
}

// HandleConfirmOrder returns the handler for POST /orders/confirm. The call
// is bound by the confirmation token issued at creation, not by a session.
func HandleConfirmOrder(svc OrderConfirmer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req confirmOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.ConfirmationToken == "" {
			writeError(w, http.StatusBadRequest, codeInvalidConfirmToken, "confirmation_token is required")
			return
		}

		res, err := svc.ConfirmOrder(r.Context(), app.ConfirmOrderInput{
			OrderID:           req.OrderID,
			PaymentHandle:     req.PaymentHandle,
			ConfirmationToken: req.ConfirmationToken,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrOrderNotFound):
				writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
			case errors.Is(err, domain.ErrConfirmationRefRequired):
				writeError(w, http.StatusBadRequest, codeConfirmationRef, err.Error())
			case errors.Is(err, domain.ErrInvalidConfirmationToken):
				writeError(w, http.StatusForbidden, codeInvalidConfirmToken, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, confirmOrderResponse{
			OrderID:   res.OrderID,
			Completed: res.Completed,
			Repository: repositoryStatusResponse{
				Created: res.Repository.Created,
				Name:    res.Repository.Name,
				URL:     res.Repository.URL,
				Error:   res.Repository.Error,
			},
		})
	}
}

// HandleOrderResource dispatches GET /orders/{id} and
// POST /orders/{id}/repository.
func HandleOrderResource(viewer OrderViewer, repos RepositoryCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, isRepo, ok := parseOrderPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		requesterID, authed := UserID(r.Context())
		if !authed {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}

		switch {
		case isRepo && r.Method == http.MethodPost:
			createRepository(w, r, repos, requesterID, orderID)
		case !isRepo && r.Method == http.MethodGet:
			orderDetails(w, r, viewer, requesterID, orderID)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func createRepository(w http.ResponseWriter, r *http.Request, svc RepositoryCreator, requesterID, orderID int64) {
	res, err := svc.CreateRepositoryForOrder(r.Context(), requesterID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
		case errors.Is(err, domain.ErrForbidden):
			writeError(w, http.StatusForbidden, codeForbidden, err.Error())
		case errors.Is(err, domain.ErrRepositoryExists):
			writeError(w, http.StatusConflict, codeRepositoryExists, err.Error())
		case errors.Is(err, domain.ErrCredentialsMissing):
			writeError(w, http.StatusPreconditionFailed, codeCredentialsMissing, err.Error())
		case errors.Is(err, domain.ErrProvisioningFailed):
			writeError(w, http.StatusBadGateway, codeProvisioningFailed, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, createRepositoryResponse{
		RepoName: res.RepoName,
		RepoURL:  res.RepoURL,
	})
}

func orderDetails(w http.ResponseWriter, r *http.Request, svc OrderViewer, requesterID, orderID int64) {
	details, err := svc.GetOrderDetails(r.Context(), requesterID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
		case errors.Is(err, domain.ErrForbidden):
			writeError(w, http.StatusForbidden, codeForbidden, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}

	commits := make([]commitResponse, 0, len(details.Commits))
	for _, c := range details.Commits {
		commits = append(commits, commitResponse{
			SHA:             c.SHA,
			Message:         c.Message,
			AuthorName:      c.AuthorName,
			AuthoredAt:      c.AuthoredAt,
			HTMLURL:         c.HTMLURL,
			AuthorAvatarURL: c.AuthorAvatarURL,
		})
	}

	o := details.Order
	writeJSON(w, http.StatusOK, orderDetailsResponse{
		Order: orderResponse{
			ID:          o.ID,
			BuyerID:     o.BuyerID,
			GigID:       o.GigID,
			PriceCents:  o.PriceCents,
			Currency:    o.Currency,
			Completed:   o.Completed,
			CompletedAt: o.CompletedAt,
			RepoName:    o.RepoName,
			RepoURL:     o.RepoURL,
			RepoCreated: o.RepoCreated,
			CreatedAt:   o.CreatedAt,
		},
		Commits:      commits,
		CommitsError: details.CommitsError,
	})
}

// parseOrderPath accepts "orders/{id}" and "orders/{id}/repository".
func parseOrderPath(path string) (orderID int64, isRepo bool, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "orders" {
		return 0, false, false
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false, false
	}
	if len(parts) == 3 {
		if parts[2] != "repository" {
			return 0, false, false
		}
		return id, true, true
	}
	return id, false, true
}

type createOrderRequest struct {
	GigID int64 `json:"gig_id"`
}

type createOrderResponse struct {
	OrderID           int64  `json:"order_id"`
	PaymentHandle     string `json:"payment_handle"`
	ConfirmationToken string `json:"confirmation_token"`
	Reused            bool   `json:"reused"`
}

type confirmOrderRequest struct {
	OrderID           int64  `json:"order_id"`
	PaymentHandle     string `json:"payment_handle"`
	ConfirmationToken string `json:"confirmation_token"`
}

type repositoryStatusResponse struct {
	Created bool   `json:"created"`
	Name    string `json:"name,omitempty"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

type confirmOrderResponse struct {
	OrderID    int64                    `json:"order_id"`
	Completed  bool                     `json:"completed"`
	Repository repositoryStatusResponse `json:"repository"`
}

type createRepositoryResponse struct {
	RepoName string `json:"repo_name"`
	RepoURL  string `json:"repo_url"`
}

type commitResponse struct {
	SHA             string    `json:"sha"`
	Message         string    `json:"message"`
	AuthorName      string    `json:"author_name"`
	AuthoredAt      time.Time `json:"authored_at"`
	HTMLURL         string    `json:"html_url"`
	AuthorAvatarURL string    `json:"author_avatar_url"`
}

type orderResponse struct {
	ID          int64      `json:"id"`
	BuyerID     int64      `json:"buyer_id"`
	GigID       int64      `json:"gig_id"`
	PriceCents  int64      `json:"price_cents"`
	Currency    string     `json:"currency"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	RepoName    string     `json:"repo_name,omitempty"`
	RepoURL     string     `json:"repo_url,omitempty"`
	RepoCreated bool       `json:"repo_created"`
	CreatedAt   time.Time  `json:"created_at"`
}

type orderDetailsResponse struct {
	Order        orderResponse    `json:"order"`
	Commits      []commitResponse `json:"commits"`
	CommitsError string           `json:"commits_error,omitempty"`
}
