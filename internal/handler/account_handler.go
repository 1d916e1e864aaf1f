package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/abpira/accounts/shared/cqrs"
	"github.com/abpira/accounts/shared/errs"
	"github.com/abpira/accounts/shared/middleware"
	"github.com/abpira/accounts/shared/models"
	"github.com/gin-gonic/gin"
)

// AccountCommander defines the write-side operations used by AccountHandler.
type AccountCommander interface {
	CreateAccount(context.Context, cqrs.CreateAccountCommand) error
	UpdateAccount(context.Context, cqrs.UpdateAccountCommand) (bool, error)
	DeleteAccount(context.Context, cqrs.DeleteAccountCommand) (bool, error)
}

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	FetchAccount(context.Context, cqrs.FetchAccountQuery) (*models.CustomerView, error)
}

// ErrorReporter receives failures that map to a 500.
type ErrorReporter interface {
	Capture(c *gin.Context, handler string, err error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
	reporter ErrorReporter
}

type CreateAccountRequest struct {
	Name         string `json:"name" validate:"required,min=5,max=30"`
	Email        string `json:"email" validate:"required,email"`
	MobileNumber string `json:"mobileNumber" validate:"required,mobile"`
}

// UpdateAccountRequest validates accountsDTO only when it is present; an
// update without one is accepted here and reported as not applied.
type UpdateAccountRequest struct {
	Name         string          `json:"name" validate:"required,min=5,max=30"`
	Email        string          `json:"email" validate:"required,email"`
	MobileNumber string          `json:"mobileNumber" validate:"required,mobile"`
	Account      *AccountRequest `json:"accountsDTO"`
}

type AccountRequest struct {
	AccountNumber int64  `json:"accountNumber" validate:"required,account"`
	AccountType   string `json:"accountType" validate:"required"`
	BranchAddress string `json:"branchAddress" validate:"required"`
}

// NewAccountHandler builds the handler. reporter may be nil.
func NewAccountHandler(commands AccountCommander, queries AccountQuerier, reporter ErrorReporter) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries, reporter: reporter}
}

// RegisterRoutes mounts the account endpoints under /api.
func (h *AccountHandler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")
	api.POST("/create", h.CreateAccount)
	api.GET("/fetch", h.FetchAccount)
	api.PUT("/update", h.UpdateAccount)
	api.DELETE("/delete", h.DeleteAccount)
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	err := h.commands.CreateAccount(c.Request.Context(), cqrs.CreateAccountCommand{
		Customer: models.CustomerView{
			Name:         req.Name,
			Email:        req.Email,
			MobileNumber: req.MobileNumber,
		},
	})
	if err != nil {
		h.respondWithServiceError(c, "create", err)
		return
	}

	middleware.RespondWithStatus(c, http.StatusCreated, models.Status201, models.Message201)
}

func (h *AccountHandler) FetchAccount(c *gin.Context) {
	mobileNumber := c.Query("mobileNumber")
	if validationErrors := middleware.ValidateMobileNumberParam(mobileNumber); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.queries.FetchAccount(c.Request.Context(), cqrs.FetchAccountQuery{MobileNumber: mobileNumber})
	if err != nil {
		h.respondWithServiceError(c, "fetch", err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view := models.CustomerView{
		Name:         req.Name,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
	}
	if req.Account != nil {
		view.Account = &models.AccountView{
			AccountNumber: req.Account.AccountNumber,
			AccountType:   req.Account.AccountType,
			BranchAddress: req.Account.BranchAddress,
		}
	}

	updated, err := h.commands.UpdateAccount(c.Request.Context(), cqrs.UpdateAccountCommand{Customer: view})
	if err != nil {
		h.respondWithServiceError(c, "update", err)
		return
	}
	if !updated {
		middleware.RespondWithStatus(c, http.StatusInternalServerError, models.Status500, models.Message500)
		return
	}

	middleware.RespondWithStatus(c, http.StatusOK, models.Status200, models.Message200)
}

func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	mobileNumber := c.Query("mobileNumber")
	if validationErrors := middleware.ValidateMobileNumberParam(mobileNumber); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	deleted, err := h.commands.DeleteAccount(c.Request.Context(), cqrs.DeleteAccountCommand{MobileNumber: mobileNumber})
	if err != nil {
		h.respondWithServiceError(c, "delete", err)
		return
	}
	if !deleted {
		middleware.RespondWithStatus(c, http.StatusInternalServerError, models.Status500, models.Message500)
		return
	}

	middleware.RespondWithStatus(c, http.StatusOK, models.Status200, models.Message200)
}

// respondWithServiceError maps domain errors to client errors and reports
// everything else as a 500.
func (h *AccountHandler) respondWithServiceError(c *gin.Context, handler string, err error) {
	var dup *errs.DuplicateCustomerError
	var notFound *errs.NotFoundError
	switch {
	case errors.As(err, &dup):
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &notFound):
		middleware.RespondWithError(c, http.StatusNotFound, err.Error())
	default:
		log.Printf("%s failed: %v", handler, err)
		if h.reporter != nil {
			h.reporter.Capture(c, handler, err)
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, err.Error())
	}
}
